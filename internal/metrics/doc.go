// Package metrics records wake-cycle observability data.
//
// The scheduler and apps talk to the Recorder interface. NoopRecorder is
// used when metrics are disabled; PrometheusRecorder keeps counters and
// gauges on a Prometheus registry and, because the frame runs no HTTP
// server, writes them after every cycle to a textfile picked up by the
// node-exporter textfile collector.
package metrics
