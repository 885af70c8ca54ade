package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "inkframe"

// PrometheusRecorder implements Recorder using Prometheus metrics. The
// frame has no HTTP server, so Flush writes the registry to a
// node-exporter textfile instead of serving it.
type PrometheusRecorder struct {
	reg           *prom.Registry
	textfile      string
	cycleDuration *prom.HistogramVec
	cycles        *prom.CounterVec
	fetches       *prom.CounterVec
	timeSyncs     *prom.CounterVec
	cursor        *prom.GaugeVec
	cacheSize     *prom.GaugeVec
	lastCycle     prom.Gauge
}

// NewPrometheusRecorder registers the frame metrics on reg (a fresh
// registry when nil). Flush writes them to textfile when it is non-empty.
func NewPrometheusRecorder(reg *prom.Registry, textfile string) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg, textfile: textfile}
	pr.cycleDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of wake cycles",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"app"})
	pr.cycles = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Wake cycles by app, wake cause and result",
	}, []string{"app", "cause", "result"})
	pr.fetches = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "fetches_total",
		Help:      "Daily feed fetch outcomes",
	}, []string{"app", "result"})
	pr.timeSyncs = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "time_syncs_total",
		Help:      "Network time sync attempts by result",
	}, []string{"result"})
	pr.cursor = prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "cursor",
		Help:      "Persisted cursor per app",
	}, []string{"app"})
	pr.cacheSize = prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_files",
		Help:      "Files held in each app cache directory",
	}, []string{"app"})
	pr.lastCycle = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_cycle_timestamp_seconds",
		Help:      "Unix time the last wake cycle finished",
	})
	reg.MustRegister(pr.cycleDuration, pr.cycles, pr.fetches, pr.timeSyncs, pr.cursor, pr.cacheSize, pr.lastCycle)
	return pr
}

// Registry returns the registry the metrics live on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveCycle(app, cause string, d time.Duration, failed bool) {
	if p == nil || p.cycles == nil {
		return
	}
	res := "success"
	if failed {
		res = "failed"
	}
	p.cycleDuration.WithLabelValues(app).Observe(d.Seconds())
	p.cycles.WithLabelValues(app, cause, res).Inc()
	p.lastCycle.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncFetch(app string, result FetchResult) {
	if p == nil || p.fetches == nil {
		return
	}
	p.fetches.WithLabelValues(app, string(result)).Inc()
}

func (p *PrometheusRecorder) IncTimeSync(success bool) {
	if p == nil || p.timeSyncs == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.timeSyncs.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetCursor(app string, cursor int) {
	if p == nil || p.cursor == nil {
		return
	}
	p.cursor.WithLabelValues(app).Set(float64(cursor))
}

func (p *PrometheusRecorder) SetCacheSize(app string, n int) {
	if p == nil || p.cacheSize == nil {
		return
	}
	p.cacheSize.WithLabelValues(app).Set(float64(n))
}

// Flush writes the registry to the textfile, atomically, when one is set.
func (p *PrometheusRecorder) Flush() error {
	if p == nil || p.textfile == "" {
		return nil
	}
	if err := prom.WriteToTextfile(p.textfile, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
