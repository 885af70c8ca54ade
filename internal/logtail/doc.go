// Package logtail reads the tail of the device log for the simulator.
//
// # Overview
//
// The frame appends slog text lines to a log file on the data root. The
// simulator shows the last few hundred of them under the panel preview.
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//	entries := logtail.Filter(lines, slog.LevelInfo)
//
// # Reading
//
// Read keeps a ring buffer of maxLines strings, so the whole file is
// scanned once in O(maxLines) memory and the lines come back oldest first.
// A non-positive maxLines returns every line. A missing file returns
// nil, nil.
//
// # Parsing
//
// Parse splits a text-handler line into time, level, message and the
// remaining key=value attributes, unquoting quoted values. Anything that
// is not in that format, such as a panic trace, is returned with only Raw
// and Message set, and Filter always keeps it.
package logtail
