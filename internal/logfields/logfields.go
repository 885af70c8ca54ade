// Package logfields keeps log attribute names consistent across packages.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names.
const (
	KeyApp        = "app"
	KeyCursor     = "cursor"
	KeyCount      = "count"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyCause      = "cause"
	KeyCommand    = "command"
	KeyButton     = "button"
	KeyCycleID    = "cycle_id"
	KeyURL        = "url"
	KeyDurationMS = "duration_ms"
	KeyNextWake   = "next_wake"
	KeyError      = "error"
)

func App(name string) slog.Attr     { return slog.String(KeyApp, name) }
func Cursor(c int) slog.Attr        { return slog.Int(KeyCursor, c) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func File(name string) slog.Attr    { return slog.String(KeyFile, name) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Cause(c string) slog.Attr      { return slog.String(KeyCause, c) }
func Command(c string) slog.Attr    { return slog.String(KeyCommand, c) }
func Button(b string) slog.Attr     { return slog.String(KeyButton, b) }
func CycleID(id string) slog.Attr   { return slog.String(KeyCycleID, id) }
func URL(u string) slog.Attr        { return slog.String(KeyURL, u) }
func NextWake(d time.Duration) slog.Attr {
	return slog.String(KeyNextWake, d.String())
}

// Duration reports d in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
