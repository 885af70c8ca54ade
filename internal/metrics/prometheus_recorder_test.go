package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg, "")
	pr.ObserveCycle("apod", "timer", 1500*time.Millisecond, false)
	pr.IncFetch("apod", FetchNew)
	pr.IncTimeSync(true)
	pr.SetCursor("apod", 3)
	pr.SetCacheSize("apod", 10)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
	if err := pr.Flush(); err != nil {
		t.Fatalf("Flush without textfile returned error: %v", err)
	}
}

func TestPrometheusRecorder_FlushWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkframe.prom")
	pr := NewPrometheusRecorder(nil, path)
	pr.SetCacheSize("xkcd", 7)

	if err := pr.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `inkframe_cache_files{app="xkcd"} 7`) {
		t.Fatalf("textfile missing cache gauge:\n%s", data)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveCycle("clock", "boot", time.Second, true)
	r.IncFetch("xkcd", FetchFailed)
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
}
