package metrics

import "time"

// FetchResult enumerates the outcomes of a fetch app's daily download.
type FetchResult string

const (
	FetchNew       FetchResult = "new"
	FetchDuplicate FetchResult = "duplicate"
	FetchCached    FetchResult = "cached"
	FetchFailed    FetchResult = "failed"
)

// Recorder defines the observability hooks of the wake cycle. All methods
// must be safe to call on a NoopRecorder so metrics stay optional.
type Recorder interface {
	ObserveCycle(app, cause string, d time.Duration, failed bool)
	IncFetch(app string, result FetchResult)
	IncTimeSync(success bool)
	SetCursor(app string, cursor int)
	SetCacheSize(app string, n int)
	// Flush persists the current values where the backend needs it.
	Flush() error
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCycle(string, string, time.Duration, bool) {}
func (NoopRecorder) IncFetch(string, FetchResult)                     {}
func (NoopRecorder) IncTimeSync(bool)                                 {}
func (NoopRecorder) SetCursor(string, int)                            {}
func (NoopRecorder) SetCacheSize(string, int)                         {}
func (NoopRecorder) Flush() error                                     { return nil }
