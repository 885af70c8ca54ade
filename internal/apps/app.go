package apps

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/five82/inkframe/internal/fetch"
	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/metrics"
	"github.com/five82/inkframe/internal/render"
	"github.com/five82/inkframe/internal/state"
)

var (
	// ErrFetch marks a failed network fetch. The cycle continues and the
	// frame shows a banner; the next scheduled wake retries.
	ErrFetch = errors.New("fetch failed")
	// ErrNoImages means the gallery directory holds no JPEG at all.
	ErrNoImages = errors.New("no images in gallery")
)

// App is one of the frame's selectable apps.
type App interface {
	Kind() state.Kind
	// RefreshInterval is the time until the next timer wake.
	RefreshInterval() time.Duration
	// Update advances the app's cursor for this wake and persists it.
	Update(ctx context.Context, cmd Command) error
	// Draw renders the current item. The canvas is always left showable;
	// a returned error is for reporting only.
	Draw(c *render.Canvas) error
}

// Noticer is implemented by apps that have a user-visible notice for the
// last cycle, such as a failed download.
type Noticer interface {
	Notice() string
}

// Env holds the collaborators shared by all apps.
type Env struct {
	Store   *state.Store
	Fetcher fetch.Fetcher
	Clock   hw.Clock
	Metrics metrics.Recorder
	Logger  *slog.Logger
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Metrics == nil {
		e.Metrics = metrics.NoopRecorder{}
	}
	if e.Clock == nil {
		e.Clock = hw.NewOffsetClock(nil, time.Local)
	}
	return e
}

func intervalOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
