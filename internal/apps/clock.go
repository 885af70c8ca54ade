package apps

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/five82/inkframe/internal/logfields"
	"github.com/five82/inkframe/internal/render"
	"github.com/five82/inkframe/internal/state"
)

const (
	// DefaultClockInterval is the clock redraw period.
	DefaultClockInterval = 10 * time.Minute
	// SyncThreshold is the number of wakes between network time syncs.
	SyncThreshold = 36
	// DefaultTimeURL answers HEAD requests with an accurate Date header.
	DefaultTimeURL = "https://www.google.com/"

	barHeight = 16
)

// ClockOptions configures the clock.
type ClockOptions struct {
	TimeURL  string
	Interval time.Duration
}

// Clock draws the date and time over a rainbow. Its cursor counts wakes
// since the last time sync; reaching SyncThreshold, or a Resync command,
// syncs the clock from the network.
type Clock struct {
	opts   ClockOptions
	env    Env
	logger *slog.Logger
	status string
	failed bool
}

var _ App = (*Clock)(nil)

// NewClock returns the clock app.
func NewClock(opts ClockOptions, env Env) *Clock {
	env = env.withDefaults()
	opts.Interval = intervalOr(opts.Interval, DefaultClockInterval)
	if opts.TimeURL == "" {
		opts.TimeURL = DefaultTimeURL
	}
	return &Clock{opts: opts, env: env, logger: env.Logger.With(logfields.App(state.Clock.String()))}
}

func (c *Clock) Kind() state.Kind { return state.Clock }

func (c *Clock) RefreshInterval() time.Duration { return c.opts.Interval }

// Status returns the sync message of the last Update.
func (c *Clock) Status() string { return c.status }

// Notice reports a failed sync.
func (c *Clock) Notice() string {
	if c.failed {
		return c.status
	}
	return ""
}

// Update bumps the wake counter and syncs the time when it is due. A
// successful sync resets the counter to zero; a failed one leaves it one
// short of the threshold so the next wake tries again.
func (c *Clock) Update(ctx context.Context, cmd Command) error {
	c.status = ""
	c.failed = false

	counter := c.env.Store.Get(state.Clock) + 1
	var syncErr error
	if counter >= SyncThreshold || cmd == Resync {
		start := time.Now()
		t, err := c.env.Fetcher.ServerTime(ctx, c.opts.TimeURL)
		elapsed := time.Since(start)
		if err != nil {
			counter = SyncThreshold - 1
			c.status = "Failed to connect!"
			c.failed = true
			syncErr = fmt.Errorf("%w: time sync: %v", ErrFetch, err)
			c.env.Metrics.IncTimeSync(false)
			c.logger.Warn("time sync failed", logfields.URL(c.opts.TimeURL), logfields.Error(err))
		} else {
			before := c.env.Clock.Now()
			c.env.Clock.Set(t)
			counter = 0
			c.status = fmt.Sprintf("Set time from network... %ds", int(elapsed.Round(time.Second).Seconds()))
			c.env.Metrics.IncTimeSync(true)
			c.logger.Info("time synced", slog.Duration("drift", t.Sub(before)), logfields.Duration(elapsed))
		}
	}

	counter = state.Clamp(counter, SyncThreshold)
	if err := c.env.Store.Set(state.Clock, counter); err != nil {
		return fmt.Errorf("persist clock counter: %w", err)
	}
	c.env.Metrics.SetCursor(state.Clock.String(), counter)
	return syncErr
}

// Draw renders the rainbow background, the date, the time and the sync
// status line.
func (c *Clock) Draw(cv *render.Canvas) error {
	w, h := cv.Width(), cv.Height()

	cv.SetPen(render.White)
	cv.Clear()
	for x := 0; x < w; x++ {
		cv.SetColor(render.HSV(float64(x)/(1.8*float64(w)), 1, 1))
		cv.Line(x, 0, x, h-1)
	}
	cv.SetPen(render.Blue)
	cv.Rect(0, 0, w, barHeight)
	cv.Rect(0, h-barHeight, w, barHeight)

	now := c.env.Clock.Now()
	date := DateLine(now)
	clock := now.Format("15:04")

	dateScale := render.FitScale(date, w*3/4, 5)
	timeScale := render.FitScale(clock, w*3/4, 14)
	dateH := render.GlyphHeight * dateScale
	timeH := render.GlyphHeight * timeScale

	gap := dateH / 2
	top := (h - dateH - gap - timeH) / 2
	shadowText(cv, date, (w-render.MeasureText(date, dateScale))/2, top, dateScale, 2)
	shadowText(cv, clock, (w-render.MeasureText(clock, timeScale))/2, top+dateH+gap, timeScale, 3)

	if c.status != "" {
		cv.SetPen(render.White)
		cv.Text(c.status, 2, h-barHeight+2, 1)
	}
	return nil
}

// DateLine formats t as "MM/DD/YYYY DOW".
func DateLine(t time.Time) string {
	dow := strings.ToUpper(t.Weekday().String()[:3])
	return fmt.Sprintf("%02d/%02d/%04d %s", int(t.Month()), t.Day(), t.Year(), dow)
}

func shadowText(cv *render.Canvas, s string, x, y, scale, offset int) {
	cv.SetPen(render.Blue)
	cv.Text(s, x+offset, y+offset, scale)
	cv.SetPen(render.White)
	cv.Text(s, x, y, scale)
}
