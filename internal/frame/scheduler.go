package frame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/five82/inkframe/internal/apps"
	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/logfields"
	"github.com/five82/inkframe/internal/metrics"
	"github.com/five82/inkframe/internal/render"
	"github.com/five82/inkframe/internal/state"
	"github.com/five82/inkframe/internal/status"
)

// ErrRestart asks the caller to rebuild the runtime from scratch.
var ErrRestart = errors.New("restart requested")

// fallbackInterval arms the next wake when the active app is unusable.
const fallbackInterval = 15 * time.Minute

// Waker arms timer wakes and blocks until the next wake event.
type Waker interface {
	Arm(d time.Duration) error
	Wait(ctx context.Context) (hw.WakeEvent, error)
}

// Options wires a Scheduler.
type Options struct {
	Apps    map[state.Kind]apps.App
	Store   *state.Store
	Panel   hw.Panel
	Input   hw.Input
	Wake    Waker
	Metrics metrics.Recorder
	Status  *status.Store
	Logger  *slog.Logger
	Now     func() time.Time
	// Warm marks a rebuild inside a running process. The clock counter is
	// only primed on a cold start.
	Warm bool
}

// Scheduler runs the wake → select → update → draw → persist → arm loop.
type Scheduler struct {
	apps    map[state.Kind]apps.App
	store   *state.Store
	panel   hw.Panel
	input   hw.Input
	wake    Waker
	metrics metrics.Recorder
	status  *status.Store
	logger  *slog.Logger
	now     func() time.Time
	warm    bool

	pending    apps.Command
	hasPending bool
}

// New validates opts and returns a scheduler.
func New(opts Options) (*Scheduler, error) {
	if opts.Store == nil || opts.Panel == nil || opts.Input == nil {
		return nil, errors.New("scheduler needs a store, a panel and an input")
	}
	for _, k := range state.Kinds {
		if opts.Apps[k] == nil {
			return nil, fmt.Errorf("no app registered for %s", k)
		}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}
	if opts.Status == nil {
		opts.Status = &status.Store{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		apps:    opts.Apps,
		store:   opts.Store,
		panel:   opts.Panel,
		input:   opts.Input,
		wake:    opts.Wake,
		metrics: opts.Metrics,
		status:  opts.Status,
		logger:  opts.Logger,
		now:     opts.Now,
		warm:    opts.Warm,
	}, nil
}

// Pending returns the command deferred by the last app switch.
func (s *Scheduler) Pending() (apps.Command, bool) { return s.pending, s.hasPending }

// Run primes the clock on a cold start so its first wake syncs, runs the
// boot cycle, then loops waiting for wakes until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.wake == nil {
		return errors.New("scheduler has no wake source")
	}
	if !s.warm {
		if err := s.store.Set(state.Clock, apps.SyncThreshold-1); err != nil {
			s.logger.Warn("prime clock counter", logfields.Error(err))
		}
	}

	d, _ := s.Cycle(ctx, hw.WakeEvent{Cause: hw.WakeBoot, At: s.now()})
	for {
		if err := s.wake.Arm(d); err != nil {
			return fmt.Errorf("arm wake: %w", err)
		}
		s.status.SetNextWake(s.now().Add(d))
		s.logger.Debug("sleeping", logfields.NextWake(d))

		ev, err := s.wake.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for wake: %w", err)
		}
		d, _ = s.Cycle(ctx, ev)
	}
}

// Cycle handles one wake event and returns the delay until the next timer
// wake. Errors and panics from the app are contained: the frame is always
// drawn, state is always persisted and a usable interval is always
// returned. The error is for reporting only.
func (s *Scheduler) Cycle(ctx context.Context, ev hw.WakeEvent) (time.Duration, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := s.logger.With(logfields.CycleID(id), logfields.Cause(ev.Cause.String()))

	cmd := s.command(ev, logger)
	active := s.store.Active()
	logger = logger.With(logfields.App(active.String()), logfields.Command(cmd.String()))

	app := s.apps[active]
	var errs []error
	interval := fallbackInterval
	if app == nil {
		errs = append(errs, fmt.Errorf("no app registered for %s", active))
	} else {
		interval = app.RefreshInterval()
		if err := safely("update", func() error { return app.Update(ctx, cmd) }); err != nil {
			errs = append(errs, err)
			logUpdateError(logger, err)
		}
	}

	if err := s.input.SetWarn(true); err != nil {
		logger.Warn("warn led on", logfields.Error(err))
	}
	canvas := render.NewCanvas(s.panel.Bounds())
	if app != nil {
		if err := safely("draw", func() error { return app.Draw(canvas) }); err != nil {
			errs = append(errs, err)
			logger.Warn("draw failed", logfields.Error(err))
			if errors.Is(err, errPanic) {
				render.FatalScreen(canvas, "Frame error", err.Error())
			}
		}
	} else {
		render.FatalScreen(canvas, "Frame error", errs[0].Error())
	}
	if err := s.panel.Show(ctx, canvas.Image()); err != nil {
		errs = append(errs, fmt.Errorf("refresh panel: %w", err))
		logger.Error("panel refresh failed", logfields.Error(err))
	}
	if err := s.input.SetWarn(false); err != nil {
		logger.Warn("warn led off", logfields.Error(err))
	}
	if err := hw.ClearLEDs(s.input); err != nil {
		logger.Warn("clear leds", logfields.Error(err))
	}

	if err := s.store.Save(); err != nil {
		errs = append(errs, fmt.Errorf("persist state: %w", err))
		logger.Error("persist state failed", logfields.Error(err))
	}

	cycleErr := errors.Join(errs...)
	elapsed := time.Since(start)
	s.metrics.ObserveCycle(active.String(), ev.Cause.String(), elapsed, cycleErr != nil)
	if err := s.metrics.Flush(); err != nil {
		logger.Warn("write metrics", logfields.Error(err))
	}

	var notice string
	if n, ok := app.(apps.Noticer); ok {
		notice = n.Notice()
	}
	s.status.Update(status.Report{
		CycleID:  id,
		Cause:    ev.Cause,
		Pressed:  ev.Pressed,
		Command:  cmd.String(),
		Record:   s.store.Record(),
		Notice:   notice,
		Duration: elapsed,
		NextWake: s.now().Add(interval),
		Frame:    canvas.Image(),
	}, cycleErr)

	logger.Info("cycle complete", logfields.Duration(elapsed), logfields.NextWake(interval))
	return interval, cycleErr
}

// command resolves the wake into the command for the active app, switching
// apps when a different app's button was pressed.
func (s *Scheduler) command(ev hw.WakeEvent, logger *slog.Logger) apps.Command {
	if ev.Cause == hw.WakeButton {
		if sel, ok := Select(ev.Pressed, s.store.Active()); ok {
			if err := s.input.SetLED(sel.Button, true); err != nil {
				logger.Warn("button led on", logfields.Button(sel.Button.String()), logfields.Error(err))
			}
			s.hasPending = false
			if sel.Switch {
				if err := s.store.SetActive(sel.App); err != nil {
					logger.Error("persist active app", logfields.Error(err))
				}
				s.pending, s.hasPending = sel.Deferred, true
				logger.Info("switching app",
					logfields.Button(sel.Button.String()), logfields.App(sel.App.String()))
			}
			return sel.Command
		}
	}
	if s.hasPending {
		s.hasPending = false
		return s.pending
	}
	if ev.Cause == hw.WakeTimer {
		return apps.Tick
	}
	return apps.Hold
}

func logUpdateError(logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apps.ErrFetch):
		logger.Warn("update could not reach the network", logfields.Error(err))
	default:
		logger.Error("update failed", logfields.Error(err))
	}
}

var errPanic = errors.New("app panicked")

func safely(stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w during %s: %v", errPanic, stage, r)
		}
	}()
	return fn()
}
