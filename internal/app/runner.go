package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/five82/inkframe/internal/apps"
	"github.com/five82/inkframe/internal/config"
	"github.com/five82/inkframe/internal/fetch"
	"github.com/five82/inkframe/internal/frame"
	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/logfields"
	"github.com/five82/inkframe/internal/logging"
	"github.com/five82/inkframe/internal/metrics"
	"github.com/five82/inkframe/internal/state"
	"github.com/five82/inkframe/internal/status"
	"github.com/five82/inkframe/internal/wake"
)

var (
	errConfigChanged = errors.New("config changed")
	errRelaunch      = errors.New("relaunch requested")
)

const (
	baseBackoff = 5 * time.Second
	maxBackoff  = 5 * time.Minute
)

// Device is a panel and the button bank next to it.
type Device struct {
	Panel hw.Panel
	Input hw.Input
}

// releaser is implemented by inputs whose held buttons are simulated.
type releaser interface {
	Release()
}

// runner rebuilds the frame from its config on every boot. The device, the
// logger and the status store outlive boots; everything else is rebuilt.
type runner struct {
	configPath string
	verbose    bool
	logger     *logging.Logger
	device     Device
	status     *status.Store

	// onWake is told about each boot's wake source, and nil when it closes.
	onWake func(*wake.Source)
	// restart requests a reboot from outside, as the simulator does.
	restart <-chan struct{}

	clock *hw.OffsetClock
	// warm is set once a scheduler has run in this process.
	warm  bool
	sleep func(ctx context.Context, d time.Duration) bool
}

// loop boots the frame until ctx ends. A launcher choice, a config edit or
// a relaunch request reboots at once; any other failure reboots after a
// growing delay.
func (r *runner) loop(ctx context.Context) error {
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	failures := 0
	for {
		err := r.bootOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case errors.Is(err, frame.ErrRestart),
			errors.Is(err, errConfigChanged),
			errors.Is(err, errRelaunch):
			failures = 0
			r.logger.Info("restarting frame", logfields.Cause(err.Error()))
		case err != nil:
			failures++
			delay := calculateBackoff(failures, baseBackoff)
			r.logger.Error("frame stopped",
				logfields.Error(err),
				logfields.Count(failures),
				logfields.NextWake(delay))
			if !sleep(ctx, delay) {
				return nil
			}
		default:
			return nil
		}
	}
}

// bootOnce loads the config and runs one boot. When the boot was cut short
// by a config edit or a relaunch request, that cause is returned.
func (r *runner) bootOnce(ctx context.Context) error {
	if r.restart != nil {
		// A request made between boots is already honoured by this boot.
		select {
		case <-r.restart:
		default:
		}
	}
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return err
	}
	if !r.verbose {
		if lvl, err := logging.ParseLevel(cfg.Log.Level); err == nil {
			r.logger.Level.Set(lvl)
		}
	}

	bootCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if cw, err := NewConfigWatcher(cfg.Path, defaultConfigDebounce, r.logger.Logger); err != nil {
		r.logger.Warn("config changes will need a restart", logfields.Error(err))
	} else {
		defer cw.Close()
		go cw.Watch(bootCtx, func() { cancel(errConfigChanged) })
	}
	if r.restart != nil {
		go func() {
			select {
			case <-bootCtx.Done():
			case <-r.restart:
				cancel(errRelaunch)
			}
		}()
	}

	err = r.boot(bootCtx, cfg)
	if ctx.Err() == nil {
		if cause := context.Cause(bootCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
	}
	return err
}

// boot is one power-on: the launcher when it is asked for, the scheduler
// otherwise.
func (r *runner) boot(ctx context.Context, cfg config.Config) error {
	logger := r.logger.Logger
	store := state.Load(cfg.StateFile, logger)

	held := r.device.Input.Held()
	if rel, ok := r.device.Input.(releaser); ok {
		rel.Release()
	}
	if frame.NeedsLauncher(held, store) {
		logger.Info("starting launcher", logfields.Button(held.String()))
		l := frame.Launcher{
			Store:  store,
			Panel:  r.device.Panel,
			Input:  r.device.Input,
			Status: r.status,
			Logger: logger,
		}
		return l.Run(ctx)
	}

	rec := newRecorder(cfg)
	clock := hw.NewOffsetClock(nil, cfg.Clock.Zone)
	if r.clock != nil {
		clock.Set(r.clock.Now())
	}
	r.clock = clock

	env := apps.Env{
		Store:   store,
		Fetcher: fetch.NewClient(cfg.HTTP.Timeout),
		Clock:   clock,
		Metrics: rec,
		Logger:  logger,
	}

	src, err := wake.New(r.device.Input, logger)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()
	if r.onWake != nil {
		r.onWake(src)
		defer r.onWake(nil)
	}

	sched, err := frame.New(frame.Options{
		Apps:    buildApps(cfg, env),
		Store:   store,
		Panel:   r.device.Panel,
		Input:   r.device.Input,
		Wake:    src,
		Metrics: rec,
		Status:  r.status,
		Logger:  logger,
		Warm:    r.warm,
	})
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}
	r.warm = true
	return sched.Run(ctx)
}

// buildApps creates one app of each kind from cfg.
func buildApps(cfg config.Config, env apps.Env) map[state.Kind]apps.App {
	return map[state.Kind]apps.App{
		state.Gallery: apps.NewGallery(apps.GalleryOptions{
			Dir:      cfg.Gallery.Dir,
			Interval: cfg.Gallery.Interval,
		}, env),
		state.Apod: apps.NewApod(feedOptions(cfg.Apod, cfg.Apod.KeyedMetaURL()), env),
		state.Xkcd: apps.NewXkcd(feedOptions(cfg.Xkcd, cfg.Xkcd.MetaURL), env),
		state.Clock: apps.NewClock(apps.ClockOptions{
			TimeURL:  cfg.Clock.TimeURL,
			Interval: cfg.Clock.Interval,
		}, env),
	}
}

func feedOptions(f config.Feed, metaURL string) apps.FeedOptions {
	return apps.FeedOptions{
		Dir:      f.Dir,
		MaxFiles: f.MaxFiles,
		ImageURL: f.ImageURL,
		MetaURL:  metaURL,
		Interval: f.Interval,
	}
}

// newRecorder exports metrics to the node-exporter textfile when one is
// configured.
func newRecorder(cfg config.Config) metrics.Recorder {
	if cfg.Metrics.Textfile == "" {
		return metrics.NoopRecorder{}
	}
	return metrics.NewPrometheusRecorder(prom.NewRegistry(), cfg.Metrics.Textfile)
}

// calculateBackoff doubles the delay for every consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
