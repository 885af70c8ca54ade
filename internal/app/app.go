package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/five82/inkframe/internal/config"
	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/hw/inky"
	"github.com/five82/inkframe/internal/hw/sim"
	"github.com/five82/inkframe/internal/logfields"
	"github.com/five82/inkframe/internal/logging"
	"github.com/five82/inkframe/internal/prefs"
	"github.com/five82/inkframe/internal/state"
	"github.com/five82/inkframe/internal/status"
	"github.com/five82/inkframe/internal/ui"
	"github.com/five82/inkframe/internal/wake"
)

// Options configure the frame.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/inkframe/prefs.toml
	Verbose    bool
	// Launcher boots the simulator with A and E held.
	Launcher bool
}

// Run drives the configured device until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg, opts.Verbose, false)
	if err != nil {
		return err
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	dev, closeDev, err := openDevice(cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDev(); err != nil {
			logger.Warn("close device", logfields.Error(err))
		}
	}()

	logger.Info("inkframe starting",
		slog.String("backend", cfg.Backend),
		slog.String("config", cfg.Path))
	r := &runner{
		configPath: opts.ConfigPath,
		verbose:    opts.Verbose,
		logger:     logger,
		device:     dev,
		status:     &status.Store{},
	}
	return r.loop(ctx)
}

// Sim runs the frame against a simulated panel shown in the terminal. The
// terminal belongs to the UI, so logs only go to the log file.
func Sim(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg, opts.Verbose, true)
	if err != nil {
		return err
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, _ := prefs.Load(prefsPath)

	input := sim.NewInput()
	if opts.Launcher {
		input.Hold(hw.A, hw.E)
	}
	ctl := newSimControl(input)
	st := &status.Store{}
	r := &runner{
		configPath: opts.ConfigPath,
		verbose:    opts.Verbose,
		logger:     logger,
		device:     Device{Panel: sim.NewPanel(cfg.Panel.Width, cfg.Panel.Height), Input: input},
		status:     st,
		onWake:     ctl.setSource,
		restart:    ctl.restart,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.loop(ctx) }()

	uiErr := ui.Run(ctx, ui.Options{
		Status:    st,
		Control:   ctl,
		LogPath:   cfg.LogFile,
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
	})
	cancel()
	return errors.Join(uiErr, <-done)
}

// PrintState writes the persisted state record as JSON.
func PrintState(opts Options, w io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store := state.Load(cfg.StateFile, slog.New(slog.DiscardHandler))
	data, err := store.Record().Marshal()
	if err != nil {
		return err
	}
	if !store.Exists() {
		fmt.Fprintf(w, "# %s missing, showing defaults\n", cfg.StateFile)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func newLogger(cfg config.Config, verbose, quiet bool) (*logging.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:   level,
		Quiet:   quiet,
		File:    cfg.LogFile,
		Journal: cfg.Log.Journal,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return logger, nil
}

// openDevice opens the configured backend. The sim backend runs headless
// here; its buttons are never pressed.
func openDevice(cfg config.Config, logger *slog.Logger) (Device, func() error, error) {
	if cfg.Backend == config.BackendSim {
		return Device{
			Panel: sim.NewPanel(cfg.Panel.Width, cfg.Panel.Height),
			Input: sim.NewInput(),
		}, func() error { return nil }, nil
	}
	dev, err := inky.Open(inkyConfig(cfg), logger)
	if err != nil {
		return Device{}, nil, fmt.Errorf("open inky: %w", err)
	}
	return Device{Panel: dev.Panel, Input: dev.Input}, dev.Close, nil
}

func inkyConfig(cfg config.Config) inky.Config {
	ic := inky.DefaultConfig()
	setIf(&ic.SPIPort, cfg.Panel.SPIPort)
	setIf(&ic.I2CBus, cfg.Panel.I2CBus)
	setIf(&ic.DCPin, cfg.Panel.DCPin)
	setIf(&ic.ResetPin, cfg.Panel.ResetPin)
	setIf(&ic.BusyPin, cfg.Panel.BusyPin)
	for i, pin := range cfg.Buttons.Pins {
		setIf(&ic.ButtonPins[i], pin)
	}
	ic.LEDPins = cfg.Buttons.LEDs
	ic.WarnPin = cfg.Buttons.WarnPin
	if cfg.Panel.Saturation > 0 {
		ic.Saturation = cfg.Panel.Saturation
	}
	if cfg.Buttons.Debounce > 0 {
		ic.Debounce = cfg.Buttons.Debounce
	}
	return ic
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// simControl lets the UI act on the simulated device.
type simControl struct {
	input   *sim.Input
	restart chan struct{}

	mu  sync.Mutex
	src *wake.Source
}

func newSimControl(input *sim.Input) *simControl {
	return &simControl{input: input, restart: make(chan struct{}, 1)}
}

func (c *simControl) setSource(src *wake.Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.src = src
}

func (c *simControl) Press(bs ...hw.Button) bool { return c.input.Press(bs...) }

// FireTimer expires the armed wake timer. While the launcher is up there is
// no timer and nothing happens.
func (c *simControl) FireTimer() {
	c.mu.Lock()
	src := c.src
	c.mu.Unlock()
	if src != nil {
		src.Fire()
	}
}

// Relaunch holds A and E and asks the runner to reboot.
func (c *simControl) Relaunch() {
	c.input.Hold(hw.A, hw.E)
	select {
	case c.restart <- struct{}{}:
	default:
	}
}

func (c *simControl) LEDs() hw.ButtonSet { return c.input.LEDs() }

func (c *simControl) Warn() bool { return c.input.Warn() }
