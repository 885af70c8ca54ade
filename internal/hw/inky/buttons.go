package inky

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/logfields"
)

const edgePoll = 200 * time.Millisecond

// Input reads the active-low buttons and drives the optional LEDs.
type Input struct {
	buttons  [5]gpio.PinIO
	leds     [5]gpio.PinIO
	warn     gpio.PinIO
	debounce time.Duration
	logger   *slog.Logger

	presses chan hw.ButtonSet
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

var _ hw.Input = (*Input)(nil)

func openInput(cfg Config, logger *slog.Logger) (*Input, error) {
	in := &Input{
		debounce: cfg.Debounce,
		logger:   logger,
		presses:  make(chan hw.ButtonSet, 4),
		stop:     make(chan struct{}),
	}
	for _, b := range hw.AllButtons {
		p, err := pin(cfg.ButtonPins[b])
		if err != nil {
			return nil, fmt.Errorf("button %s: %w", b, err)
		}
		if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			return nil, fmt.Errorf("configure button %s: %w", b, err)
		}
		in.buttons[b] = p

		if name := strings.TrimSpace(cfg.LEDPins[b]); name != "" {
			led, err := pin(name)
			if err != nil {
				return nil, fmt.Errorf("led %s: %w", b, err)
			}
			in.leds[b] = led
		}
	}
	if name := strings.TrimSpace(cfg.WarnPin); name != "" {
		led, err := pin(name)
		if err != nil {
			return nil, fmt.Errorf("warn led: %w", err)
		}
		in.warn = led
	}

	for _, b := range hw.AllButtons {
		in.wg.Add(1)
		go in.watch(b)
	}
	return in, nil
}

// watch forwards falling edges on one button. The full held set is sent so
// chords pressed together arrive as one event.
func (in *Input) watch(b hw.Button) {
	defer in.wg.Done()
	p := in.buttons[b]
	var last time.Time
	for {
		select {
		case <-in.stop:
			return
		default:
		}
		if !p.WaitForEdge(edgePoll) {
			continue
		}
		now := time.Now()
		if now.Sub(last) < in.debounce {
			continue
		}
		last = now
		pressed := in.Held().With(b)
		in.logger.Debug("button edge", logfields.Button(b.String()))
		select {
		case in.presses <- pressed:
		default:
			in.logger.Warn("button press dropped", logfields.Button(b.String()))
		}
	}
}

// Held returns the buttons currently pulled low.
func (in *Input) Held() hw.ButtonSet {
	var s hw.ButtonSet
	for _, b := range hw.AllButtons {
		if p := in.buttons[b]; p != nil && p.Read() == gpio.Low {
			s = s.With(b)
		}
	}
	return s
}

// Presses delivers button presses.
func (in *Input) Presses() <-chan hw.ButtonSet { return in.presses }

// SetLED drives a button LED when one is wired.
func (in *Input) SetLED(b hw.Button, on bool) error {
	if b < hw.A || b > hw.E || in.leds[b] == nil {
		return nil
	}
	return in.leds[b].Out(level(on))
}

// SetWarn drives the warning LED when one is wired.
func (in *Input) SetWarn(on bool) error {
	if in.warn == nil {
		return nil
	}
	return in.warn.Out(level(on))
}

// Close stops the edge watchers and disables edge detection.
func (in *Input) Close() error {
	in.once.Do(func() {
		close(in.stop)
		in.wg.Wait()
		for _, p := range in.buttons {
			if p != nil {
				_ = p.In(gpio.PullUp, gpio.NoEdge)
			}
		}
	})
	return nil
}

func level(on bool) gpio.Level {
	if on {
		return gpio.High
	}
	return gpio.Low
}
