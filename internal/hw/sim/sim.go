// Package sim is an in-memory implementation of the frame hardware. It
// backs the terminal simulator and the scheduler tests.
package sim

import (
	"context"
	"image"
	"image/draw"
	"sync"

	"github.com/five82/inkframe/internal/hw"
)

// Panel keeps the last frame shown.
type Panel struct {
	mu     sync.Mutex
	bounds image.Rectangle
	last   *image.RGBA
	shows  int
	onShow func(image.Image)
}

var _ hw.Panel = (*Panel)(nil)

// NewPanel returns a panel of the given size.
func NewPanel(width, height int) *Panel {
	return &Panel{bounds: image.Rect(0, 0, width, height)}
}

// OnShow registers a callback invoked with a copy of every frame.
func (p *Panel) OnShow(fn func(image.Image)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onShow = fn
}

// Bounds returns the panel size.
func (p *Panel) Bounds() image.Rectangle { return p.bounds }

// Show stores a copy of img.
func (p *Panel) Show(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	frame := image.NewRGBA(p.bounds)
	draw.Draw(frame, p.bounds, img, img.Bounds().Min, draw.Src)

	p.mu.Lock()
	p.last = frame
	p.shows++
	fn := p.onShow
	p.mu.Unlock()

	if fn != nil {
		fn(frame)
	}
	return nil
}

// Last returns the last frame, or nil before the first Show.
func (p *Panel) Last() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Shows returns how many frames were shown.
func (p *Panel) Shows() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shows
}

// Input is a button bank driven by Press and Hold.
type Input struct {
	mu      sync.Mutex
	held    hw.ButtonSet
	leds    [5]bool
	lit     hw.ButtonSet
	warn    bool
	warned  int
	presses chan hw.ButtonSet
}

var _ hw.Input = (*Input)(nil)

// NewInput returns an idle button bank.
func NewInput() *Input {
	return &Input{presses: make(chan hw.ButtonSet, 8)}
}

// Press delivers one press of the given buttons. It drops the press when
// the queue is full, like a button pressed during a refresh.
func (in *Input) Press(bs ...hw.Button) bool {
	select {
	case in.presses <- hw.Buttons(bs...):
		return true
	default:
		return false
	}
}

// Hold sets the buttons reported by Held.
func (in *Input) Hold(bs ...hw.Button) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.held = hw.Buttons(bs...)
}

// Release lets go of every held button.
func (in *Input) Release() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.held = 0
}

// Held returns the buttons set by Hold.
func (in *Input) Held() hw.ButtonSet {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.held
}

// Presses delivers presses queued by Press.
func (in *Input) Presses() <-chan hw.ButtonSet { return in.presses }

// SetLED records the LED state.
func (in *Input) SetLED(b hw.Button, on bool) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if b < hw.A || b > hw.E {
		return nil
	}
	in.leds[b] = on
	if on {
		in.lit = in.lit.With(b)
	}
	return nil
}

// SetWarn records the warning LED state.
func (in *Input) SetWarn(on bool) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.warn = on
	if on {
		in.warned++
	}
	return nil
}

// LEDs returns the buttons whose LED is currently on.
func (in *Input) LEDs() hw.ButtonSet {
	in.mu.Lock()
	defer in.mu.Unlock()
	var s hw.ButtonSet
	for _, b := range hw.AllButtons {
		if in.leds[b] {
			s = s.With(b)
		}
	}
	return s
}

// Lit returns every button whose LED was turned on since the last call.
func (in *Input) Lit() hw.ButtonSet {
	in.mu.Lock()
	defer in.mu.Unlock()
	s := in.lit
	in.lit = 0
	return s
}

// Warn reports whether the warning LED is on.
func (in *Input) Warn() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.warn
}

// WarnCount returns how many times the warning LED was switched on.
func (in *Input) WarnCount() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.warned
}
