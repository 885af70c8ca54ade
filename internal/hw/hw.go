package hw

import (
	"context"
	"image"
	"strings"
	"time"
)

// Button identifies one of the five front-panel buttons.
type Button int

const (
	A Button = iota
	B
	C
	D
	E
)

// AllButtons lists the buttons in priority order.
var AllButtons = []Button{A, B, C, D, E}

func (b Button) String() string {
	if b < A || b > E {
		return "?"
	}
	return string(rune('A' + int(b)))
}

// ParseButton accepts "a" through "e" in either case.
func ParseButton(s string) (Button, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'E' {
		return 0, false
	}
	return Button(s[0] - 'A'), true
}

// ButtonSet is a set of buttons.
type ButtonSet uint8

// Buttons builds a set from bs.
func Buttons(bs ...Button) ButtonSet {
	var s ButtonSet
	for _, b := range bs {
		s = s.With(b)
	}
	return s
}

// With returns s plus b.
func (s ButtonSet) With(b Button) ButtonSet {
	if b < A || b > E {
		return s
	}
	return s | 1<<uint(b)
}

// Has reports whether b is in s.
func (s ButtonSet) Has(b Button) bool {
	if b < A || b > E {
		return false
	}
	return s&(1<<uint(b)) != 0
}

// Empty reports whether no button is in s.
func (s ButtonSet) Empty() bool { return s&0x1f == 0 }

// First returns the highest-priority button in s.
func (s ButtonSet) First() (Button, bool) {
	for _, b := range AllButtons {
		if s.Has(b) {
			return b, true
		}
	}
	return 0, false
}

func (s ButtonSet) String() string {
	var sb strings.Builder
	for _, b := range AllButtons {
		if s.Has(b) {
			if sb.Len() > 0 {
				sb.WriteByte('+')
			}
			sb.WriteString(b.String())
		}
	}
	if sb.Len() == 0 {
		return "none"
	}
	return sb.String()
}

// WakeCause says why the frame woke up.
type WakeCause int

const (
	WakeTimer WakeCause = iota
	WakeButton
	WakeBoot
)

func (c WakeCause) String() string {
	switch c {
	case WakeTimer:
		return "timer"
	case WakeButton:
		return "button"
	case WakeBoot:
		return "boot"
	default:
		return "unknown"
	}
}

// WakeEvent is one wake-up. Pressed is empty for timer wakes.
type WakeEvent struct {
	Cause   WakeCause
	Pressed ButtonSet
	At      time.Time
}

// Panel is the e-ink display.
type Panel interface {
	Bounds() image.Rectangle
	// Show pushes a full frame. It blocks until the refresh completes.
	Show(ctx context.Context, img image.Image) error
}

// Input is the button bank and its indicator LEDs.
type Input interface {
	// Held returns the buttons down right now.
	Held() ButtonSet
	// Presses delivers the buttons pressed at each button edge.
	Presses() <-chan ButtonSet
	SetLED(b Button, on bool) error
	// SetWarn drives the busy/warning LED.
	SetWarn(on bool) error
}

// ClearLEDs turns every button LED off, returning the first error.
func ClearLEDs(in Input) error {
	var first error
	for _, b := range AllButtons {
		if err := in.SetLED(b, false); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Clock is the frame's notion of wall time. Set corrects it after a
// network time sync.
type Clock interface {
	Now() time.Time
	Set(t time.Time)
}
