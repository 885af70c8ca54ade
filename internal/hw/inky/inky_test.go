package inky

import (
	"testing"

	"periph.io/x/conn/v3/gpio"

	"github.com/five82/inkframe/internal/hw"
)

func TestDefaultConfigNamesEveryButton(t *testing.T) {
	cfg := DefaultConfig()
	seen := map[string]bool{}
	for _, b := range hw.AllButtons {
		name := cfg.ButtonPins[b]
		if name == "" {
			t.Fatalf("button %s has no pin", b)
		}
		if seen[name] {
			t.Fatalf("pin %s assigned twice", name)
		}
		seen[name] = true
	}
	for _, p := range []string{cfg.DCPin, cfg.ResetPin, cfg.BusyPin} {
		if seen[p] {
			t.Fatalf("panel pin %s collides with a button", p)
		}
	}
}

func TestLevel(t *testing.T) {
	if level(true) != gpio.High || level(false) != gpio.Low {
		t.Fatal("level() mapping wrong")
	}
}
