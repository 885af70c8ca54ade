package frame

import (
	"github.com/five82/inkframe/internal/apps"
	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/state"
)

type binding struct {
	kind state.Kind
	cmd  apps.Command
}

// bindings maps each button to the app it selects and the command it
// sends that app.
var bindings = [...]binding{
	hw.A: {state.Gallery, apps.Backward},
	hw.B: {state.Gallery, apps.Forward},
	hw.C: {state.Apod, apps.Forward},
	hw.D: {state.Xkcd, apps.Forward},
	hw.E: {state.Clock, apps.Resync},
}

// KindFor returns the app selected by button b.
func KindFor(b hw.Button) state.Kind { return bindings[b].kind }

// Selection is the outcome of a button press.
type Selection struct {
	Button hw.Button
	App    state.Kind
	// Command is what the app receives this cycle.
	Command apps.Command
	// Deferred is delivered on the next cycle after a switch.
	Deferred apps.Command
	Switch   bool
}

// Select maps the pressed buttons to a selection. When several buttons are
// down the first in A..E order wins. Pressing the active app's button sends
// its command now; pressing another app's button switches with Hold and
// defers the command to the next cycle.
func Select(pressed hw.ButtonSet, active state.Kind) (Selection, bool) {
	b, ok := pressed.First()
	if !ok {
		return Selection{}, false
	}
	bind := bindings[b]
	sel := Selection{Button: b, App: bind.kind, Command: bind.cmd}
	if bind.kind != active {
		sel.Switch = true
		sel.Command = apps.Hold
		sel.Deferred = bind.cmd
	}
	return sel, true
}
