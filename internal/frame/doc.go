// Package frame is the top-level control loop of the picture frame.
//
// # Overview
//
// The frame has two modes. The launcher draws a menu and waits for a
// button; the chosen app is saved as the active app and the caller
// rebuilds the runtime (ErrRestart). The scheduler is the steady state:
//
//	boot cycle → arm(interval) → wait → cycle → arm(interval) → …
//
// Each cycle resolves the wake into a command for the active app, lights
// the pressed button's LED, runs Update then Draw, pushes the canvas to the
// panel with the warning LED lit, clears the LEDs, saves the state record
// and reports metrics and a status snapshot.
//
// # Button Mapping
//
//	A  gallery  backward
//	B  gallery  forward
//	C  apod     forward
//	D  xkcd     forward
//	E  clock    resync
//
// Pressing the active app's button sends its command this cycle. Pressing
// another app's button switches apps; that cycle runs the new app with
// Hold and the button's command is delivered on the next wake. Timer wakes
// send Tick. When several buttons are down the first in A..E order wins.
//
// # Containment
//
// Errors and panics from an app never stop a cycle. A failed Update still
// draws; a panicking Draw is replaced by a fatal screen; the record is
// saved and the next wake armed regardless.
package frame
