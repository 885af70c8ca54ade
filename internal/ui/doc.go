// Package ui is the terminal face of the frame simulator.
//
// The simulator runs the real scheduler against an in-memory panel and
// button set. This package draws the panel's last frame with half-block
// characters, so each terminal cell shows two pixel rows, and turns key
// presses into button presses and timer wakes through a Controller.
//
// # Layout
//
// From top to bottom: a header with the active app, its cursor, the cause
// of the last wake and a countdown to the next one; a line with the button
// LEDs, the busy LED and the latest notice or error; the preview; the tail
// of the device log; and a footer with the short key help.
//
// # Refresh
//
// The model polls status.Store on a short tick. The preview is rescaled
// only when the store reports a new frame or the terminal is resized. The
// log file is re-read at most once a second while the pane is visible.
//
// # Preferences
//
// The theme and the log pane settings persist through package prefs.
package ui
