// Package status holds the live snapshot of the frame shared between the
// scheduler and the terminal simulator.
//
// # Overview
//
// The scheduler runs one wake cycle at a time and, at the end of each, calls
// Store.Update with a Report: the wake cause, the buttons pressed, the
// command the app received, the durable record after the cycle, any notice
// the app raised, and the frame that was sent to the panel. The simulator
// UI reads the result with Store.Snapshot on its own refresh tick.
//
//	Producer (scheduler):          Consumer (UI):
//	┌────────────────┐            ┌─────────────────┐
//	│ Cycle()        │            │                 │
//	│      ↓         │            │                 │
//	│ store.Update() │───────────→│ store.Snapshot()│
//	│      ↓         │  (mutex)   │      ↓          │
//	│ wait for wake  │            │  render preview │
//	└────────────────┘            └─────────────────┘
//
// # Update Semantics
//
// A failed cycle still replaces the report and frame, because the
// scheduler always puts something on the panel. The error is recorded in
// LastError and ConsecutiveFailures grows until a cycle succeeds.
// IsFailing reports two or more failures in a row.
//
// ShowLauncher marks the launcher menu as on screen; the next Update
// clears it.
//
// # Copying
//
// Frames are copied on the way in and on the way out, so the UI can never
// observe a canvas the scheduler is still drawing into. Errors are wrapped
// on the way out so errors.Is keeps working against the original.
//
// The zero Store is ready to use.
package status
