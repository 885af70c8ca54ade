// Package app is the composition root of the frame.
//
// # Overview
//
// Run drives real hardware; Sim drives an in-memory panel and button bank
// from a terminal UI. Both hand a device to the same runner, which boots
// the frame over and over:
//
//	┌──────────────┐
//	│ runner.loop  │ until ctx ends
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config.toml and the env file
//	       ├─────> ConfigWatcher        Reboot when config.toml changes
//	       ├─────> state.Load()         Active app and cursors
//	       │
//	       ├── A+E held or no state ──> frame.Launcher   Pick an app, reboot
//	       │
//	       └── otherwise ─────────────> frame.Scheduler  Boot cycle, then
//	                                                     wake, cycle, sleep
//
// The device, the logger and the status store outlive a reboot. Apps, the
// wake source, metrics and the network client are rebuilt from the config
// each time, so a config edit takes effect on the next boot. The corrected
// clock is carried across, as the RTC would be.
//
// # Error Handling
//
// Fatal (returned from Run or Sim):
//   - Config file unreadable at startup
//   - Logging or hardware initialisation failure
//
// Recovered (logged, frame reboots after a backoff of 10s doubling up to 5m):
//   - Config file broken by a later edit
//   - Wake source or scheduler failures
//
// Errors inside a cycle never reach this package; the scheduler contains
// them and keeps the frame showing something.
package app
