// Package app is the composition root of the Helios client.
//
// # Overview
//
// Run loads configuration and preferences, opens the client log, and wires
// the transport, the sync controller and a presentation sink together. It
// blocks until the user quits the TUI or, in plain mode, until the context is
// cancelled.
//
// # Threading
//
// The controller is single-threaded. Everything that touches it runs on one
// runloop.Loop goroutine:
//
//	transport goroutines ──loopHandler──┐
//	UI goroutine ─────────loopNavigator─┼──► runloop ──► controller ──► sink
//	retry timers ─────────loopScheduler─┘
//
//   - loopHandler posts transport callbacks (send results, inbound frames,
//     connectivity) onto the loop.
//   - loopNavigator posts key-driven navigation onto the loop.
//   - loopScheduler adapts runloop timers to controller.Scheduler, so retry
//     callbacks also run on the loop and never fire after Stop.
//
// # Startup
//
//  1. Load ~/.config/helios/config.toml (defaults when missing)
//  2. Load prefs for the theme
//  3. Open <log_dir>/helios.log and build the slog logger
//  4. Pick the sink: TUI on a terminal, PlainSink otherwise or with Plain
//  5. Start the loop and the transport
//  6. Peek the link state once so the status line starts as "waiting for host"
//     (or "connecting" if the link is already up)
//
// On the way out the pending retry is cancelled on the loop before the loop
// and transport are stopped.
package app
