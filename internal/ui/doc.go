// Package ui provides the terminal front end for the Helios client.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It never talks to the host directly: key
// presses go out through a Navigator, and the sync controller pushes results
// back in as StatusMsg and DayMsg values through a ProgramSink. The model
// only renders what it is told, plus its own view of the selected offset so
// the header follows navigation immediately.
//
// # Package Structure
//
//   - model.go: Model, Update loop, key handling and the go-to prompt
//   - view.go: header, command bar, day card, status line and log pane
//   - help.go: help overlay
//   - keys.go: key bindings (bubbles/key)
//   - theme.go: color themes and Lipgloss styles
//   - sink.go: ProgramSink and PlainSink, the two controller.Sink outputs
//
// # Screen Layout
//
//	helios  +2 days  Berlin
//	<↑/k> prev <↓/j> next <enter/t> today <g> goto <l> logs <h/?> help <q> quit
//
//	            ╭──────────────────╮
//	            │  Fri Sep 05      │
//	            │                  │
//	            │  Dawn     06:05  │
//	            │  Sunrise  06:41  │
//	            │  Sunset   19:46  │
//	            │  Dusk     20:22  │
//	            ╰──────────────────╯
//	                 pending
//
// A record that is not valid, or belongs to a different offset than the one
// selected, renders as "pending". Empty times render as --:--.
//
// # Key Bindings
//
//   - ↑ or k: previous day
//   - ↓ or j: next day
//   - Enter, Space or t: back to today
//   - g: go to an absolute offset
//   - l: toggle the log pane (tail of the client log)
//   - T: cycle theme (saved to prefs)
//   - h or ?: help
//   - q or Ctrl+C: quit
//
// # Plain Output
//
// When stdout is not a terminal the client uses PlainSink instead, which
// prints one timestamped line per status change or displayed day.
package ui
