// Package controller implements the Helios sync protocol: the state machine
// that decides what is known about the selected day, what must be requested
// from the host, and what the presentation sink shows.
//
// # Collaborators
//
// The controller is wired to four interfaces:
//
//   - Channel: submits REQ/OFFSET frames to the host
//   - Sink: receives status text and day records
//   - Scheduler: creates single-shot retry timers
//   - *slog.Logger: structured diagnostics
//
// Inbound events arrive as method calls: OnMessageReceived, OnMessageDropped,
// OnSendSucceeded, OnSendFailed and OnConnectivityChanged. User navigation
// arrives as NavigateTo, Step or Today.
//
// # Threading
//
// Every method, including timer callbacks, must run on one goroutine. In the
// application that goroutine is the runloop; the transport posts its
// callbacks there instead of calling the controller directly. Nothing here
// takes a lock.
//
// # Events
//
//	Event                  Action                                  Status
//	navigate               cache lookup, show or pending, request  pending / day
//	send fails (submit)    retry after 2000ms                      outbox: CODE
//	send fails (delivery)  retry after 1200ms                      send failed: CODE
//	handshake              clear cache, request                    connected, fetching
//	host error             -                                       error: TEXT
//	bundle                 ingest, show if selection now valid     day / unchanged
//	legacy                 show directly, cache untouched          day
//	inbound dropped        -                                       dropped: CODE
//	connect                fetch after 400ms                       connecting
//	disconnect             cancel pending retry                    waiting for host
//
// # Retry timer
//
// At most one retry timer is pending. Scheduling a new one stops the held
// timer first, and the callback of a replaced timer checks that it is still
// the current one before acting.
//
// # Late responses
//
// A bundle for a day the user already navigated away from is still merged
// into the cache but is only shown if it covers the current selection.
package controller
