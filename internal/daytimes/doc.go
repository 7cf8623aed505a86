// Package daytimes holds the day records shown by Helios and the three-day
// window cache they are served from.
//
// # Window
//
// The host answers every time request with a bundle of three days centered on
// the requested offset. The Cache keeps exactly that bundle:
//
//	slot:    0          1        2
//	offset:  center-1   center   center+1
//
// Only IngestBundle moves the center. Lookup of an offset outside the window
// reports "not cached" and never returns a record from an earlier bundle.
//
// # Validity
//
// A slot is valid when at least one of its five text fields arrived non-empty.
// An invalid record has empty text and is rendered as pending.
//
// # Ownership
//
// The cache has no lock. The controller owns it and only touches it from the
// run loop goroutine.
package daytimes
