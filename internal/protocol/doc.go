// Package protocol defines the field dictionaries exchanged with the Helios
// host and decodes inbound dictionaries into a closed set of message kinds.
//
// Every frame is a flat dictionary of string keys. Outbound requests carry
// REQ=1 and OFFSET=<day offset>. Inbound frames are one of:
//
//	HELLO                    handshake, host just became reachable
//	ERROR=<text>             host-side failure for the last request
//	CENTER=<n> + 15 fields   bundle for n-1, n, n+1 (suffixes _M1, _0, _P1)
//	DATE/DAWN/.../DUSK       legacy single-day payload
//
// Decode applies that order, so a frame carrying both HELLO and CENTER is a
// Handshake.
package protocol
