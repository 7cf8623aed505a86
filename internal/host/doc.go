// Package host is the companion process Helios clients pair with.
//
// A Server accepts websocket sessions on the channel path, greets each with a
// handshake and answers every time request with a three-day bundle centered on
// the requested offset. Times come from an Almanac, a YAML table of
// precomputed event times keyed by ISO date:
//
//	location: Berlin
//	days:
//	  "2025-09-03":
//	    dawn: "06:01"
//	    sunrise: "06:38"
//	    sunset: "19:51"
//	    dusk: "20:27"
//
// Days absent from the almanac leave their slot empty. When none of the three
// days is known the host replies with an error payload instead. In legacy mode
// the host answers with a single flat day, as older hosts did.
package host
