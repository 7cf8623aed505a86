package protocol

import "github.com/five82/helios/internal/daytimes"

// Message is a decoded inbound frame. The concrete type is one of Handshake,
// HostError, Bundle, Legacy or Unrecognized.
type Message interface {
	message()
}

// Handshake signals that the host side just became reachable.
type Handshake struct{}

// HostError carries a host-reported failure.
type HostError struct {
	Text string
}

// Bundle carries three days centered on Center.
type Bundle struct {
	Center int32
	Days   [3]daytimes.Fields
}

// Legacy is a single-day payload without bundle framing.
type Legacy struct {
	Fields daytimes.Fields
}

// Unrecognized is a frame with no known content.
type Unrecognized struct{}

func (Handshake) message()    {}
func (HostError) message()    {}
func (Bundle) message()       {}
func (Legacy) message()       {}
func (Unrecognized) message() {}

// Decode classifies d. Priority is handshake, error, bundle, legacy.
func Decode(d Dict) Message {
	if d.Has(KeyHello) {
		return Handshake{}
	}
	if d.Has(KeyError) {
		return HostError{Text: d.String(KeyError)}
	}
	if d.Has(KeyCenter) {
		center, ok := d.Int32(KeyCenter)
		if !ok {
			return Unrecognized{}
		}
		var days [3]daytimes.Fields
		for slot := range days {
			days[slot] = fields(d, func(key string) string { return SlotKey(key, slot) })
		}
		return Bundle{Center: center, Days: days}
	}
	for _, key := range dayKeys {
		if d.Has(key) {
			return Legacy{Fields: fields(d, func(key string) string { return key })}
		}
	}
	return Unrecognized{}
}

func fields(d Dict, name func(string) string) daytimes.Fields {
	return daytimes.Fields{
		Date:    d.String(name(KeyDate)),
		Dawn:    d.String(name(KeyDawn)),
		Sunrise: d.String(name(KeySunrise)),
		Sunset:  d.String(name(KeySunset)),
		Dusk:    d.String(name(KeyDusk)),
	}
}

// Request is the outbound time request for offset.
func Request(offset int32) Dict {
	return Dict{KeyRequest: 1, KeyOffset: offset}
}

// ParseRequest reports the requested offset when d is a time request. A
// request without OFFSET asks for today.
func ParseRequest(d Dict) (offset int32, ok bool) {
	req, _ := d.Int32(KeyRequest)
	if req == 0 {
		return 0, false
	}
	offset, _ = d.Int32(KeyOffset)
	return offset, true
}

// HandshakeDict is the frame a host sends when it becomes reachable.
func HandshakeDict() Dict {
	return Dict{KeyHello: 1}
}

// ErrorDict reports a host-side failure.
func ErrorDict(text string) Dict {
	return Dict{KeyError: text}
}

// BundleDict encodes three days centered on center. Empty fields are left out.
func BundleDict(center int32, days [3]daytimes.Fields) Dict {
	d := Dict{KeyCenter: center}
	for slot, f := range days {
		put(d, f, func(key string) string { return SlotKey(key, slot) })
	}
	return d
}

// LegacyDict encodes a single-day payload. Empty fields are left out.
func LegacyDict(f daytimes.Fields) Dict {
	d := Dict{}
	put(d, f, func(key string) string { return key })
	return d
}

func put(d Dict, f daytimes.Fields, name func(string) string) {
	values := [5]string{f.Date, f.Dawn, f.Sunrise, f.Sunset, f.Dusk}
	for i, key := range dayKeys {
		if values[i] != "" {
			d[name(key)] = values[i]
		}
	}
}
