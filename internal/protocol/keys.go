package protocol

// Dictionary keys.
const (
	KeyRequest = "REQ"
	KeyOffset  = "OFFSET"
	KeyHello   = "HELLO"
	KeyError   = "ERROR"
	KeyCenter  = "CENTER"

	KeyDate    = "DATE"
	KeyDawn    = "DAWN"
	KeySunrise = "SUNRISE"
	KeySunset  = "SUNSET"
	KeyDusk    = "DUSK"
)

// Slot suffixes for bundle keys, in slot order.
var slotSuffixes = [3]string{"_M1", "_0", "_P1"}

var dayKeys = [5]string{KeyDate, KeyDawn, KeySunrise, KeySunset, KeyDusk}

// SlotKey returns the bundle key for a day field in slot 0, 1 or 2, e.g.
// SlotKey(KeyDawn, 0) == "DAWN_M1".
func SlotKey(field string, slot int) string {
	return field + slotSuffixes[slot]
}
