package protocol

import (
	"encoding/json"
	"math"
	"strconv"
)

// Dict is one frame: a flat set of keyed values. Values are strings or
// integers; frames decoded from JSON carry json.Number for integers.
type Dict map[string]any

// Has reports whether key is present, whatever its value.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// String returns the text value at key, or "" when absent or not text.
func (d Dict) String(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Int32 returns the integer value at key. ok is false when the key is absent
// or does not hold an int32-sized integer.
func (d Dict) Int32(key string) (int32, bool) {
	var n int64
	switch v := d[key].(type) {
	case int:
		n = int64(v)
	case int32:
		return v, true
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		n = int64(v)
	case json.Number:
		parsed, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int32(n), true
}
