package daytimes

import (
	"strings"
	"unicode/utf8"
)

// Field length limits for a DayRecord. Longer incoming text is truncated.
const (
	MaxDateLen = 19
	MaxTimeLen = 5
)

// Fields holds the five text fields of one day as received from the host.
// An absent field is the empty string.
type Fields struct {
	Date    string
	Dawn    string
	Sunrise string
	Sunset  string
	Dusk    string
}

// Any reports whether at least one field is non-empty.
func (f Fields) Any() bool {
	return f.Date != "" || f.Dawn != "" || f.Sunrise != "" || f.Sunset != "" || f.Dusk != ""
}

// DayRecord is one calendar day's solar events at a day offset from today.
// A record with Valid == false always has empty text fields.
type DayRecord struct {
	Valid   bool
	Offset  int32
	Date    string
	Dawn    string
	Sunrise string
	Sunset  string
	Dusk    string
}

// Pending returns the placeholder record for offset.
func Pending(offset int32) DayRecord {
	return DayRecord{Offset: offset}
}

// newRecord builds a record from wire fields, truncating to the field limits.
func newRecord(offset int32, f Fields) DayRecord {
	f = Fields{
		Date:    clip(f.Date, MaxDateLen),
		Dawn:    clip(f.Dawn, MaxTimeLen),
		Sunrise: clip(f.Sunrise, MaxTimeLen),
		Sunset:  clip(f.Sunset, MaxTimeLen),
		Dusk:    clip(f.Dusk, MaxTimeLen),
	}
	if !f.Any() {
		return Pending(offset)
	}
	return DayRecord{
		Valid:   true,
		Offset:  offset,
		Date:    f.Date,
		Dawn:    f.Dawn,
		Sunrise: f.Sunrise,
		Sunset:  f.Sunset,
		Dusk:    f.Dusk,
	}
}

// LegacyRecord builds the record for a single-day payload from an older host.
// It never touches a Cache.
func LegacyRecord(offset int32, f Fields) DayRecord {
	return newRecord(offset, f)
}

func clip(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	out := s[:limit]
	for len(out) > 0 && !utf8.ValidString(out) {
		out = out[:len(out)-1]
	}
	return out
}
