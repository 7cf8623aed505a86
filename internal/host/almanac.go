package host

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/five82/helios/internal/daytimes"
)

const (
	dateKeyLayout = "2006-01-02"
	dateLabel     = "Mon Jan 02"
	clockLayout   = "15:04"
)

// ErrNoAlmanacData means none of the requested days are in the almanac.
var ErrNoAlmanacData = errors.New("no almanac data")

// AlmanacDay holds precomputed event times for one date.
type AlmanacDay struct {
	Dawn    string `yaml:"dawn"`
	Sunrise string `yaml:"sunrise"`
	Sunset  string `yaml:"sunset"`
	Dusk    string `yaml:"dusk"`
}

// Almanac is a table of solar event times keyed by ISO date.
type Almanac struct {
	Location string                `yaml:"location"`
	Days     map[string]AlmanacDay `yaml:"days"`
}

// LoadAlmanac reads and validates the YAML almanac at path.
func LoadAlmanac(fs afero.Fs, path string) (*Almanac, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read almanac: %w", err)
	}
	var a Almanac
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse almanac: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("parse almanac: %w", err)
	}
	return &a, nil
}

func (a *Almanac) validate() error {
	for key, day := range a.Days {
		if _, err := time.Parse(dateKeyLayout, key); err != nil {
			return fmt.Errorf("day %q: date must be YYYY-MM-DD", key)
		}
		for name, v := range map[string]string{
			"dawn": day.Dawn, "sunrise": day.Sunrise, "sunset": day.Sunset, "dusk": day.Dusk,
		} {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, err := time.Parse(clockLayout, v); err != nil {
				return fmt.Errorf("day %q: %s %q is not HH:MM", key, name, v)
			}
		}
	}
	return nil
}

// Fields returns the wire fields for date. ok is false when the almanac has
// no entry for it.
func (a *Almanac) Fields(date time.Time) (daytimes.Fields, bool) {
	day, ok := a.Days[date.Format(dateKeyLayout)]
	if !ok {
		return daytimes.Fields{}, false
	}
	return daytimes.Fields{
		Date:    date.Format(dateLabel),
		Dawn:    strings.TrimSpace(day.Dawn),
		Sunrise: strings.TrimSpace(day.Sunrise),
		Sunset:  strings.TrimSpace(day.Sunset),
		Dusk:    strings.TrimSpace(day.Dusk),
	}, true
}
