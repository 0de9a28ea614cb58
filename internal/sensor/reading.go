// Package sensor reads the temperature channels of the thinkpad_acpi hwmon
// device and formats them for display.
package sensor

import (
	"fmt"
	"math"
)

// Temperature is a reading in degrees Celsius.
type Temperature float64

// Channel is one configured temperature slot. Present is false when the
// channel does not exist on this machine; Temp is then meaningless.
type Channel struct {
	Temp    Temperature
	Present bool
}

// At returns a present channel holding t.
func At(t Temperature) Channel {
	return Channel{Temp: t, Present: true}
}

// Max returns the hottest present channel. ok is false when no channel has
// a reading.
func Max(channels []Channel) (max Temperature, ok bool) {
	for _, c := range channels {
		if !c.Present {
			continue
		}
		if !ok || c.Temp > max {
			max = c.Temp
			ok = true
		}
	}
	return max, ok
}

// Scale is the unit temperatures are displayed in.
type Scale int

const (
	Celsius Scale = iota
	Fahrenheit
)

func (s Scale) String() string {
	if s == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// Toggle returns the other scale.
func (s Scale) Toggle() Scale {
	if s == Fahrenheit {
		return Celsius
	}
	return Fahrenheit
}

// In converts t to s without rounding.
func (t Temperature) In(s Scale) float64 {
	if s == Fahrenheit {
		return float64(t)*9/5 + 32
	}
	return float64(t)
}

// Rounded converts t to s and rounds to the nearest whole degree.
func (t Temperature) Rounded(s Scale) float64 {
	r := math.Round(t.In(s))
	if r == 0 {
		return 0 // no "-0"
	}
	return r
}

// Display formats t in s, e.g. "98 °F".
func (t Temperature) Display(s Scale) string {
	return fmt.Sprintf("%.0f %s", t.Rounded(s), s)
}

// Visibility selects which labelled channels the temperature list shows.
type Visibility int

const (
	// VisibleActive shows labelled channels that have a reading.
	VisibleActive Visibility = iota
	// VisibleAll also shows labelled channels that are absent.
	VisibleAll
)

func (v Visibility) String() string {
	if v == VisibleAll {
		return "all"
	}
	return "active"
}

// Toggle returns the other filter.
func (v Visibility) Toggle() Visibility {
	if v == VisibleAll {
		return VisibleActive
	}
	return VisibleAll
}

// Shown reports whether a channel with the given label is listed. Channels
// without a label are sampled but never listed.
func (v Visibility) Shown(label string, c Channel) bool {
	if label == "" {
		return false
	}
	return c.Present || v == VisibleAll
}
