// Package policy turns temperatures into a fan level for smart mode.
package policy

import (
	"fmt"
	"math"
	"sort"

	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/sensor"
)

// Threshold asks for Level once the hottest channel is strictly above Above.
type Threshold struct {
	Above sensor.Temperature
	Level fan.Level
}

// Table is a threshold list sorted ascending by temperature with distinct
// bounds. The zero value is an empty table.
type Table struct {
	entries []Threshold
}

// NewTable sorts entries and rejects NaN or duplicate bounds.
func NewTable(entries []Threshold) (Table, error) {
	sorted := make([]Threshold, len(entries))
	copy(sorted, entries)

	for _, e := range sorted {
		if math.IsNaN(float64(e.Above)) || math.IsInf(float64(e.Above), 0) {
			return Table{}, fmt.Errorf("threshold %v is not a finite temperature", e.Above)
		}
		if e.Level > fan.LevelFullSpeed {
			return Table{}, fmt.Errorf("threshold %v: invalid level %d", e.Above, e.Level)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Above < sorted[j].Above })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Above == sorted[i-1].Above {
			return Table{}, fmt.Errorf("duplicate threshold %v", sorted[i].Above)
		}
	}

	return Table{entries: sorted}, nil
}

// MustTable is NewTable for literals known to be valid.
func MustTable(entries ...Threshold) Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Entries returns a copy of the thresholds, coolest first.
func (t Table) Entries() []Threshold {
	out := make([]Threshold, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len is the number of thresholds.
func (t Table) Len() int { return len(t.entries) }

// Select picks the level of the highest threshold the hottest present
// channel is strictly above. With no reading at all, or when no threshold
// is exceeded, it returns full speed.
func Select(t Table, channels []sensor.Channel) fan.Level {
	hottest, ok := sensor.Max(channels)
	if !ok {
		return fan.LevelFullSpeed
	}
	return t.levelAt(hottest)
}

func (t Table) levelAt(temp sensor.Temperature) fan.Level {
	// first bound that temp does not exceed
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].Above >= temp })
	if i == 0 {
		return fan.LevelFullSpeed
	}
	return t.entries[i-1].Level
}
