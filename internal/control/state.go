// Package control owns the fan control loop. A Controller is driven by an
// external tick source; each tick refreshes the readings, turns the user's
// Selection into a fan mode and writes it. The presentation side only sees
// State copies and only sends Selection values back.
package control

import (
	"errors"
	"fmt"
	"time"

	"github.com/luki/tpfancontrol/internal/config"
	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/policy"
	"github.com/luki/tpfancontrol/internal/sensor"
)

// Mode is what the user asked the fan to do.
type Mode uint8

const (
	// ModeSmart picks the level from the threshold table.
	ModeSmart Mode = iota
	// ModeBIOS hands the fan back to the firmware.
	ModeBIOS
	// ModeManual pins the fan to Selection.ManualLevel.
	ModeManual
)

// Modes lists the selectable modes in menu order.
func Modes() []Mode {
	return []Mode{ModeBIOS, ModeSmart, ModeManual}
}

func (m Mode) String() string {
	switch m {
	case ModeBIOS:
		return "BIOS"
	case ModeSmart:
		return "Smart"
	case ModeManual:
		return "Manual"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Selection is the only value the presentation layer sends to the loop.
type Selection struct {
	Mode        Mode
	ManualLevel fan.Level
}

// DefaultSelection is smart mode, with full speed preselected for manual.
func DefaultSelection() Selection {
	return Selection{Mode: ModeSmart, ManualLevel: fan.LevelFullSpeed}
}

// Desired resolves s against the readings of one tick. A failed
// temperature scan counts as having no reading, so smart mode falls back
// to full speed.
func (s Selection) Desired(table policy.Table, channels []sensor.Channel, tempErr error) fan.Mode {
	switch s.Mode {
	case ModeBIOS:
		return fan.Auto()
	case ModeManual:
		return s.ManualLevel.Mode()
	default:
		if tempErr != nil {
			return fan.FullSpeed()
		}
		return policy.Select(table, channels).Mode()
	}
}

// State is a snapshot of the control loop.
type State struct {
	Config config.Config

	Channels []sensor.Channel
	TempErr  error

	Fan    fan.State
	FanErr error

	// Writable is fixed at startup by the watchdog probe.
	Writable  bool
	Selection Selection

	// Applied is the last mode written successfully; Actuated is false
	// until the first write succeeds.
	Applied  fan.Mode
	Actuated bool
	ApplyErr error

	Updated time.Time
}

// Clone returns a copy of s that shares no slices with it.
func (s State) Clone() State {
	out := s
	out.Channels = append([]sensor.Channel(nil), s.Channels...)
	out.Config.Sensors = append([]string(nil), s.Config.Sensors...)
	return out
}

// Err joins the errors of the last tick.
func (s State) Err() error {
	return errors.Join(s.TempErr, s.FanErr, s.ApplyErr)
}

// Hottest is the highest present temperature, if any.
func (s State) Hottest() (sensor.Temperature, bool) {
	return sensor.Max(s.Channels)
}

// Label is the configured name of the 1-based channel index.
func (s State) Label(index int) string {
	if index < 1 || index > len(s.Config.Sensors) {
		return ""
	}
	return s.Config.Sensors[index-1]
}
