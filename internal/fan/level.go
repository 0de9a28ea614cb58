// Package fan reads and drives the single thinkpad_acpi fan through its
// pwm1_enable, pwm1 and fan1_input nodes.
package fan

import (
	"fmt"
	"strconv"
)

// FirmwareLevel is one of the eight fan steps of the embedded controller,
// as an ordinal 0..7.
type FirmwareLevel uint8

// NumFirmwareLevels is the number of firmware steps.
const NumFirmwareLevels = 8

// firmwareCodes maps each ordinal to the raw pwm1 value the driver uses for
// it. The spacing is fixed by the hardware and is not a linear scale.
var firmwareCodes = [NumFirmwareLevels]uint32{0, 36, 72, 109, 145, 182, 218, 255}

// Code returns the raw pwm1 value of l.
func (l FirmwareLevel) Code() uint32 {
	return firmwareCodes[l]
}

// Valid reports whether l is one of the eight steps.
func (l FirmwareLevel) Valid() bool {
	return l < NumFirmwareLevels
}

func (l FirmwareLevel) String() string {
	return strconv.Itoa(int(l))
}

// FirmwareLevelFromCode decodes a raw pwm1 value. Only the exact codes of
// the table are accepted.
func FirmwareLevelFromCode(code uint32) (FirmwareLevel, bool) {
	for i, c := range firmwareCodes {
		if c == code {
			return FirmwareLevel(i), true
		}
	}
	return 0, false
}

// Level is a fan level that can be requested manually or by the threshold
// table: a firmware step or full speed. Levels order from slowest to
// fastest.
type Level uint8

// LevelFullSpeed runs the fan outside firmware control at its maximum.
const LevelFullSpeed Level = NumFirmwareLevels

// Step returns the Level for a firmware step.
func Step(l FirmwareLevel) Level {
	return Level(l)
}

// Levels lists every level, slowest first.
func Levels() []Level {
	out := make([]Level, 0, NumFirmwareLevels+1)
	for l := Level(0); l <= LevelFullSpeed; l++ {
		out = append(out, l)
	}
	return out
}

// ParseLevel accepts "0" to "7" or "full-speed".
func ParseLevel(s string) (Level, error) {
	if s == "full-speed" {
		return LevelFullSpeed, nil
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '7' {
		return Level(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("fan level %q: want 0-7 or full-speed", s)
}

// Mode returns the actuation mode that realises l.
func (l Level) Mode() Mode {
	if l >= LevelFullSpeed {
		return FullSpeed()
	}
	return Firmware(FirmwareLevel(l))
}

// Key is the config-file spelling of l.
func (l Level) Key() string {
	if l >= LevelFullSpeed {
		return "full-speed"
	}
	return strconv.Itoa(int(l))
}

func (l Level) String() string {
	return l.Mode().String()
}
