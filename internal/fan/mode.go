package fan

import "fmt"

// ModeKind discriminates Mode.
type ModeKind uint8

const (
	// ModeAuto leaves the fan to the firmware.
	ModeAuto ModeKind = iota
	// ModeFirmware pins the fan to one firmware step.
	ModeFirmware
	// ModeFullSpeed disengages the fan from firmware control.
	ModeFullSpeed
)

// Mode is the actuation mode of the fan. It describes both what the device
// reports and what should be written to it.
type Mode struct {
	Kind  ModeKind
	Level FirmwareLevel // only meaningful for ModeFirmware
}

// Auto hands the fan to the firmware.
func Auto() Mode { return Mode{Kind: ModeAuto} }

// Firmware pins the fan to level l.
func Firmware(l FirmwareLevel) Mode { return Mode{Kind: ModeFirmware, Level: l} }

// FullSpeed runs the fan at its maximum outside firmware control.
func FullSpeed() Mode { return Mode{Kind: ModeFullSpeed} }

func (m Mode) String() string {
	switch m.Kind {
	case ModeAuto:
		return "Auto"
	case ModeFirmware:
		return m.Level.String()
	case ModeFullSpeed:
		return "Full speed"
	default:
		return fmt.Sprintf("Mode(%d)", m.Kind)
	}
}

// pwm1_enable codes.
const (
	enableFullSpeed uint32 = 0
	enableManual    uint32 = 1
	enableAuto      uint32 = 2
)

// Speed is the fan speed in RPM.
type Speed uint32

func (s Speed) String() string {
	return fmt.Sprintf("%d RPM", uint32(s))
}

// State is one reading of the fan.
type State struct {
	Mode  Mode
	Speed Speed
}
