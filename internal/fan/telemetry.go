package fan

import (
	"github.com/luki/tpfancontrol/internal/hwmon"
)

// Reader reads the fan mode and speed.
type Reader struct {
	dev hwmon.Device
}

// NewReader returns a reader for dev.
func NewReader(dev hwmon.Device) *Reader {
	return &Reader{dev: dev}
}

// Read returns the current mode and speed. An unknown pwm1_enable or pwm1
// code is a *hwmon.DeviceIOError wrapping *hwmon.UnrecognizedCodeError.
func (r *Reader) Read() (State, error) {
	mode, err := r.mode()
	if err != nil {
		return State{}, err
	}

	rpm, err := r.read(r.dev.FanInput())
	if err != nil {
		return State{}, err
	}

	return State{Mode: mode, Speed: Speed(rpm)}, nil
}

func (r *Reader) mode() (Mode, error) {
	path := r.dev.PWMEnable()
	code, err := r.read(path)
	if err != nil {
		return Mode{}, err
	}

	switch code {
	case enableAuto:
		return Auto(), nil
	case enableManual:
		pwmPath := r.dev.PWM()
		raw, err := r.read(pwmPath)
		if err != nil {
			return Mode{}, err
		}
		level, ok := FirmwareLevelFromCode(raw)
		if !ok {
			return Mode{}, &hwmon.DeviceIOError{Path: pwmPath, Err: &hwmon.UnrecognizedCodeError{Kind: "firmware level", Code: raw}}
		}
		return Firmware(level), nil
	case enableFullSpeed:
		return FullSpeed(), nil
	default:
		return Mode{}, &hwmon.DeviceIOError{Path: path, Err: &hwmon.UnrecognizedCodeError{Kind: "pwm mode", Code: code}}
	}
}

func (r *Reader) read(path string) (uint32, error) {
	v, err := hwmon.ReadUint(r.dev.Fs, path)
	return v, hwmon.Required(path, err)
}
