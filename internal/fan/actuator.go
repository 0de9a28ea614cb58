package fan

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/luki/tpfancontrol/internal/hwmon"
)

// Actuator is the only writer of the fan's device files.
type Actuator struct {
	dev hwmon.Device
}

// NewActuator returns an actuator for dev.
func NewActuator(dev hwmon.Device) *Actuator {
	return &Actuator{dev: dev}
}

// ProbeWritable arms the driver's fan watchdog with twice interval (whole
// seconds) and reports whether that worked. Permission denied means the fan
// is read-only for this process and is not an error.
func (a *Actuator) ProbeWritable(interval time.Duration) (bool, error) {
	secs := uint64(interval/time.Second) * 2
	err := hwmon.WriteValue(a.dev.Fs, a.dev.Watchdog(), strconv.FormatUint(secs, 10))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrPermission):
		return false, nil
	default:
		return false, err
	}
}

// Write puts the fan into m. Firmware levels take two writes, pwm1_enable
// then pwm1; if the second fails the device is left in manual mode with
// its previous level. Nothing is read back.
func (a *Actuator) Write(m Mode) error {
	switch m.Kind {
	case ModeAuto:
		return a.enable(enableAuto)
	case ModeFirmware:
		if !m.Level.Valid() {
			return fmt.Errorf("firmware level %d out of range", m.Level)
		}
		if err := a.enable(enableManual); err != nil {
			return err
		}
		return hwmon.WriteValue(a.dev.Fs, a.dev.PWM(), strconv.FormatUint(uint64(m.Level.Code()), 10))
	case ModeFullSpeed:
		return a.enable(enableFullSpeed)
	default:
		return fmt.Errorf("unknown fan mode %d", m.Kind)
	}
}

func (a *Actuator) enable(code uint32) error {
	return hwmon.WriteValue(a.dev.Fs, a.dev.PWMEnable(), strconv.FormatUint(uint64(code), 10))
}
