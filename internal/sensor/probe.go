package sensor

import (
	"errors"

	"github.com/luki/tpfancontrol/internal/hwmon"
)

// Probe reads the temperature channels of one hwmon device.
type Probe struct {
	dev hwmon.Device
}

// NewProbe returns a probe for dev.
func NewProbe(dev hwmon.Device) *Probe {
	return &Probe{dev: dev}
}

// ReadAll refreshes every slot from temp{i}_input, i being the 1-based
// slot index. An absent channel clears its slot and the scan continues; any
// other failure stops the scan and is returned as a *hwmon.DeviceIOError,
// leaving later slots untouched.
func (p *Probe) ReadAll(channels []Channel) error {
	for i := range channels {
		milli, err := hwmon.ReadUint(p.dev.Fs, p.dev.TempInput(i+1))
		switch {
		case err == nil:
			channels[i] = At(Temperature(float64(milli) / 1000))
		case errors.Is(err, hwmon.ErrChannelAbsent):
			channels[i] = Channel{}
		default:
			return err
		}
	}
	return nil
}
