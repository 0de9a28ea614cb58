// Package hwmon locates the thinkpad_acpi hardware-monitoring directory and
// performs the raw integer reads and string writes on its sysfs nodes.
package hwmon

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// ClassRoot is where the kernel lists every hwmon device.
	ClassRoot = "/sys/class/hwmon"

	// ThinkpadDriver is the content of the name file of the thinkpad_acpi
	// hwmon device.
	ThinkpadDriver = "thinkpad"
)

// Device is the located hwmon directory together with the filesystem it
// lives on. It is created once at startup and handed to every component
// that touches device files.
type Device struct {
	Fs  afero.Fs
	Dir string
}

// Locate scans root once and returns the single directory whose name file
// equals driver. Zero or several matches are errors; the caller is expected
// to treat them as fatal.
func Locate(fsys afero.Fs, root, driver string) (Device, error) {
	entries, err := afero.ReadDir(fsys, root)
	if err != nil {
		return Device{}, fmt.Errorf("scan %s: %w", root, err)
	}

	var matches []string
	for _, e := range entries {
		dir := filepath.Join(root, e.Name())
		name, err := afero.ReadFile(fsys, filepath.Join(dir, "name"))
		if err != nil {
			continue
		}
		if strings.TrimSuffix(string(name), "\n") == driver {
			matches = append(matches, dir)
		}
	}

	switch len(matches) {
	case 0:
		return Device{}, fmt.Errorf("%w: no %q under %s", ErrDeviceNotFound, driver, root)
	case 1:
		return Device{Fs: fsys, Dir: matches[0]}, nil
	default:
		return Device{}, &AmbiguousDeviceError{Driver: driver, Dirs: matches}
	}
}

// Path joins a node name onto the device directory.
func (d Device) Path(name string) string {
	return filepath.Join(d.Dir, name)
}

// TempInput is the millidegree input of the 1-based temperature channel i.
func (d Device) TempInput(i int) string {
	return d.Path(fmt.Sprintf("temp%d_input", i))
}

// FanInput holds the fan speed in RPM.
func (d Device) FanInput() string { return d.Path("fan1_input") }

// PWMEnable holds the fan mode code.
func (d Device) PWMEnable() string { return d.Path("pwm1_enable") }

// PWM holds the raw firmware level code.
func (d Device) PWM() string { return d.Path("pwm1") }

// Watchdog is the driver's fan_watchdog attribute.
func (d Device) Watchdog() string {
	return filepath.Join(d.Dir, "device", "driver", "fan_watchdog")
}
