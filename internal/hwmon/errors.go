package hwmon

import (
	"errors"
	"fmt"
	"strings"
)

// ErrChannelAbsent is returned when the kernel reports that a sensor
// channel does not exist on this machine (ENXIO on read). It is a steady
// state, not a failure.
var ErrChannelAbsent = errors.New("sensor channel absent")

// ErrDeviceNotFound is returned by Locate when no hwmon directory carries
// the requested driver name.
var ErrDeviceNotFound = errors.New("hwmon device not found")

// DeviceIOError is an unexpected I/O or protocol failure on one device file.
type DeviceIOError struct {
	Path string
	Err  error
}

func (e *DeviceIOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DeviceIOError) Unwrap() error { return e.Err }

// UnrecognizedCodeError reports a value the device returned that is outside
// the known set. It always reaches callers wrapped in a DeviceIOError.
type UnrecognizedCodeError struct {
	Kind string // "pwm mode" or "firmware level"
	Code uint32
}

func (e *UnrecognizedCodeError) Error() string {
	return fmt.Sprintf("unrecognized %s %d", e.Kind, e.Code)
}

// AmbiguousDeviceError is returned by Locate when more than one hwmon
// directory carries the requested driver name.
type AmbiguousDeviceError struct {
	Driver string
	Dirs   []string
}

func (e *AmbiguousDeviceError) Error() string {
	return fmt.Sprintf("%d hwmon devices named %q: %s", len(e.Dirs), e.Driver, strings.Join(e.Dirs, ", "))
}
