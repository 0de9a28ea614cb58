package hwmon

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

var errEmpty = errors.New("empty file")

// ReadUint reads the first line of a sysfs node and parses it as an
// unsigned integer.
//
// A read failing with ENXIO yields an error matching ErrChannelAbsent.
// Every other failure, including empty content and parse errors, is a
// *DeviceIOError.
func ReadUint(fsys afero.Fs, path string) (uint32, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, classify(path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, classify(path, err)
		}
		return 0, &DeviceIOError{Path: path, Err: errEmpty}
	}

	v, err := strconv.ParseUint(strings.TrimSpace(sc.Text()), 10, 32)
	if err != nil {
		return 0, &DeviceIOError{Path: path, Err: err}
	}
	return uint32(v), nil
}

// Required converts an ErrChannelAbsent outcome into a *DeviceIOError, for
// nodes that must always exist (fan and pwm files).
func Required(path string, err error) error {
	if errors.Is(err, ErrChannelAbsent) {
		return &DeviceIOError{Path: path, Err: unix.ENXIO}
	}
	return err
}

// WriteValue opens a sysfs node for writing and stores value in it.
func WriteValue(fsys afero.Fs, path, value string) error {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return &DeviceIOError{Path: path, Err: err}
	}
	if _, err := f.WriteString(value); err != nil {
		f.Close()
		return &DeviceIOError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &DeviceIOError{Path: path, Err: err}
	}
	return nil
}

func classify(path string, err error) error {
	if errors.Is(err, unix.ENXIO) {
		return fmt.Errorf("%s: %w", path, ErrChannelAbsent)
	}
	return &DeviceIOError{Path: path, Err: err}
}
