package hwmon_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/luki/tpfancontrol/internal/hwmon"
	"github.com/luki/tpfancontrol/internal/hwmon/hwmontest"
)

func TestReadUint(t *testing.T) {
	tr := hwmontest.NewTree(t)
	tr.Set("temp1_input", "45000")
	tr.Set("fan1_input", "2650\nsecond line ignored")

	v, err := hwmon.ReadUint(tr.Device.Fs, tr.Device.TempInput(1))
	require.NoError(t, err)
	assert.Equal(t, uint32(45000), v)

	v, err = hwmon.ReadUint(tr.Device.Fs, tr.Device.FanInput())
	require.NoError(t, err)
	assert.Equal(t, uint32(2650), v)
}

func TestReadUintClassification(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(tr *hwmontest.Tree, path string)
		wantAbsnt bool
	}{
		{
			name: "enxio is absent",
			setup: func(tr *hwmontest.Tree, path string) {
				tr.Set("temp3_input", "0")
				tr.Fail(path, unix.ENXIO)
			},
			wantAbsnt: true,
		},
		{
			name: "other read error",
			setup: func(tr *hwmontest.Tree, path string) {
				tr.Set("temp3_input", "0")
				tr.Fail(path, unix.EIO)
			},
		},
		{
			name:  "missing file",
			setup: func(tr *hwmontest.Tree, path string) {},
		},
		{
			name:  "empty file",
			setup: func(tr *hwmontest.Tree, path string) { require.NoError(t, afero.WriteFile(tr.Fs, path, nil, 0o644)) },
		},
		{
			name:  "not a number",
			setup: func(tr *hwmontest.Tree, path string) { tr.Set("temp3_input", "hot") },
		},
		{
			name:  "negative",
			setup: func(tr *hwmontest.Tree, path string) { tr.Set("temp3_input", "-5") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := hwmontest.NewTree(t)
			path := tr.Device.TempInput(3)
			tt.setup(tr, path)

			_, err := hwmon.ReadUint(tr.Device.Fs, path)
			require.Error(t, err)

			var ioErr *hwmon.DeviceIOError
			if tt.wantAbsnt {
				assert.ErrorIs(t, err, hwmon.ErrChannelAbsent)
				assert.False(t, errors.As(err, &ioErr))
				return
			}
			assert.NotErrorIs(t, err, hwmon.ErrChannelAbsent)
			require.ErrorAs(t, err, &ioErr)
			assert.Equal(t, path, ioErr.Path)
		})
	}
}

func TestRequired(t *testing.T) {
	tr := hwmontest.NewTree(t)
	tr.Fail(tr.Device.FanInput(), unix.ENXIO)

	_, err := hwmon.ReadUint(tr.Device.Fs, tr.Device.FanInput())
	err = hwmon.Required(tr.Device.FanInput(), err)

	var ioErr *hwmon.DeviceIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, tr.Device.FanInput(), ioErr.Path)
	assert.Nil(t, hwmon.Required("x", nil))
}

func TestWriteValue(t *testing.T) {
	tr := hwmontest.NewTree(t)
	tr.Set("pwm1", "255")

	require.NoError(t, hwmon.WriteValue(tr.Device.Fs, tr.Device.PWM(), "36"))
	assert.Equal(t, "36", tr.Get("pwm1"))

	tr.Fail(tr.Device.PWM(), unix.EIO)
	err := hwmon.WriteValue(tr.Device.Fs, tr.Device.PWM(), "72")
	var ioErr *hwmon.DeviceIOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, unix.EIO)
}

func TestLocate(t *testing.T) {
	root := "/sys/class/hwmon"
	fsys := afero.NewMemMapFs()
	write := func(dir, name string) {
		require.NoError(t, afero.WriteFile(fsys, filepath.Join(root, dir, "name"), []byte(name), 0o644))
	}
	write("hwmon0", "acpitz\n")
	write("hwmon1", "coretemp\n")
	write("hwmon2", "thinkpad_acpi\n")
	require.NoError(t, fsys.MkdirAll(filepath.Join(root, "hwmon3"), 0o755))

	_, err := hwmon.Locate(fsys, root, hwmon.ThinkpadDriver)
	assert.ErrorIs(t, err, hwmon.ErrDeviceNotFound)

	write("hwmon5", "thinkpad\n")
	dev, err := hwmon.Locate(fsys, root, hwmon.ThinkpadDriver)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "hwmon5"), dev.Dir)
	assert.Equal(t, filepath.Join(root, "hwmon5", "device", "driver", "fan_watchdog"), dev.Watchdog())
	assert.Equal(t, filepath.Join(root, "hwmon5", "temp7_input"), dev.TempInput(7))

	write("hwmon6", "thinkpad")
	_, err = hwmon.Locate(fsys, root, hwmon.ThinkpadDriver)
	var ambiguous *hwmon.AmbiguousDeviceError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Dirs, 2)
}

func TestLocateMissingRoot(t *testing.T) {
	_, err := hwmon.Locate(afero.NewMemMapFs(), "/sys/class/hwmon", hwmon.ThinkpadDriver)
	require.Error(t, err)
	assert.NotErrorIs(t, err, hwmon.ErrDeviceNotFound)
}
