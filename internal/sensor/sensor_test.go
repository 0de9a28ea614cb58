package sensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/luki/tpfancontrol/internal/hwmon"
	"github.com/luki/tpfancontrol/internal/hwmon/hwmontest"
	"github.com/luki/tpfancontrol/internal/sensor"
)

func TestReadAllAbsentChannel(t *testing.T) {
	tr := hwmontest.NewTree(t)
	tr.SetTemps(45000, 51500, 0, 38000)
	tr.Fail(tr.Device.TempInput(3), unix.ENXIO)

	channels := make([]sensor.Channel, 4)
	require.NoError(t, sensor.NewProbe(tr.Device).ReadAll(channels))

	assert.Equal(t, []sensor.Channel{
		sensor.At(45),
		sensor.At(51.5),
		{},
		sensor.At(38),
	}, channels)
}

func TestReadAllTransitions(t *testing.T) {
	tr := hwmontest.NewTree(t)
	tr.SetTemps(40000, 50000)
	probe := sensor.NewProbe(tr.Device)
	channels := make([]sensor.Channel, 2)

	tr.Fail(tr.Device.TempInput(2), unix.ENXIO)
	require.NoError(t, probe.ReadAll(channels))
	assert.False(t, channels[1].Present)

	tr.Clear(tr.Device.TempInput(2))
	require.NoError(t, probe.ReadAll(channels))
	assert.Equal(t, sensor.At(50), channels[1])

	tr.Fail(tr.Device.TempInput(1), unix.ENXIO)
	require.NoError(t, probe.ReadAll(channels))
	assert.False(t, channels[0].Present)
	assert.True(t, channels[1].Present)
}

func TestReadAllIOErrorAborts(t *testing.T) {
	tr := hwmontest.NewTree(t)
	tr.SetTemps(40000, 50000, 60000)
	tr.Fail(tr.Device.TempInput(2), unix.EIO)

	channels := []sensor.Channel{{}, {}, sensor.At(20)}
	err := sensor.NewProbe(tr.Device).ReadAll(channels)

	var ioErr *hwmon.DeviceIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, tr.Device.TempInput(2), ioErr.Path)
	assert.Equal(t, sensor.At(40), channels[0])
	assert.Equal(t, sensor.At(20), channels[2], "slots after the failure are left alone")
}

func TestReadAllMissingNode(t *testing.T) {
	tr := hwmontest.NewTree(t)
	tr.SetTemps(40000)

	err := sensor.NewProbe(tr.Device).ReadAll(make([]sensor.Channel, 2))
	var ioErr *hwmon.DeviceIOError
	require.ErrorAs(t, err, &ioErr)
}

func TestMax(t *testing.T) {
	_, ok := sensor.Max(nil)
	assert.False(t, ok)

	_, ok = sensor.Max([]sensor.Channel{{}, {}})
	assert.False(t, ok)

	max, ok := sensor.Max([]sensor.Channel{sensor.At(41), {Temp: 99}, sensor.At(65), sensor.At(-3)})
	require.True(t, ok)
	assert.Equal(t, sensor.Temperature(65), max)
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		temp  sensor.Temperature
		scale sensor.Scale
		want  string
	}{
		{36.6, sensor.Fahrenheit, "98 °F"},
		{36.6, sensor.Celsius, "37 °C"},
		{36.4, sensor.Celsius, "36 °C"},
		{100, sensor.Fahrenheit, "212 °F"},
		{-0.3, sensor.Celsius, "0 °C"},
		{-17.9, sensor.Fahrenheit, "0 °F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.temp.Display(tt.scale), "%v in %v", tt.temp, tt.scale)
	}
	assert.InDelta(t, 97.88, sensor.Temperature(36.6).In(sensor.Fahrenheit), 1e-9)
}

func TestVisibility(t *testing.T) {
	present := sensor.At(40)
	absent := sensor.Channel{}

	assert.True(t, sensor.VisibleActive.Shown("CPU", present))
	assert.False(t, sensor.VisibleActive.Shown("CPU", absent))
	assert.True(t, sensor.VisibleAll.Shown("CPU", absent))
	assert.False(t, sensor.VisibleAll.Shown("", present))
	assert.Equal(t, sensor.VisibleAll, sensor.VisibleActive.Toggle())
	assert.Equal(t, sensor.Celsius, sensor.Fahrenheit.Toggle())
}

func TestDefaultLabel(t *testing.T) {
	assert.Equal(t, "CPU", sensor.DefaultLabel(1))
	assert.Equal(t, "GPU", sensor.DefaultLabel(4))
	assert.Equal(t, "", sensor.DefaultLabel(0))
	assert.Equal(t, "", sensor.DefaultLabel(16))
	assert.Len(t, sensor.DefaultLabels(), 11)
}
