package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luki/tpfancontrol/internal/config"
	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/hwmon"
	"github.com/luki/tpfancontrol/internal/policy"
	"github.com/luki/tpfancontrol/internal/sensor"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		watchdog time.Duration
		wantErr  bool
	}{
		{"defaults", time.Second, 5 * time.Second, false},
		{"zero interval", 0, 5 * time.Second, true},
		{"watchdog too short", time.Second, 500 * time.Millisecond, true},
		{"watchdog too long", time.Second, 2 * time.Minute, true},
		{"interval outlives watchdog", 10 * time.Second, 5 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := globalOptions{Interval: tt.interval, Watchdog: tt.watchdog}
			if tt.wantErr {
				assert.Error(t, o.validate())
			} else {
				assert.NoError(t, o.validate())
			}
		})
	}
}

func TestDaemonRejectsBIOSWithLevel(t *testing.T) {
	opts = globalOptions{Interval: time.Second, Watchdog: 5 * time.Second}
	err := (&daemonCommand{BIOS: true, Level: "3"}).Execute(nil)
	assert.EqualError(t, err, "--bios and --level are exclusive")

	err = (&daemonCommand{Level: "9"}).Execute(nil)
	assert.Error(t, err)
}

func TestInitConfigLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cmd := &initConfigCommand{Output: path}
	require.NoError(t, cmd.Execute(nil))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, sensor.DefaultLabels(), cfg.Sensors)

	assert.Error(t, cmd.Execute(nil), "existing file is kept without --force")
	cmd.Force = true
	assert.NoError(t, cmd.Execute(nil))
}

func TestPrintStatus(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printStatus(&buf, statusReport{
		Device:   "/sys/class/hwmon/hwmon4",
		Writable: false,
		Config: config.Config{
			Sensors: []string{"CPU", "GPU", ""},
			Thresholds: policy.MustTable(
				policy.Threshold{Above: 40, Level: fan.Step(2)},
				policy.Threshold{Above: 60, Level: fan.Step(5)},
			),
		},
		Channels: []sensor.Channel{sensor.At(65), {}, sensor.At(90)},
		Fan:      fan.State{Mode: fan.Firmware(5), Speed: 3400},
		FanErr:   nil,
		Scale:    sensor.Celsius,
		Vis:      sensor.VisibleAll,
	})

	out := buf.String()
	assert.Contains(t, out, "read-only")
	assert.Contains(t, out, "65 °C")
	assert.Regexp(t, `GPU\s+n/a`, out)
	assert.NotRegexp(t, `(?m)^  \S.*90 °C`, out, "unlabelled channel listed")
	assert.Contains(t, out, "Fan 5, 3400 RPM")
	assert.Contains(t, out, "Smart 5 (hottest 90 °C)")
}

func TestPrintStatusErrors(t *testing.T) {
	color.NoColor = true

	ioErr := &hwmon.DeviceIOError{Path: "/sys/class/hwmon/hwmon4/pwm1_enable", Err: &hwmon.UnrecognizedCodeError{Kind: "pwm mode", Code: 4}}
	var buf bytes.Buffer
	printStatus(&buf, statusReport{
		Config:   config.Config{Sensors: []string{"CPU"}},
		Channels: []sensor.Channel{{}},
		TempErr:  errors.New("temp1_input: input/output error"),
		FanErr:   ioErr,
	})

	out := buf.String()
	assert.Contains(t, out, "unrecognized pwm mode 4")
	assert.Contains(t, out, "input/output error")
	assert.False(t, strings.Contains(out, "Smart"), "no decision without readings")
}
