package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/policy"
	"github.com/luki/tpfancontrol/internal/sensor"
)

const testTOML = `
[sensors]
1 = "CPU"
4 = "GPU"
"5" = "Battery"

[fan_level]
80 = "full-speed"
45 = "0"
"60.5" = "5"
55 = "2"
`

const testYAML = `
sensors:
  1: CPU
  4: GPU
  5: Battery
fan_level:
  80: full-speed
  45: "0"
  60.5: "5"
  55: 2
`

var wantThresholds = []policy.Threshold{
	{Above: 45, Level: fan.Step(0)},
	{Above: 55, Level: fan.Step(2)},
	{Above: 60.5, Level: fan.Step(5)},
	{Above: 80, Level: fan.LevelFullSpeed},
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"config.toml": testTOML,
		"config.yaml": testYAML,
		"config.yml":  testYAML,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"CPU", "", "", "GPU", "Battery"}, cfg.Sensors)
			assert.Equal(t, wantThresholds, cfg.Thresholds.Entries())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name      string
		file      File
		wantField string
		wantKey   string
	}{
		{"zero index", File{Sensors: map[string]string{"0": "CPU"}}, "sensors", "0"},
		{"index too large", File{Sensors: map[string]string{"17": "CPU"}}, "sensors", "17"},
		{"index not a number", File{Sensors: map[string]string{"cpu": "CPU"}}, "sensors", "cpu"},
		{"temperature not a number", File{FanLevel: map[string]string{"hot": "7"}}, "fan_level", "hot"},
		{"temperature NaN", File{FanLevel: map[string]string{"NaN": "7"}}, "fan_level", "NaN"},
		{"selector out of range", File{FanLevel: map[string]string{"50": "8"}}, "fan_level", "50"},
		{"selector misspelled", File{FanLevel: map[string]string{"50": "fullspeed"}}, "fan_level", "50"},
		{"duplicate bound", File{FanLevel: map[string]string{"60": "3", "60.0": "4"}}, "fan_level", "60.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.file.Build()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	cfg, err := File{}.Build()
	require.NoError(t, err)
	assert.Empty(t, cfg.Sensors)
	assert.Zero(t, cfg.Thresholds.Len())
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte("[sensors\n1 = "), false)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)

	_, err = Decode([]byte("[fan_levels]\n50 = \"1\"\n"), false)
	require.ErrorAs(t, err, &cfgErr)

	_, err = Decode([]byte("sensors: [1, 2"), true)
	require.ErrorAs(t, err, &cfgErr)

	_, err = Decode([]byte("fan_levels:\n  50: \"1\"\n"), true)
	require.ErrorAs(t, err, &cfgErr)

	f, err := Decode(nil, true)
	require.NoError(t, err)
	assert.Empty(t, f.Sensors)
}

func TestExampleLoads(t *testing.T) {
	data, err := Example().EncodeTOML()
	require.NoError(t, err)

	f, err := Decode(data, false)
	require.NoError(t, err)
	cfg, err := f.Build()
	require.NoError(t, err)

	assert.Equal(t, sensor.DefaultLabels(), cfg.Sensors)
	require.Equal(t, 7, cfg.Thresholds.Len())
	assert.Equal(t, fan.LevelFullSpeed, cfg.Thresholds.Entries()[6].Level)
}
