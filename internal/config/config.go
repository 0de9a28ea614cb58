// Package config loads /etc/tpfancontrol/config.toml (or a YAML file with
// the same schema) into sensor labels and a smart-mode threshold table.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/policy"
	"github.com/luki/tpfancontrol/internal/sensor"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "/etc/tpfancontrol/config.toml"

// MaxChannels is the number of temperature inputs thinkpad_acpi exposes.
const MaxChannels = 16

// File is the on-disk schema. Keys are strings in both tables: sensor
// indices starting at 1, and temperatures in degrees Celsius.
type File struct {
	// Sensors names temperature channels, e.g. "1" = "CPU".
	Sensors map[string]string `toml:"sensors" yaml:"sensors"`

	// FanLevel maps a temperature to the level used once the hottest
	// sensor is above it: "0" to "7" or "full-speed".
	FanLevel map[string]string `toml:"fan_level" yaml:"fan_level"`
}

// Config is the validated configuration.
type Config struct {
	// Sensors holds one label per channel, positionally; "" marks a channel
	// that is sampled but never displayed. Its length is the number of
	// channels read each tick.
	Sensors []string

	Thresholds policy.Table
}

// ConfigError reports a malformed entry.
type ConfigError struct {
	Field  string // "sensors" or "fan_level"
	Key    string
	Value  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config: %s %q = %q: %s", e.Field, e.Key, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load reads and validates the file at path. Files ending in .yaml or .yml
// are decoded as YAML, everything else as TOML.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	f, err := Decode(data, isYAML(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return f.Build()
}

// Decode parses data as TOML, or YAML when asYAML is set. Unknown keys are
// rejected in both formats.
func Decode(data []byte, asYAML bool) (File, error) {
	var f File
	if asYAML {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return File{}, &ConfigError{Field: "file", Reason: "invalid YAML", Err: err}
		}
		return f, nil
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, &ConfigError{Field: "file", Reason: "invalid TOML", Err: err}
	}
	return f, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Build validates f. Thresholds are sorted; two keys naming the same
// temperature ("60" and "60.0") are rejected.
func (f File) Build() (Config, error) {
	var cfg Config

	for key, label := range f.Sensors {
		index, err := strconv.Atoi(key)
		if err != nil || index < 1 || index > MaxChannels {
			return Config{}, &ConfigError{Field: "sensors", Key: key, Value: label, Reason: fmt.Sprintf("want a sensor index from 1 to %d", MaxChannels), Err: err}
		}
		if index > len(cfg.Sensors) {
			grown := make([]string, index)
			copy(grown, cfg.Sensors)
			cfg.Sensors = grown
		}
		cfg.Sensors[index-1] = label
	}

	seen := make(map[sensor.Temperature]string, len(f.FanLevel))
	entries := make([]policy.Threshold, 0, len(f.FanLevel))
	for _, key := range sortedKeys(f.FanLevel) {
		value := f.FanLevel[key]
		temp, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
			return Config{}, &ConfigError{Field: "fan_level", Key: key, Value: value, Reason: "want a temperature in degrees Celsius", Err: err}
		}
		level, err := fan.ParseLevel(value)
		if err != nil {
			return Config{}, &ConfigError{Field: "fan_level", Key: key, Value: value, Reason: "want 0-7 or full-speed", Err: err}
		}
		if other, dup := seen[sensor.Temperature(temp)]; dup {
			return Config{}, &ConfigError{Field: "fan_level", Key: key, Value: value, Reason: fmt.Sprintf("same temperature as %q", other)}
		}
		seen[sensor.Temperature(temp)] = key
		entries = append(entries, policy.Threshold{Above: sensor.Temperature(temp), Level: level})
	}

	table, err := policy.NewTable(entries)
	if err != nil {
		return Config{}, &ConfigError{Field: "fan_level", Reason: err.Error(), Err: err}
	}
	cfg.Thresholds = table
	return cfg, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Example is a starting configuration: the conventional thinkpad_acpi
// channel names and a conservative threshold table.
func Example() File {
	f := File{
		Sensors:  make(map[string]string),
		FanLevel: make(map[string]string),
	}
	for i, label := range sensor.DefaultLabels() {
		f.Sensors[strconv.Itoa(i+1)] = label
	}
	for _, e := range []policy.Threshold{
		{Above: 45, Level: fan.Step(0)},
		{Above: 50, Level: fan.Step(1)},
		{Above: 55, Level: fan.Step(2)},
		{Above: 60, Level: fan.Step(3)},
		{Above: 65, Level: fan.Step(5)},
		{Above: 70, Level: fan.Step(7)},
		{Above: 80, Level: fan.LevelFullSpeed},
	} {
		f.FanLevel[strconv.FormatFloat(float64(e.Above), 'f', -1, 64)] = e.Level.Key()
	}
	return f
}

// EncodeTOML renders f in the config file format.
func (f File) EncodeTOML() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
