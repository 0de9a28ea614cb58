// Command tpfancontrol watches the temperatures of a ThinkPad and drives its
// fan through the thinkpad_acpi hwmon interface.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/luki/tpfancontrol/internal/config"
	"github.com/luki/tpfancontrol/internal/hwmon"
	"github.com/luki/tpfancontrol/internal/sensor"
)

type globalOptions struct {
	Config     string        `short:"c" long:"config" description:"Configuration file, TOML or YAML by extension" default:"/etc/tpfancontrol/config.toml"`
	HwmonRoot  string        `long:"hwmon-root" description:"Directory holding the hwmon devices" default:"/sys/class/hwmon"`
	Driver     string        `long:"driver" description:"hwmon name of the fan device" default:"thinkpad"`
	Interval   time.Duration `short:"i" long:"interval" description:"Control tick" default:"1s"`
	Watchdog   time.Duration `long:"watchdog" description:"Fan watchdog interval; the driver reverts to automatic control after twice this without a write" default:"5s"`
	LogFile    string        `long:"log-file" description:"Append logs to this file"`
	LogLevel   string        `long:"log-level" description:"Log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	KeepLevel  bool          `long:"keep-level" description:"Leave the fan at its last level on exit instead of returning it to automatic control"`
	Fahrenheit bool          `short:"f" long:"fahrenheit" description:"Show temperatures in degrees Fahrenheit"`
	All        bool          `short:"a" long:"all" description:"Also list labelled sensors that are absent"`
}

var opts globalOptions

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = true
	mustAdd(parser, "monitor", "Interactive fan control (default)", "Runs the control loop with a terminal UI.", &monitorCommand{})
	mustAdd(parser, "daemon", "Headless fan control", "Runs the control loop in smart mode, or at a fixed level, logging to stderr.", &daemonCommand{})
	mustAdd(parser, "status", "Print temperatures and fan state once", "Reads every sensor and the fan once without writing anything.", &statusCommand{})
	mustAdd(parser, "init-config", "Print an example configuration", "Writes an example TOML configuration with the standard thinkpad_acpi sensor names.", &initConfigCommand{})

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if parser.Active == nil {
		if err := (&monitorCommand{}).Execute(nil); err != nil {
			fmt.Fprintln(os.Stderr, "tpfancontrol:", err)
			os.Exit(1)
		}
	}
}

func mustAdd(p *flags.Parser, name, short, long string, data any) {
	if _, err := p.AddCommand(name, short, long, data); err != nil {
		panic(err)
	}
}

// logger builds the process logger. Without --log-file it writes to
// fallback, which is io.Discard while the terminal UI runs.
func (o *globalOptions) logger(fallback io.Writer) (*logrus.Logger, func(), error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if o.LogFile == "" {
		log.SetOutput(fallback)
		return log, func() {}, nil
	}
	f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, func() { f.Close() }, nil
}

func (o *globalOptions) validate() error {
	if o.Interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", o.Interval)
	}
	if o.Watchdog < time.Second || o.Watchdog > time.Minute {
		return fmt.Errorf("--watchdog must be between 1s and 1m, got %s", o.Watchdog)
	}
	if o.Interval >= 2*o.Watchdog.Truncate(time.Second) {
		return fmt.Errorf("--interval %s lets the fan watchdog expire between ticks", o.Interval)
	}
	return nil
}

func (o *globalOptions) scale() sensor.Scale {
	if o.Fahrenheit {
		return sensor.Fahrenheit
	}
	return sensor.Celsius
}

func (o *globalOptions) visibility() sensor.Visibility {
	if o.All {
		return sensor.VisibleAll
	}
	return sensor.VisibleActive
}

// open loads the configuration and locates the fan device.
func (o *globalOptions) open(log logrus.FieldLogger) (hwmon.Device, config.Config, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return hwmon.Device{}, config.Config{}, err
	}
	log.WithFields(logrus.Fields{
		"path":       o.Config,
		"sensors":    len(cfg.Sensors),
		"thresholds": cfg.Thresholds.Len(),
	}).Debug("configuration loaded")

	dev, err := hwmon.Locate(afero.NewOsFs(), o.HwmonRoot, o.Driver)
	if err != nil {
		return hwmon.Device{}, config.Config{}, err
	}
	log.WithField("path", dev.Dir).Info("fan device located")
	return dev, cfg, nil
}
