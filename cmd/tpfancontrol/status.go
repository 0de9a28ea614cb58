package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"github.com/luki/tpfancontrol/internal/chart"
	"github.com/luki/tpfancontrol/internal/config"
	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/hwmon"
	"github.com/luki/tpfancontrol/internal/policy"
	"github.com/luki/tpfancontrol/internal/sensor"
)

type statusCommand struct{}

func (c *statusCommand) Execute([]string) error {
	cfg, err := config.Load(opts.Config)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Example().Build()
	}
	if err != nil {
		return err
	}

	dev, err := hwmon.Locate(afero.NewOsFs(), opts.HwmonRoot, opts.Driver)
	if err != nil {
		return err
	}

	channels := make([]sensor.Channel, len(cfg.Sensors))
	tempErr := sensor.NewProbe(dev).ReadAll(channels)
	st, fanErr := fan.NewReader(dev).Read()

	printStatus(color.Output, statusReport{
		Device:   dev.Dir,
		Writable: unix.Access(dev.Watchdog(), unix.W_OK) == nil,
		Config:   cfg,
		Channels: channels,
		TempErr:  tempErr,
		Fan:      st,
		FanErr:   fanErr,
		Scale:    opts.scale(),
		Vis:      opts.visibility(),
	})
	return errors.Join(tempErr, fanErr)
}

type statusReport struct {
	Device   string
	Writable bool
	Config   config.Config
	Channels []sensor.Channel
	TempErr  error
	Fan      fan.State
	FanErr   error
	Scale    sensor.Scale
	Vis      sensor.Visibility
}

var (
	headingC = color.New(color.FgCyan, color.Bold)
	labelC   = color.New(color.FgWhite)
	dimC     = color.New(color.FgHiBlack)
	okC      = color.New(color.FgGreen)
	warnC    = color.New(color.FgYellow)
	critC    = color.New(color.FgRed, color.Bold)
)

func printStatus(w io.Writer, r statusReport) {
	access := okC.Sprint("writable")
	if !r.Writable {
		access = warnC.Sprint("read-only")
	}
	fmt.Fprintf(w, "%s %s (%s)\n", headingC.Sprint("Device"), r.Device, access)

	bands := chart.BandsFor(r.Config.Thresholds)
	for i, ch := range r.Channels {
		label := r.Config.Sensors[i]
		if !r.Vis.Shown(label, ch) {
			continue
		}
		value := dimC.Sprint("n/a")
		if ch.Present {
			c := okC
			switch {
			case float64(ch.Temp) >= bands.Crit:
				c = critC
			case float64(ch.Temp) >= bands.High:
				c = warnC
			}
			value = c.Sprint(ch.Temp.Display(r.Scale))
		}
		fmt.Fprintf(w, "  %-22s %s\n", labelC.Sprint(label), value)
	}
	if r.TempErr != nil {
		fmt.Fprintf(w, "  %s\n", critC.Sprint(r.TempErr))
	}

	if r.FanErr != nil {
		fmt.Fprintf(w, "%s %s\n", headingC.Sprint("Fan"), critC.Sprint(r.FanErr))
	} else {
		fmt.Fprintf(w, "%s %s, %s\n", headingC.Sprint("Fan"), r.Fan.Mode, r.Fan.Speed)
	}

	if r.TempErr == nil {
		want := policy.Select(r.Config.Thresholds, r.Channels)
		line := fmt.Sprintf("%s %s", headingC.Sprint("Smart"), want)
		if hottest, ok := sensor.Max(r.Channels); ok {
			line += dimC.Sprintf(" (hottest %s)", hottest.Display(r.Scale))
		}
		fmt.Fprintln(w, line)
	}
}

type initConfigCommand struct {
	Output string `short:"o" long:"output" description:"Write to this file instead of stdout"`
	Force  bool   `long:"force" description:"Overwrite an existing output file"`
}

const configHeader = `# tpfancontrol configuration
#
# [sensors] names the thinkpad_acpi temperature inputs by 1-based index.
# Unnamed inputs are read but not shown.
#
# [fan_level] maps a temperature in degrees Celsius to the fan level used
# once the hottest sensor is above it: "0" to "7" or "full-speed". Below
# the lowest entry the fan runs at full speed.

`

func (c *initConfigCommand) Execute([]string) error {
	data, err := config.Example().EncodeTOML()
	if err != nil {
		return err
	}
	data = append([]byte(configHeader), data...)

	if c.Output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !c.Force {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(c.Output, flag, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
