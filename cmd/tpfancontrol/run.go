package main

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/luki/tpfancontrol/internal/control"
	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/monitor"
)

type monitorCommand struct{}

func (c *monitorCommand) Execute([]string) error {
	if err := opts.validate(); err != nil {
		return err
	}
	log, closeLog, err := opts.logger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl, err := newController(log)
	if err != nil {
		return err
	}

	selections := control.NewMailbox[control.Selection]()
	snapshots := control.NewMailbox[control.State]()
	prog := tea.NewProgram(monitor.New(monitor.Options{
		Snapshots:  snapshots.C(),
		Selections: selections,
		Interval:   opts.Interval,
		Selection:  control.DefaultSelection(),
		Scale:      opts.scale(),
		Visibility: opts.visibility(),
	}), tea.WithAltScreen())

	var g run.Group
	addControlLoop(&g, ctrl, selections.C(), snapshots)
	g.Add(func() error {
		_, err := prog.Run()
		return err
	}, func(error) {
		prog.Quit()
	})
	return runGroup(&g, log)
}

type daemonCommand struct {
	Level string `short:"l" long:"level" description:"Hold this level (0-7 or full-speed) instead of smart mode"`
	BIOS  bool   `long:"bios" description:"Leave the fan to the firmware and only keep the readings fresh"`
}

func (c *daemonCommand) Execute([]string) error {
	if err := opts.validate(); err != nil {
		return err
	}
	sel := control.DefaultSelection()
	switch {
	case c.BIOS && c.Level != "":
		return errors.New("--bios and --level are exclusive")
	case c.BIOS:
		sel.Mode = control.ModeBIOS
	case c.Level != "":
		level, err := fan.ParseLevel(c.Level)
		if err != nil {
			return err
		}
		sel = control.Selection{Mode: control.ModeManual, ManualLevel: level}
	}

	log, closeLog, err := opts.logger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl, err := newController(log)
	if err != nil {
		return err
	}
	if !ctrl.Snapshot().Writable {
		return errors.New("fan is not writable by this process")
	}
	log.WithField("mode", sel.Mode).Info("controlling fan")

	selections := control.NewMailbox[control.Selection]()
	selections.Put(sel)
	snapshots := control.NewMailbox[control.State]()

	var g run.Group
	addControlLoop(&g, ctrl, selections.C(), snapshots)
	return runGroup(&g, log)
}

func newController(log *logrus.Logger) (*control.Controller, error) {
	dev, cfg, err := opts.open(log)
	if err != nil {
		return nil, err
	}
	return control.New(dev, cfg, control.Options{
		Watchdog:    opts.Watchdog,
		RestoreAuto: !opts.KeepLevel,
		Logger:      log,
	})
}

func addControlLoop(g *run.Group, ctrl *control.Controller, selections <-chan control.Selection, snapshots *control.Mailbox[control.State]) {
	ctx, cancel := context.WithCancel(context.Background())
	g.Add(func() error {
		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()
		return ctrl.Run(ctx, ticker.C, selections, snapshots)
	}, func(error) {
		cancel()
	})
}

// runGroup adds the signal handler and runs g. Exiting on a signal is not
// an error.
func runGroup(g *run.Group, log logrus.FieldLogger) error {
	ctx, cancel := context.WithCancel(context.Background())
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	defer cancel()

	err := g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		log.WithField("signal", sigErr.Signal).Info("exiting")
		return nil
	}
	return err
}
