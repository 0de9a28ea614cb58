package control

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/luki/tpfancontrol/internal/config"
	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/hwmon"
	"github.com/luki/tpfancontrol/internal/sensor"
)

// Options tune a Controller.
type Options struct {
	// Watchdog is the interval passed to the writability probe.
	Watchdog time.Duration

	// RestoreAuto makes Release hand the fan back to the firmware.
	RestoreAuto bool

	Logger logrus.FieldLogger
}

// Controller runs probe, policy and actuation for one device. It is not
// safe for concurrent use; Run is the intended owner.
type Controller struct {
	probe    *sensor.Probe
	reader   *fan.Reader
	actuator *fan.Actuator
	log      logrus.FieldLogger
	opts     Options

	state State
}

// New probes whether the fan is writable and takes a first reading. A
// probe failure other than permission denied is returned.
func New(dev hwmon.Device, cfg config.Config, opts Options) (*Controller, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("device", dev.Dir)

	c := &Controller{
		probe:    sensor.NewProbe(dev),
		reader:   fan.NewReader(dev),
		actuator: fan.NewActuator(dev),
		log:      log,
		opts:     opts,
		state: State{
			Config:    cfg,
			Channels:  make([]sensor.Channel, len(cfg.Sensors)),
			Selection: DefaultSelection(),
		},
	}

	writable, err := c.actuator.ProbeWritable(opts.Watchdog)
	if err != nil {
		return nil, fmt.Errorf("probe fan watchdog: %w", err)
	}
	c.state.Writable = writable
	if writable {
		log.WithField("watchdog", opts.Watchdog).Info("fan is writable")
	} else {
		log.Warn("fan is read-only, controls disabled")
	}

	c.Refresh(time.Now())
	return c, nil
}

// Refresh re-reads every temperature channel and the fan.
func (c *Controller) Refresh(now time.Time) {
	tempErr := c.probe.ReadAll(c.state.Channels)
	c.report("temperature", c.state.TempErr, tempErr)
	c.state.TempErr = tempErr

	st, fanErr := c.reader.Read()
	c.report("fan telemetry", c.state.FanErr, fanErr)
	c.state.FanErr = fanErr
	if fanErr == nil {
		c.state.Fan = st
	}

	c.state.Updated = now
}

// Desired is the mode sel asks for given the current readings.
func (c *Controller) Desired(sel Selection) fan.Mode {
	return sel.Desired(c.state.Config.Thresholds, c.state.Channels, c.state.TempErr)
}

// Tick runs one control step: refresh, decide, write. Nothing is written
// when the fan is read-only.
func (c *Controller) Tick(now time.Time, sel Selection) {
	c.Refresh(now)
	c.state.Selection = sel
	if !c.state.Writable {
		return
	}
	c.actuate(c.Desired(sel))
}

func (c *Controller) actuate(m fan.Mode) {
	err := c.actuator.Write(m)
	c.report("fan write", c.state.ApplyErr, err)
	c.state.ApplyErr = err
	if err != nil {
		return
	}
	if !c.state.Actuated || c.state.Applied != m {
		c.log.WithFields(logrus.Fields{
			"from": c.state.Applied,
			"to":   m,
		}).Info("fan mode changed")
	}
	c.state.Applied = m
	c.state.Actuated = true
}

// report logs err when it differs from the previous outcome of the same
// operation, so a persistent fault is logged once.
func (c *Controller) report(op string, prev, err error) {
	switch {
	case err != nil && (prev == nil || prev.Error() != err.Error()):
		c.log.WithError(err).Warnf("%s failed", op)
	case err == nil && prev != nil:
		c.log.Infof("%s recovered", op)
	}
}

// Release writes Auto when the fan is writable and RestoreAuto is set.
func (c *Controller) Release() error {
	if !c.state.Writable || !c.opts.RestoreAuto {
		return nil
	}
	if err := c.actuator.Write(fan.Auto()); err != nil {
		c.log.WithError(err).Error("restoring automatic fan control failed")
		return fmt.Errorf("restore auto: %w", err)
	}
	c.log.Info("fan returned to automatic control")
	return nil
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	return c.state.Clone()
}

// Run drives the controller until ctx is done, ticking on every value of
// ticks. The newest Selection received before a tick is used for it. A
// snapshot is published once at start and after each tick. On exit Run
// calls Release.
func (c *Controller) Run(ctx context.Context, ticks <-chan time.Time, selections <-chan Selection, snapshots *Mailbox[State]) error {
	sel := c.state.Selection
	snapshots.Put(c.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return c.Release()
		case s := <-selections:
			sel = s
		case now := <-ticks:
			c.Tick(now, sel)
			snapshots.Put(c.Snapshot())
		}
	}
}
