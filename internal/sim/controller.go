// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/f-secure-foundry/armory-romcheck/internal/lifecycle"
	"github.com/f-secure-foundry/armory-romcheck/internal/scenario"
	"github.com/f-secure-foundry/armory-romcheck/internal/status"
	"github.com/f-secure-foundry/armory-romcheck/internal/testfw"
)

// DefaultTimeout is the default bound on the wait for the device idle status.
const DefaultTimeout = 10 * time.Second

var (
	// ErrFirmwareFailed is returned when the firmware test reports a failure.
	ErrFirmwareFailed = errors.New("firmware test failed")
	// ErrBootProceeded is returned when a production boot is not halted.
	ErrBootProceeded = errors.New("production boot proceeded with a ROM integrity mismatch")
)

// Firmware represents a firmware image executed on a device, returning
// whether its test passed.
type Firmware func(d *Device) bool

// NewFirmware returns a firmware image running the ROM integrity scenario.
func NewFirmware(conf *scenario.Config) Firmware {
	return func(d *Device) bool {
		h := &testfw.Harness{
			Config: testfw.Config{Name: conf.Name},
			Status: d.SetStatus,
		}

		s := &scenario.Scenario{
			Config:           conf,
			Lifecycle:        d.Lifecycle,
			ROM:              d.ROM,
			SetStatus:        d.SetStatus,
			WaitForInterrupt: d.WaitForInterrupt,
		}

		return h.Run(s.Run)
	}
}

// Report represents the outcome of a controller run.
type Report struct {
	// PhaseOne is set when the firmware observed the mismatch in a
	// non-production state and idled for reset
	PhaseOne bool
	// PhaseTwo is set when the production boot was halted
	PhaseTwo bool
}

// Controller represents the external test controller.
type Controller struct {
	Device *Device

	// FaultWord is the expected digest word to overwrite
	FaultWord int
	// FaultMask holds the bits flipped in FaultWord
	FaultMask uint32

	// Timeout bounds the wait for the device idle status
	Timeout time.Duration
}

// Run tampers with the expected digest, runs the firmware until it signals
// that it is idle, resets the device into production lifecycle state and
// verifies that the boot is then halted.
func (c *Controller) Run(ctx context.Context, fw Firmware) (r *Report, err error) {
	dev := c.Device
	r = &Report{}

	if err = dev.InjectFault(c.FaultWord, c.FaultMask); err != nil {
		return
	}

	if err = c.phaseOne(ctx, fw); err != nil {
		return r, xerrors.Errorf("phase one: %w", err)
	}

	r.PhaseOne = true
	glog.Info("phase one passed")

	if err = c.phaseTwo(); err != nil {
		return r, xerrors.Errorf("phase two: %w", err)
	}

	r.PhaseTwo = true
	glog.Info("phase two passed")

	return
}

func (c *Controller) phaseOne(ctx context.Context, fw Firmware) error {
	dev := c.Device
	watch := dev.Status.Watch()

	timeout := c.Timeout

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if !fw(dev) {
			return ErrFirmwareFailed
		}

		return nil
	})

	g.Go(func() error {
		err := c.awaitIdle(gctx, watch, timeout)

		if err != nil {
			// release a device which might be idle regardless
			dev.wake()
			return err
		}

		dev.Reset(lifecycle.Prod)

		return nil
	})

	return g.Wait()
}

func (c *Controller) awaitIdle(ctx context.Context, watch <-chan status.Code, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case code := <-watch:
			glog.Infof("device status: %v", code)

			switch code {
			case status.InWfi:
				return nil
			case status.Failed:
				return ErrFirmwareFailed
			}
		case <-timer.C:
			return xerrors.Errorf("timeout after %v waiting for idle status", timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Controller) phaseTwo() error {
	dev := c.Device

	if state := dev.LifecycleState(); !lifecycle.IsProduction(state) {
		return xerrors.Errorf("unexpected lifecycle state %v", state)
	}

	err := dev.BootROM()

	switch {
	case xerrors.Is(err, ErrBootHalted):
		glog.Infof("boot halted as expected: %v", err)
		return nil
	case err == nil:
		return ErrBootProceeded
	default:
		return err
	}
}
