// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sim emulates a device with a ROM integrity checker, along with the
// external test controller which tampers with it and resets it, so that the
// ROM integrity scenario can run on a host.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/crypto/sha3"
	"golang.org/x/xerrors"

	"github.com/f-secure-foundry/armory-romcheck/internal/lifecycle"
	"github.com/f-secure-foundry/armory-romcheck/internal/romctrl"
	"github.com/f-secure-foundry/armory-romcheck/internal/status"
)

// cSHAKE256 customization string used by the ROM integrity checker
const romCtrlCustomization = "ROM_CTRL"

// ErrBootHalted is returned when the boot ROM refuses to proceed.
var ErrBootHalted = errors.New("boot halted on ROM integrity failure")

// ComputeDigest returns the ROM integrity digest of the passed image, words
// must be positive.
func ComputeDigest(rom []byte, words int) romctrl.Digest {
	if words <= 0 {
		return nil
	}

	h := sha3.NewCShake256(nil, []byte(romCtrlCustomization))
	h.Write(rom)

	buf := make([]byte, words*4)
	h.Read(buf)

	d, _ := romctrl.FromBytes(buf, words)

	return d
}

// Device represents an emulated device.
type Device struct {
	sync.Mutex

	// Status is the test status register
	Status status.Register

	state    lifecycle.State
	rom      []byte
	words    int
	expected romctrl.Digest

	// replaced on every reset, discarding pending interrupts
	irq chan struct{}
}

type lifecycleController struct {
	d *Device
}

func (c *lifecycleController) State() (lifecycle.State, error) {
	c.d.Lock()
	defer c.d.Unlock()

	return c.d.state, nil
}

type romController struct {
	d *Device
}

func (c *romController) Digest() (romctrl.Digest, error) {
	c.d.Lock()
	defer c.d.Unlock()

	return ComputeDigest(c.d.rom, c.d.words), nil
}

func (c *romController) ExpectedDigest() (romctrl.Digest, error) {
	c.d.Lock()
	defer c.d.Unlock()

	if c.d.expected == nil {
		return nil, errors.New("expected digest not provisioned")
	}

	return append(romctrl.Digest{}, c.d.expected...), nil
}

// NewDevice returns a device in the passed lifecycle state holding the
// passed ROM image, its expected digest is provisioned to match.
func NewDevice(state lifecycle.State, rom []byte, words int) (*Device, error) {
	if words <= 0 {
		return nil, fmt.Errorf("invalid digest length %d", words)
	}

	d := &Device{
		state: state,
		rom:   append([]byte{}, rom...),
		words: words,
		irq:   make(chan struct{}, 1),
	}

	d.Provision()

	return d, nil
}

// Provision stores the ROM digest as the expected one.
func (d *Device) Provision() {
	d.Lock()
	defer d.Unlock()

	d.expected = ComputeDigest(d.rom, d.words)
}

// InjectFault overwrites one word of the expected digest through backdoor
// access, by flipping the bits set in mask.
func (d *Device) InjectFault(word int, mask uint32) error {
	d.Lock()
	defer d.Unlock()

	if word < 0 || word >= len(d.expected) {
		return fmt.Errorf("invalid digest word %d", word)
	}

	if mask == 0 {
		return errors.New("empty fault mask")
	}

	glog.Infof("overwriting expected digest word %d (%#08x ^ %#08x)", word, d.expected[word], mask)
	d.expected[word] ^= mask

	return nil
}

// LifecycleState returns the current lifecycle state.
func (d *Device) LifecycleState() lifecycle.State {
	d.Lock()
	defer d.Unlock()

	return d.state
}

// Lifecycle initializes the lifecycle controller.
func (d *Device) Lifecycle() (lifecycle.Controller, error) {
	return &lifecycleController{d: d}, nil
}

// ROM initializes the ROM integrity checker.
func (d *Device) ROM() (romctrl.Checker, error) {
	return &romController{d: d}, nil
}

// SetStatus writes the test status register.
func (d *Device) SetStatus(c status.Code) {
	d.Status.Set(c)
}

// WaitForInterrupt idles the device until an interrupt or reset, an
// interrupt raised while not idle is kept pending until the next reset.
func (d *Device) WaitForInterrupt() {
	d.Lock()
	irq := d.irq
	d.Unlock()

	<-irq
}

// Interrupt raises an interrupt, waking up an idle device.
func (d *Device) Interrupt() {
	d.Lock()
	defer d.Unlock()

	select {
	case d.irq <- struct{}{}:
	default:
	}
}

// wake releases any idle wait and discards pending interrupts.
func (d *Device) wake() {
	d.Lock()
	defer d.Unlock()

	close(d.irq)
	d.irq = make(chan struct{}, 1)
}

// Reset resets the device into the passed lifecycle state, the expected
// digest is retained.
func (d *Device) Reset(state lifecycle.State) {
	d.Lock()
	glog.Infof("resetting device (%v -> %v)", d.state, state)
	d.state = state
	d.Unlock()

	d.Status.Set(status.Unknown)
	d.wake()
}

// BootROM emulates the boot ROM integrity enforcement, the boot is halted
// when the ROM digest does not match the expected one in a production
// lifecycle state.
func (d *Device) BootROM() (err error) {
	d.SetStatus(status.InBootROM)

	d.Lock()
	state := d.state
	computed := ComputeDigest(d.rom, d.words)
	expected := append(romctrl.Digest{}, d.expected...)
	d.Unlock()

	cmp, err := romctrl.Compare(expected, computed)

	if err != nil {
		return
	}

	if cmp.Result == romctrl.Equal {
		glog.Info("ROM integrity check passed")
		return
	}

	if !lifecycle.IsProduction(state) {
		glog.Infof("ROM integrity mismatch at words %v tolerated in %v state", cmp.Mismatched, state)
		return
	}

	d.SetStatus(status.InBootROMHalt)

	return xerrors.Errorf("words %v: %w", cmp.Mismatched, ErrBootHalted)
}
