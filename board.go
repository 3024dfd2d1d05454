// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm
// +build tamago,arm

package main

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/f-secure-foundry/crucible/otp"

	"github.com/f-secure-foundry/tamago/board/f-secure/usbarmory/mark-two"
	"github.com/f-secure-foundry/tamago/soc/imx6"
	"github.com/f-secure-foundry/tamago/soc/imx6/dcp"

	"github.com/f-secure-foundry/armory-romcheck/assets"
	"github.com/f-secure-foundry/armory-romcheck/internal/lifecycle"
	"github.com/f-secure-foundry/armory-romcheck/internal/romctrl"
	"github.com/f-secure-foundry/armory-romcheck/internal/status"
)

// Boot ROM region covered by the integrity digest (IMX6ULRM Table 2-1, p173),
// the exception vectors page is excluded.
const (
	romStart = 0x00000100
	romSize  = 0x00017f00
)

// SNVS_LP general purpose register, retained across warm resets and read
// by the test controller over JTAG.
const SNVS_LPGPR = 0x020cc068

// SEC_CONFIG fuse values (IMX6ULRM Table 8-2, p245)
const (
	secConfigFAB  = 0b00
	secConfigOpen = 0b01
)

type fuseLifecycle struct{}

// State derives the lifecycle state from the SEC_CONFIG fuse, a Secure Booted
// unit is always in production.
func (fuseLifecycle) State() (lifecycle.State, error) {
	if imx6.SNVS() {
		return lifecycle.Prod, nil
	}

	res, err := otp.ReadOCOTP(0, 6, 0, 2)

	if err != nil {
		return lifecycle.Invalid, err
	}

	if len(res) != 1 {
		return lifecycle.Invalid, fmt.Errorf("invalid SEC_CONFIG readout %x", res)
	}

	switch res[0] {
	case secConfigFAB:
		return lifecycle.Raw, nil
	case secConfigOpen:
		return lifecycle.Dev, nil
	default:
		// closed configuration
		return lifecycle.Prod, nil
	}
}

func openLifecycle() (lifecycle.Controller, error) {
	if !imx6.Native {
		return nil, errors.New("lifecycle fuses unavailable under emulation")
	}

	return fuseLifecycle{}, nil
}

type dcpROM struct {
	words int
}

// Digest computes the boot ROM SHA-256 digest with the DCP hashing engine.
func (r *dcpROM) Digest() (romctrl.Digest, error) {
	rom := (*[romSize]byte)(unsafe.Pointer(uintptr(romStart)))

	sum, err := dcp.Sum256(rom[:])

	if err != nil {
		return nil, err
	}

	return romctrl.FromBytes(sum[:], r.words)
}

// ExpectedDigest returns the build time provisioned digest.
func (r *dcpROM) ExpectedDigest() (romctrl.Digest, error) {
	return romctrl.FromBytes(assets.ExpectedDigest, r.words)
}

func openROM() (romctrl.Checker, error) {
	if len(assets.ExpectedDigest) != assets.DigestSize {
		return nil, fmt.Errorf("invalid expected digest size %d", len(assets.ExpectedDigest))
	}

	dcp.Init()

	return &dcpROM{words: romctrl.DigestWords}, nil
}

func setStatus(c status.Code) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(uintptr(SNVS_LPGPR))), uint32(c))

	// white LED signals idle, awaiting reset
	usbarmory.LED("white", c == status.InWfi)
}

func waitForInterrupt() {
	imx6.ARM.WaitInterrupt()
}
