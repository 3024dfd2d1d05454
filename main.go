// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm
// +build tamago,arm

package main

import (
	"fmt"
	"log"

	"github.com/f-secure-foundry/tamago/board/f-secure/usbarmory/mark-two"
	"github.com/f-secure-foundry/tamago/soc/imx6"

	"github.com/f-secure-foundry/armory-romcheck/internal/scenario"
	"github.com/f-secure-foundry/armory-romcheck/internal/testfw"
)

// The test controller starts the unit in a non-production lifecycle state,
// after overwriting one of the expected digest words. The mismatch is
// tolerated in this state, so we boot, confirm it and idle. The controller
// then resets the unit into production lifecycle state, where the same
// mismatch must prevent booting.
var testConfig = testfw.Config{
	Name: "rom_integrity_check",
}

func init() {
	if err := imx6.SetARMFreq(900); err != nil {
		panic(fmt.Sprintf("WARNING: error setting ARM frequency: %v\n", err))
	}

	log.SetFlags(0)
}

func main() {
	usbarmory.LED("blue", false)
	usbarmory.LED("white", false)

	log.Printf("%s %s (%s)", testConfig.Name, Revision, Build)

	conf := scenario.DefaultConfig()
	conf.Name = testConfig.Name

	s := &scenario.Scenario{
		Config:           conf,
		Lifecycle:        openLifecycle,
		ROM:              openROM,
		SetStatus:        setStatus,
		WaitForInterrupt: waitForInterrupt,
	}

	h := &testfw.Harness{
		Config: testConfig,
		Status: setStatus,
	}

	if !h.Run(s.Run) {
		log.Fatal("test failed")
	}
}
