// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/golang/glog"

	"github.com/f-secure-foundry/armory-romcheck/internal/scenario"
	"github.com/f-secure-foundry/armory-romcheck/internal/sim"
)

const usage = `Usage: romcheck-sim [OPTIONS]
  -h    show this help

  -c string
        configuration file (YAML)
  -rom string
        ROM image (overrides configuration)
  -lc string
        initial lifecycle state (overrides configuration)
  -words int
        digest length in 32-bit words (overrides configuration)
  -word int
        expected digest word to overwrite (default: last word)
  -mask uint
        fault mask (overrides configuration)
  -timeout string
        idle status timeout (overrides configuration)

  -logtostderr
        log to standard error instead of files (default true)
  -v int
        log level for V logs
`

var (
	confPath    string
	romPath     string
	lcState     string
	digestWords int
	faultWord   int
	faultMask   uint
	timeout     string
)

func init() {
	flag.Usage = func() {
		fmt.Print(usage)
	}

	flag.StringVar(&confPath, "c", "", "configuration file (YAML)")
	flag.StringVar(&romPath, "rom", "", "ROM image")
	flag.StringVar(&lcState, "lc", "", "initial lifecycle state")
	flag.IntVar(&digestWords, "words", 0, "digest length in 32-bit words")
	flag.IntVar(&faultWord, "word", -1, "expected digest word to overwrite")
	flag.UintVar(&faultMask, "mask", 0, "fault mask")
	flag.StringVar(&timeout, "timeout", "", "idle status timeout")
}

func main() {
	// glog defaults to log files, which a one-shot run never looks at
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	conf, err := loadConfig(confPath)

	if err != nil {
		glog.Exit(err)
	}

	override(conf)

	if err = conf.validate(); err != nil {
		glog.Exit(err)
	}

	state, err := conf.lifecycleState()

	if err != nil {
		glog.Exit(err)
	}

	t, err := conf.timeout()

	if err != nil {
		glog.Exit(err)
	}

	rom, err := conf.romImage()

	if err != nil {
		glog.Exit(err)
	}

	glog.Info("----RESET----")
	glog.Infof("booting %d bytes ROM image in %v state", len(rom), state)

	dev, err := sim.NewDevice(state, rom, conf.DigestWords)

	if err != nil {
		glog.Exit(err)
	}

	ctrl := &sim.Controller{
		Device:    dev,
		FaultWord: conf.Fault.Word,
		FaultMask: conf.Fault.Mask,
		Timeout:   t,
	}

	sc := scenario.DefaultConfig()
	sc.DigestWords = conf.DigestWords

	r, err := ctrl.Run(context.Background(), sim.NewFirmware(sc))

	if err != nil {
		glog.Errorf("phase one: %v, phase two: %v", r != nil && r.PhaseOne, r != nil && r.PhaseTwo)
		glog.Flush()
		glog.Exit(err)
	}

	fmt.Println("PASS")
}

func override(conf *Config) {
	if len(romPath) > 0 {
		conf.ROM = romPath
	}

	if len(lcState) > 0 {
		conf.Lifecycle = lcState
	}

	if digestWords != 0 {
		conf.DigestWords = digestWords
	}

	if faultWord >= 0 {
		conf.Fault.Word = faultWord
	}

	if faultMask != 0 {
		conf.Fault.Mask = uint32(faultMask)
	}

	if len(timeout) > 0 {
		conf.Timeout = timeout
	}
}
