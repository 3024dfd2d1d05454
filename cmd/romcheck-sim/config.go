// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/f-secure-foundry/armory-romcheck/internal/lifecycle"
	"github.com/f-secure-foundry/armory-romcheck/internal/romctrl"
	"github.com/f-secure-foundry/armory-romcheck/internal/sim"
)

const defaultROMSize = 32 * 1024

// Fault represents the expected digest tampering, a negative Word selects the
// last digest word.
type Fault struct {
	Word int    `yaml:"word"`
	Mask uint32 `yaml:"mask"`
}

// Config represents the simulation configuration file.
type Config struct {
	Lifecycle   string `yaml:"lifecycle"`
	DigestWords int    `yaml:"digest_words"`

	// ROM image path, a pseudo-random image is generated when empty
	ROM     string `yaml:"rom"`
	ROMSize int    `yaml:"rom_size"`
	ROMSeed int64  `yaml:"rom_seed"`

	Fault   Fault  `yaml:"fault"`
	Timeout string `yaml:"timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Lifecycle:   lifecycle.Dev.String(),
		DigestWords: romctrl.DigestWords,
		ROMSize:     defaultROMSize,
		ROMSeed:     1,
		Fault: Fault{
			Word: -1,
			Mask: 1,
		},
		Timeout: sim.DefaultTimeout.String(),
	}
}

func loadConfig(path string) (conf *Config, err error) {
	conf = defaultConfig()

	if len(path) == 0 {
		return
	}

	buf, err := os.ReadFile(path)

	if err != nil {
		return
	}

	if err = yaml.UnmarshalStrict(buf, conf); err != nil {
		return nil, fmt.Errorf("could not parse %s, %v", path, err)
	}

	return
}

// validate checks the configuration once loaded and overridden, resolving
// the default fault word against the digest length.
func (conf *Config) validate() error {
	if conf.DigestWords <= 0 {
		return fmt.Errorf("invalid digest length %d", conf.DigestWords)
	}

	if conf.Fault.Word < 0 {
		conf.Fault.Word = conf.DigestWords - 1
	}

	if conf.Fault.Word >= conf.DigestWords {
		return fmt.Errorf("invalid fault word %d for %d words digest", conf.Fault.Word, conf.DigestWords)
	}

	return nil
}

func (conf *Config) lifecycleState() (lifecycle.State, error) {
	return lifecycle.Parse(conf.Lifecycle)
}

func (conf *Config) timeout() (time.Duration, error) {
	return time.ParseDuration(conf.Timeout)
}

func (conf *Config) romImage() (rom []byte, err error) {
	if len(conf.ROM) > 0 {
		return os.ReadFile(conf.ROM)
	}

	if conf.ROMSize <= 0 {
		return nil, fmt.Errorf("invalid ROM size %d", conf.ROMSize)
	}

	rom = make([]byte, conf.ROMSize)
	rand.New(rand.NewSource(conf.ROMSeed)).Read(rom)

	return
}
