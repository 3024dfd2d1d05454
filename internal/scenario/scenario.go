// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package scenario implements the ROM integrity check scenario.
//
// The scenario runs in a non-production lifecycle state, after an external
// agent has overwritten the expected ROM digest. It confirms that the ROM
// integrity checker reports the mismatch, then signals the external test
// controller and idles so that the controller can reset the device into a
// production lifecycle state, where the same mismatch must prevent booting.
package scenario

import (
	"errors"
	"fmt"
	"log"

	"github.com/f-secure-foundry/armory-romcheck/internal/lifecycle"
	"github.com/f-secure-foundry/armory-romcheck/internal/romctrl"
	"github.com/f-secure-foundry/armory-romcheck/internal/status"
)

// State represents the progress of a scenario run.
type State int

const (
	Init State = iota
	LifecycleChecked
	DigestChecked
	AwaitingReset
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case LifecycleChecked:
		return "lifecycle checked"
	case DigestChecked:
		return "digest checked"
	case AwaitingReset:
		return "awaiting reset"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config represents the scenario configuration.
type Config struct {
	// Name identifies the scenario in logs
	Name string
	// DigestWords is the ROM digest length in 32-bit words
	DigestWords int
}

// DefaultConfig returns the configuration for the hardware ROM integrity
// checker.
func DefaultConfig() *Config {
	return &Config{
		Name:        "rom_integrity_check",
		DigestWords: romctrl.DigestWords,
	}
}

// Scenario represents the ROM integrity check scenario and its collaborators.
type Scenario struct {
	Config *Config

	// Lifecycle initializes the lifecycle controller
	Lifecycle func() (lifecycle.Controller, error)
	// ROM initializes the ROM integrity checker
	ROM func() (romctrl.Checker, error)

	// SetStatus writes the status observed by the external controller
	SetStatus func(status.Code)
	// WaitForInterrupt idles until an external event occurs
	WaitForInterrupt func()

	state State
}

// State returns the state reached by the last run.
func (s *Scenario) State() State {
	return s.state
}

// Run executes the scenario, it returns true once the integrity mismatch has
// been confirmed in a non-production lifecycle state and the idle wait for the
// controller reset has returned.
//
// Any error is terminal and prevents the status handshake.
func (s *Scenario) Run() (bool, error) {
	conf := s.Config

	if conf == nil {
		conf = DefaultConfig()
	}

	s.state = Init

	if s.Lifecycle == nil || s.ROM == nil || s.SetStatus == nil || s.WaitForInterrupt == nil {
		return false, errors.New("incomplete scenario collaborators")
	}

	lc, err := s.Lifecycle()

	if err != nil {
		return false, &InitError{Collaborator: "lifecycle controller", err: err}
	}

	rom, err := s.ROM()

	if err != nil {
		return false, &InitError{Collaborator: "ROM integrity checker", err: err}
	}

	if err = s.checkLifecycle(lc); err != nil {
		return false, err
	}

	s.state = LifecycleChecked

	if err = s.checkDigest(rom, conf.DigestWords); err != nil {
		return false, err
	}

	s.state = DigestChecked

	log.Printf("%s: waiting for interrupt", conf.Name)

	s.SetStatus(status.InWfi)
	s.state = AwaitingReset
	s.WaitForInterrupt()

	return true, nil
}

func (s *Scenario) checkLifecycle(lc lifecycle.Controller) error {
	state, err := lc.State()

	if err != nil {
		return &ReadError{What: "lifecycle state", err: err}
	}

	if lifecycle.IsProduction(state) {
		return &PreconditionError{
			Check:  "lifecycle",
			Reason: "PROD LC_STATE not expected",
		}
	}

	return nil
}

func (s *Scenario) checkDigest(rom romctrl.Checker, words int) error {
	computed, err := rom.Digest()

	if err != nil {
		return &ReadError{What: "computed digest", err: err}
	}

	if len(computed) != words {
		return &ReadError{What: "computed digest", err: fmt.Errorf("got %d words, expected %d", len(computed), words)}
	}

	expected, err := rom.ExpectedDigest()

	if err != nil {
		return &ReadError{What: "expected digest", err: err}
	}

	if len(expected) != words {
		return &ReadError{What: "expected digest", err: fmt.Errorf("got %d words, expected %d", len(expected), words)}
	}

	cmp, err := romctrl.Compare(expected, computed)

	if err != nil {
		return &ReadError{What: "digests", err: err}
	}

	if cmp.Result == romctrl.Equal {
		return &PreconditionError{
			Check:  "digest",
			Reason: fmt.Sprintf("expected digest %v matches computed digest, it was not overwritten", expected),
		}
	}

	log.Printf("digest mismatch at words %v", cmp.Mismatched)

	return nil
}
