// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package testfw implements the on-device test harness which runs a test
// function and reports its outcome through the test status register.
package testfw

import (
	"log"

	"golang.org/x/xerrors"

	"github.com/f-secure-foundry/armory-romcheck/internal/status"
)

// Test represents an on-device test, returning true on success.
type Test func() (bool, error)

// Config represents the per-image test configuration.
type Config struct {
	// Name identifies the test in logs
	Name string
}

// Harness runs a test and reports its outcome.
type Harness struct {
	Config Config

	// Status writes the status observed by the external controller
	Status func(status.Code)
}

// Run executes the test, returning whether it passed.
func (h *Harness) Run(test Test) bool {
	h.setStatus(status.InTest)

	log.Printf("running %s", h.Config.Name)

	ok, err := test()

	if err == nil && !ok {
		err = xerrors.New("test returned false")
	}

	if err != nil {
		h.ReportFailure(xerrors.Errorf("%s: %w", h.Config.Name, err))
		return false
	}

	log.Printf("PASS: %s", h.Config.Name)
	h.setStatus(status.Passed)

	return true
}

// ReportFailure logs the failure reason and flags the test as failed.
func (h *Harness) ReportFailure(err error) {
	log.Printf("FAIL: %v", err)
	h.setStatus(status.Failed)
}

func (h *Harness) setStatus(c status.Code) {
	if h.Status != nil {
		h.Status(c)
	}
}
