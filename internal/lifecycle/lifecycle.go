// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package lifecycle classifies device lifecycle states for the boot
// integrity checks.
package lifecycle

import (
	"fmt"
	"strings"
)

// State represents a concrete device lifecycle state.
type State int

const (
	Invalid State = iota
	Raw
	TestUnlocked
	TestLocked
	Dev
	Prod
	ProdEnd
	RMA
	Scrap
)

// Class represents the lifecycle classes relevant to ROM integrity
// enforcement.
type Class int

const (
	NonProduction Class = iota
	Production
)

var stateNames = map[State]string{
	Invalid:      "invalid",
	Raw:          "raw",
	TestUnlocked: "test_unlocked",
	TestLocked:   "test_locked",
	Dev:          "dev",
	Prod:         "prod",
	ProdEnd:      "prod_end",
	RMA:          "rma",
	Scrap:        "scrap",
}

// Controller represents an initialized lifecycle controller.
type Controller interface {
	// State reads the current lifecycle state.
	State() (State, error)
}

// IsProduction returns whether ROM integrity failures must halt the boot in
// the passed state, only Prod qualifies.
func IsProduction(s State) bool {
	return s == Prod
}

// Class returns the lifecycle class of the state.
func (s State) Class() Class {
	if IsProduction(s) {
		return Production
	}

	return NonProduction
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("State(%d)", int(s))
}

func (c Class) String() string {
	if c == Production {
		return "production"
	}

	return "non-production"
}

// Parse returns the state matching the passed name, names are case
// insensitive and accept dashes in place of underscores.
func Parse(name string) (State, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")

	for s, sn := range stateNames {
		if sn == n {
			return s, nil
		}
	}

	return Invalid, fmt.Errorf("invalid lifecycle state %q", name)
}
