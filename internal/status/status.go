// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package status implements the test status handshake between the device and
// an external test controller.
//
// The device is the single writer of a status register, the controller is its
// single reader and observes it out of band. Once the device writes InWfi it
// idles until the controller resets it.
package status

import (
	"fmt"
	"sync"
)

// Code represents a well-known test status value.
type Code uint16

// Test status values, each spells a short word in hex.
const (
	Unknown       Code = 0
	InBootROM     Code = 0xb090 // boot
	InBootROMHalt Code = 0xb057 // boot stop
	InTest        Code = 0x4354 // test
	InWfi         Code = 0x1d1e // idle
	Passed        Code = 0x900d // good
	Failed        Code = 0xbaad // bad
)

var codeNames = map[Code]string{
	Unknown:       "unknown",
	InBootROM:     "in boot ROM",
	InBootROMHalt: "boot ROM halted",
	InTest:        "in test",
	InWfi:         "waiting for interrupt",
	Passed:        "passed",
	Failed:        "failed",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("Code(%#04x)", uint16(c))
}

// Register represents a status register held in memory, as seen by a
// simulated device and its controller.
type Register struct {
	sync.Mutex

	val   Code
	watch chan Code
}

// Set writes the status value, notifying the reader if watched.
func (r *Register) Set(c Code) {
	r.Lock()
	defer r.Unlock()

	r.val = c

	if r.watch == nil {
		return
	}

	// the reader only cares about the latest value
	select {
	case <-r.watch:
	default:
	}

	r.watch <- c
}

// Get reads the current status value.
func (r *Register) Get() Code {
	r.Lock()
	defer r.Unlock()

	return r.val
}

// Watch returns the channel on which status writes are delivered to the
// single reader, only the most recent undelivered value is retained.
func (r *Register) Watch() <-chan Code {
	r.Lock()
	defer r.Unlock()

	if r.watch == nil {
		r.watch = make(chan Code, 1)
	}

	return r.watch
}
