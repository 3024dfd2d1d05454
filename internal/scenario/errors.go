// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package scenario

import (
	"fmt"
)

// InitError is returned when a collaborator cannot be initialized.
type InitError struct {
	Collaborator string
	err          error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("cannot initialize %s: %v", e.Collaborator, e.err)
}

func (e *InitError) Unwrap() error {
	return e.err
}

// ReadError is returned when a collaborator cannot produce a value.
type ReadError struct {
	What string
	err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.What, e.err)
}

func (e *ReadError) Unwrap() error {
	return e.err
}

// PreconditionError is returned when a scenario precondition does not hold.
type PreconditionError struct {
	Check  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s check failed: %s", e.Check, e.Reason)
}
