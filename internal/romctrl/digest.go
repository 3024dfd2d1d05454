// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package romctrl defines the ROM integrity digest and its comparison.
package romctrl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/xerrors"
)

// DigestWords represents the number of 32-bit words in a ROM digest.
const DigestWords = 8

// ErrLengthMismatch is returned when comparing digests of different length.
var ErrLengthMismatch = errors.New("digest length mismatch")

// Result represents the outcome of a digest comparison.
type Result int

const (
	Equal Result = iota
	NotEqual
)

func (r Result) String() string {
	if r == Equal {
		return "equal"
	}

	return "not equal"
}

// Digest represents a ROM integrity digest as little-endian 32-bit words.
type Digest []uint32

// Comparison holds the result of a digest comparison along with the index of
// every differing word.
type Comparison struct {
	Result     Result
	Mismatched []int
}

// Checker represents an initialized ROM integrity checker.
type Checker interface {
	// Digest returns the digest computed over the ROM contents.
	Digest() (Digest, error)
	// ExpectedDigest returns the stored reference digest.
	ExpectedDigest() (Digest, error)
}

// FromBytes decodes a digest of the passed word count from its little-endian
// byte representation.
func FromBytes(buf []byte, words int) (d Digest, err error) {
	if len(buf) != words*4 {
		return nil, fmt.Errorf("invalid digest size %d, expected %d", len(buf), words*4)
	}

	d = make(Digest, words)

	for i := range d {
		d[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}

	return
}

// Bytes returns the little-endian byte representation of the digest.
func (d Digest) Bytes() []byte {
	buf := make([]byte, len(d)*4)

	for i, w := range d {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}

	return buf
}

func (d Digest) String() string {
	words := make([]string, len(d))

	for i, w := range d {
		words[i] = fmt.Sprintf("0x%08x", w)
	}

	return "[" + strings.Join(words, " ") + "]"
}

// Compare compares every word of two digests of equal length.
func Compare(a, b Digest) (c Comparison, err error) {
	if len(a) != len(b) {
		err = xerrors.Errorf("%d != %d words: %w", len(a), len(b), ErrLengthMismatch)
		return
	}

	for i := range a {
		if a[i] != b[i] {
			c.Mismatched = append(c.Mismatched, i)
		}
	}

	if len(c.Mismatched) > 0 {
		c.Result = NotEqual
	}

	return
}
