// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package assets

import (
	"crypto/sha256"
)

//go:generate go run embed_digest.go

// DigestSize represents the ROM integrity digest size in bytes
const DigestSize = 32

// ExpectedDigest represents the expected ROM integrity digest
var ExpectedDigest []byte

// Revision represents the firmware version
var Revision string

// DummyDigest generates a known placeholder for the expected digest of images
// built without provisioning.
func DummyDigest() []byte {
	var dummy []byte

	for i := 0; i < DigestSize; i++ {
		dummy = append(dummy, byte(i))
	}

	dummyDigest := sha256.Sum256(dummy)

	return dummyDigest[:]
}

func init() {
	if len(ExpectedDigest) == 0 {
		ExpectedDigest = DummyDigest()
	}
}
