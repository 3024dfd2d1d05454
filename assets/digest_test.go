// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package assets_test

import (
	"testing"

	. "gopkg.in/check.v1"

	. "github.com/f-secure-foundry/armory-romcheck/assets"
	"github.com/f-secure-foundry/armory-romcheck/internal/romctrl"
)

func Test(t *testing.T) { TestingT(t) }

type assetsSuite struct{}

var _ = Suite(&assetsSuite{})

func (s *assetsSuite) TestDummyDigest(c *C) {
	c.Check(DummyDigest(), HasLen, DigestSize)
	c.Check(DummyDigest(), DeepEquals, DummyDigest())
}

func (s *assetsSuite) TestExpectedDigestDecodes(c *C) {
	d, err := romctrl.FromBytes(ExpectedDigest, romctrl.DigestWords)
	c.Assert(err, IsNil)
	c.Check(d, HasLen, romctrl.DigestWords)
}
