// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package lifecycle_test

import (
	"testing"

	. "gopkg.in/check.v1"

	. "github.com/f-secure-foundry/armory-romcheck/internal/lifecycle"
)

func Test(t *testing.T) { TestingT(t) }

type lifecycleSuite struct{}

var _ = Suite(&lifecycleSuite{})

func (s *lifecycleSuite) TestIsProductionProd(c *C) {
	c.Check(IsProduction(Prod), Equals, true)
	c.Check(Prod.Class(), Equals, Production)
}

func (s *lifecycleSuite) TestIsProductionNonProduction(c *C) {
	for _, st := range []State{Invalid, Raw, TestUnlocked, TestLocked, Dev, ProdEnd, RMA, Scrap} {
		c.Check(IsProduction(st), Equals, false, Commentf("state %v", st))
		c.Check(st.Class(), Equals, NonProduction, Commentf("state %v", st))
	}
}

func (s *lifecycleSuite) TestIsProductionDeterministic(c *C) {
	for i := 0; i < 3; i++ {
		c.Check(IsProduction(Dev), Equals, false)
		c.Check(IsProduction(Prod), Equals, true)
	}
}

func (s *lifecycleSuite) TestString(c *C) {
	c.Check(Prod.String(), Equals, "prod")
	c.Check(TestUnlocked.String(), Equals, "test_unlocked")
	c.Check(State(42).String(), Equals, "State(42)")
	c.Check(Production.String(), Equals, "production")
	c.Check(NonProduction.String(), Equals, "non-production")
}

func (s *lifecycleSuite) TestParse(c *C) {
	for _, t := range []struct {
		name     string
		expected State
	}{
		{"prod", Prod},
		{"PROD", Prod},
		{" dev ", Dev},
		{"test-locked", TestLocked},
		{"prod_end", ProdEnd},
		{"rma", RMA},
	} {
		st, err := Parse(t.name)
		c.Check(err, IsNil)
		c.Check(st, Equals, t.expected, Commentf("name %q", t.name))
	}
}

func (s *lifecycleSuite) TestParseInvalid(c *C) {
	st, err := Parse("production")
	c.Check(err, ErrorMatches, `invalid lifecycle state "production"`)
	c.Check(st, Equals, Invalid)
}
