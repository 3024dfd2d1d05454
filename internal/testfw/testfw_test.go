// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package testfw_test

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/f-secure-foundry/armory-romcheck/internal/status"
	"github.com/f-secure-foundry/armory-romcheck/internal/testfw"
)

func Test(t *testing.T) { TestingT(t) }

type testfwSuite struct {
	logBuf   bytes.Buffer
	statuses []status.Code
	harness  *testfw.Harness
}

var _ = Suite(&testfwSuite{})

func (s *testfwSuite) SetUpTest(c *C) {
	s.logBuf.Reset()
	log.SetOutput(&s.logBuf)
	log.SetFlags(0)

	s.statuses = nil
	s.harness = &testfw.Harness{
		Config: testfw.Config{Name: "example"},
		Status: func(code status.Code) {
			s.statuses = append(s.statuses, code)
		},
	}
}

func (s *testfwSuite) TearDownTest(c *C) {
	log.SetOutput(os.Stderr)
}

func (s *testfwSuite) TestRunPass(c *C) {
	ok := s.harness.Run(func() (bool, error) {
		c.Check(s.statuses, DeepEquals, []status.Code{status.InTest})
		return true, nil
	})

	c.Check(ok, Equals, true)
	c.Check(s.statuses, DeepEquals, []status.Code{status.InTest, status.Passed})
	c.Check(s.logBuf.String(), Equals, "running example\nPASS: example\n")
}

func (s *testfwSuite) TestRunError(c *C) {
	ok := s.harness.Run(func() (bool, error) {
		return false, errors.New("PROD LC_STATE not expected")
	})

	c.Check(ok, Equals, false)
	c.Check(s.statuses, DeepEquals, []status.Code{status.InTest, status.Failed})
	c.Check(s.logBuf.String(), Equals, "running example\nFAIL: example: PROD LC_STATE not expected\n")
}

func (s *testfwSuite) TestRunFalse(c *C) {
	ok := s.harness.Run(func() (bool, error) {
		return false, nil
	})

	c.Check(ok, Equals, false)
	c.Check(s.statuses, DeepEquals, []status.Code{status.InTest, status.Failed})
	c.Check(s.logBuf.String(), Equals, "running example\nFAIL: example: test returned false\n")
}

func (s *testfwSuite) TestRunWithoutStatus(c *C) {
	h := &testfw.Harness{Config: testfw.Config{Name: "example"}}
	c.Check(h.Run(func() (bool, error) { return true, nil }), Equals, true)
}

func (s *testfwSuite) TestReportFailure(c *C) {
	s.harness.ReportFailure(errors.New("digest check failed"))

	c.Check(s.statuses, DeepEquals, []status.Code{status.Failed})
	c.Check(s.logBuf.String(), Equals, "FAIL: digest check failed\n")
}
