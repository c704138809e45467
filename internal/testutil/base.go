package testutil

import (
	"gopkg.in/check.v1"
)

// BaseTest is a structure used as a base for tests that need cleanup
// handlers run in reverse order on teardown.
type BaseTest struct {
	cleanupHandlers []func()
}

func (s *BaseTest) SetUpTest(c *check.C) {
	s.cleanupHandlers = nil
}

func (s *BaseTest) TearDownTest(c *check.C) {
	for i := len(s.cleanupHandlers) - 1; i >= 0; i-- {
		s.cleanupHandlers[i]()
	}
	s.cleanupHandlers = nil
}

// AddCleanup registers a handler to run on teardown.
func (s *BaseTest) AddCleanup(handler func()) {
	s.cleanupHandlers = append(s.cleanupHandlers, handler)
}
