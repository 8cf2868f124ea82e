// Package testutil provides shared test fixtures.
package testutil

import (
	"sync"
	"time"
)

// Clock is a fixed wall clock for deterministic transaction records.
//
// Unlike the system clock it only moves when a test calls Advance, so the
// same scenario produces identical timestamps on every run.
//
// Thread-safe via internal mutex.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock pinned at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// FixedTime is a convenient default instant for tests.
var FixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)

// Now returns the pinned instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
