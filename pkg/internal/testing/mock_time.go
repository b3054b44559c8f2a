package testing

import (
	"sync"
	"time"
)

// MockClock should be used for tests. Every call to Now advances
// the clock by the configured step
type MockClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// Now returns now value
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// SetNow set current now value
func (c *MockClock) SetNow(val time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = val
}

// NewMockClock returns an instance of a clock that starts at now
// and advances by a second on every call
func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now, step: time.Second}
}
