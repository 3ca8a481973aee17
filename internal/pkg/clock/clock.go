package clock

import (
	"sync"
	"time"
)

// Clock supplies the host timestamp stamped on every call.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock in UTC. The value keeps Go's monotonic reading,
// so two stamps taken in the same process never go backwards when compared.
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FakeClock is a controllable clock for tests. When a step is set every Now call
// advances the clock by that step, which gives strictly increasing stamps.
type FakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewFake creates a FakeClock set to t.
func NewFake(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// NewTicking creates a FakeClock that advances by step after each reading.
func NewTicking(t time.Time, step time.Duration) *FakeClock {
	return &FakeClock{now: t, step: step}
}

// Now returns the fake current time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.now
	f.now = f.now.Add(f.step)
	return t
}

// Set moves the clock to t.
func (f *FakeClock) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
