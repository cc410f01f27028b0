// Package clock abstracts time so components that make timing decisions
// can be driven by a fake clock in tests.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by the wall clock.
func System() Clock {
	return systemClock{}
}

// Fake is a manually-advanced Clock for deterministic tests.
type Fake struct {
	now time.Time
}

// NewFake creates a Fake clock starting at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time { return f.now }

// Advance moves the fake clock forward.
func (f *Fake) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// Set jumps the fake clock to a specific instant.
func (f *Fake) Set(t time.Time) {
	f.now = t
}
