package clock

import "time"

// Clock supplies the current time. Table timestamps, session expiry and
// memory-store TTLs all read through it so tests can pin time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC
type RealClock struct{}

var _ Clock = (*RealClock)(nil)

// New creates a RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time. Monotonic readings are stripped so
// persisted timestamps compare equal after a storage round trip.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Round(0)
}
