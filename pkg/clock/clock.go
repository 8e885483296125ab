package clock

import (
	"time"

	internalclock "github.com/SmitUplenchwar2687/relval/internal/clock"
)

// Clock abstracts time so the pacer works with both real and virtual time.
type Clock = internalclock.Clock

// RealClock uses the monotonic system clock and waits precisely.
type RealClock = internalclock.RealClock

// VirtualClock is a controllable clock for deterministic tests.
type VirtualClock = internalclock.VirtualClock

// NewRealClock creates a real clock.
func NewRealClock() *RealClock {
	return internalclock.NewRealClock()
}

// NewVirtualClock creates a virtual clock starting at the given time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return internalclock.NewVirtualClock(start)
}
