package clock

import (
	"context"
	"runtime"
	"time"
)

// spinThreshold is how close to a deadline RealClock stops relying on the
// runtime timer and polls the monotonic clock instead.
const spinThreshold = 200 * time.Microsecond

// Clock abstracts time so the pacer works with both real and virtual time.
// All time-dependent code in relval uses this interface instead of time.Now().
type Clock interface {
	// Now returns the current time. Real clocks carry a monotonic reading.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
	// After returns a channel that receives the current time after duration d.
	After(d time.Duration) <-chan time.Time
	// WaitUntil blocks until the clock reaches deadline or ctx is done.
	WaitUntil(ctx context.Context, deadline time.Time) error
}

// RealClock delegates to the standard time package.
type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (c *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// WaitUntil sleeps on a runtime timer until shortly before deadline and then
// yields until the monotonic clock passes it. Timer wakeups alone overshoot
// by tens of microseconds or more under load.
func (c *RealClock) WaitUntil(ctx context.Context, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d := time.Until(deadline) - spinThreshold; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return ctx.Err()
}
