package sim

import (
	"context"
	"runtime"
	"time"
)

// DefaultTimeUnit is the wall-clock length of one simulated time unit.
const DefaultTimeUnit = time.Second

// Clock provides the suspension points of a run: travel, loading and yields.
type Clock interface {
	// Now returns the current wall time.
	Now() time.Time
	// Sleep suspends for the given number of time units or until ctx is done.
	Sleep(ctx context.Context, units float64) error
	// Yield lets other agents run without advancing time.
	Yield()
	// Units converts a wall duration to time units.
	Units(d time.Duration) float64
}

// RealClock maps time units onto wall time.
type RealClock struct {
	Unit time.Duration
}

// NewRealClock creates a clock; a non-positive unit falls back to DefaultTimeUnit.
func NewRealClock(unit time.Duration) RealClock {
	if unit <= 0 {
		unit = DefaultTimeUnit
	}
	return RealClock{Unit: unit}
}

func (c RealClock) Now() time.Time { return time.Now() }

func (c RealClock) Sleep(ctx context.Context, units float64) error {
	d := time.Duration(units * float64(c.Unit))
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c RealClock) Yield() { runtime.Gosched() }

func (c RealClock) Units(d time.Duration) float64 {
	if c.Unit <= 0 {
		return d.Seconds()
	}
	return float64(d) / float64(c.Unit)
}
