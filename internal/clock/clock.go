// Package clock
package clock

import (
	"context"
	"time"
)

// Clock abstracts wall-clock time and blocking sleeps so that the
// multi-minute waits in the trading loop can be simulated in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// New returns a Clock backed by the system clock.
func New() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

// Sleep blocks for d or until ctx is cancelled, whichever comes first.
func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
