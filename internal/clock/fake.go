package clock

import (
	"context"
	"time"
)

// Fake is a deterministic Clock for tests. Every Sleep returns immediately
// and advances the fake's notion of now by the requested duration.
type Fake struct {
	now time.Time

	// Slept records every duration passed to Sleep, in order.
	Slept []time.Duration

	// OnSleep, if set, is invoked after each recorded sleep. Tests use it to
	// cancel contexts or mutate exchange state mid-round.
	OnSleep func(d time.Duration)
}

// NewFake returns a Fake whose clock starts at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time { return f.now }

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d < 0 {
		d = 0
	}
	f.Slept = append(f.Slept, d)
	f.now = f.now.Add(d)
	if f.OnSleep != nil {
		f.OnSleep(d)
	}
	return nil
}

// Advance moves the fake clock forward without recording a sleep.
func (f *Fake) Advance(d time.Duration) { f.now = f.now.Add(d) }
