package livetrading

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hourbot/bithumb-trader/internal/clock"
)

type fakeRounder struct {
	clk      *clock.Fake
	times    []time.Time
	overrun  time.Duration // simulated round duration
	stopFunc func(rounds int)
}

func (f *fakeRounder) Round(ctx context.Context) {
	f.times = append(f.times, f.clk.Now())
	if f.overrun > 0 {
		f.clk.Advance(f.overrun)
	}
	if f.stopFunc != nil {
		f.stopFunc(len(f.times))
	}
}

func TestRunFiresOnAnchoredSlots(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 17, 0, 0, time.UTC)
	fake := clock.NewFake(start)
	ctx, cancel := context.WithCancel(context.Background())

	rounder := &fakeRounder{clk: fake}
	rounder.stopFunc = func(rounds int) {
		if rounds == 3 {
			cancel()
		}
	}

	Run(ctx, time.Hour, fake, zap.NewNop().Sugar(), rounder)

	require.Len(t, rounder.times, 3)
	assert.Equal(t, start, rounder.times[0])
	assert.Equal(t, start.Add(time.Hour), rounder.times[1])
	assert.Equal(t, start.Add(2*time.Hour), rounder.times[2])
}

func TestRunSkipsMissedSlots(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := clock.NewFake(start)
	ctx, cancel := context.WithCancel(context.Background())

	// Each round overruns its slot by 2.5 hours; the loop must realign on
	// the next future slot instead of bursting catch-up rounds.
	rounder := &fakeRounder{clk: fake, overrun: 2*time.Hour + 30*time.Minute}
	rounder.stopFunc = func(rounds int) {
		if rounds == 2 {
			cancel()
		}
	}

	Run(ctx, time.Hour, fake, zap.NewNop().Sugar(), rounder)

	require.Len(t, rounder.times, 2)
	assert.Equal(t, start, rounder.times[0])
	// Round 1 finished at 11:30; slots 10:00 and 11:00 are skipped and the
	// second round fires at 12:00.
	assert.Equal(t, start.Add(3*time.Hour), rounder.times[1])
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rounder := &fakeRounder{clk: fake}
	Run(ctx, time.Hour, fake, zap.NewNop().Sugar(), rounder)

	// First slot is due immediately, so one round may run before the
	// cancelled context is observed during the following sleep.
	assert.LessOrEqual(t, len(rounder.times), 1)
}
