// Package livetrading
package livetrading

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hourbot/bithumb-trader/internal/clock"
)

// Rounder runs one trade round. Round must absorb its own failures; the
// scheduler never inspects an outcome.
type Rounder interface {
	Round(ctx context.Context)
}

// sleepSlice keeps individual sleeps short so wakeup drift stays bounded and
// cancellation is prompt.
const sleepSlice = 500 * time.Millisecond

// Run executes rounds on a fixed interval anchored at the start time:
// slot N fires at anchor + N*interval, not at the top of the hour. A round
// that overruns its slot (the buy path blocks for minutes) never causes a
// burst of catch-up rounds: missed slots are skipped and the loop realigns
// on the next future slot.
func Run(ctx context.Context, interval time.Duration, clk clock.Clock, log *zap.SugaredLogger, eng Rounder) {
	next := clk.Now()
	for {
		if err := sleepUntil(ctx, clk, next); err != nil {
			log.Infow("scheduler stopped", "reason", err)
			return
		}
		eng.Round(ctx)

		next = next.Add(interval)
		for !next.After(clk.Now()) {
			next = next.Add(interval)
		}
	}
}

// sleepUntil blocks until target, sleeping in short slices.
func sleepUntil(ctx context.Context, clk clock.Clock, target time.Time) error {
	for {
		remaining := target.Sub(clk.Now())
		if remaining <= 0 {
			return nil
		}
		if remaining > sleepSlice {
			remaining = sleepSlice
		}
		if err := clk.Sleep(ctx, remaining); err != nil {
			return err
		}
	}
}
