package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourbot/bithumb-trader/internal/clock"
)

func TestDoSucceedsOnThirdAttempt(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	calls := 0

	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithClock(fake))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	// Two sleeps, the second multiplied by the backoff factor.
	require.Len(t, fake.Slept, 2)
	assert.Equal(t, 500*time.Millisecond, fake.Slept[0])
	assert.Equal(t, time.Second, fake.Slept[1])
}

func TestDoExhaustsTries(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	calls := 0
	underlying := errors.New("connection refused")

	err := Do(context.Background(), func() error {
		calls++
		return underlying
	}, WithClock(fake))

	require.Error(t, err)
	assert.Equal(t, DefaultTries, calls)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, DefaultTries, exhausted.Tries)
	assert.ErrorIs(t, err, underlying)
	// No sleep after the final attempt.
	assert.Len(t, fake.Slept, DefaultTries-1)
}

func TestDoCustomPolicy(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	calls := 0

	err := Do(context.Background(), func() error {
		calls++
		return errors.New("nope")
	}, WithClock(fake), WithTries(5), WithDelay(100*time.Millisecond), WithBackoff(3.0))

	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		300 * time.Millisecond,
		900 * time.Millisecond,
		2700 * time.Millisecond,
	}, fake.Slept)
}

func TestDoFirstAttemptSucceeds(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))

	err := Do(context.Background(), func() error { return nil }, WithClock(fake))

	require.NoError(t, err)
	assert.Empty(t, fake.Slept)
}

func TestDoCancelledContext(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	fake.OnSleep = func(time.Duration) { cancel() }
	calls := 0

	// Fake sleeps record first, then cancel; the second sleep sees a dead ctx.
	err := Do(ctx, func() error {
		calls++
		return errors.New("transient")
	}, WithClock(fake))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}
