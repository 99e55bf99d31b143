// Package retry
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/hourbot/bithumb-trader/internal/clock"
)

// Defaults for the retry policy. Exchange calls are expected to recover from
// transient network or server errors within a handful of attempts.
const (
	DefaultTries   = 3
	DefaultDelay   = 500 * time.Millisecond
	DefaultBackoff = 2.0
)

// ExhaustedError is returned after every attempt has failed. It wraps the
// last underlying error so callers can inspect it with errors.Is/As.
type ExhaustedError struct {
	Tries int
	Last  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %d attempts exhausted: %v", e.Tries, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

type policy struct {
	tries   int
	delay   time.Duration
	backoff float64
	clk     clock.Clock
}

// Option customizes the retry policy.
type Option func(*policy)

func WithTries(n int) Option           { return func(p *policy) { p.tries = n } }
func WithDelay(d time.Duration) Option { return func(p *policy) { p.delay = d } }
func WithBackoff(b float64) Option     { return func(p *policy) { p.backoff = b } }
func WithClock(c clock.Clock) Option   { return func(p *policy) { p.clk = c } }

// Do runs op up to the configured number of tries, sleeping between failed
// attempts with pure exponential backoff (no jitter). A ctx cancellation
// during a backoff sleep aborts immediately with the ctx error.
func Do(ctx context.Context, op func() error, opts ...Option) error {
	p := policy{
		tries:   DefaultTries,
		delay:   DefaultDelay,
		backoff: DefaultBackoff,
		clk:     clock.New(),
	}
	for _, opt := range opts {
		opt(&p)
	}

	var last error
	delay := p.delay
	for attempt := 1; attempt <= p.tries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		last = err
		if attempt == p.tries {
			break
		}
		if err := p.clk.Sleep(ctx, delay); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * p.backoff)
	}
	return &ExhaustedError{Tries: p.tries, Last: last}
}
