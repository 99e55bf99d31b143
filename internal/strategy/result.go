// Package strategy
package strategy

import "github.com/hourbot/bithumb-trader/internal/exchange"

// Outcome tags the result of one round step so callers and tests can branch
// without matching log output.
type Outcome int

const (
	OutcomeExecuted Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "executed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of a sell or buy step.
type Result struct {
	Outcome Outcome
	Reason  string         // set for skips
	Order   exchange.Order // last order submitted, when one was
	Err     error          // set for failures
}

func Executed(order exchange.Order) Result {
	return Result{Outcome: OutcomeExecuted, Order: order}
}

func Skipped(reason string) Result {
	return Result{Outcome: OutcomeSkipped, Reason: reason}
}

func Failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Err: err}
}
