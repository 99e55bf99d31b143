package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourbot/bithumb-trader/internal/exchange"
	"github.com/hourbot/bithumb-trader/internal/pricing"
	"github.com/hourbot/bithumb-trader/internal/retry"
)

// freshAccount is an account with KRW but no position.
func freshAccount(krw, minTotal float64) exchange.OrderChance {
	return exchange.OrderChance{
		Bid: exchange.BidAccount{Balance: krw, MinTotal: minTotal},
		Ask: exchange.AskAccount{MinTotal: minTotal},
	}
}

func TestBuyFallsBackToMarketAfterTimeout(t *testing.T) {
	// quote 1005, tick 5: limit price lands exactly on 1000, so the 5000 KRW
	// base amount sits exactly at the minimum and the +10 buffer applies.
	var (
		limitPrice  float64
		limitVolume float64
		cancelled   string
		marketKRW   float64
	)
	mock := &exchange.Mock{
		QuoteFn:       staticQuote(1005),
		OrderChanceFn: staticChance(freshAccount(100_000, 5000)),
		LimitBuyFn: func(_ context.Context, _ string, price, quantity float64) (exchange.Order, error) {
			limitPrice, limitVolume = price, quantity
			return exchange.Order{ID: "L1", State: exchange.StateWait}, nil
		},
		StatusFn: func(_ context.Context, orderID string) (exchange.Order, error) {
			if orderID == "M1" {
				return exchange.Order{ID: "M1", State: exchange.StateDone, Price: 5008, PaidFee: 2}, nil
			}
			return exchange.Order{ID: "L1", State: exchange.StateWait}, nil
		},
		CancelFn: func(_ context.Context, orderID string) error {
			cancelled = orderID
			return nil
		},
		MarketBuyFn: func(_ context.Context, _ string, notional float64) (exchange.Order, error) {
			marketKRW = notional
			return exchange.Order{ID: "M1", State: exchange.StateWait}, nil
		},
	}
	eng, fake := newTestEngine(t, mock)

	res := eng.buy(context.Background(), eng.log)
	require.Equal(t, OutcomeExecuted, res.Outcome)
	assert.Equal(t, "M1", res.Order.ID)

	assert.Equal(t, 1000.0, limitPrice)
	assert.Equal(t, 5.01, limitVolume) // (5000+10)/1000 after the buffer
	assert.Equal(t, "L1", cancelled)
	assert.Equal(t, 5000.0, marketKRW)

	// One fill window, then the settle pause; no retry backoffs.
	assert.Equal(t, []time.Duration{5 * time.Minute, 10 * time.Second}, fake.Slept)
}

func TestBuyLimitFills(t *testing.T) {
	var limitVolume float64
	mock := &exchange.Mock{
		QuoteFn:       staticQuote(1005),
		OrderChanceFn: staticChance(freshAccount(100_000, 5000)),
		LimitBuyFn: func(_ context.Context, _ string, _, quantity float64) (exchange.Order, error) {
			limitVolume = quantity
			return exchange.Order{ID: "L1", State: exchange.StateWait}, nil
		},
		StatusFn: func(_ context.Context, orderID string) (exchange.Order, error) {
			return exchange.Order{ID: orderID, State: exchange.StateDone}, nil
		},
	}
	eng, fake := newTestEngine(t, mock)

	res := eng.buy(context.Background(), eng.log)
	require.Equal(t, OutcomeExecuted, res.Outcome)
	assert.Equal(t, "L1", res.Order.ID)
	assert.Equal(t, 5.01, limitVolume)
	// No cancel, no market order, no settle pause.
	assert.Equal(t, []time.Duration{5 * time.Minute}, fake.Slept)
}

func TestBuyScalesWithDrawdown(t *testing.T) {
	// Held position at avg 200 with quote 190: 5% drawdown doubles the base
	// amount. Quote 190 has tick 1, limit price 189.
	var limitPrice, limitVolume float64
	mock := &exchange.Mock{
		QuoteFn: staticQuote(190),
		OrderChanceFn: staticChance(exchange.OrderChance{
			Bid: exchange.BidAccount{Balance: 100_000, MinTotal: 5000},
			Ask: exchange.AskAccount{Balance: 0.5, MinTotal: 5000, AvgBuyPrice: 200},
		}),
		LimitBuyFn: func(_ context.Context, _ string, price, quantity float64) (exchange.Order, error) {
			limitPrice, limitVolume = price, quantity
			return exchange.Order{ID: "L1", State: exchange.StateWait}, nil
		},
		StatusFn: func(_ context.Context, orderID string) (exchange.Order, error) {
			return exchange.Order{ID: orderID, State: exchange.StateDone}, nil
		},
	}
	eng, _ := newTestEngine(t, mock)

	res := eng.buy(context.Background(), eng.log)
	require.Equal(t, OutcomeExecuted, res.Outcome)
	assert.Equal(t, 189.0, limitPrice)
	assert.Equal(t, pricing.Round8(10_000.0/189.0), limitVolume)
}

func TestBuyRepricesAtQuoteWhenDiscountedNotionalTooSmall(t *testing.T) {
	// quote 7005, tick 5: at the discounted limit 7000 the rounded volume's
	// notional drops below the minimum, so the order reprices at the raw
	// quote, where the notional still sits at the minimum and the buffer
	// kicks in.
	var limitPrice, limitVolume float64
	mock := &exchange.Mock{
		QuoteFn:       staticQuote(7005),
		OrderChanceFn: staticChance(freshAccount(100_000, 5000)),
		LimitBuyFn: func(_ context.Context, _ string, price, quantity float64) (exchange.Order, error) {
			limitPrice, limitVolume = price, quantity
			return exchange.Order{ID: "L1", State: exchange.StateWait}, nil
		},
		StatusFn: func(_ context.Context, orderID string) (exchange.Order, error) {
			return exchange.Order{ID: orderID, State: exchange.StateDone}, nil
		},
	}
	eng, _ := newTestEngine(t, mock)

	res := eng.buy(context.Background(), eng.log)
	require.Equal(t, OutcomeExecuted, res.Outcome)
	assert.Equal(t, 7005.0, limitPrice)
	assert.Equal(t, pricing.Round8((5000.0+10.0)/7005.0), limitVolume)
	assert.Greater(t, limitPrice*limitVolume, 5000.0)
}

func TestBuySkipsWhenBalanceBelowMinimum(t *testing.T) {
	mock := &exchange.Mock{
		QuoteFn:       staticQuote(1005),
		OrderChanceFn: staticChance(freshAccount(3000, 5000)),
	}
	eng, _ := newTestEngine(t, mock)

	res := eng.buy(context.Background(), eng.log)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Equal(t, "insufficient balance", res.Reason)
}

func TestBuyFailsWhenCancelExhaustsRetries(t *testing.T) {
	mock := &exchange.Mock{
		QuoteFn:       staticQuote(1005),
		OrderChanceFn: staticChance(freshAccount(100_000, 5000)),
		LimitBuyFn: func(_ context.Context, _ string, _, _ float64) (exchange.Order, error) {
			return exchange.Order{ID: "L1", State: exchange.StateWait}, nil
		},
		StatusFn: func(_ context.Context, orderID string) (exchange.Order, error) {
			return exchange.Order{ID: orderID, State: exchange.StateWait}, nil
		},
		CancelFn: func(context.Context, string) error {
			return errors.New("internal server error")
		},
	}
	eng, _ := newTestEngine(t, mock)

	res := eng.buy(context.Background(), eng.log)
	require.Equal(t, OutcomeFailed, res.Outcome)

	var exhausted *retry.ExhaustedError
	assert.ErrorAs(t, res.Err, &exhausted)
}
