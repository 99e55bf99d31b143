package strategy

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/hourbot/bithumb-trader/internal/exchange"
	"github.com/hourbot/bithumb-trader/internal/metrics"
	"github.com/hourbot/bithumb-trader/internal/pricing"
	"github.com/hourbot/bithumb-trader/internal/retry"
)

// buy sizes this round's purchase and runs the two-phase placement: a limit
// order one tick under the quote, then after OrderWait a cancel-and-replace
// at market if the limit did not fill. The market fallback is authoritative;
// there is no second cycle within a round.
func (e *Engine) buy(ctx context.Context, log *zap.SugaredLogger) Result {
	quote, err := e.fetchQuote(ctx)
	if err != nil {
		return Failed(err)
	}
	chance, err := e.fetchChance(ctx)
	if err != nil {
		return Failed(err)
	}

	minTotal := chance.Bid.MinTotal
	available := chance.Bid.Balance

	policy := SizingPolicy{Mode: e.cfg.SizingMode, BaseAmount: e.cfg.BaseAmount}
	amount := policy.Amount(quote, chance.Ask.AvgBuyPrice, chance.Ask.Balance)

	// Whole-KRW amount, floored to the exchange minimum and capped to the
	// available balance.
	if amount < minTotal {
		amount = math.Trunc(minTotal)
	}
	if amount > available {
		log.Infow("buy amount capped to available balance", "amount", amount, "available", available)
		amount = math.Trunc(available)
		if amount < minTotal {
			log.Infow("buy below minimum notional after cap", "amount", amount, "min_total", minTotal)
			return Skipped("insufficient balance")
		}
	}

	// One tick under the market to favor maker execution.
	tick := pricing.TickSize(quote)
	limitPrice := pricing.RoundDownToTick(quote-tick, tick)
	volume := pricing.Round8(amount / math.Max(limitPrice, 1e-12))
	total := limitPrice * volume

	// Discounted price pushed the notional under the minimum: give up the
	// tick and recompute at the raw quote.
	if total < minTotal {
		log.Infow("limit notional below minimum, repricing at quote",
			"total", total, "min_total", minTotal, "quote", quote)
		limitPrice = quote
		volume = pricing.Round8(amount / limitPrice)
		total = limitPrice * volume
	}

	// Sitting exactly at the minimum risks rejection from float or
	// exchange-side truncation; pad the target notional.
	if total <= minTotal {
		safeTotal := minTotal + notionalBufferKRW
		volume = pricing.Round8(safeTotal / limitPrice)
		total = limitPrice * volume
		log.Infow("notional buffer applied", "price", limitPrice, "volume", volume, "total", total)
	}

	var order exchange.Order
	err = retry.Do(ctx, func() error {
		var err error
		order, err = e.ex.PlaceLimitBuy(ctx, e.cfg.Market, limitPrice, volume)
		return err
	}, retry.WithClock(e.clk))
	if err != nil {
		return Failed(fmt.Errorf("placing limit buy: %w", err))
	}
	metrics.OrdersTotal.WithLabelValues(string(exchange.SideBid), string(exchange.TypeLimit)).Inc()
	log.Infow("limit buy submitted",
		"order_id", order.ID, "price", limitPrice, "volume", volume, "notional", amount)

	// Fixed fill window before checking: gives the market time to take the
	// discounted price.
	if err := e.clk.Sleep(ctx, e.cfg.OrderWait); err != nil {
		return Failed(err)
	}

	var status exchange.Order
	err = retry.Do(ctx, func() error {
		var err error
		status, err = e.ex.GetOrderStatus(ctx, order.ID)
		return err
	}, retry.WithClock(e.clk))
	if err != nil {
		return Failed(fmt.Errorf("checking limit buy %s: %w", order.ID, err))
	}
	if status.FullyDone() {
		log.Infow("limit buy filled", "order_id", order.ID)
		return Executed(status)
	}

	err = retry.Do(ctx, func() error {
		return e.ex.CancelOrder(ctx, order.ID)
	}, retry.WithClock(e.clk))
	if err != nil {
		return Failed(fmt.Errorf("cancelling limit buy %s: %w", order.ID, err))
	}
	log.Infow("limit buy unfilled, falling back to market", "order_id", order.ID, "notional", amount)

	var market exchange.Order
	err = retry.Do(ctx, func() error {
		var err error
		market, err = e.ex.PlaceMarketBuy(ctx, e.cfg.Market, amount)
		return err
	}, retry.WithClock(e.clk))
	if err != nil {
		return Failed(fmt.Errorf("placing market buy: %w", err))
	}
	metrics.OrdersTotal.WithLabelValues(string(exchange.SideBid), string(exchange.TypeMarketPrice)).Inc()

	e.settleReport(ctx, log, market.ID)
	return Executed(market)
}

// settleReport logs what the market fallback actually paid. Reporting only:
// errors are logged and swallowed, no decision depends on the result.
func (e *Engine) settleReport(ctx context.Context, log *zap.SugaredLogger, orderID string) {
	if err := e.clk.Sleep(ctx, e.cfg.SettleWait); err != nil {
		return
	}
	final, err := e.ex.GetOrderStatus(ctx, orderID)
	if err != nil {
		log.Warnw("settle check failed", "order_id", orderID, "error", err)
		return
	}
	paidTotal := final.Price + final.PaidFee
	quote, err := e.ex.GetQuote(ctx, e.cfg.Market)
	if err != nil || quote <= 0 {
		log.Warnw("settle quote unavailable", "order_id", orderID, "error", err)
		return
	}
	log.Infow("market buy settled",
		"order_id", orderID,
		"paid_total", paidTotal,
		"quote", quote,
		"volume", pricing.Round8(paidTotal/quote),
	)
}
