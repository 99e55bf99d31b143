package strategy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hourbot/bithumb-trader/internal/exchange"
	"github.com/hourbot/bithumb-trader/internal/metrics"
	"github.com/hourbot/bithumb-trader/internal/pricing"
	"github.com/hourbot/bithumb-trader/internal/retry"
)

// sell evaluates fee-adjusted PnL against the take-profit threshold and, if
// met, liquidates sellFraction of holdings at market.
func (e *Engine) sell(ctx context.Context, log *zap.SugaredLogger) Result {
	quote, err := e.fetchQuote(ctx)
	if err != nil {
		return Failed(err)
	}
	chance, err := e.fetchChance(ctx)
	if err != nil {
		return Failed(err)
	}

	avg := chance.Ask.AvgBuyPrice
	balance := chance.Ask.Balance
	minTotal := chance.Ask.MinTotal

	if balance <= 0 || avg <= 0 {
		return Skipped("no position")
	}

	pnl := pricing.EffectivePnLPct(quote, avg, e.cfg.FeeRate)
	if pnl < e.cfg.TakeProfitPct {
		log.Infow("take-profit not reached",
			"pnl_pct", pnl, "target_pct", e.cfg.TakeProfitPct, "quote", quote, "avg_buy_price", avg)
		return Skipped("below take-profit target")
	}

	quantity := pricing.Round8(balance * sellFraction)

	// Market sells are still subject to the minimum notional at the
	// estimated fill price.
	if est := quantity * quote; est < minTotal {
		minQty := pricing.MinQuantityForNotional(minTotal, quote)
		if minQty > balance {
			log.Infow("sell below minimum notional",
				"estimated_total", est, "min_total", minTotal, "balance", balance)
			return Skipped("below minimum notional")
		}
		quantity = pricing.Round8(minQty)
	}

	var order exchange.Order
	err = retry.Do(ctx, func() error {
		var err error
		order, err = e.ex.PlaceMarketSell(ctx, e.cfg.Market, quantity)
		return err
	}, retry.WithClock(e.clk))
	if err != nil {
		return Failed(fmt.Errorf("placing market sell: %w", err))
	}

	metrics.OrdersTotal.WithLabelValues(string(exchange.SideAsk), string(exchange.TypeMarket)).Inc()
	log.Infow("market sell submitted",
		"order_id", order.ID, "quantity", quantity, "quote", quote, "pnl_pct", pnl)
	return Executed(order)
}
