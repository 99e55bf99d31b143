package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hourbot/bithumb-trader/internal/clock"
	"github.com/hourbot/bithumb-trader/internal/exchange"
	"github.com/hourbot/bithumb-trader/internal/metrics"
	"github.com/hourbot/bithumb-trader/internal/notifier"
	"github.com/hourbot/bithumb-trader/internal/pricing"
	"github.com/hourbot/bithumb-trader/internal/retry"
)

const (
	// sellFraction is the share of holdings liquidated on take-profit.
	sellFraction = 0.10
	// notionalBufferKRW pads the target notional when it sits at the
	// exchange minimum, so server-side truncation cannot reject the order.
	notionalBufferKRW = 10.0
)

// Config holds the per-round trading policy.
type Config struct {
	Market        string
	TakeProfitPct float64
	BaseAmount    float64
	FeeRate       float64
	SizingMode    SizingMode
	OrderWait     time.Duration // limit-order fill window before market fallback
	SettleWait    time.Duration // pause before reading the fallback fill
}

// Engine runs one trade round at a time: sell decision, then buy decision.
// It holds no state between rounds; balances and the average price live on
// the exchange and are re-fetched for every decision.
type Engine struct {
	cfg Config
	ex  exchange.Exchange
	clk clock.Clock
	log *zap.SugaredLogger
	ntf notifier.Notifier
}

func New(cfg Config, ex exchange.Exchange, clk clock.Clock, log *zap.SugaredLogger, ntf notifier.Notifier) *Engine {
	if cfg.FeeRate == 0 {
		cfg.FeeRate = pricing.DefaultFeeRate
	}
	if cfg.SizingMode == "" {
		cfg.SizingMode = SizingScaled
	}
	if cfg.OrderWait == 0 {
		cfg.OrderWait = 5 * time.Minute
	}
	if cfg.SettleWait == 0 {
		cfg.SettleWait = 10 * time.Second
	}
	if ntf == nil {
		ntf = notifier.NewNoop()
	}
	return &Engine{cfg: cfg, ex: ex, clk: clk, log: log, ntf: ntf}
}

// Round executes one sell-then-buy round. Step failures are logged and
// absorbed here; they never propagate to the scheduling loop.
func (e *Engine) Round(ctx context.Context) {
	log := e.log.With("round", uuid.NewString()[:8], "market", e.cfg.Market)
	metrics.RoundsTotal.Inc()
	log.Infow("round started")

	e.finish(log, "sell", e.sell(ctx, log))
	e.finish(log, "buy", e.buy(ctx, log))
	e.summarize(ctx, log)
}

func (e *Engine) finish(log *zap.SugaredLogger, step string, res Result) {
	switch res.Outcome {
	case OutcomeExecuted:
		log.Infow("step executed", "step", step, "order_id", res.Order.ID)
	case OutcomeSkipped:
		metrics.SkipsTotal.WithLabelValues(step, res.Reason).Inc()
		log.Infow("step skipped", "step", step, "reason", res.Reason)
	case OutcomeFailed:
		metrics.StepErrorsTotal.WithLabelValues(step).Inc()
		log.Errorw("step failed", "step", step, "error", res.Err)
		if err := e.ntf.Send(fmt.Sprintf("%s %s step failed: %v", e.cfg.Market, step, res.Err)); err != nil {
			log.Warnw("notification failed", "error", err)
		}
	}
}

// summarize logs the post-round account view. Fetch errors here are
// reporting problems only and are swallowed.
func (e *Engine) summarize(ctx context.Context, log *zap.SugaredLogger) {
	chance, err := e.fetchChance(ctx)
	if err != nil {
		log.Warnw("round summary unavailable", "error", err)
		return
	}
	quote, err := e.fetchQuote(ctx)
	if err != nil {
		log.Warnw("round summary unavailable", "error", err)
		return
	}

	pnl := pricing.EffectivePnLPct(quote, chance.Ask.AvgBuyPrice, e.cfg.FeeRate)
	metrics.QuoteKRW.Set(quote)
	metrics.EffectivePnLPct.Set(pnl)
	metrics.HeldBalance.Set(chance.Ask.Balance)

	log.Infow("round summary",
		"avg_buy_price", chance.Ask.AvgBuyPrice,
		"quote", quote,
		"pnl_pct", pnl,
		"balance", chance.Ask.Balance,
	)
	msg := fmt.Sprintf("%s summary: avg=%.2f quote=%.2f pnl=%.3f%% balance=%.8f",
		e.cfg.Market, chance.Ask.AvgBuyPrice, quote, pnl, chance.Ask.Balance)
	if err := e.ntf.Send(msg); err != nil {
		log.Warnw("notification failed", "error", err)
	}
}

func (e *Engine) fetchQuote(ctx context.Context) (float64, error) {
	var quote float64
	err := retry.Do(ctx, func() error {
		var err error
		quote, err = e.ex.GetQuote(ctx, e.cfg.Market)
		return err
	}, retry.WithClock(e.clk))
	if err != nil {
		return 0, fmt.Errorf("fetching quote: %w", err)
	}
	return quote, nil
}

func (e *Engine) fetchChance(ctx context.Context) (exchange.OrderChance, error) {
	var chance exchange.OrderChance
	err := retry.Do(ctx, func() error {
		var err error
		chance, err = e.ex.GetOrderChance(ctx, e.cfg.Market)
		return err
	}, retry.WithClock(e.clk))
	if err != nil {
		return exchange.OrderChance{}, fmt.Errorf("fetching order chance: %w", err)
	}
	return chance, nil
}
