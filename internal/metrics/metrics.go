// Package metrics exposes the bot's Prometheus counters and gauges:
//
//	bot_rounds_total                  – trade rounds started
//	bot_orders_total{side,type}       – orders submitted to the exchange
//	bot_skips_total{step,reason}      – policy skips (not errors)
//	bot_step_errors_total{step}       – round steps failed after retries
//	bot_quote_krw                     – last fetched quote
//	bot_effective_pnl_pct             – last fee-adjusted PnL vs average price
//	bot_held_balance                  – base-asset balance at round summary
//
// Registered in init() and served by the HTTP handler started in main at
// /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoundsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rounds_total",
			Help: "Trade rounds started",
		},
	)

	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders submitted to the exchange",
		},
		[]string{"side", "type"},
	)

	SkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_skips_total",
			Help: "Round steps skipped by policy",
		},
		[]string{"step", "reason"},
	)

	StepErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_step_errors_total",
			Help: "Round steps that failed after exhausting retries",
		},
		[]string{"step"},
	)

	QuoteKRW = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_quote_krw",
			Help: "Last fetched market quote in KRW",
		},
	)

	EffectivePnLPct = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_effective_pnl_pct",
			Help: "Fee-adjusted realizable PnL percentage",
		},
	)

	HeldBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_held_balance",
			Help: "Base-asset balance reported at the round summary",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RoundsTotal,
		OrdersTotal,
		SkipsTotal,
		StepErrorsTotal,
		QuoteKRW,
		EffectivePnLPct,
		HeldBalance,
	)
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler { return promhttp.Handler() }
