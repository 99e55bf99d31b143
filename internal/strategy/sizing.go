package strategy

import "math"

// SizingMode selects how the buy notional scales with drawdown.
type SizingMode string

const (
	// SizingFixed always buys the base amount.
	SizingFixed SizingMode = "fixed"
	// SizingScaled buys up to 2x the base amount as drawdown deepens.
	SizingScaled SizingMode = "scaled"
)

// maxDrawdownPct caps the linear scale-up: a 5% drawdown (or deeper) buys
// exactly twice the base amount.
const maxDrawdownPct = 5.0

// SizingPolicy decides the KRW notional for one round's buy.
type SizingPolicy struct {
	Mode       SizingMode
	BaseAmount float64
}

// Amount returns the notional to allocate, rounded to whole KRW. Scaling
// only applies to an existing position in drawdown: with no holdings, or
// with the quote at or above the average price, the base amount stands.
func (p SizingPolicy) Amount(quote, avgBuyPrice, heldBalance float64) float64 {
	amount := p.BaseAmount
	if p.Mode == SizingScaled && heldBalance > 0 && avgBuyPrice > 0 && quote < avgBuyPrice {
		diffPct := (avgBuyPrice - quote) / avgBuyPrice * 100
		capped := math.Max(0, math.Min(diffPct, maxDrawdownPct))
		multiplier := 1 + capped/maxDrawdownPct
		amount = p.BaseAmount * multiplier
	}
	return math.Round(amount)
}
