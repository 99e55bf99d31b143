package pricing

// DefaultFeeRate is the exchange's taker fee per side (0.04%).
const DefaultFeeRate = 0.0004

// EffectivePnLPct returns the realizable profit percentage after paying
// feeRate on both the original purchase and the prospective sale:
//
//	[cur*(1-fee) - avg*(1+fee)] / [avg*(1+fee)] * 100
//
// A non-positive avgPrice means no position and yields 0.
func EffectivePnLPct(currentPrice, avgPrice, feeRate float64) float64 {
	if avgPrice <= 0 {
		return 0
	}
	numerator := currentPrice*(1-feeRate) - avgPrice*(1+feeRate)
	denominator := avgPrice * (1 + feeRate)
	return numerator / denominator * 100
}
