// Package pricing
package pricing

import "math"

// QuantityDecimals is the fixed precision for order quantities.
const QuantityDecimals = 8

// Round8 rounds x to 8 fractional digits, the exchange's quantity precision.
func Round8(x float64) float64 {
	return math.Round(x*1e8) / 1e8
}

// TickSize returns the KRW price increment for the given price magnitude.
// The breakpoint table is exchange policy; lower bounds are inclusive.
func TickSize(price float64) float64 {
	switch {
	case price >= 2_000_000:
		return 1000
	case price >= 1_000_000:
		return 500
	case price >= 500_000:
		return 100
	case price >= 100_000:
		return 50
	case price >= 10_000:
		return 10
	case price >= 1_000:
		return 5
	case price >= 100:
		return 1
	case price >= 10:
		return 0.1
	case price >= 1:
		return 0.01
	default:
		return 0.001
	}
}

// RoundDownToTick floors v to a multiple of unit. Prices are never rounded
// up: overshooting a tick risks overpaying or tripping the exchange's
// minimum-notional check. A zero unit leaves v unchanged.
func RoundDownToTick(v, unit float64) float64 {
	if unit == 0 {
		return v
	}
	k := math.Floor(v / unit)
	return Round8(k * unit)
}

// MinQuantityForNotional returns the smallest 8-decimal quantity whose
// notional at price satisfies minNotional. Returns 0 when price is not
// positive.
func MinQuantityForNotional(minNotional, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return Round8(minNotional / price)
}
