package lattice

import (
	"math"

	"lattice-pricer/internal/models"
)

// Payoff returns the signed immediate-exercise value at a price level:
// S-K for a call, K-S for a put. It is negative out of the money.
type Payoff func(price float64) float64

// SpreadPayoff returns the signed exercise value S1-S2-K of a spread call.
type SpreadPayoff func(price1, price2 float64) float64

// Intrinsic returns the exercise value function of a vanilla contract.
func Intrinsic(t models.OptionType, strike float64) Payoff {
	if t == models.OptionTypePut {
		return func(s float64) float64 { return strike - s }
	}
	return func(s float64) float64 { return s - strike }
}

// SpreadIntrinsic returns the exercise value function of a spread call.
func SpreadIntrinsic(strike float64) SpreadPayoff {
	return func(s1, s2 float64) float64 { return s1 - s2 - strike }
}

// Terminal seeds the maturity layer with max(0, intrinsic) per level.
func Terminal(levels []float64, intrinsic Payoff) []float64 {
	values := make([]float64, len(levels))
	for j, s := range levels {
		values[j] = math.Max(0, intrinsic(s))
	}
	return values
}

// TerminalSpread seeds the maturity layer of a two-factor tree with N steps.
// Only nodes with offsets of the same parity as N are reachable and seeded;
// the remaining entries stay zero.
func TerminalSpread(axis1, axis2 Axis, steps int, payoff SpreadPayoff) [][]float64 {
	grid := Centered{Half: steps}
	values := make([][]float64, axis1.Len())
	for j := range values {
		values[j] = make([]float64, axis2.Len())
	}
	lo, hi := grid.Reachable(steps)
	for j := lo; j <= hi; j += 2 {
		for k := lo; k <= hi; k += 2 {
			values[j][k] = math.Max(0, payoff(axis1.Levels[j], axis2.Levels[k]))
		}
	}
	return values
}
