package pricing

import (
	"lattice-pricer/internal/lattice"
	"lattice-pricer/internal/models"
)

// AmericanPut values an American put on a binomial tree with fixed moves u
// and d and no dividend.
func AmericanPut(strike, maturity, spot, rate float64, steps int, up, down float64) (float64, error) {
	return lattice.NewBinomial(steps, up, down).Price(models.OptionParams{
		Type:     models.OptionTypePut,
		Style:    models.StyleAmerican,
		Strike:   strike,
		Maturity: maturity,
		Spot:     spot,
		Rate:     rate,
	})
}

// TrinomialEuropeanCall values a European call on an N-step trinomial tree
// with log step dx.
func TrinomialEuropeanCall(strike, maturity, spot, vol, rate, div float64, steps int, dx float64) (float64, error) {
	return lattice.NewTrinomial(steps, dx).Price(vanilla(models.OptionTypeCall, models.StyleEuropean,
		strike, maturity, spot, vol, rate, div))
}

// ExplicitFDEuropeanCall values a European call with the explicit scheme on
// N time steps and 2*Nj+1 price nodes.
func ExplicitFDEuropeanCall(strike, maturity, spot, vol, rate, div float64, steps, half int, dx float64) (float64, error) {
	return lattice.NewExplicitFD(steps, half, dx).Price(vanilla(models.OptionTypeCall, models.StyleEuropean,
		strike, maturity, spot, vol, rate, div))
}

// ImplicitFDAmericanPut values an American put with the implicit scheme on
// N time steps and 2*Nj+1 price nodes.
func ImplicitFDAmericanPut(strike, maturity, spot, vol, rate, div float64, steps, half int, dx float64) (float64, error) {
	return lattice.NewImplicitFD(steps, half, dx).Price(vanilla(models.OptionTypePut, models.StyleAmerican,
		strike, maturity, spot, vol, rate, div))
}

// AmericanSpreadCall values an American call on S1-S2 with strike K on an
// N-step two-factor binomial tree.
func AmericanSpreadCall(strike, maturity, spot1, spot2, vol1, vol2, div1, div2, rho, rate float64, steps int) (float64, error) {
	return lattice.NewSpreadBinomial(steps).PriceSpread(models.SpreadParams{
		Style:       models.StyleAmerican,
		Strike:      strike,
		Maturity:    maturity,
		Spot1:       spot1,
		Spot2:       spot2,
		Volatility1: vol1,
		Volatility2: vol2,
		Dividend1:   div1,
		Dividend2:   div2,
		Correlation: rho,
		Rate:        rate,
	})
}

func vanilla(t models.OptionType, s models.ExerciseStyle, strike, maturity, spot, vol, rate, div float64) models.OptionParams {
	return models.OptionParams{
		Type:       t,
		Style:      s,
		Strike:     strike,
		Maturity:   maturity,
		Spot:       spot,
		Volatility: vol,
		Dividend:   div,
		Rate:       rate,
	}
}
