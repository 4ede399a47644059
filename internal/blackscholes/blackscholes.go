// Package blackscholes implements the closed-form Black-Scholes-Merton
// value and delta of European options with a continuous dividend yield.
package blackscholes

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"lattice-pricer/internal/models"
)

var norm = distuv.UnitNormal

func d1d2(spot, strike, tau, vol, rate, div float64) (float64, float64) {
	sd := vol * math.Sqrt(tau)
	d1 := (math.Log(spot/strike) + (rate-div+0.5*vol*vol)*tau) / sd
	return d1, d1 - sd
}

// Price returns the European value of p. At or past maturity it returns the
// intrinsic value.
func Price(p models.OptionParams) float64 {
	return PriceAt(p, p.Spot, p.Maturity)
}

// PriceAt values p for a given spot and remaining time tau.
func PriceAt(p models.OptionParams, spot, tau float64) float64 {
	if tau <= 0 || p.Volatility <= 0 {
		fwd := spot*math.Exp(-p.Dividend*math.Max(tau, 0)) - p.Strike*math.Exp(-p.Rate*math.Max(tau, 0))
		if p.Type == models.OptionTypePut {
			fwd = -fwd
		}
		return math.Max(0, fwd)
	}
	d1, d2 := d1d2(spot, p.Strike, tau, p.Volatility, p.Rate, p.Dividend)
	sdisc := spot * math.Exp(-p.Dividend*tau)
	kdisc := p.Strike * math.Exp(-p.Rate*tau)
	if p.Type == models.OptionTypePut {
		return kdisc*norm.CDF(-d2) - sdisc*norm.CDF(-d1)
	}
	return sdisc*norm.CDF(d1) - kdisc*norm.CDF(d2)
}

// Delta returns dV/dS of the European contract.
func Delta(p models.OptionParams) float64 {
	return DeltaAt(p, p.Spot, p.Maturity)
}

// DeltaAt returns dV/dS for a given spot and remaining time tau. At expiry
// it is the step function of the payoff.
func DeltaAt(p models.OptionParams, spot, tau float64) float64 {
	if tau <= 0 || p.Volatility <= 0 {
		switch {
		case p.Type == models.OptionTypePut && spot < p.Strike:
			return -1
		case p.Type == models.OptionTypeCall && spot > p.Strike:
			return 1
		}
		return 0
	}
	d1, _ := d1d2(spot, p.Strike, tau, p.Volatility, p.Rate, p.Dividend)
	df := math.Exp(-p.Dividend * tau)
	if p.Type == models.OptionTypePut {
		return df * (norm.CDF(d1) - 1)
	}
	return df * norm.CDF(d1)
}

// Parity returns C - P = S*exp(-qT) - K*exp(-rT).
func Parity(p models.OptionParams) float64 {
	return p.Spot*math.Exp(-p.Dividend*p.Maturity) - p.Strike*math.Exp(-p.Rate*p.Maturity)
}
