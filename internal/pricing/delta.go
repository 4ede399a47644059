package pricing

import (
	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/lattice"
	"lattice-pricer/internal/models"
	"lattice-pricer/internal/montecarlo"
)

// DefaultBump is the relative spot shift used for deltas.
const DefaultBump = 0.01

// Delta estimates dV/dS by repricing at S*(1+bump) and S*(1-bump).
func Delta(m lattice.Method, p models.OptionParams, bump float64) (float64, error) {
	if bump <= 0 || bump >= 1 {
		return 0, apperrors.NewValidationError("bump", bump, "must lie in (0, 1)")
	}
	h := p.Spot * bump
	up, err := m.Price(p.WithSpot(p.Spot + h))
	if err != nil {
		return 0, err
	}
	down, err := m.Price(p.WithSpot(p.Spot - h))
	if err != nil {
		return 0, err
	}
	return (up - down) / (2 * h), nil
}

// HedgeDelta adapts a lattice method into the hedge ratio of a Monte-Carlo
// control variate: each call reprices p at the given spot with tau years
// left. m should size its grid from the contract, as Sized methods do.
func HedgeDelta(m lattice.Method, p models.OptionParams, bump float64) montecarlo.DeltaFunc {
	return func(spot, tau float64) (float64, error) {
		q := p.WithSpot(spot)
		q.Maturity = tau
		return Delta(m, q, bump)
	}
}
