package lattice

import (
	"math"

	apperrors "lattice-pricer/internal/errors"
)

// BinomialCoefficients are the per-step constants of a recombining binomial
// tree.
type BinomialCoefficients struct {
	Dt       float64
	Up       float64
	Down     float64
	P        float64 // risk-neutral probability of an up move
	Discount float64
}

// NewBinomialCoefficients derives p = (exp((r-q)dt) - d) / (u - d).
func NewBinomialCoefficients(rate, dividend, maturity, up, down float64, steps int) BinomialCoefficients {
	dt := maturity / float64(steps)
	return BinomialCoefficients{
		Dt:       dt,
		Up:       up,
		Down:     down,
		P:        (math.Exp((rate-dividend)*dt) - down) / (up - down),
		Discount: math.Exp(-rate * dt),
	}
}

// CRRFactors returns the Cox-Ross-Rubinstein moves u = exp(sigma*sqrt(dt)),
// d = 1/u.
func CRRFactors(volatility, maturity float64, steps int) (up, down float64) {
	up = math.Exp(volatility * math.Sqrt(maturity/float64(steps)))
	return up, 1 / up
}

func (c BinomialCoefficients) check(method string) *apperrors.InstabilityError {
	if !isFinite(c.P) || c.P <= 0 || c.P >= 1 {
		return apperrors.NewInstabilityError(method, "p", c.P, "up probability outside (0, 1)")
	}
	return nil
}

// ThreePoint are the weights a one-dimensional scheme applies to the
// neighbours of a node. For the trees and the explicit scheme they multiply
// known next-layer values; for the implicit scheme they are the sub-, main
// and super-diagonal of the system solved for the current layer.
type ThreePoint struct {
	Dt       float64
	Dx       float64
	Drift    float64 // r - q - sigma^2/2
	Up       float64
	Mid      float64
	Down     float64
	Discount float64 // applied after weighting; 1 when folded into Mid
}

func drift(rate, dividend, volatility float64) float64 {
	return rate - dividend - 0.5*volatility*volatility
}

// NewTrinomialCoefficients returns the log-space trinomial tree weights.
// They sum to one; discounting is kept separate.
func NewTrinomialCoefficients(volatility, rate, dividend, maturity, dx float64, steps int) ThreePoint {
	dt := maturity / float64(steps)
	nu := drift(rate, dividend, volatility)
	a := (volatility*volatility*dt + nu*nu*dt*dt) / (dx * dx)
	b := nu * dt / dx
	return ThreePoint{
		Dt:       dt,
		Dx:       dx,
		Drift:    nu,
		Up:       0.5 * (a + b),
		Mid:      1 - a,
		Down:     0.5 * (a - b),
		Discount: math.Exp(-rate * dt),
	}
}

// NewExplicitCoefficients returns the explicit finite-difference weights.
// The r*dt discount term is folded into Mid.
func NewExplicitCoefficients(volatility, rate, dividend, maturity, dx float64, steps int) ThreePoint {
	dt := maturity / float64(steps)
	nu := drift(rate, dividend, volatility)
	s2 := volatility * volatility / (dx * dx)
	return ThreePoint{
		Dt:       dt,
		Dx:       dx,
		Drift:    nu,
		Up:       0.5 * dt * (s2 + nu/dx),
		Mid:      1 - dt*s2 - rate*dt,
		Down:     0.5 * dt * (s2 - nu/dx),
		Discount: 1,
	}
}

// NewImplicitCoefficients returns the implicit finite-difference weights.
// Up and Down are non-positive for a diffusion-dominated grid: they sit on
// the left-hand side next to the unknown layer.
func NewImplicitCoefficients(volatility, rate, dividend, maturity, dx float64, steps int) ThreePoint {
	dt := maturity / float64(steps)
	nu := drift(rate, dividend, volatility)
	s2 := volatility * volatility / (dx * dx)
	return ThreePoint{
		Dt:       dt,
		Dx:       dx,
		Drift:    nu,
		Up:       -0.5 * dt * (s2 + nu/dx),
		Mid:      1 + dt*s2 + rate*dt,
		Down:     -0.5 * dt * (s2 - nu/dx),
		Discount: 1,
	}
}

// checkProbabilities requires each weight to lie in [0, 1].
func (c ThreePoint) checkProbabilities(method string) *apperrors.InstabilityError {
	for _, w := range []struct {
		name string
		v    float64
	}{{"pu", c.Up}, {"pm", c.Mid}, {"pd", c.Down}} {
		if !isFinite(w.v) || w.v < 0 || w.v > 1 {
			return apperrors.NewInstabilityError(method, w.name, w.v, "weight outside [0, 1]")
		}
	}
	return nil
}

// checkDominance requires |pm| >= |pu| + |pd|, which keeps the Thomas
// elimination free of growing pivots.
func (c ThreePoint) checkDominance(method string) *apperrors.InstabilityError {
	margin := math.Abs(c.Mid) - math.Abs(c.Up) - math.Abs(c.Down)
	if !isFinite(margin) || margin < 0 {
		return apperrors.NewInstabilityError(method, "pm", c.Mid, "system is not diagonally dominant")
	}
	return nil
}

// SpreadCoefficients are the joint move probabilities of the two-factor
// binomial tree, already multiplied by the one-step discount factor. The
// first letter is the move of asset 1, the second of asset 2.
type SpreadCoefficients struct {
	Dt       float64
	Dx1      float64
	Dx2      float64
	UU       float64
	UD       float64
	DU       float64
	DD       float64
	Discount float64
}

// SpreadCoefficientsFor derives the four discounted joint probabilities for
// log steps dx_i = sigma_i*sqrt(dt).
func SpreadCoefficientsFor(vol1, vol2, div1, div2, rho, rate, maturity float64, steps int) SpreadCoefficients {
	dt := maturity / float64(steps)
	nu1 := drift(rate, div1, vol1)
	nu2 := drift(rate, div2, vol2)
	dx1 := vol1 * math.Sqrt(dt)
	dx2 := vol2 * math.Sqrt(dt)
	disc := math.Exp(-rate * dt)

	base := dx1 * dx2
	m1 := dx2 * nu1 * dt
	m2 := dx1 * nu2 * dt
	cross := rho * vol1 * vol2 * dt
	scale := disc / (4 * base)

	return SpreadCoefficients{
		Dt:       dt,
		Dx1:      dx1,
		Dx2:      dx2,
		UU:       (base + m1 + m2 + cross) * scale,
		UD:       (base + m1 - m2 - cross) * scale,
		DU:       (base - m1 + m2 - cross) * scale,
		DD:       (base - m1 - m2 + cross) * scale,
		Discount: disc,
	}
}

// Sum returns UU+UD+DU+DD, which equals Discount up to rounding.
func (c SpreadCoefficients) Sum() float64 {
	return c.UU + c.UD + c.DU + c.DD
}

func (c SpreadCoefficients) check(method string) *apperrors.InstabilityError {
	for _, w := range []struct {
		name string
		v    float64
	}{{"puu", c.UU}, {"pud", c.UD}, {"pdu", c.DU}, {"pdd", c.DD}} {
		if !isFinite(w.v) || w.v < 0 || w.v > 1 {
			return apperrors.NewInstabilityError(method, w.name, w.v, "joint probability outside [0, 1]")
		}
	}
	return nil
}
