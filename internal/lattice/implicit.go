package lattice

import (
	"fmt"

	"lattice-pricer/internal/logging"
	"lattice-pricer/internal/models"
)

// ImplicitFD prices vanilla options with the fully implicit
// finite-difference scheme. Each step solves
//
//	pd*V[j-1] + pm*V[j] + pu*V[j+1] = next[j]    for interior j
//	V[0] - V[1] = lower,  V[M] - V[M-1] = upper
//
// with a Thomas elimination and then applies the early-exercise floor.
type ImplicitFD struct {
	steps int
	half  int
	dx    float64
	opts  Options
}

// NewImplicitFD creates a scheme with N time steps, half-width Nj and log
// step dx.
func NewImplicitFD(steps, half int, dx float64, opts ...Option) *ImplicitFD {
	return &ImplicitFD{steps: steps, half: half, dx: dx, opts: gatherOptions(opts)}
}

func (m *ImplicitFD) Name() string {
	return fmt.Sprintf("IMPLICIT_FD_%dx%d", m.steps, m.half)
}

func (m *ImplicitFD) Price(p models.OptionParams) (float64, error) {
	if err := checkSteps("steps", m.steps); err != nil {
		return 0, err
	}
	if err := ValidateOption(p, true); err != nil {
		return 0, err
	}
	axis, err := LogAxis(p.Spot, m.dx, m.half)
	if err != nil {
		return 0, err
	}

	c := NewImplicitCoefficients(p.Volatility, p.Rate, p.Dividend, p.Maturity, m.dx, m.steps)
	if err := m.opts.guard(c.checkDominance(m.Name())); err != nil {
		return 0, err
	}
	logging.LogCoefficients(m.opts.Logger, m.Name(), map[string]float64{
		"pu": c.Up, "pm": c.Mid, "pd": c.Down, "dt": c.Dt, "dx": c.Dx,
	})

	intrinsic := Intrinsic(p.Type, p.Strike)
	lower, upper := m.opts.Boundary.Edges(axis.Levels, intrinsic)
	sys := implicitSystem(c, axis.Len())
	last := axis.Len() - 1

	layer := func(_ int, next, cur []float64) ([]float64, int, int, error) {
		copy(cur, next)
		cur[0] = lower
		cur[last] = upper
		if err := sys.Solve(cur, cur); err != nil {
			return nil, 0, 0, err
		}
		return axis.Levels, 0, last, nil
	}

	values, err := rollback(m.opts, m.steps, Terminal(axis.Levels, intrinsic), layer, p.Style.IsAmerican(), intrinsic)
	if err != nil {
		return 0, err
	}
	return values[Centered{Half: m.half}.Index(0)], nil
}

// implicitSystem builds the constant matrix of an n-node grid with the two
// boundary rows overwritten by the edge-gap equations.
func implicitSystem(c ThreePoint, n int) *Tridiagonal {
	sys := NewTridiagonal(n)
	for j := 1; j < n-1; j++ {
		sys.Lower[j] = c.Down
		sys.Diag[j] = c.Mid
		sys.Upper[j] = c.Up
	}
	sys.Diag[0], sys.Upper[0] = 1, -1
	sys.Lower[n-1], sys.Diag[n-1] = -1, 1
	return sys
}
