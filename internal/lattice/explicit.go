package lattice

import (
	"fmt"

	"lattice-pricer/internal/logging"
	"lattice-pricer/internal/models"
)

// ExplicitFD prices vanilla options with the explicit finite-difference
// scheme on a rectangular log-price grid of 2*half+1 nodes. Every step fills
// the interior from the next layer and sets the two edge nodes from the
// boundary policy.
type ExplicitFD struct {
	steps int
	half  int
	dx    float64
	opts  Options
}

// NewExplicitFD creates a scheme with N time steps, half-width Nj and log
// step dx.
func NewExplicitFD(steps, half int, dx float64, opts ...Option) *ExplicitFD {
	return &ExplicitFD{steps: steps, half: half, dx: dx, opts: gatherOptions(opts)}
}

func (e *ExplicitFD) Name() string {
	return fmt.Sprintf("EXPLICIT_FD_%dx%d", e.steps, e.half)
}

func (e *ExplicitFD) Price(p models.OptionParams) (float64, error) {
	if err := checkSteps("steps", e.steps); err != nil {
		return 0, err
	}
	if err := ValidateOption(p, true); err != nil {
		return 0, err
	}
	axis, err := LogAxis(p.Spot, e.dx, e.half)
	if err != nil {
		return 0, err
	}

	c := NewExplicitCoefficients(p.Volatility, p.Rate, p.Dividend, p.Maturity, e.dx, e.steps)
	if err := e.opts.guard(c.checkProbabilities(e.Name())); err != nil {
		return 0, err
	}
	logging.LogCoefficients(e.opts.Logger, e.Name(), map[string]float64{
		"pu": c.Up, "pm": c.Mid, "pd": c.Down, "dt": c.Dt, "dx": c.Dx,
	})

	intrinsic := Intrinsic(p.Type, p.Strike)
	lower, upper := e.opts.Boundary.Edges(axis.Levels, intrinsic)
	m := axis.Len() - 1
	layer := func(_ int, next, cur []float64) ([]float64, int, int, error) {
		for j := 1; j < m; j++ {
			cur[j] = c.Up*next[j+1] + c.Mid*next[j] + c.Down*next[j-1]
		}
		cur[0] = cur[1] + lower
		cur[m] = cur[m-1] + upper
		return axis.Levels, 0, m, nil
	}

	values, err := rollback(e.opts, e.steps, Terminal(axis.Levels, intrinsic), layer, p.Style.IsAmerican(), intrinsic)
	if err != nil {
		return 0, err
	}
	return values[Centered{Half: e.half}.Index(0)], nil
}
