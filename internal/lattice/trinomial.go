package lattice

import (
	"fmt"

	"lattice-pricer/internal/logging"
	"lattice-pricer/internal/models"
)

// Trinomial prices vanilla options on a log-space trinomial tree with
// discount-free probabilities and a separate one-step discount factor.
// Nodes are addressed by a Centered transform of half-width N; step i
// populates offsets -i..i, so the tree never reaches the grid edge.
type Trinomial struct {
	steps int
	dx    float64
	opts  Options
}

// NewTrinomial creates a tree with N steps and log-price step dx.
func NewTrinomial(steps int, dx float64, opts ...Option) *Trinomial {
	return &Trinomial{steps: steps, dx: dx, opts: gatherOptions(opts)}
}

func (t *Trinomial) Name() string {
	return fmt.Sprintf("TRINOMIAL_%d", t.steps)
}

func (t *Trinomial) Price(p models.OptionParams) (float64, error) {
	if err := checkSteps("steps", t.steps); err != nil {
		return 0, err
	}
	if err := ValidateOption(p, true); err != nil {
		return 0, err
	}
	axis, err := LogAxis(p.Spot, t.dx, t.steps)
	if err != nil {
		return 0, err
	}

	c := NewTrinomialCoefficients(p.Volatility, p.Rate, p.Dividend, p.Maturity, t.dx, t.steps)
	if err := t.opts.guard(c.checkProbabilities(t.Name())); err != nil {
		return 0, err
	}
	logging.LogCoefficients(t.opts.Logger, t.Name(), map[string]float64{
		"pu": c.Up, "pm": c.Mid, "pd": c.Down, "disc": c.Discount,
	})

	grid := Centered{Half: t.steps}
	intrinsic := Intrinsic(p.Type, p.Strike)
	layer := func(i int, next, cur []float64) ([]float64, int, int, error) {
		lo, hi := grid.Reachable(i)
		for j := lo; j <= hi; j++ {
			cur[j] = c.Discount * (c.Up*next[j+1] + c.Mid*next[j] + c.Down*next[j-1])
		}
		return axis.Levels, lo, hi, nil
	}

	values, err := rollback(t.opts, t.steps, Terminal(axis.Levels, intrinsic), layer, p.Style.IsAmerican(), intrinsic)
	if err != nil {
		return 0, err
	}
	return values[grid.Index(0)], nil
}
