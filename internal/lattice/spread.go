package lattice

import (
	"fmt"
	"math"

	"lattice-pricer/internal/logging"
	"lattice-pricer/internal/models"
)

// SpreadBinomial prices max(0, S1-S2-K) on a two-factor binomial tree.
//
// Both axes have 2N+1 log levels centred on the spots. Each step moves both
// indices by one, so at step i only offsets -i, -i+2, ..., i are reachable in
// each dimension. A node combines its four diagonal children with the
// discounted joint probabilities.
type SpreadBinomial struct {
	steps int
	opts  Options
}

// NewSpreadBinomial creates a two-factor tree with N steps.
func NewSpreadBinomial(steps int, opts ...Option) *SpreadBinomial {
	return &SpreadBinomial{steps: steps, opts: gatherOptions(opts)}
}

func (s *SpreadBinomial) Name() string {
	return fmt.Sprintf("SPREAD_BINOMIAL_%d", s.steps)
}

func (s *SpreadBinomial) PriceSpread(p models.SpreadParams) (float64, error) {
	if err := checkSteps("steps", s.steps); err != nil {
		return 0, err
	}
	if err := ValidateSpread(p); err != nil {
		return 0, err
	}

	c := SpreadCoefficientsFor(p.Volatility1, p.Volatility2, p.Dividend1, p.Dividend2,
		p.Correlation, p.Rate, p.Maturity, s.steps)
	if err := s.opts.guard(c.check(s.Name())); err != nil {
		return 0, err
	}
	logging.LogCoefficients(s.opts.Logger, s.Name(), map[string]float64{
		"puu": c.UU, "pud": c.UD, "pdu": c.DU, "pdd": c.DD, "disc": c.Discount,
	})

	axis1, err := LogAxis(p.Spot1, c.Dx1, s.steps)
	if err != nil {
		return 0, err
	}
	axis2, err := LogAxis(p.Spot2, c.Dx2, s.steps)
	if err != nil {
		return 0, err
	}

	payoff := SpreadIntrinsic(p.Strike)
	next := TerminalSpread(axis1, axis2, s.steps, payoff)
	cur := make([][]float64, len(next))
	for j := range cur {
		cur[j] = make([]float64, len(next[j]))
	}

	grid := Centered{Half: s.steps}
	american := p.Style.IsAmerican()
	for i := s.steps - 1; i >= 0; i-- {
		lo, hi := grid.Reachable(i)
		for j := lo; j <= hi; j += 2 {
			for k := lo; k <= hi; k += 2 {
				cur[j][k] = c.DD*next[j-1][k-1] + c.UD*next[j+1][k-1] +
					c.DU*next[j-1][k+1] + c.UU*next[j+1][k+1]
			}
		}
		if american {
			for j := lo; j <= hi; j += 2 {
				for k := lo; k <= hi; k += 2 {
					cur[j][k] = math.Max(cur[j][k], payoff(axis1.Levels[j], axis2.Levels[k]))
				}
			}
		}
		next, cur = cur, next
	}
	return next[grid.Index(0)][grid.Index(0)], nil
}
