package lattice

import (
	"fmt"

	"lattice-pricer/internal/logging"
	"lattice-pricer/internal/models"
)

// Binomial prices vanilla options on a recombining binomial tree. The tree
// is triangular: step i holds nodes 0..i, node j having made j net up moves.
type Binomial struct {
	steps int
	up    float64
	down  float64
	crr   bool
	opts  Options
}

// NewBinomial creates a tree with fixed up and down multipliers.
func NewBinomial(steps int, up, down float64, opts ...Option) *Binomial {
	return &Binomial{steps: steps, up: up, down: down, opts: gatherOptions(opts)}
}

// NewCRR creates a Cox-Ross-Rubinstein tree whose moves are derived from the
// contract volatility.
func NewCRR(steps int, opts ...Option) *Binomial {
	return &Binomial{steps: steps, crr: true, opts: gatherOptions(opts)}
}

func (b *Binomial) Name() string {
	if b.crr {
		return fmt.Sprintf("CRR_%d", b.steps)
	}
	return fmt.Sprintf("BINOMIAL_%d", b.steps)
}

func (b *Binomial) Steps() int {
	return b.steps
}

func (b *Binomial) Price(p models.OptionParams) (float64, error) {
	if err := checkSteps("steps", b.steps); err != nil {
		return 0, err
	}
	if err := ValidateOption(p, b.crr); err != nil {
		return 0, err
	}

	up, down := b.up, b.down
	if b.crr {
		up, down = CRRFactors(p.Volatility, p.Maturity, b.steps)
	}
	axis, err := BinomialAxis(p.Spot, up, down, b.steps)
	if err != nil {
		return 0, err
	}

	c := NewBinomialCoefficients(p.Rate, p.Dividend, p.Maturity, up, down, b.steps)
	if err := b.opts.guard(c.check(b.Name())); err != nil {
		return 0, err
	}
	logging.LogCoefficients(b.opts.Logger, b.Name(), map[string]float64{
		"u": c.Up, "d": c.Down, "p": c.P, "disc": c.Discount,
	})

	intrinsic := Intrinsic(p.Type, p.Strike)
	prices := append([]float64(nil), axis.Levels...)
	layer := func(i int, next, cur []float64) ([]float64, int, int, error) {
		for j := 0; j <= i; j++ {
			cur[j] = c.Discount * (c.P*next[j+1] + (1-c.P)*next[j])
			prices[j] /= c.Down
		}
		return prices, 0, i, nil
	}

	values, err := rollback(b.opts, b.steps, Terminal(axis.Levels, intrinsic), layer, p.Style.IsAmerican(), intrinsic)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}
