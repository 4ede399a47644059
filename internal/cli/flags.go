package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/models"
)

// contractFlags binds the single-asset contract to command flags.
type contractFlags struct {
	optionType string
	style      string
	strike     float64
	maturity   float64
	spot       float64
	volatility float64
	rate       float64
	dividend   float64
}

func defaultContract(optionType, style string) contractFlags {
	return contractFlags{
		optionType: optionType,
		style:      style,
		strike:     100,
		maturity:   1,
		spot:       100,
		volatility: 0.2,
		rate:       0.06,
		dividend:   0.03,
	}
}

func (f *contractFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.optionType, "type", f.optionType, "Option type: call or put")
	cmd.Flags().StringVar(&f.style, "style", f.style, "Exercise style: european or american")
	cmd.Flags().Float64VarP(&f.strike, "strike", "K", f.strike, "Strike price")
	cmd.Flags().Float64VarP(&f.maturity, "maturity", "T", f.maturity, "Time to maturity in years")
	cmd.Flags().Float64VarP(&f.spot, "spot", "S", f.spot, "Spot price")
	cmd.Flags().Float64Var(&f.volatility, "vol", f.volatility, "Annual volatility")
	cmd.Flags().Float64VarP(&f.rate, "rate", "r", f.rate, "Continuously compounded risk-free rate")
	cmd.Flags().Float64Var(&f.dividend, "div", f.dividend, "Continuous dividend yield")
}

func (f *contractFlags) params() (models.OptionParams, error) {
	t, ok := models.ParseOptionType(f.optionType)
	if !ok {
		return models.OptionParams{}, fmt.Errorf("option type %q: %w", f.optionType, apperrors.ErrInvalidParameter)
	}
	s, ok := models.ParseExerciseStyle(f.style)
	if !ok {
		return models.OptionParams{}, fmt.Errorf("exercise style %q: %w", f.style, apperrors.ErrInvalidParameter)
	}
	return models.OptionParams{
		Type:       t,
		Style:      s,
		Strike:     f.strike,
		Maturity:   f.maturity,
		Spot:       f.spot,
		Volatility: f.volatility,
		Dividend:   f.dividend,
		Rate:       f.rate,
	}, nil
}

// spreadFlags binds a two-asset spread contract to command flags.
type spreadFlags struct {
	style       string
	strike      float64
	maturity    float64
	spot1       float64
	spot2       float64
	vol1        float64
	vol2        float64
	div1        float64
	div2        float64
	correlation float64
	rate        float64
}

func defaultSpread() spreadFlags {
	return spreadFlags{
		style:       "american",
		strike:      1,
		maturity:    1,
		spot1:       100,
		spot2:       100,
		vol1:        0.2,
		vol2:        0.3,
		div1:        0.03,
		div2:        0.04,
		correlation: 0.5,
		rate:        0.06,
	}
}

func (f *spreadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.style, "style", f.style, "Exercise style: european or american")
	cmd.Flags().Float64VarP(&f.strike, "strike", "K", f.strike, "Strike on S1-S2")
	cmd.Flags().Float64VarP(&f.maturity, "maturity", "T", f.maturity, "Time to maturity in years")
	cmd.Flags().Float64Var(&f.spot1, "spot1", f.spot1, "Spot of the first asset")
	cmd.Flags().Float64Var(&f.spot2, "spot2", f.spot2, "Spot of the second asset")
	cmd.Flags().Float64Var(&f.vol1, "vol1", f.vol1, "Volatility of the first asset")
	cmd.Flags().Float64Var(&f.vol2, "vol2", f.vol2, "Volatility of the second asset")
	cmd.Flags().Float64Var(&f.div1, "div1", f.div1, "Dividend yield of the first asset")
	cmd.Flags().Float64Var(&f.div2, "div2", f.div2, "Dividend yield of the second asset")
	cmd.Flags().Float64Var(&f.correlation, "rho", f.correlation, "Correlation of the two log returns")
	cmd.Flags().Float64VarP(&f.rate, "rate", "r", f.rate, "Continuously compounded risk-free rate")
}

func (f *spreadFlags) params() (models.SpreadParams, error) {
	s, ok := models.ParseExerciseStyle(f.style)
	if !ok {
		return models.SpreadParams{}, fmt.Errorf("exercise style %q: %w", f.style, apperrors.ErrInvalidParameter)
	}
	return models.SpreadParams{
		Style:       s,
		Strike:      f.strike,
		Maturity:    f.maturity,
		Spot1:       f.spot1,
		Spot2:       f.spot2,
		Volatility1: f.vol1,
		Volatility2: f.vol2,
		Dividend1:   f.div1,
		Dividend2:   f.div2,
		Correlation: f.correlation,
		Rate:        f.rate,
	}, nil
}

// gridFlags sizes a lattice. Zero values fall back to the configured engine
// settings or to a step derived from the contract.
type gridFlags struct {
	steps int
	half  int
	dx    float64
	trace bool
	delta bool
}

func (f *gridFlags) register(cmd *cobra.Command, withHalf, withDx bool) {
	cmd.Flags().IntVarP(&f.steps, "steps", "n", 0, "Time steps (default from config)")
	if withHalf {
		cmd.Flags().IntVar(&f.half, "half", 0, "Price nodes either side of spot, Nj (default from config)")
	}
	if withDx {
		cmd.Flags().Float64Var(&f.dx, "dx", 0, "Log price step (default sigma*sqrt(3*dt))")
	}
	cmd.Flags().BoolVar(&f.trace, "trace", false, "Print every value layer of the backward induction")
	cmd.Flags().BoolVar(&f.delta, "delta", false, "Also report a central-difference delta")
}
