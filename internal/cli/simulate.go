package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lattice-pricer/internal/blackscholes"
	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/logging"
	"lattice-pricer/internal/models"
	"lattice-pricer/internal/montecarlo"
	"lattice-pricer/internal/pricing"
)

// Hedge sources for the Monte-Carlo control variate.
const (
	HedgeBlackScholes = "bs"
	HedgeNone         = "none"
)

// addSimulationCommands adds the Monte-Carlo command.
func addSimulationCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newMonteCarloCmd(app))
}

func newMonteCarloCmd(app *App) *cobra.Command {
	contract := defaultContract("call", "european")
	var (
		paths      int
		steps      int
		seed       uint64
		hedge      string
		hedgeSteps int
	)

	cmd := &cobra.Command{
		Use:     "montecarlo",
		Aliases: []string{"mc"},
		Short:   "Estimate a European option by simulation",
		Long: `Estimate a European option by simulating antithetic pairs of
geometric Brownian motion paths, each carrying a delta-hedge control
variate rebalanced --steps times.

The hedge delta comes from Black-Scholes (bs), from a lattice method
(crr, trinomial, explicit, implicit) sized by --hedge-steps, or is
switched off (none).`,
		Example: `  pricer montecarlo --paths 5000
  pricer mc --hedge crr --hedge-steps 50 --paths 200
  pricer mc --hedge none --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			p, err := contract.params()
			if err != nil {
				return err
			}

			cfg := montecarlo.Config{
				Paths: app.Config.MonteCarlo.Paths,
				Steps: app.Config.MonteCarlo.Steps,
				Seed:  app.Config.MonteCarlo.Seed,
			}
			if cmd.Flags().Changed("paths") {
				cfg.Paths = paths
			}
			if cmd.Flags().Changed("steps") {
				cfg.Steps = steps
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}

			delta, err := app.hedgeDelta(hedge, hedgeSteps, p)
			if err != nil {
				return err
			}

			logger := logging.WithOperation(app.Logger, "montecarlo")
			sim := montecarlo.NewSimulator(cfg, &logger)
			res, err := sim.Price(cmd.Context(), p, delta)
			if err != nil {
				return err
			}
			bs := blackscholes.Price(p)

			if output.IsJSON() {
				return output.JSON(struct {
					Hedge        string  `json:"hedge"`
					Seed         uint64  `json:"seed"`
					BlackScholes float64 `json:"black_scholes"`
					*models.SimulationResult
				}{hedge, cfg.Seed, bs, res})
			}

			output.Bold("MONTE_CARLO  %s %s  (hedge: %s)", p.Style, p.Type, hedge)
			output.Dim("K=%g T=%g S=%g vol=%g r=%g q=%g", p.Strike, p.Maturity, p.Spot, p.Volatility, p.Rate, p.Dividend)
			output.Printf("  Value:    %s\n", output.Price(res.Value))
			output.Printf("  Std err:  %s\n", output.Price(res.StdErr))
			output.Printf("  Std dev:  %s\n", output.Price(res.StdDev))
			output.Printf("  BS:       %s (%s)\n", output.Price(bs), output.Signed(res.Value-bs))
			output.Dim("%d path pairs, %d steps, seed %d", res.Paths, res.Steps, cfg.Seed)
			return nil
		},
	}

	contract.register(cmd)
	cmd.Flags().IntVar(&paths, "paths", 0, "Antithetic path pairs (default from config)")
	cmd.Flags().IntVarP(&steps, "steps", "n", 0, "Hedge rebalancing steps (default from config)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default from config)")
	cmd.Flags().StringVar(&hedge, "hedge", HedgeBlackScholes, "Hedge delta source: bs, none, crr, trinomial, explicit, implicit")
	cmd.Flags().IntVar(&hedgeSteps, "hedge-steps", 50, "Lattice steps for a lattice hedge")
	return cmd
}

// hedgeDelta resolves the control-variate delta for p.
func (app *App) hedgeDelta(hedge string, steps int, p models.OptionParams) (montecarlo.DeltaFunc, error) {
	switch hedge {
	case HedgeBlackScholes:
		return montecarlo.BlackScholesDelta(p), nil
	case HedgeNone:
		return func(float64, float64) (float64, error) { return 0, nil }, nil
	}

	s := app.Settings
	s.Steps = steps
	s.Options = app.latticeOptions()
	m, err := pricing.Sized(hedge, s)
	if err != nil {
		return nil, fmt.Errorf("hedge %q: %w", hedge, apperrors.ErrInvalidParameter)
	}
	app.Logger.Debug().Str("hedge", m.Name()).Msg("Hedging with lattice delta")
	return pricing.HedgeDelta(m, p, app.Config.Engine.Bump), nil
}
