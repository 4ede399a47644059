package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lattice-pricer/internal/blackscholes"
	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/lattice"
	"lattice-pricer/internal/models"
	"lattice-pricer/internal/pricing"
)

// addLatticeCommands adds one command per lattice method plus compare.
func addLatticeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBinomialCmd(app))
	rootCmd.AddCommand(newTrinomialCmd(app))
	rootCmd.AddCommand(newFiniteDifferenceCmd(app, pricing.MethodExplicit))
	rootCmd.AddCommand(newFiniteDifferenceCmd(app, pricing.MethodImplicit))
	rootCmd.AddCommand(newSpreadCmd(app))
	rootCmd.AddCommand(newCompareCmd(app))
	rootCmd.AddCommand(newConvergenceCmd(app))
}

func newBinomialCmd(app *App) *cobra.Command {
	contract := defaultContract("put", "american")
	contract.dividend = 0
	var grid gridFlags
	var up, down float64

	cmd := &cobra.Command{
		Use:   "binomial",
		Short: "Price on a binomial tree",
		Long: `Price an option on a recombining binomial tree.

With --up and --down the tree uses those fixed moves; otherwise the
Cox-Ross-Rubinstein factors u = exp(sigma*sqrt(dt)), d = 1/u apply.`,
		Example: `  pricer binomial --steps 3 --up 1.1 --down 0.9090909
  pricer binomial --type call --style european --steps 500 --delta`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := contract.params()
			if err != nil {
				return err
			}
			steps := app.steps(grid.steps)

			var build func(opts ...lattice.Option) lattice.Method
			switch {
			case up == 0 && down == 0:
				build = func(opts ...lattice.Option) lattice.Method { return lattice.NewCRR(steps, opts...) }
			case up > 0 && down > 0:
				build = func(opts ...lattice.Option) lattice.Method { return lattice.NewBinomial(steps, up, down, opts...) }
			default:
				return fmt.Errorf("--up and --down must be given together: %w", apperrors.ErrInvalidParameter)
			}
			return app.runMethod(cmd, build, p, grid)
		},
	}

	contract.register(cmd)
	grid.register(cmd, false, false)
	cmd.Flags().Float64Var(&up, "up", 0, "Up move factor u")
	cmd.Flags().Float64Var(&down, "down", 0, "Down move factor d")
	return cmd
}

func newTrinomialCmd(app *App) *cobra.Command {
	contract := defaultContract("call", "european")
	var grid gridFlags

	cmd := &cobra.Command{
		Use:   "trinomial",
		Short: "Price on a trinomial tree in log price",
		Example: `  pricer trinomial --steps 3 --dx 0.2
  pricer trinomial --type put --style american --trace --steps 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := contract.params()
			if err != nil {
				return err
			}
			steps := app.steps(grid.steps)
			dx := grid.dx
			if dx == 0 {
				dx = lattice.StableStep(p.Volatility, p.Maturity, steps)
			}
			return app.runMethod(cmd, func(opts ...lattice.Option) lattice.Method {
				return lattice.NewTrinomial(steps, dx, opts...)
			}, p, grid)
		},
	}

	contract.register(cmd)
	grid.register(cmd, false, true)
	return cmd
}

func newFiniteDifferenceCmd(app *App, kind string) *cobra.Command {
	contract := defaultContract("call", "european")
	if kind == pricing.MethodImplicit {
		contract = defaultContract("put", "american")
	}
	var grid gridFlags

	short := "Price with the explicit finite-difference scheme"
	if kind == pricing.MethodImplicit {
		short = "Price with the implicit finite-difference scheme"
	}

	cmd := &cobra.Command{
		Use:   kind,
		Short: short,
		Long: short + `.

The grid has 2*half+1 log-price nodes centred on spot. Edge rows follow the
configured boundary policy (linear extrapolation of the payoff, or neumann).`,
		Example: fmt.Sprintf(`  pricer %s --steps 3 --half 3 --dx 0.2
  pricer %s --steps 400 --delta`, kind, kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := contract.params()
			if err != nil {
				return err
			}
			steps := app.steps(grid.steps)
			dx := grid.dx
			if dx == 0 {
				dx = lattice.StableStep(p.Volatility, p.Maturity, steps)
			}
			half := grid.half
			if half == 0 {
				half = app.Settings.HalfWidth
			}
			if half == 0 {
				half = lattice.HalfWidthFor(p.Volatility, p.Maturity, dx, app.Settings.Devs)
			}

			return app.runMethod(cmd, func(opts ...lattice.Option) lattice.Method {
				if kind == pricing.MethodImplicit {
					return lattice.NewImplicitFD(steps, half, dx, opts...)
				}
				return lattice.NewExplicitFD(steps, half, dx, opts...)
			}, p, grid)
		},
	}

	contract.register(cmd)
	grid.register(cmd, true, true)
	return cmd
}

func newSpreadCmd(app *App) *cobra.Command {
	contract := defaultSpread()
	var steps int

	cmd := &cobra.Command{
		Use:   "spread",
		Short: "Price a spread call on a two-factor binomial tree",
		Long: `Price a call on S1 - S2 with strike K on a two-factor binomial tree
whose four branch probabilities reproduce the drifts, variances and
correlation of the two log prices.`,
		Example: `  pricer spread --steps 3 --rho 0.5
  pricer spread --style european --strike 0 --rho -0.3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			p, err := contract.params()
			if err != nil {
				return err
			}

			app.Engine.RegisterSpread(cmd.Name(), lattice.NewSpreadBinomial(app.steps(steps), app.latticeOptions()...))
			res, err := app.Engine.PriceSpread(cmd.Context(), cmd.Name(), p)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(res)
			}

			output.Bold("%s  %s SPREAD CALL", res.Method, p.Style)
			output.Dim("K=%g T=%g S1=%g S2=%g rho=%g", p.Strike, p.Maturity, p.Spot1, p.Spot2, p.Correlation)
			output.Printf("  Value:    %s\n", output.Price(res.Value))
			output.Printf("  Elapsed:  %s\n", FormatElapsed(res.Elapsed))
			app.warnPolicy(output)
			return nil
		},
	}

	contract.register(cmd)
	cmd.Flags().IntVarP(&steps, "steps", "n", 0, "Time steps (default from config)")
	return cmd
}

func newCompareCmd(app *App) *cobra.Command {
	contract := defaultContract("put", "american")
	var methods []string
	var steps int

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Price one contract with every lattice method",
		Long: `Price one contract with each registered lattice method and, for
European contracts, show the error against Black-Scholes.`,
		Example: `  pricer compare
  pricer compare --style european --type call --steps 800
  pricer compare --methods crr,implicit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			p, err := contract.params()
			if err != nil {
				return err
			}

			engine := app.Engine
			if steps > 0 {
				s := app.Settings
				s.Steps = steps
				engine = pricing.NewStandardEngine(s, app.Logger)
			}

			results, err := engine.Compare(cmd.Context(), p, methods)
			var reference *float64
			if !p.Style.IsAmerican() && p.Volatility > 0 {
				bs := blackscholes.Price(p)
				reference = &bs
			}

			if output.IsJSON() {
				if jerr := output.JSON(struct {
					Contract     models.OptionParams    `json:"contract"`
					Results      []models.PricingResult `json:"results"`
					BlackScholes *float64               `json:"black_scholes,omitempty"`
				}{p, results, reference}); jerr != nil {
					return jerr
				}
				return err
			}

			output.Bold("%s %s  K=%g T=%g S=%g vol=%g r=%g q=%g", p.Style, p.Type,
				p.Strike, p.Maturity, p.Spot, p.Volatility, p.Rate, p.Dividend)
			headers := []string{"METHOD", "VALUE", "ELAPSED"}
			if reference != nil {
				headers = []string{"METHOD", "VALUE", "VS BS", "ERROR", "ELAPSED"}
			}
			table := NewTable(output, headers...)
			for _, r := range results {
				if reference != nil {
					diff := r.Value - *reference
					table.AddRow(r.Method, output.Price(r.Value), output.Signed(diff),
						FormatRelative(diff, *reference), FormatElapsed(r.Elapsed))
				} else {
					table.AddRow(r.Method, output.Price(r.Value), FormatElapsed(r.Elapsed))
				}
			}
			if reference != nil {
				table.AddRow("BLACK_SCHOLES", output.Price(*reference), "", "", "")
			}
			table.Render()
			return err
		},
	}

	contract.register(cmd)
	cmd.Flags().StringSliceVar(&methods, "methods", nil,
		"Methods to run: "+strings.Join([]string{pricing.MethodCRR, pricing.MethodTrinomial,
			pricing.MethodExplicit, pricing.MethodImplicit}, ", ")+" (default all)")
	cmd.Flags().IntVarP(&steps, "steps", "n", 0, "Time steps (default from config)")
	return cmd
}

// convergencePoint is one row of a convergence study.
type convergencePoint struct {
	Steps  int      `json:"steps"`
	Method string   `json:"method"`
	Value  float64  `json:"value"`
	Error  *float64 `json:"error,omitempty"`
}

func newConvergenceCmd(app *App) *cobra.Command {
	contract := defaultContract("call", "european")
	var (
		method    string
		from      int
		doublings int
	)

	cmd := &cobra.Command{
		Use:   "convergence",
		Short: "Price one contract on successively finer grids",
		Long: `Price one contract with a single method while doubling the number of
time steps. European contracts show the error against Black-Scholes and the
ratio of successive errors; American contracts show the change between rows.`,
		Example: `  pricer convergence --method crr
  pricer convergence --method implicit --type put --style american --from 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			p, err := contract.params()
			if err != nil {
				return err
			}
			if from < 1 || doublings < 0 {
				return fmt.Errorf("--from must be positive and --doublings non-negative: %w", apperrors.ErrInvalidParameter)
			}

			european := !p.Style.IsAmerican() && p.Volatility > 0
			reference := blackscholes.Price(p)

			points := make([]convergencePoint, 0, doublings+1)
			for k, n := 0, from; k <= doublings; k, n = k+1, n*2 {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				s := app.Settings
				s.Steps = n
				s.Options = app.latticeOptions()
				m, err := pricing.Sized(method, s)
				if err != nil {
					return err
				}
				v, err := m.Price(p)
				if err != nil {
					return apperrors.Wrapf(err, "%s", m.Name())
				}
				pt := convergencePoint{Steps: n, Method: m.Name(), Value: v}
				if european {
					e := v - reference
					pt.Error = &e
				}
				points = append(points, pt)
			}

			if output.IsJSON() {
				return output.JSON(points)
			}

			output.Bold("%s %s %s  K=%g T=%g S=%g vol=%g", method, p.Style, p.Type,
				p.Strike, p.Maturity, p.Spot, p.Volatility)
			var table *Table
			if european {
				table = NewTable(output, "STEPS", "VALUE", "ERROR", "RATIO")
			} else {
				table = NewTable(output, "STEPS", "VALUE", "CHANGE")
			}
			for i, pt := range points {
				row := []string{fmt.Sprint(pt.Steps), output.Price(pt.Value)}
				switch {
				case european:
					ratio := ""
					if i > 0 && *pt.Error != 0 {
						ratio = FormatPrice(*points[i-1].Error / *pt.Error, 2)
					}
					row = append(row, output.Signed(*pt.Error), ratio)
				case i > 0:
					row = append(row, output.Signed(pt.Value-points[i-1].Value))
				default:
					row = append(row, "")
				}
				table.AddRow(row...)
			}
			table.Render()
			if european {
				output.Dim("Black-Scholes %s", output.Price(reference))
			}
			return nil
		},
	}

	contract.register(cmd)
	cmd.Flags().StringVarP(&method, "method", "m", pricing.MethodCRR, "Method: crr, trinomial, explicit, implicit")
	cmd.Flags().IntVar(&from, "from", 25, "Steps on the coarsest grid")
	cmd.Flags().IntVar(&doublings, "doublings", 4, "Number of times the step count doubles")
	return cmd
}

// steps returns n, or the configured step count when n is zero.
func (app *App) steps(n int) int {
	if n != 0 {
		return n
	}
	return app.Settings.Steps
}

func (app *App) latticeOptions(extra ...lattice.Option) []lattice.Option {
	opts := append([]lattice.Option{lattice.WithLogger(app.Logger)}, app.Settings.Options...)
	return append(opts, extra...)
}

// runMethod prices p with the method from build, registered on the engine
// under the command name, and renders the result.
func (app *App) runMethod(cmd *cobra.Command, build func(opts ...lattice.Option) lattice.Method, p models.OptionParams, grid gridFlags) error {
	output := app.output(cmd)

	var extra []lattice.Option
	tracing := grid.trace && !output.IsJSON()
	if tracing {
		output.Dim("%-6s %s", "STEP", "VALUES")
		extra = append(extra, lattice.WithLayerHook(func(step int, prices, values []float64) {
			if !tracing {
				return
			}
			cells := make([]string, len(values))
			for i, v := range values {
				cells[i] = output.Price(v)
			}
			output.Printf("%-6d %s\n", step, strings.Join(cells, " "))
		}))
	}

	m := build(app.latticeOptions(extra...)...)
	app.Engine.Register(cmd.Name(), m)

	res, err := app.Engine.Price(cmd.Context(), cmd.Name(), p)
	if err != nil {
		return err
	}
	tracing = false

	if grid.delta {
		d, err := pricing.Delta(m, p, app.Config.Engine.Bump)
		if err != nil {
			return apperrors.Wrapf(err, "%s delta", m.Name())
		}
		res.Delta = &d
	}

	if output.IsJSON() {
		return output.JSON(res)
	}
	if grid.trace {
		output.Println()
	}
	renderResult(output, p, res)
	app.warnPolicy(output)
	return nil
}

// warnPolicy flags text results priced under the warn instability policy.
func (app *App) warnPolicy(output *Output) {
	if policy, _ := lattice.ParseInstabilityPolicy(app.Config.Engine.InstabilityPolicy); policy == lattice.WarnOnInstability {
		output.Warning("Instability policy is warn: out-of-range coefficients are logged, not rejected")
	}
}

func renderResult(output *Output, p models.OptionParams, res *models.PricingResult) {
	output.Bold("%s  %s %s", res.Method, p.Style, p.Type)
	output.Dim("K=%g T=%g S=%g vol=%g r=%g q=%g", p.Strike, p.Maturity, p.Spot, p.Volatility, p.Rate, p.Dividend)
	output.Printf("  Value:    %s\n", output.Price(res.Value))
	if res.Delta != nil {
		output.Printf("  Delta:    %s\n", output.Price(*res.Delta))
	}
	if p.Volatility > 0 {
		bs := blackscholes.Price(p.WithStyle(models.StyleEuropean))
		label := "BS:      "
		if p.Style.IsAmerican() {
			label = "BS (EU): "
		}
		output.Printf("  %s %s (%s)\n", label, output.Price(bs), output.Signed(res.Value-bs))
	}
	output.Printf("  Elapsed:  %s\n", FormatElapsed(res.Elapsed))
}
