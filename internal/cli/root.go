// Package cli provides the command-line interface for the pricer.
package cli

import (
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lattice-pricer/internal/config"
	"lattice-pricer/internal/logging"
	"lattice-pricer/internal/pricing"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Settings pricing.Settings
	Engine   *pricing.Engine
}

// setup loads configuration and builds the engine. It runs before every
// command so that --config and --debug take effect.
func (app *App) setup(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	app.Config = cfg

	if !cfg.Output.ColorEnabled {
		color.NoColor = true
	}

	app.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		app.Logger = app.Logger.Level(zerolog.DebugLevel)
	}

	opts, err := cfg.LatticeOptions()
	if err != nil {
		return err
	}
	app.Settings = pricing.Settings{
		Steps:     cfg.Engine.Steps,
		HalfWidth: cfg.Engine.HalfWidth,
		Devs:      cfg.Engine.Deviations,
		Options:   opts,
	}
	app.Engine = pricing.NewStandardEngine(app.Settings, app.Logger)

	app.Logger.Debug().
		Str("config", cfg.Path).
		Int("steps", cfg.Engine.Steps).
		Str("policy", cfg.Engine.InstabilityPolicy).
		Str("boundary", cfg.Engine.Boundary).
		Msg("Engine ready")
	return nil
}

// output returns an Output at the configured precision.
func (app *App) output(cmd *cobra.Command) *Output {
	o := NewOutput(cmd)
	if app.Config != nil {
		o.precision = app.Config.Output.Precision
	}
	return o
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "pricer",
		Short: "Lattice option pricer",
		Long: `Lattice Pricer values European and American options on recombining
lattices: binomial and trinomial trees, explicit and implicit finite
differences, and a two-factor binomial tree for spread options.

A closed-form Black-Scholes reference and a variance-reduced Monte-Carlo
estimator are available for comparison.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/lattice-pricer)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addLatticeCommands(rootCmd, app)
	addSimulationCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Lattice Pricer v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the pricer configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := app.output(cmd)
			dir, _ := cmd.Flags().GetString("config")
			path := config.ConfigPath(dir)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": path})
			} else {
				output.Println(path)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "template",
		Short: "Print the default configuration file",
		Run: func(cmd *cobra.Command, args []string) {
			NewOutput(cmd).Printf("%s", config.Template())
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Engine")
	output.Printf("  Instability:  %s\n", cfg.Engine.InstabilityPolicy)
	output.Printf("  Boundary:     %s\n", cfg.Engine.Boundary)
	output.Printf("  Steps:        %d\n", cfg.Engine.Steps)
	if cfg.Engine.HalfWidth > 0 {
		output.Printf("  Half width:   %d\n", cfg.Engine.HalfWidth)
	} else {
		output.Printf("  Half width:   %.1f std devs\n", cfg.Engine.Deviations)
	}
	output.Printf("  Delta bump:   %s%%\n", FormatPrice(100*cfg.Engine.Bump, 2))
	output.Println()

	output.Bold("Monte-Carlo")
	output.Printf("  Paths:        %d\n", cfg.MonteCarlo.Paths)
	output.Printf("  Steps:        %d\n", cfg.MonteCarlo.Steps)
	output.Printf("  Seed:         %d\n", cfg.MonteCarlo.Seed)
	output.Println()

	output.Bold("Output")
	output.Printf("  Precision:    %d\n", cfg.Output.Precision)
	output.Printf("  Color:        %v\n", cfg.Output.ColorEnabled)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:        %s\n", cfg.Logging.Level)
	output.Printf("  File:         %v\n", cfg.Logging.File)
	if cfg.Path != "" {
		output.Println()
		output.Info("Loaded from %s", cfg.Path)
	}
}
