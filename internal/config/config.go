// Package config provides configuration management for the pricer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/lattice"
	"lattice-pricer/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Engine     EngineConfig     `mapstructure:"engine"`
	MonteCarlo MonteCarloConfig `mapstructure:"montecarlo"`
	Output     OutputConfig     `mapstructure:"output"`
	Logging    LoggingConfig    `mapstructure:"logging"`

	// Path is the file the configuration was read from, empty when only
	// defaults apply.
	Path string `mapstructure:"-"`
}

// EngineConfig sizes the lattice methods and picks their policies.
type EngineConfig struct {
	InstabilityPolicy string  `mapstructure:"instability_policy"` // fail, warn
	Boundary          string  `mapstructure:"boundary"`           // linear, neumann
	Steps             int     `mapstructure:"steps"`
	HalfWidth         int     `mapstructure:"half_width"` // 0 = derive from deviations
	Deviations        float64 `mapstructure:"deviations"`
	Bump              float64 `mapstructure:"bump"`
}

// MonteCarloConfig sizes simulations.
type MonteCarloConfig struct {
	Paths int    `mapstructure:"paths"`
	Steps int    `mapstructure:"steps"`
	Seed  uint64 `mapstructure:"seed"`
}

// OutputConfig holds display settings.
type OutputConfig struct {
	Precision    int  `mapstructure:"precision"`
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// LoggingConfig mirrors logging.LogConfig.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/lattice-pricer"
	}
	return filepath.Join(home, ".config", "lattice-pricer")
}

// ConfigPath returns the config file location inside configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.instability_policy", "fail")
	v.SetDefault("engine.boundary", "linear")
	v.SetDefault("engine.steps", 200)
	v.SetDefault("engine.half_width", 0)
	v.SetDefault("engine.deviations", 5.0)
	v.SetDefault("engine.bump", 0.01)

	v.SetDefault("montecarlo.paths", 1000)
	v.SetDefault("montecarlo.steps", 10)
	v.SetDefault("montecarlo.seed", 42)

	v.SetDefault("output.precision", 4)
	v.SetDefault("output.color_enabled", true)

	def := logging.DefaultLogConfig()
	v.SetDefault("logging.level", def.Level)
	v.SetDefault("logging.console", def.Console)
	v.SetDefault("logging.file", def.File)
	v.SetDefault("logging.file_path", def.FilePath)
	v.SetDefault("logging.max_size", def.MaxSize)
	v.SetDefault("logging.max_backups", def.MaxBackups)
	v.SetDefault("logging.max_age", def.MaxAge)
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing file
// is replaced by a commented template and the defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	cfg := &Config{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	} else {
		cfg.Path = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PRICER_INSTABILITY_POLICY"); v != "" {
		cfg.Engine.InstabilityPolicy = v
	}
	if v := os.Getenv("PRICER_BOUNDARY"); v != "" {
		cfg.Engine.Boundary = v
	}
	if v := os.Getenv("PRICER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := lattice.ParseInstabilityPolicy(c.Engine.InstabilityPolicy); err != nil {
		return err
	}
	if _, err := lattice.ParseBoundaryPolicy(c.Engine.Boundary); err != nil {
		return err
	}
	if c.Engine.Steps <= 0 {
		return fmt.Errorf("engine.steps must be positive: %w", apperrors.ErrConfigInvalid)
	}
	if c.Engine.HalfWidth < 0 {
		return fmt.Errorf("engine.half_width must be non-negative: %w", apperrors.ErrConfigInvalid)
	}
	if c.Engine.HalfWidth == 0 && c.Engine.Deviations <= 0 {
		return fmt.Errorf("engine.deviations must be positive when half_width is 0: %w", apperrors.ErrConfigInvalid)
	}
	if c.Engine.Bump <= 0 || c.Engine.Bump >= 1 {
		return fmt.Errorf("engine.bump must lie in (0, 1): %w", apperrors.ErrConfigInvalid)
	}
	if c.MonteCarlo.Paths < 2 {
		return fmt.Errorf("montecarlo.paths must be at least 2: %w", apperrors.ErrConfigInvalid)
	}
	if c.MonteCarlo.Steps <= 0 {
		return fmt.Errorf("montecarlo.steps must be positive: %w", apperrors.ErrConfigInvalid)
	}
	if c.Output.Precision < 0 || c.Output.Precision > 12 {
		return fmt.Errorf("output.precision must be between 0 and 12: %w", apperrors.ErrConfigInvalid)
	}
	return nil
}

// LatticeOptions translates the engine policies into lattice options.
func (c *Config) LatticeOptions() ([]lattice.Option, error) {
	policy, err := lattice.ParseInstabilityPolicy(c.Engine.InstabilityPolicy)
	if err != nil {
		return nil, err
	}
	boundary, err := lattice.ParseBoundaryPolicy(c.Engine.Boundary)
	if err != nil {
		return nil, err
	}
	return []lattice.Option{
		lattice.WithInstabilityPolicy(policy),
		lattice.WithBoundary(boundary),
	}, nil
}

// LogConfig returns the logging section as a logging.LogConfig.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		NoColor:    !c.Output.ColorEnabled,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
