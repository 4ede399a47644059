// Package logging provides structured logging for pricing runs.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	NoColor    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogPath returns ~/.config/lattice-pricer/logs/pricer.log.
func DefaultLogPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lattice-pricer", "logs", "pricer.log")
}

// DefaultLogConfig returns the default logging configuration. File output is
// off; pricing runs are short-lived and the console is usually enough.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "warn",
		Console:    true,
		File:       false,
		FilePath:   DefaultLogPath(),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     14,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a logger writing to stderr and, optionally, a
// rotating file. Stdout is left to command output.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LogConfig, console io.Writer) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:         console,
			NoColor:     cfg.NoColor,
			TimeFormat:  time.Kitchen,
			FormatLevel: levelFormatter(cfg.NoColor),
		})
	}

	if cfg.File && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		return zerolog.Nop()
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(writer).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

func levelFormatter(noColor bool) zerolog.Formatter {
	return func(i interface{}) string {
		ll, ok := i.(string)
		if !ok {
			return "???"
		}
		if noColor {
			return strings.ToUpper(ll)
		}
		switch ll {
		case "debug":
			return "\033[36mDBG\033[0m"
		case "info":
			return "\033[32mINF\033[0m"
		case "warn":
			return "\033[33mWRN\033[0m"
		case "error":
			return "\033[31mERR\033[0m"
		default:
			return ll
		}
	}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}

// ContextKey is the type for context keys.
type ContextKey string

// LoggerKey is the context key for the logger.
const LoggerKey ContextKey = "logger"

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithMethod adds a pricing method name to the logger context.
func WithMethod(logger zerolog.Logger, method string) zerolog.Logger {
	return logger.With().Str("method", method).Logger()
}

// WithOperation adds an operation name to the logger context.
func WithOperation(logger zerolog.Logger, operation string) zerolog.Logger {
	return logger.With().Str("operation", operation).Logger()
}

// LogPricing logs a finished pricing run.
func LogPricing(logger zerolog.Logger, method string, value float64, elapsed time.Duration, err error) {
	if err != nil {
		logger.Error().
			Str("event", "pricing").
			Str("method", method).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("Pricing failed")
		return
	}
	logger.Info().
		Str("event", "pricing").
		Str("method", method).
		Float64("value", value).
		Dur("elapsed", elapsed).
		Msg("Pricing completed")
}

// LogCoefficients logs the derived per-step constants of a method at debug
// level, keys sorted.
func LogCoefficients(logger zerolog.Logger, method string, coefficients map[string]float64) {
	if logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	keys := make([]string, 0, len(coefficients))
	for k := range coefficients {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dict := zerolog.Dict()
	for _, k := range keys {
		dict = dict.Float64(k, coefficients[k])
	}
	logger.Debug().
		Str("event", "coefficients").
		Str("method", method).
		Dict("coefficients", dict).
		Msg("Transition coefficients")
}

// LogInstability logs an out-of-range coefficient that the caller chose to
// tolerate.
func LogInstability(logger zerolog.Logger, method, coefficient string, value float64, message string) {
	logger.Warn().
		Str("event", "instability").
		Str("method", method).
		Str("coefficient", coefficient).
		Float64("value", value).
		Msg(message)
}

// LogSimulation logs a Monte-Carlo summary.
func LogSimulation(logger zerolog.Logger, paths, steps int, value, stdErr float64, elapsed time.Duration) {
	logger.Info().
		Str("event", "simulation").
		Int("paths", paths).
		Int("steps", steps).
		Float64("value", value).
		Float64("std_err", stdErr).
		Dur("elapsed", elapsed).
		Msg("Simulation completed")
}
