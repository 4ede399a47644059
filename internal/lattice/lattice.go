// Package lattice prices options by backward induction over recombining
// trees and finite-difference grids.
//
// Every method follows the same shape: build the price axis, seed the
// maturity layer with the payoff, derive a constant set of transition
// coefficients, then walk the time index from N-1 down to 0 combining
// neighbouring nodes of the next layer. American contracts floor each node
// against its intrinsic value once the whole layer is computed.
package lattice

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/logging"
	"lattice-pricer/internal/models"
)

// Method prices single-asset contracts.
type Method interface {
	Name() string
	Price(p models.OptionParams) (float64, error)
}

// SpreadMethod prices two-asset spread contracts.
type SpreadMethod interface {
	Name() string
	PriceSpread(p models.SpreadParams) (float64, error)
}

// InstabilityPolicy decides what happens when derived coefficients fall
// outside their stable range.
type InstabilityPolicy int

const (
	// FailOnInstability returns ErrNumericalInstability.
	FailOnInstability InstabilityPolicy = iota
	// WarnOnInstability logs a warning and keeps going with the raw coefficients.
	WarnOnInstability
)

func (p InstabilityPolicy) String() string {
	if p == WarnOnInstability {
		return "warn"
	}
	return "fail"
}

// ParseInstabilityPolicy accepts "fail" or "warn".
func ParseInstabilityPolicy(s string) (InstabilityPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return FailOnInstability, nil
	case "warn":
		return WarnOnInstability, nil
	}
	return FailOnInstability, fmt.Errorf("instability policy %q: %w", s, apperrors.ErrConfigInvalid)
}

// LayerHook observes a finished value layer after the early-exercise floor.
// prices and values cover the populated index range only and must not be
// retained.
type LayerHook func(step int, prices, values []float64)

// Options configures a pricing method.
type Options struct {
	Policy   InstabilityPolicy
	Boundary BoundaryPolicy
	Logger   zerolog.Logger
	OnLayer  LayerHook
}

// Option mutates Options.
type Option func(*Options)

// WithInstabilityPolicy selects fail or warn on unstable coefficients.
func WithInstabilityPolicy(p InstabilityPolicy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithBoundary selects the edge condition used by the finite-difference grids.
func WithBoundary(b BoundaryPolicy) Option {
	return func(o *Options) { o.Boundary = b }
}

// WithLogger attaches a logger for coefficient diagnostics and warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithLayerHook registers a callback invoked once per time layer.
func WithLayerHook(h LayerHook) Option {
	return func(o *Options) { o.OnLayer = h }
}

func gatherOptions(opts []Option) Options {
	o := Options{
		Policy:   FailOnInstability,
		Boundary: LinearExtrapolation,
		Logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// guard applies the instability policy to a failed range check.
func (o Options) guard(err *apperrors.InstabilityError) error {
	if err == nil {
		return nil
	}
	if o.Policy == WarnOnInstability {
		logging.LogInstability(o.Logger, err.Method, err.Coefficient, err.Value, err.Message)
		return nil
	}
	return err
}
