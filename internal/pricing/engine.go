// Package pricing wires the lattice methods into named, logged pricing runs
// and exposes one stateless function per classic method.
package pricing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/lattice"
	"lattice-pricer/internal/logging"
	"lattice-pricer/internal/models"
)

// Engine is a registry of pricing methods addressed by short names.
type Engine struct {
	methods map[string]lattice.Method
	spreads map[string]lattice.SpreadMethod
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// NewEngine creates an empty engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		methods: make(map[string]lattice.Method),
		spreads: make(map[string]lattice.SpreadMethod),
		logger:  logger,
	}
}

// Register adds a single-asset method under name, replacing any previous one.
func (e *Engine) Register(name string, m lattice.Method) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.methods[name] = m
}

// RegisterSpread adds a spread method under name.
func (e *Engine) RegisterSpread(name string, m lattice.SpreadMethod) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spreads[name] = m
}

func (e *Engine) method(name string) (lattice.Method, error) {
	e.mu.RLock()
	m, ok := e.methods[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("method %q: %w", name, apperrors.ErrUnknownMethod)
	}
	return m, nil
}

// Price runs the named method on p.
func (e *Engine) Price(ctx context.Context, name string, p models.OptionParams) (*models.PricingResult, error) {
	m, err := e.method(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	v, err := m.Price(p)
	elapsed := time.Since(start)
	logging.LogPricing(logging.WithOperation(e.logger, name), m.Name(), v, elapsed, err)
	if err != nil {
		return nil, apperrors.Wrapf(err, "%s", m.Name())
	}
	return &models.PricingResult{Method: m.Name(), Value: v, Elapsed: elapsed}, nil
}

// PriceWithDelta runs the named method and adds a central-difference delta
// with relative spot bump.
func (e *Engine) PriceWithDelta(ctx context.Context, name string, p models.OptionParams, bump float64) (*models.PricingResult, error) {
	res, err := e.Price(ctx, name, p)
	if err != nil {
		return nil, err
	}
	m, _ := e.method(name)
	d, err := Delta(m, p, bump)
	if err != nil {
		return nil, apperrors.Wrapf(err, "%s delta", m.Name())
	}
	res.Delta = &d
	return res, nil
}

// PriceSpread runs the named spread method on p.
func (e *Engine) PriceSpread(ctx context.Context, name string, p models.SpreadParams) (*models.PricingResult, error) {
	e.mu.RLock()
	m, ok := e.spreads[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("spread method %q: %w", name, apperrors.ErrUnknownMethod)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	v, err := m.PriceSpread(p)
	elapsed := time.Since(start)
	logging.LogPricing(logging.WithOperation(e.logger, name), m.Name(), v, elapsed, err)
	if err != nil {
		return nil, apperrors.Wrapf(err, "%s", m.Name())
	}
	return &models.PricingResult{Method: m.Name(), Value: v, Elapsed: elapsed}, nil
}

// Compare prices p with each named method in turn, or every registered
// method when names is empty. Runs stop at the first failure.
func (e *Engine) Compare(ctx context.Context, p models.OptionParams, names []string) ([]models.PricingResult, error) {
	if len(names) == 0 {
		names = e.Methods()
	}
	results := make([]models.PricingResult, 0, len(names))
	for _, name := range names {
		res, err := e.Price(ctx, name, p)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// Methods returns the registered single-asset method names, sorted.
func (e *Engine) Methods() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.methods))
	for name := range e.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SpreadMethods returns the registered spread method names, sorted.
func (e *Engine) SpreadMethods() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.spreads))
	for name := range e.spreads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
