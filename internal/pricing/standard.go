package pricing

import (
	"fmt"

	"github.com/rs/zerolog"

	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/lattice"
	"lattice-pricer/internal/models"
)

// Standard method names.
const (
	MethodCRR       = "crr"
	MethodTrinomial = "trinomial"
	MethodExplicit  = "explicit"
	MethodImplicit  = "implicit"
	MethodSpread    = "spread"
)

// Settings sizes the standard methods.
type Settings struct {
	Steps int
	// HalfWidth is the finite-difference half-width Nj; zero covers Devs
	// standard deviations of log price at maturity.
	HalfWidth int
	Devs      float64
	Options   []lattice.Option
}

// DefaultSettings returns 200 steps and a five-deviation grid.
func DefaultSettings() Settings {
	return Settings{Steps: 200, Devs: 5}
}

func (s Settings) step(p models.OptionParams) float64 {
	return lattice.StableStep(p.Volatility, p.Maturity, s.Steps)
}

func (s Settings) half(p models.OptionParams, dx float64) int {
	if s.HalfWidth > 0 {
		return s.HalfWidth
	}
	devs := s.Devs
	if devs <= 0 {
		devs = 5
	}
	return lattice.HalfWidthFor(p.Volatility, p.Maturity, dx, devs)
}

// sized defers building a method until the contract is known, so that the
// log step can follow the volatility and maturity.
type sized struct {
	name  string
	build func(p models.OptionParams) lattice.Method
}

func (s sized) Name() string {
	return s.name
}

func (s sized) Price(p models.OptionParams) (float64, error) {
	return s.build(p).Price(p)
}

// Sized returns a method that builds its grid from each contract: log step
// sigma*sqrt(3*dt) and, for finite differences, the configured half-width.
func Sized(kind string, s Settings) (lattice.Method, error) {
	switch kind {
	case MethodCRR:
		return sized{name: fmt.Sprintf("CRR_%d", s.Steps), build: func(models.OptionParams) lattice.Method {
			return lattice.NewCRR(s.Steps, s.Options...)
		}}, nil
	case MethodTrinomial:
		return sized{name: fmt.Sprintf("TRINOMIAL_%d", s.Steps), build: func(p models.OptionParams) lattice.Method {
			return lattice.NewTrinomial(s.Steps, s.step(p), s.Options...)
		}}, nil
	case MethodExplicit:
		return sized{name: fmt.Sprintf("EXPLICIT_FD_%d", s.Steps), build: func(p models.OptionParams) lattice.Method {
			dx := s.step(p)
			return lattice.NewExplicitFD(s.Steps, s.half(p, dx), dx, s.Options...)
		}}, nil
	case MethodImplicit:
		return sized{name: fmt.Sprintf("IMPLICIT_FD_%d", s.Steps), build: func(p models.OptionParams) lattice.Method {
			dx := s.step(p)
			return lattice.NewImplicitFD(s.Steps, s.half(p, dx), dx, s.Options...)
		}}, nil
	}
	return nil, fmt.Errorf("method %q: %w", kind, apperrors.ErrUnknownMethod)
}

// NewStandardEngine registers crr, trinomial, explicit, implicit and spread
// sized by s.
func NewStandardEngine(s Settings, logger zerolog.Logger) *Engine {
	opts := append([]lattice.Option{lattice.WithLogger(logger)}, s.Options...)
	s.Options = opts

	e := NewEngine(logger)
	for _, kind := range []string{MethodCRR, MethodTrinomial, MethodExplicit, MethodImplicit} {
		m, _ := Sized(kind, s)
		e.Register(kind, m)
	}
	e.RegisterSpread(MethodSpread, lattice.NewSpreadBinomial(s.Steps, opts...))
	return e
}
