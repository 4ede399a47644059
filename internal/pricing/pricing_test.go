package pricing

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lattice-pricer/internal/blackscholes"
	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/lattice"
	"lattice-pricer/internal/models"
	"lattice-pricer/internal/montecarlo"
)

func call() models.OptionParams {
	return vanilla(models.OptionTypeCall, models.StyleEuropean, 100, 1, 100, 0.2, 0.06, 0.03)
}

func TestFacadeScenarios(t *testing.T) {
	american, err := AmericanPut(100, 1, 100, 0.06, 3, 1.1, 1/1.1)
	require.NoError(t, err)
	assert.InDelta(t, 4.6546, american, 1e-4)

	tri, err := TrinomialEuropeanCall(100, 1, 100, 0.2, 0.06, 0.03, 3, 0.2)
	require.NoError(t, err)
	fd, err := ExplicitFDEuropeanCall(100, 1, 100, 0.2, 0.06, 0.03, 3, 3, 0.2)
	require.NoError(t, err)
	assert.InEpsilon(t, tri, fd, 0.03)

	put, err := ImplicitFDAmericanPut(100, 1, 100, 0.2, 0.06, 0.03, 3, 3, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 4.9221, put, 1e-4)

	spread, err := AmericanSpreadCall(1, 1, 100, 100, 0.2, 0.3, 0.03, 0.04, 0.5, 0.06, 3)
	require.NoError(t, err)
	assert.InDelta(t, 10.0448, spread, 1e-4)
}

func TestFacadeRejectsBadInput(t *testing.T) {
	_, err := TrinomialEuropeanCall(100, 1, 100, 0.2, 0.06, 0.03, 3, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)

	_, err = AmericanSpreadCall(1, 1, 100, 100, 0.2, 0.3, 0.03, 0.04, 1.5, 0.06, 3)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)

	_, err = AmericanPut(100, 1, 100, 0.06, 0, 1.1, 1/1.1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
}

func TestEnginePrice(t *testing.T) {
	var buf bytes.Buffer
	e := NewStandardEngine(DefaultSettings(), zerolog.New(&buf))
	assert.Equal(t, []string{"crr", "explicit", "implicit", "trinomial"}, e.Methods())
	assert.Equal(t, []string{"spread"}, e.SpreadMethods())

	exact := blackscholes.Price(call())
	for _, name := range e.Methods() {
		res, err := e.Price(context.Background(), name, call())
		require.NoError(t, err, name)
		assert.InDelta(t, exact, res.Value, 0.03, name)
		assert.NotEmpty(t, res.Method)
		assert.Nil(t, res.Delta)
	}
	assert.Contains(t, buf.String(), `"event":"pricing"`)
}

func TestEngineUnknownMethod(t *testing.T) {
	e := NewStandardEngine(DefaultSettings(), zerolog.Nop())
	_, err := e.Price(context.Background(), "bogus", call())
	assert.ErrorIs(t, err, apperrors.ErrUnknownMethod)
	_, err = e.PriceSpread(context.Background(), "bogus", models.SpreadParams{})
	assert.ErrorIs(t, err, apperrors.ErrUnknownMethod)
}

func TestEngineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewStandardEngine(DefaultSettings(), zerolog.Nop())
	_, err := e.Price(ctx, MethodCRR, call())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnginePropagatesErrors(t *testing.T) {
	e := NewStandardEngine(DefaultSettings(), zerolog.Nop())
	bad := call()
	bad.Volatility = -1
	_, err := e.Price(context.Background(), MethodImplicit, bad)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
}

func TestEngineWarnPolicyFromSettings(t *testing.T) {
	s := Settings{Steps: 3, Options: []lattice.Option{lattice.WithInstabilityPolicy(lattice.WarnOnInstability)}}
	e := NewStandardEngine(s, zerolog.Nop())
	p := models.SpreadParams{
		Style: models.StyleAmerican, Strike: 1, Maturity: 1, Spot1: 100, Spot2: 100,
		Volatility1: 0.2, Volatility2: 0.3, Dividend1: 0.03, Dividend2: 0.04,
		Correlation: 1, Rate: 0.06,
	}
	res, err := e.PriceSpread(context.Background(), MethodSpread, p)
	require.NoError(t, err)
	assert.InDelta(t, 4.1688, res.Value, 1e-4)

	_, err = NewStandardEngine(Settings{Steps: 3}, zerolog.Nop()).PriceSpread(context.Background(), MethodSpread, p)
	assert.ErrorIs(t, err, apperrors.ErrNumericalInstability)
}

func TestCompare(t *testing.T) {
	e := NewStandardEngine(DefaultSettings(), zerolog.Nop())
	results, err := e.Compare(context.Background(), call(), nil)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i := range results {
		for j := range results {
			assert.InEpsilon(t, results[i].Value, results[j].Value, 1e-2)
		}
	}

	results, err = e.Compare(context.Background(), call(), []string{MethodCRR, "bogus"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownMethod)
	assert.Len(t, results, 1)
}

func TestDeltaMatchesClosedForm(t *testing.T) {
	for _, typ := range []models.OptionType{models.OptionTypeCall, models.OptionTypePut} {
		p := call().WithType(typ)
		for _, kind := range []string{MethodCRR, MethodTrinomial, MethodImplicit} {
			m, err := Sized(kind, DefaultSettings())
			require.NoError(t, err)
			d, err := Delta(m, p, DefaultBump)
			require.NoError(t, err)
			assert.InDelta(t, blackscholes.Delta(p), d, 0.01, "%s %s", kind, typ)
		}
	}

	_, err := Delta(lattice.NewCRR(10), call(), 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
}

func TestPriceWithDelta(t *testing.T) {
	e := NewStandardEngine(DefaultSettings(), zerolog.Nop())
	res, err := e.PriceWithDelta(context.Background(), MethodTrinomial, call(), DefaultBump)
	require.NoError(t, err)
	require.NotNil(t, res.Delta)
	assert.InDelta(t, blackscholes.Delta(call()), *res.Delta, 0.01)
}

func TestSizedUnknown(t *testing.T) {
	_, err := Sized("quadrinomial", DefaultSettings())
	assert.ErrorIs(t, err, apperrors.ErrUnknownMethod)
}

func TestHedgeDeltaDrivesSimulation(t *testing.T) {
	p := call()
	m, err := Sized(MethodImplicit, Settings{Steps: 50, Devs: 5})
	require.NoError(t, err)

	sim := montecarlo.NewSimulator(montecarlo.Config{Paths: 200, Steps: 5, Seed: 9}, nil)
	res, err := sim.Price(context.Background(), p, HedgeDelta(m, p, DefaultBump))
	require.NoError(t, err)
	assert.InDelta(t, blackscholes.Price(p), res.Value, 4*res.StdErr)
	assert.False(t, math.IsNaN(res.StdDev))
}
