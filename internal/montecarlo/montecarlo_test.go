package montecarlo

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lattice-pricer/internal/blackscholes"
	apperrors "lattice-pricer/internal/errors"
	"lattice-pricer/internal/models"
)

func call() models.OptionParams {
	return models.OptionParams{
		Type:       models.OptionTypeCall,
		Style:      models.StyleEuropean,
		Strike:     100,
		Maturity:   1,
		Spot:       100,
		Volatility: 0.2,
		Dividend:   0.03,
		Rate:       0.06,
	}
}

func TestPriceWithinStandardErrors(t *testing.T) {
	for _, p := range []models.OptionParams{call(), call().WithType(models.OptionTypePut)} {
		sim := NewSimulator(Config{Paths: 2000, Steps: 10, Seed: 11}, nil)
		res, err := sim.Price(context.Background(), p, BlackScholesDelta(p))
		require.NoError(t, err)

		exact := blackscholes.Price(p)
		assert.InDelta(t, exact, res.Value, 4*res.StdErr, string(p.Type))
		assert.Greater(t, res.StdErr, 0.0)
		assert.Less(t, res.StdErr, 0.2)
		assert.Equal(t, 2000, res.Paths)
		assert.Equal(t, 10, res.Steps)
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	p := call()
	cfg := Config{Paths: 200, Steps: 5, Seed: 3}
	a, err := NewSimulator(cfg, nil).Price(context.Background(), p, BlackScholesDelta(p))
	require.NoError(t, err)
	b, err := NewSimulator(cfg, nil).Price(context.Background(), p, BlackScholesDelta(p))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	cfg.Seed = 4
	c, err := NewSimulator(cfg, nil).Price(context.Background(), p, BlackScholesDelta(p))
	require.NoError(t, err)
	assert.NotEqual(t, a.Value, c.Value)
}

func TestControlVariateReducesVariance(t *testing.T) {
	p := call()
	cfg := Config{Paths: 500, Steps: 10, Seed: 5}
	hedged, err := NewSimulator(cfg, nil).Price(context.Background(), p, BlackScholesDelta(p))
	require.NoError(t, err)

	unhedged, err := NewSimulator(cfg, nil).Price(context.Background(), p,
		func(float64, float64) (float64, error) { return 0, nil })
	require.NoError(t, err)

	assert.Less(t, hedged.StdDev, unhedged.StdDev/2)
}

func TestDeltaSeesRemainingTime(t *testing.T) {
	p := call()
	var taus []float64
	delta := func(_, tau float64) (float64, error) {
		taus = append(taus, tau)
		return 0, nil
	}
	_, err := NewSimulator(Config{Paths: 2, Steps: 4, Seed: 1}, nil).Price(context.Background(), p, delta)
	require.NoError(t, err)
	require.Len(t, taus, 16)
	assert.InDeltaSlice(t, []float64{1, 1, 0.75, 0.75, 0.5, 0.5, 0.25, 0.25}, taus[:8], 1e-12)
}

func TestPriceErrors(t *testing.T) {
	p := call()
	ctx := context.Background()

	_, err := NewSimulator(Config{Paths: 1, Steps: 10}, nil).Price(ctx, p, BlackScholesDelta(p))
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)

	_, err = NewSimulator(Config{Paths: 10, Steps: 0}, nil).Price(ctx, p, BlackScholesDelta(p))
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)

	_, err = NewSimulator(DefaultConfig(), nil).Price(ctx, p.WithStyle(models.StyleAmerican), BlackScholesDelta(p))
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)

	bad := p
	bad.Volatility = 0
	_, err = NewSimulator(DefaultConfig(), nil).Price(ctx, bad, BlackScholesDelta(bad))
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)

	_, err = NewSimulator(DefaultConfig(), nil).Price(ctx, p, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)

	boom := errors.New("boom")
	_, err = NewSimulator(DefaultConfig(), nil).Price(ctx, p, func(float64, float64) (float64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestPriceHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := call()
	_, err := NewSimulator(DefaultConfig(), nil).Price(ctx, p, BlackScholesDelta(p))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPriceLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	p := call()
	_, err := NewSimulator(Config{Paths: 20, Steps: 2, Seed: 1}, &logger).Price(context.Background(), p, BlackScholesDelta(p))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"event":"simulation"`)
	assert.Contains(t, buf.String(), `"paths":20`)
}
