package lattice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lattice-pricer/internal/blackscholes"
	"lattice-pricer/internal/models"
)

func europeanMethods(steps int, vol, maturity float64) map[string]Method {
	dx := StableStep(vol, maturity, steps)
	half := HalfWidthFor(vol, maturity, dx, 5)
	return map[string]Method{
		"crr":       NewCRR(steps),
		"trinomial": NewTrinomial(steps, dx),
		"explicit":  NewExplicitFD(steps, half, dx),
		"implicit":  NewImplicitFD(steps, half, dx),
	}
}

func TestConvergenceToBlackScholes(t *testing.T) {
	p := vanilla(models.OptionTypeCall, models.StyleEuropean)
	exact := blackscholes.Price(p)

	prev := map[string]float64{}
	for _, n := range []int{25, 50, 100, 200, 400} {
		for name, m := range europeanMethods(n, p.Volatility, p.Maturity) {
			v, err := m.Price(p)
			require.NoError(t, err, "%s N=%d", name, n)
			errAbs := math.Abs(v - exact)
			if last, ok := prev[name]; ok {
				assert.Less(t, errAbs, last, "%s N=%d", name, n)
			}
			prev[name] = errAbs
		}
	}
	for name, e := range prev {
		assert.Less(t, e, 0.02, name)
	}
}

func TestPutCallParityAcrossMethods(t *testing.T) {
	call := vanilla(models.OptionTypeCall, models.StyleEuropean)
	put := call.WithType(models.OptionTypePut)
	forward := blackscholes.Parity(call)

	calls := map[string]float64{}
	for name, m := range europeanMethods(200, call.Volatility, call.Maturity) {
		c, err := m.Price(call)
		require.NoError(t, err)
		q, err := m.Price(put)
		require.NoError(t, err)
		assert.InDelta(t, forward, c-q, 2e-3, name)
		calls[name] = c
	}

	for a, va := range calls {
		for b, vb := range calls {
			assert.InEpsilon(t, va, vb, 1e-2, "%s vs %s", a, b)
		}
	}
}

func TestAmericanPutConvergesAboveEuropean(t *testing.T) {
	p := vanilla(models.OptionTypePut, models.StyleAmerican)
	european := blackscholes.Price(p.WithStyle(models.StyleEuropean))
	for name, m := range europeanMethods(200, p.Volatility, p.Maturity) {
		v, err := m.Price(p)
		require.NoError(t, err)
		assert.InDelta(t, 6.61, v, 0.03, name)
		assert.Greater(t, v, european, name)
	}
}
