package lattice

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"lattice-pricer/internal/blackscholes"
	"lattice-pricer/internal/models"
)

// Property: an American contract is worth at least its intrinsic value at
// every node of every layer, and at least the European contract at the root.
//
// The generator keeps dt <= 0.2 so that the sigma*sqrt(3dt) trinomial step
// and the CRR moves always produce valid probabilities.

type scenario struct {
	Spot     float64
	Strike   float64
	Vol      float64
	Rate     float64
	Div      float64
	Maturity float64
	Steps    int
	Put      bool
}

func (s scenario) params(style models.ExerciseStyle) models.OptionParams {
	typ := models.OptionTypeCall
	if s.Put {
		typ = models.OptionTypePut
	}
	return models.OptionParams{
		Type:       typ,
		Style:      style,
		Strike:     s.Strike,
		Maturity:   s.Maturity,
		Spot:       s.Spot,
		Volatility: s.Vol,
		Dividend:   s.Div,
		Rate:       s.Rate,
	}
}

func scenarioGen() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(50, 150),
		gen.Float64Range(60, 140),
		gen.Float64Range(0.1, 0.5),
		gen.Float64Range(0, 0.1),
		gen.Float64Range(0, 0.05),
		gen.Float64Range(0.25, 2),
		gen.IntRange(10, 40),
		gen.Bool(),
	).Map(func(v []interface{}) scenario {
		return scenario{
			Spot:     v[0].(float64),
			Strike:   v[1].(float64),
			Vol:      v[2].(float64),
			Rate:     v[3].(float64),
			Div:      v[4].(float64),
			Maturity: v[5].(float64),
			Steps:    v[6].(int),
			Put:      v[7].(bool),
		}
	})
}

// methodsFor builds one instance of every single-asset method sized for s.
func methodsFor(s scenario, opts ...Option) []Method {
	dx := StableStep(s.Vol, s.Maturity, s.Steps)
	half := HalfWidthFor(s.Vol, s.Maturity, dx, 5)
	return []Method{
		NewCRR(s.Steps, opts...),
		NewTrinomial(s.Steps, dx, opts...),
		NewExplicitFD(s.Steps, half, dx, opts...),
		NewImplicitFD(s.Steps, half, dx, opts...),
	}
}

func TestAmericanFloorProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("American values never fall below intrinsic", prop.ForAll(
		func(s scenario) bool {
			p := s.params(models.StyleAmerican)
			intrinsic := Intrinsic(p.Type, p.Strike)
			ok := true
			hook := func(_ int, prices, values []float64) {
				for j := range values {
					if values[j] < intrinsic(prices[j]) {
						ok = false
					}
				}
			}
			for _, m := range methodsFor(s, WithLayerHook(hook)) {
				if _, err := m.Price(p); err != nil {
					return false
				}
			}
			return ok
		},
		scenarioGen(),
	))

	properties.Property("American value dominates European", prop.ForAll(
		func(s scenario) bool {
			american := s.params(models.StyleAmerican)
			european := s.params(models.StyleEuropean)
			for _, m := range methodsFor(s) {
				am, err := m.Price(american)
				if err != nil {
					return false
				}
				eu, err := m.Price(european)
				if err != nil {
					return false
				}
				if am < eu-1e-9 {
					return false
				}
			}
			return true
		},
		scenarioGen(),
	))

	properties.TestingRun(t)
}

func TestBinomialParityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	// Discounted expectation of S_T under the tree measure is exactly the
	// forward, so European parity holds to rounding on any binomial tree.
	properties.Property("CRR call minus put equals the forward", prop.ForAll(
		func(s scenario) bool {
			call := s.params(models.StyleEuropean)
			call.Type = models.OptionTypeCall
			put := call.WithType(models.OptionTypePut)

			tree := NewCRR(s.Steps)
			c, err := tree.Price(call)
			if err != nil {
				return false
			}
			q, err := tree.Price(put)
			if err != nil {
				return false
			}
			return math.Abs(c-q-blackscholes.Parity(call)) < 1e-9*call.Spot
		},
		scenarioGen(),
	))

	properties.TestingRun(t)
}

func TestSpreadProbabilitySumProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("joint probabilities sum to the one-step discount", prop.ForAll(
		func(vol1, vol2, rho, rate float64, steps int) bool {
			c := SpreadCoefficientsFor(vol1, vol2, 0.02, 0.01, rho, rate, 1, steps)
			return math.Abs(c.Sum()-math.Exp(-rate/float64(steps))) < 1e-14
		},
		gen.Float64Range(0.05, 0.8),
		gen.Float64Range(0.05, 0.8),
		gen.Float64Range(-1, 1),
		gen.Float64Range(-0.02, 0.15),
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t)
}

func TestSpreadAmericanFloorProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("American spread call dominates European and payoff", prop.ForAll(
		func(spot1, spot2, rho float64) bool {
			p := spreadParams(rho)
			p.Spot1, p.Spot2 = spot1, spot2
			tree := NewSpreadBinomial(12)
			am, err := tree.PriceSpread(p)
			if err != nil {
				return false
			}
			eu, err := tree.PriceSpread(p.WithStyle(models.StyleEuropean))
			if err != nil {
				return false
			}
			return am >= eu-1e-9 && am >= spot1-spot2-p.Strike
		},
		gen.Float64Range(70, 130),
		gen.Float64Range(70, 130),
		gen.Float64Range(-0.8, 0.8),
	))

	properties.TestingRun(t)
}
