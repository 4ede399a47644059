package lattice

import (
	"math"

	apperrors "lattice-pricer/internal/errors"
)

// Axis is an increasing sequence of underlying price levels with a constant
// ratio between neighbours: Levels[i+1] = Levels[i] * Ratio.
type Axis struct {
	Levels []float64
	Ratio  float64
}

// Len returns the number of levels.
func (a Axis) Len() int {
	return len(a.Levels)
}

// BinomialAxis builds the steps+1 maturity levels of a binomial tree,
// spot*down^steps*(up/down)^j for j = 0..steps, by repeated multiplication.
func BinomialAxis(spot, up, down float64, steps int) (Axis, error) {
	if err := checkPositiveFinite("spot", spot); err != nil {
		return Axis{}, err
	}
	if err := checkPositiveFinite("down", down); err != nil {
		return Axis{}, err
	}
	if !isFinite(up) || up <= down {
		return Axis{}, apperrors.NewValidationError("up", up, "must be finite and greater than down")
	}
	if steps <= 0 {
		return Axis{}, apperrors.NewValidationError("steps", float64(steps), "must be positive")
	}

	ratio := up / down
	levels := make([]float64, steps+1)
	levels[0] = spot * math.Pow(down, float64(steps))
	for j := 1; j <= steps; j++ {
		levels[j] = levels[j-1] * ratio
	}
	return Axis{Levels: levels, Ratio: ratio}, nil
}

// LogAxis builds 2*half+1 levels center*exp(offset*dx) for offsets
// -half..half. The middle level equals center exactly.
func LogAxis(center, dx float64, half int) (Axis, error) {
	if err := checkPositiveFinite("spot", center); err != nil {
		return Axis{}, err
	}
	if err := checkPositiveFinite("dx", dx); err != nil {
		return Axis{}, err
	}
	if half <= 0 {
		return Axis{}, apperrors.NewValidationError("half_width", float64(half), "must be positive")
	}

	grid := Centered{Half: half}
	levels := make([]float64, grid.Width())
	for j := range levels {
		levels[j] = center * math.Exp(float64(grid.Offset(j))*dx)
	}
	return Axis{Levels: levels, Ratio: math.Exp(dx)}, nil
}

// StableStep returns the log-price step sigma*sqrt(3*dt), the usual choice
// that keeps trinomial and explicit finite-difference weights positive.
func StableStep(volatility, maturity float64, steps int) float64 {
	if steps <= 0 {
		return 0
	}
	return volatility * math.Sqrt(3*maturity/float64(steps))
}

// HalfWidthFor returns the number of nodes each side of the spot needed to
// cover `devs` standard deviations of log price at maturity.
func HalfWidthFor(volatility, maturity, dx, devs float64) int {
	if dx <= 0 {
		return 0
	}
	n := int(math.Ceil(devs * volatility * math.Sqrt(maturity) / dx))
	if n < 1 {
		n = 1
	}
	return n
}
