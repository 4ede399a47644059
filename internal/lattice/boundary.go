package lattice

import (
	"fmt"
	"math"
	"strings"

	apperrors "lattice-pricer/internal/errors"
)

// BoundaryPolicy selects the edge condition of the finite-difference grids.
// Both edges are expressed as a fixed value gap between the outermost node
// and its inner neighbour:
//
//	V[0] - V[1]   = lower
//	V[M] - V[M-1] = upper
type BoundaryPolicy int

const (
	// LinearExtrapolation sets each gap to the payoff difference between the
	// two outermost levels. Deep in the money this is S[M]-S[M-1] for a call
	// at the top and S[1]-S[0] for a put at the bottom; out of the money it is
	// zero.
	LinearExtrapolation BoundaryPolicy = iota
	// Neumann sets both gaps to zero, copying the neighbouring value.
	Neumann
)

func (b BoundaryPolicy) String() string {
	if b == Neumann {
		return "neumann"
	}
	return "linear"
}

// ParseBoundaryPolicy accepts "linear" or "neumann".
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear", "extrapolate", "linear_extrapolation":
		return LinearExtrapolation, nil
	case "neumann", "copy":
		return Neumann, nil
	}
	return LinearExtrapolation, fmt.Errorf("boundary policy %q: %w", s, apperrors.ErrConfigInvalid)
}

// Edges returns the lower and upper gaps for a grid of price levels.
func (b BoundaryPolicy) Edges(levels []float64, intrinsic Payoff) (lower, upper float64) {
	if b == Neumann || len(levels) < 2 {
		return 0, 0
	}
	m := len(levels) - 1
	lower = math.Max(0, intrinsic(levels[0])) - math.Max(0, intrinsic(levels[1]))
	upper = math.Max(0, intrinsic(levels[m])) - math.Max(0, intrinsic(levels[m-1]))
	return lower, upper
}
