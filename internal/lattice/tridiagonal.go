package lattice

import (
	"fmt"
	"math"

	apperrors "lattice-pricer/internal/errors"
)

// pivotTolerance is the relative size below which an elimination pivot is
// treated as zero.
const pivotTolerance = 1e-14

// Tridiagonal is a band matrix stored as three diagonals of equal length n.
// Row i reads Lower[i]*x[i-1] + Diag[i]*x[i] + Upper[i]*x[i+1]; Lower[0] and
// Upper[n-1] are ignored.
type Tridiagonal struct {
	Lower []float64
	Diag  []float64
	Upper []float64

	scratch []float64
}

// NewTridiagonal allocates an n x n system with zero diagonals.
func NewTridiagonal(n int) *Tridiagonal {
	return &Tridiagonal{
		Lower:   make([]float64, n),
		Diag:    make([]float64, n),
		Upper:   make([]float64, n),
		scratch: make([]float64, n),
	}
}

// Len returns the order of the system.
func (t *Tridiagonal) Len() int {
	return len(t.Diag)
}

// DiagonallyDominant reports whether |Diag[i]| >= |Lower[i]| + |Upper[i]|
// holds on every row.
func (t *Tridiagonal) DiagonallyDominant() bool {
	n := t.Len()
	for i := 0; i < n; i++ {
		off := 0.0
		if i > 0 {
			off += math.Abs(t.Lower[i])
		}
		if i < n-1 {
			off += math.Abs(t.Upper[i])
		}
		if math.Abs(t.Diag[i]) < off {
			return false
		}
	}
	return true
}

// Solve runs Thomas elimination for rhs and writes the solution into dst.
// dst may alias rhs. The matrix itself is left untouched, so one system can
// be solved against many right-hand sides.
func (t *Tridiagonal) Solve(rhs, dst []float64) error {
	n := t.Len()
	if n == 0 {
		return apperrors.NewValidationError("n", 0, "empty system")
	}
	if len(t.Lower) != n || len(t.Upper) != n {
		return fmt.Errorf("tridiagonal: diagonal lengths %d/%d/%d: %w",
			len(t.Lower), n, len(t.Upper), apperrors.ErrInvalidParameter)
	}
	if len(rhs) != n || len(dst) != n {
		return fmt.Errorf("tridiagonal: rhs %d, dst %d, want %d: %w",
			len(rhs), len(dst), n, apperrors.ErrInvalidParameter)
	}
	if len(t.scratch) != n {
		t.scratch = make([]float64, n)
	}
	c := t.scratch

	pivot := t.Diag[0]
	if err := checkPivot(0, pivot, t.Upper[0]); err != nil {
		return err
	}
	c[0] = t.Upper[0] / pivot
	dst[0] = rhs[0] / pivot
	for i := 1; i < n; i++ {
		pivot = t.Diag[i] - t.Lower[i]*c[i-1]
		upper := 0.0
		if i < n-1 {
			upper = t.Upper[i]
		}
		if err := checkPivot(i, pivot, t.Diag[i]); err != nil {
			return err
		}
		c[i] = upper / pivot
		dst[i] = (rhs[i] - t.Lower[i]*dst[i-1]) / pivot
	}
	for i := n - 2; i >= 0; i-- {
		dst[i] -= c[i] * dst[i+1]
	}

	for i, v := range dst {
		if !isFinite(v) {
			return apperrors.NewInstabilityError("tridiagonal", fmt.Sprintf("x[%d]", i), v, "non-finite solution")
		}
	}
	return nil
}

func checkPivot(row int, pivot, scale float64) error {
	limit := pivotTolerance * math.Max(1, math.Abs(scale))
	if !isFinite(pivot) || math.Abs(pivot) <= limit {
		return apperrors.NewInstabilityError("tridiagonal", fmt.Sprintf("pivot[%d]", row), pivot, "singular system")
	}
	return nil
}
