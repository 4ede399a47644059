package lattice

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	apperrors "lattice-pricer/internal/errors"
)

// dense expands a band system for a reference solve.
func dense(t *Tridiagonal) *mat.Dense {
	n := t.Len()
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		a.Set(i, i, t.Diag[i])
		if i > 0 {
			a.Set(i, i-1, t.Lower[i])
		}
		if i < n-1 {
			a.Set(i, i+1, t.Upper[i])
		}
	}
	return a
}

func randomDominant(rng *rand.Rand, n int) *Tridiagonal {
	sys := NewTridiagonal(n)
	for i := 0; i < n; i++ {
		sys.Lower[i] = rng.Float64()*2 - 1
		sys.Upper[i] = rng.Float64()*2 - 1
		sys.Diag[i] = 2.5 + rng.Float64()
		if rng.Intn(2) == 0 {
			sys.Diag[i] = -sys.Diag[i]
		}
	}
	return sys
}

func TestTridiagonalMatchesDenseSolve(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{1, 2, 3, 10, 57} {
		sys := randomDominant(rng, n)
		rhs := make([]float64, n)
		for i := range rhs {
			rhs[i] = rng.NormFloat64() * 10
		}

		got := make([]float64, n)
		require.NoError(t, sys.Solve(rhs, got))

		var want mat.VecDense
		require.NoError(t, want.SolveVec(dense(sys), mat.NewVecDense(n, append([]float64(nil), rhs...))))
		for i := 0; i < n; i++ {
			assert.InDelta(t, want.AtVec(i), got[i], 1e-9, "n=%d i=%d", n, i)
		}
	}
}

func TestTridiagonalSolveInPlace(t *testing.T) {
	sys := NewTridiagonal(3)
	copy(sys.Lower, []float64{0, 1, 1})
	copy(sys.Diag, []float64{4, 4, 4})
	copy(sys.Upper, []float64{1, 1, 0})

	// x = (1, 2, 3)
	rhs := []float64{4*1 + 2, 1 + 4*2 + 3, 2 + 4*3}
	require.NoError(t, sys.Solve(rhs, rhs))
	assert.InDeltaSlice(t, []float64{1, 2, 3}, rhs, 1e-12)

	// The matrix survives for the next right-hand side.
	rhs2 := []float64{4, 1.25, 1}
	require.NoError(t, sys.Solve(rhs2, rhs2))
	assert.InDeltaSlice(t, []float64{1, 0, 0.25}, rhs2, 1e-12)
}

func TestTridiagonalSingular(t *testing.T) {
	sys := NewTridiagonal(2)
	copy(sys.Diag, []float64{1, 1})
	copy(sys.Upper, []float64{1, 0})
	copy(sys.Lower, []float64{0, 1})

	err := sys.Solve([]float64{1, 2}, make([]float64, 2))
	assert.ErrorIs(t, err, apperrors.ErrNumericalInstability)

	zero := NewTridiagonal(3)
	err = zero.Solve([]float64{1, 1, 1}, make([]float64, 3))
	assert.ErrorIs(t, err, apperrors.ErrNumericalInstability)
}

func TestTridiagonalShapeErrors(t *testing.T) {
	sys := NewTridiagonal(3)
	copy(sys.Diag, []float64{1, 1, 1})
	assert.ErrorIs(t, sys.Solve([]float64{1, 2}, make([]float64, 3)), apperrors.ErrInvalidParameter)
	assert.ErrorIs(t, NewTridiagonal(0).Solve(nil, nil), apperrors.ErrInvalidParameter)
}

func TestDiagonallyDominant(t *testing.T) {
	c := NewImplicitCoefficients(0.2, 0.06, 0.03, 1, 0.2, 3)
	assert.True(t, implicitSystem(c, 7).DiagonallyDominant())

	sys := NewTridiagonal(3)
	copy(sys.Lower, []float64{0, 2, 1})
	copy(sys.Diag, []float64{1, 1, 1})
	copy(sys.Upper, []float64{0.5, 2, 0})
	assert.False(t, sys.DiagonallyDominant())
}
