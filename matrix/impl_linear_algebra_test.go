// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the linear-algebra surface.
package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/matrix"
)

func TestMulKnownValues(t *testing.T) {
	a := MustFrom(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := MustFrom(t, 3, 2, []float64{7, 8, 9, 10, 11, 12})
	c, err := matrix.Mul(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{58, 64, 139, 154}, c.Raw())
}

// (A·B)·C == A·(B·C) within tolerance, for every element type.
func TestProductAssociativity(t *testing.T) {
	t.Run("float32", func(t *testing.T) { checkAssociativity[float32](t, 1e-4) })
	t.Run("float64", func(t *testing.T) { checkAssociativity[float64](t, 1e-12) })
	t.Run("complex64", func(t *testing.T) { checkAssociativity[complex64](t, 1e-4) })
	t.Run("complex128", func(t *testing.T) { checkAssociativity[complex128](t, 1e-12) })
}

func checkAssociativity[T backend.Scalar](t *testing.T, tol float64) {
	rng := rand.New(rand.NewSource(42))
	a := randomDense[T](t, rng, 4, 3)
	b := randomDense[T](t, rng, 3, 5)
	c := randomDense[T](t, rng, 5, 2)

	ab, err := matrix.Mul(a, b)
	require.NoError(t, err)
	left, err := matrix.Mul(ab, c)
	require.NoError(t, err)

	bc, err := matrix.Mul(b, c)
	require.NoError(t, err)
	right, err := matrix.Mul(a, bc)
	require.NoError(t, err)

	requireClose(t, left, right, tol)
}

func TestProductConjTrans(t *testing.T) {
	psi := MustFrom(t, 2, 2, []complex128{1, 1i, 0, 1})
	out := MustDense[complex128](t, 2, 2)
	require.NoError(t, matrix.Product(out, matrix.ConjTrans, psi, matrix.NoTrans, psi))

	adj, err := matrix.Adjoint(psi)
	require.NoError(t, err)
	want, err := matrix.Mul(adj, psi)
	require.NoError(t, err)
	requireClose(t, out, want, 1e-15)
	// (ψᴴψ)[0,1] = conj(1)·i + conj(0)·1 = i
	assert.Equal(t, complex128(1i), MustAt(t, out, 0, 1))
}

func TestMismatchNeverReachesKernel(t *testing.T) {
	k := backend.NewCounting[complex128](nil)
	with := matrix.WithBackend[complex128](k)
	a := MustDense(t, 2, 3, with)
	b := MustDense(t, 2, 3, with)
	dst := MustDense(t, 2, 2, with)

	assert.ErrorIs(t, matrix.Product(dst, matrix.NoTrans, a, matrix.NoTrans, b), matrix.ErrDimensionMismatch)
	_, err := matrix.Mul(a, b)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	assert.ErrorIs(t, matrix.Axpy(a, 1, dst), matrix.ErrDimensionMismatch)
	_, err = matrix.MatVec(a, []complex128{1, 2})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	r0, _ := a.Row(0)
	c0, _ := a.Col(0)
	_, err = matrix.Dot(r0, c0)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	// a·bᵀ is 2x2 and fits dst
	require.NoError(t, matrix.Product(dst, matrix.NoTrans, a, matrix.Trans, b))
	assert.Equal(t, int64(1), k.Calls().Total(), "only the valid product ran")
}

func TestProductRejectsAliasedDestination(t *testing.T) {
	a := MustFrom(t, 2, 2, []float64{1, 2, 3, 4})
	assert.ErrorIs(t, matrix.Product(a, matrix.NoTrans, a, matrix.NoTrans, a), matrix.ErrAliased)
}

func TestMatVecTranspose(t *testing.T) {
	a := MustFrom(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	y, err := matrix.MatVec(a, []float64{1, 0, -1})
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -2}, y)

	yt := make([]float64, 3)
	require.NoError(t, matrix.MatVecInto(yt, matrix.Trans, a, []float64{1, 1}))
	assert.Equal(t, []float64{5, 7, 9}, yt)
}

func TestDotOverColumnsConjugates(t *testing.T) {
	m := MustFrom(t, 2, 2, []complex128{1i, 2, 3, 4i})
	c0, err := m.Col(0)
	require.NoError(t, err)
	c1, err := m.Col(1)
	require.NoError(t, err)
	got, err := matrix.Dot(c0, c1)
	require.NoError(t, err)
	// conj(i)*2 + conj(3)*4i = -2i + 12i
	assert.Equal(t, complex128(10i), got)
}

func TestAxpyInPlace(t *testing.T) {
	a := MustFrom(t, 2, 2, []float64{1, 1, 1, 1})
	b := MustFrom(t, 2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, matrix.Axpy(a, 2, b))
	assert.Equal(t, []float64{3, 5, 7, 9}, a.Raw())
}

func TestScaleTransposeAdjoint(t *testing.T) {
	m := MustFrom(t, 1, 2, []complex128{1 + 1i, 2})
	s, err := matrix.Scale(m, 2i)
	require.NoError(t, err)
	assert.Equal(t, []complex128{-2 + 2i, 4i}, s.Raw())

	tr, err := matrix.Transpose(m)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Rows())
	assert.Equal(t, complex128(1+1i), MustAt(t, tr, 0, 0))

	ad, err := matrix.Adjoint(m)
	require.NoError(t, err)
	assert.Equal(t, complex128(1-1i), MustAt(t, ad, 0, 0))
}
