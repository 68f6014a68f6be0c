// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic test fixtures and utilities for kernels.
//   • Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/matrix"
)

// MustDense ALLOCATES an r×c *Dense or fails the test (fatal on error).
func MustDense[T backend.Scalar](t testing.TB, r, c int, opts ...matrix.Option[T]) *matrix.Dense[T] {
	t.Helper()
	m, err := matrix.NewDense(r, c, opts...)
	require.NoError(t, err)

	return m
}

// MustFrom builds an r×c matrix from row-major data.
func MustFrom[T backend.Scalar](t testing.TB, r, c int, data []T) *matrix.Dense[T] {
	t.Helper()

	return MustDense(t, r, c, matrix.WithData(data))
}

// MustAt reads (i,j) or fails.
func MustAt[T backend.Scalar](t *testing.T, m *matrix.Dense[T], i, j int) T {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)

	return v
}

// randomDense fills an r×c matrix from rng; complex types get both parts.
func randomDense[T backend.Scalar](t testing.TB, rng *rand.Rand, r, c int) *matrix.Dense[T] {
	t.Helper()
	data := make([]T, r*c)
	for i := range data {
		data[i] = backend.FromComplex[T](complex(rng.Float64()*2-1, rng.Float64()*2-1))
	}

	return MustFrom(t, r, c, data)
}

// requireClose asserts AllClose(a, b, rtol, atol).
func requireClose[T backend.Scalar](t *testing.T, a, b *matrix.Dense[T], tol float64) {
	t.Helper()
	ok, err := matrix.AllClose(a, b, tol, tol)
	require.NoError(t, err)
	require.Truef(t, ok, "matrices differ:\n%v\n%v", a, b)
}
