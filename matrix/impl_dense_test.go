// SPDX-License-Identifier: MIT
package matrix_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dielectric/matrix"
)

func TestNewDenseDefaultZero(t *testing.T) {
	for _, tc := range []struct{ rows, cols int }{
		{1, 1},
		{3, 3},
		{2, 5},
	} {
		name := fmt.Sprintf("%dx%d", tc.rows, tc.cols)
		t.Run(name, func(t *testing.T) {
			m := MustDense[complex128](t, tc.rows, tc.cols)
			// immediately after creation all elements should be 0
			m.Do(func(i, j int, v complex128) bool {
				assert.Zerof(t, v, "element [%d,%d]", i, j)

				return true
			})
			assert.Len(t, m.Raw(), tc.rows*tc.cols)
		})
	}
}

func TestNewDenseRejectsBadInput(t *testing.T) {
	_, err := matrix.NewDense[float64](0, 3)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewDense(2, 2, matrix.WithData([]float64{1, 2, 3}))
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.NewDense(1, 2, matrix.WithData([]float64{1, math.NaN()}))
	assert.ErrorIs(t, err, matrix.ErrNaNInf)

	m, err := matrix.NewDense(1, 2, matrix.WithData([]float64{1, math.Inf(1)}), matrix.WithNoValidateNaNInf[float64]())
	require.NoError(t, err)
	assert.True(t, math.IsInf(MustAt(t, m, 0, 1), 1))
}

func TestWithDataCopies(t *testing.T) {
	src := []float32{1, 2, 3, 4}
	m := MustFrom(t, 2, 2, src)
	src[0] = 99
	assert.Equal(t, float32(1), MustAt(t, m, 0, 0))
	assert.Equal(t, float32(3), MustAt(t, m, 1, 0), "row-major layout")
}

func TestWithFill(t *testing.T) {
	m := MustDense(t, 2, 3, matrix.WithFill(complex64(1+1i)))
	assert.Equal(t, complex64(1+1i), MustAt(t, m, 1, 2))
}

func TestAtSetBounds(t *testing.T) {
	m := MustDense[float64](t, 2, 2)
	_, err := m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaNInf)
	require.NoError(t, m.Set(1, 1, 7))
	assert.Equal(t, 7.0, MustAt(t, m, 1, 1))
}

func TestCloneIsIndependent(t *testing.T) {
	m := MustFrom(t, 1, 2, []complex128{1, 2})
	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 5))
	assert.Equal(t, complex128(1), MustAt(t, m, 0, 0))
}

func TestSwapExchangesStorage(t *testing.T) {
	a := MustFrom(t, 1, 2, []float64{1, 2})
	b := MustFrom(t, 3, 1, []float64{7, 8, 9})
	a.Swap(b)
	r, c := a.Shape()
	assert.Equal(t, [2]int{3, 1}, [2]int{r, c})
	assert.Equal(t, []float64{7, 8, 9}, a.Raw())
	assert.Equal(t, []float64{1, 2}, b.Raw())
}

func TestCopyFrom(t *testing.T) {
	a := MustDense[float64](t, 2, 2)
	b := MustFrom(t, 2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, a.CopyFrom(b))
	assert.Equal(t, b.Raw(), a.Raw())
	assert.ErrorIs(t, a.CopyFrom(MustDense[float64](t, 1, 4)), matrix.ErrDimensionMismatch)
}

func TestInducedAndApply(t *testing.T) {
	m := MustFrom(t, 3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	sub, err := m.Induced([]int{2, 0}, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 2}, sub.Raw())

	_, err = m.Induced([]int{3}, []int{0})
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)

	require.NoError(t, m.Apply(func(i, j int, v float64) float64 { return v * 2 }))
	assert.Equal(t, 18.0, MustAt(t, m, 2, 2))
	assert.ErrorIs(t, m.Apply(func(_, _ int, _ float64) float64 { return math.Inf(-1) }), matrix.ErrNaNInf)
}

func TestStringFormatsRows(t *testing.T) {
	m := MustFrom(t, 2, 2, []float64{1, 2, 3, 4})
	assert.Equal(t, "[1, 2]\n[3, 4]\n", m.String())
}
