// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/dielectric/matrix"
)

func TestValidateHermitian(t *testing.T) {
	cases := []struct {
		name string
		data []complex128
		rows int
		cols int
		want error
	}{
		{"hermitian", []complex128{2, 1i, -1i, 3}, 2, 2, nil},
		{"not-conjugate", []complex128{2, 1i, 1i, 3}, 2, 2, matrix.ErrAsymmetry},
		{"complex-diagonal", []complex128{2i, 0, 0, 3}, 2, 2, matrix.ErrAsymmetry},
		{"non-square", []complex128{1, 2}, 1, 2, matrix.ErrDimensionMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := MustFrom(t, tc.rows, tc.cols, tc.data)
			err := matrix.ValidateHermitian(m, matrix.DefaultEpsilon)
			if tc.want == nil {
				assert.NoError(t, err)

				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var nilM *matrix.Dense[float64]
	assert.ErrorIs(t, matrix.ValidateHermitian(nilM, 0), matrix.ErrNilMatrix)
}

func TestShapeValidators(t *testing.T) {
	a := MustDense[float64](t, 2, 3)
	b := MustDense[float64](t, 3, 3)
	assert.ErrorIs(t, matrix.ValidateSameShape(a, b), matrix.ErrDimensionMismatch)
	assert.ErrorIs(t, matrix.ValidateSquare(a), matrix.ErrDimensionMismatch)
	assert.NoError(t, matrix.ValidateOrder(b, 3))
	assert.ErrorIs(t, matrix.ValidateOrder(b, 2), matrix.ErrDimensionMismatch)
	assert.NoError(t, matrix.ValidateMulCompatible(matrix.NoTrans, a, matrix.NoTrans, b))
	assert.ErrorIs(t, matrix.ValidateMulCompatible(matrix.Trans, a, matrix.NoTrans, b), matrix.ErrDimensionMismatch)
	assert.ErrorIs(t, matrix.ValidateVecLen([]float64{1}, 2), matrix.ErrDimensionMismatch)
}

func TestConvertAndVector(t *testing.T) {
	r := MustFrom(t, 2, 1, []float64{1.5, -2})
	c, err := matrix.Convert[complex128](r)
	assert.NoError(t, err)
	assert.Equal(t, []complex128{1.5, -2}, c.Raw())

	v, err := matrix.Vector(r)
	assert.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2}, v)

	_, err = matrix.Vector(MustDense[float64](t, 2, 2))
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestIdentityDiagonalAllClose(t *testing.T) {
	id, err := matrix.NewIdentity[complex64](3)
	assert.NoError(t, err)
	d, err := matrix.NewDiagonal([]complex64{1, 1, 1})
	assert.NoError(t, err)
	ok, err := matrix.AllClose(id, d, 0, 0)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1.7320508, matrix.FrobeniusNorm(id), 1e-6)

	diff, err := matrix.MaxAbsDiff(id, d)
	assert.NoError(t, err)
	assert.Zero(t, diff)
}
