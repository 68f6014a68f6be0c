// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dielectric/matrix"
)

func TestRowAndColViews(t *testing.T) {
	m := MustFrom(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})

	row, err := m.Row(1)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Len())
	assert.Equal(t, 1, row.Stride())
	assert.Equal(t, []float64{4, 5, 6}, row.Slice())

	col, err := m.Col(2)
	require.NoError(t, err)
	assert.Equal(t, 3, col.Stride())
	assert.Equal(t, 2, col.Offset())
	assert.Equal(t, []float64{3, 6}, col.Slice())

	// writes go through to the matrix
	require.NoError(t, col.Set(0, 30))
	assert.Equal(t, 30.0, MustAt(t, m, 0, 2))

	_, err = m.Row(2)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = col.At(2)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestNewViewNeverPassesBufferEnd(t *testing.T) {
	buf := make([]complex128, 10)
	for _, tc := range []struct {
		name           string
		off, stride, n int
		wantErr        bool
	}{
		{"whole", 0, 1, 10, false},
		{"every-third", 1, 3, 3, false}, // 1,4,7
		{"last-slot", 9, 5, 1, false},
		{"empty", 10, 1, 0, false},
		{"past-end", 1, 3, 4, true}, // 10
		{"zero-stride", 0, 0, 2, true},
		{"negative-offset", -1, 1, 1, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := matrix.NewView(buf, tc.off, tc.stride, tc.n)
			if tc.wantErr {
				assert.ErrorIs(t, err, matrix.ErrBadView)

				return
			}
			assert.NoError(t, err)
		})
	}
}
