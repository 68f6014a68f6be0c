// SPDX-License-Identifier: MIT

// Package matrix: shared shape contract.
// Validators only need a shape, so they accept this small non-generic
// interface instead of a concrete element type.
package matrix

import "github.com/katalvlaran/dielectric/backend"

// Shaped is anything with a row/column count.
// Complexity notes: both methods are expected O(1).
type Shaped interface {
	// Rows returns the number of rows.
	Rows() int

	// Cols returns the number of columns.
	Cols() int
}

// Op selects op(A) in products: NoTrans, Trans or ConjTrans.
// For real element types ConjTrans equals Trans.
type Op = backend.Transpose

// Product operand flags.
const (
	NoTrans   = backend.NoTrans
	Trans     = backend.Trans
	ConjTrans = backend.ConjTrans
)

// opShape returns the shape of op(m).
func opShape(op Op, m Shaped) (rows, cols int) {
	if op == NoTrans {
		return m.Rows(), m.Cols()
	}

	return m.Cols(), m.Rows()
}
