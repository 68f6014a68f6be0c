// SPDX-License-Identifier: MIT

// Package matrix provides the dense matrix type of the engine.
//
// The matrix package provides:
//
//   - Dense[T], a row-major matrix over float32, float64, complex64 or
//     complex128 with bounds-checked At/Set, Clone, O(1) Swap and a
//     NaN/Inf ingestion policy.
//   - View[T], a strided (offset, stride, length) window used for rows,
//     columns and any other regularly spaced slice of a buffer.
//   - Products (Product, Mul), matrix-vector products (MatVec), conjugating
//     dot products (Dot) and in-place updates (Axpy), all delegated to the
//     backend binding carried by each matrix.
//   - Central validators and sentinel errors. Every shape check runs before
//     any kernel call, so ErrDimensionMismatch means no kernel was entered.
//
// Example:
//
//	a, _ := matrix.NewDense(2, 2, matrix.WithData([]complex128{1, 1i, -1i, 1}))
//	b, _ := matrix.NewIdentity[complex128](2)
//	c, _ := matrix.Mul(a, b)
package matrix
