// SPDX-License-Identifier: MIT
// Package matrix provides the linear-algebra surface over Dense: matrix
// products, matrix-vector products, conjugating dot products, axpy updates,
// scaling and (conjugate) transposes. All functions perform strict fail-fast
// validation and return clear errors on dimension mismatches.
//
// Purpose:
//   - Validate shapes, then delegate the arithmetic to the backend binding
//     carried by the destination (or first operand).
//   - Define operation tags for deterministic error reporting.
//
// Notes:
//   - A validation failure returns before any kernel call. Callers (and tests
//     with backend.Counting) rely on this.

package matrix

import (
	"fmt"

	"github.com/katalvlaran/dielectric/backend"
)

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opProduct   = "Product"
	opMul       = "Mul"
	opMatVec    = "MatVec"
	opDot       = "Dot"
	opAxpy      = "Axpy"
	opScale     = "Scale"
	opTranspose = "Transpose"
	opAdjoint   = "Adjoint"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// The wrapper keeps a stable "Op: underlying" shape for uniform reporting across facades.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
//
// Complexity:
//   - Time O(1), Space O(1).
//
// AI-Hints:
//   - Always gate calls with `if err != nil { return nil, matrixErrorf(tag, err) }`.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Product computes dst = op(a)·op(b) through the gemm kernel of dst.
// MAIN DESCRIPTION:
//   - In-place product into a caller-supplied destination; nothing is allocated.
//
// Implementation:
//   - Stage 1: nil checks; ValidateMulCompatible(op(a), op(b)).
//   - Stage 2: dst must be rows(op(a)) × cols(op(b)) and must not alias a or b.
//   - Stage 3: dst.k.Gemm(opA, opB, m, n, k, 1, a, a.c, b, b.c, 0, dst, dst.c).
//
// Behavior highlights:
//   - ConjTrans conjugates complex operands; for real T it is Trans.
//   - Inputs are read-only; dst is fully overwritten (beta = 0).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrAliased.
//
// Complexity:
//   - Time O(m·n·k), Space O(1).
//
// AI-Hints:
//   - Ψᴴ·V·Ψ is two calls: Product(t, NoTrans, V, NoTrans, Ψ); Product(out, ConjTrans, Ψ, NoTrans, t).
func Product[T backend.Scalar](dst *Dense[T], opA Op, a *Dense[T], opB Op, b *Dense[T]) error {
	for _, m := range []*Dense[T]{dst, a, b} {
		if err := ValidateNotNil(m); err != nil {
			return matrixErrorf(opProduct, err)
		}
	}
	if err := ValidateMulCompatible(opA, a, opB, b); err != nil {
		return matrixErrorf(opProduct, err)
	}
	m, k := opShape(opA, a)
	_, n := opShape(opB, b)
	if dst.r != m || dst.c != n {
		return matrixErrorf(opProduct, fmt.Errorf("dst %dx%d, want %dx%d: %w", dst.r, dst.c, m, n, ErrDimensionMismatch))
	}
	if err := notAliased(dst.data, a.data); err != nil {
		return matrixErrorf(opProduct, err)
	}
	if err := notAliased(dst.data, b.data); err != nil {
		return matrixErrorf(opProduct, err)
	}

	dst.k.Gemm(opA, opB, m, n, k, 1, a.data, a.c, b.data, b.c, 0, dst.data, dst.c)

	return nil
}

// Mul returns a freshly allocated a·b.
// The result inherits the binding and numeric policy of a.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (a.Cols != b.Rows).
//
// Complexity:
//   - Time O(r·c·k), Space O(r·c).
func Mul[T backend.Scalar](a, b *Dense[T]) (*Dense[T], error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateMulCompatible(NoTrans, a, NoTrans, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	out, err := NewDense[T](a.r, b.c, WithBackend(a.k))
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	out.validateNaNInf = a.validateNaNInf
	if err = Product(out, NoTrans, a, NoTrans, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	return out, nil
}

// MatVecInto computes y = op(a)·x into the caller-supplied y (gemv).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (len(x) != cols(op(a)) or len(y) != rows(op(a))), ErrAliased.
//
// Complexity:
//   - Time O(r·c), Space O(1).
func MatVecInto[T backend.Scalar](y []T, op Op, a *Dense[T], x []T) error {
	if err := ValidateNotNil(a); err != nil {
		return matrixErrorf(opMatVec, err)
	}
	rows, cols := opShape(op, a)
	if err := ValidateVecLen(x, cols); err != nil {
		return matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(y, rows); err != nil {
		return matrixErrorf(opMatVec, err)
	}
	if err := notAliased(y, x); err != nil {
		return matrixErrorf(opMatVec, err)
	}

	a.k.Gemv(op, a.r, a.c, 1, a.data, a.c, x, 1, 0, y, 1)

	return nil
}

// MatVec returns a freshly allocated a·x.
// Complexity: O(r·c).
func MatVec[T backend.Scalar](a *Dense[T], x []T) ([]T, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]T, a.r)
	if err := MatVecInto(y, NoTrans, a, x); err != nil {
		return nil, err
	}

	return y, nil
}

// Dot returns xᴴ·y (conjugating x for complex T) over two views of equal length.
//
// Errors:
//   - ErrDimensionMismatch when lengths differ.
//
// Complexity:
//   - Time O(n), Space O(1).
func Dot[T backend.Scalar](x, y View[T]) (T, error) {
	if x.n != y.n {
		var zero T

		return zero, matrixErrorf(opDot, fmt.Errorf("len %d vs %d: %w", x.n, y.n, ErrDimensionMismatch))
	}
	if x.n == 0 {
		var zero T

		return zero, nil
	}
	k := x.k
	if k == nil {
		k = backend.For[T]()
	}
	xs, incX := x.vector()
	ys, incY := y.vector()

	return k.Dot(x.n, xs, incX, ys, incY), nil
}

// Axpy updates a ← a + alpha·b in place (axpy over the flat buffers).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (shapes differ), ErrNaNInf (non-finite alpha under policy).
//
// Complexity:
//   - Time O(r·c), Space O(1).
func Axpy[T backend.Scalar](a *Dense[T], alpha T, b *Dense[T]) error {
	if err := ValidateNotNil(a); err != nil {
		return matrixErrorf(opAxpy, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return matrixErrorf(opAxpy, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return matrixErrorf(opAxpy, err)
	}
	if a.validateNaNInf && !backend.IsFinite(alpha) {
		return matrixErrorf(opAxpy, ErrNaNInf)
	}

	a.k.Axpy(len(a.data), alpha, b.data, 1, a.data, 1)

	return nil
}

// Scale returns a new matrix alpha·m.
// Complexity: O(r·c).
func Scale[T backend.Scalar](m *Dense[T], alpha T) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	out := m.Clone()
	if err := out.Apply(func(_, _ int, v T) T { return alpha * v }); err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	return out, nil
}

// Transpose returns a new mᵀ.
// Complexity: O(r·c).
func Transpose[T backend.Scalar](m *Dense[T]) (*Dense[T], error) {
	return transposeWith(m, opTranspose, false)
}

// Adjoint returns a new mᴴ (conjugate transpose; equals mᵀ for real T).
// Complexity: O(r·c).
func Adjoint[T backend.Scalar](m *Dense[T]) (*Dense[T], error) {
	return transposeWith(m, opAdjoint, true)
}

func transposeWith[T backend.Scalar](m *Dense[T], tag string, conj bool) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	out, err := NewDense[T](m.c, m.r, WithBackend(m.k))
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}
	out.validateNaNInf = m.validateNaNInf
	var i, j int
	for i = 0; i < m.r; i++ {
		for j = 0; j < m.c; j++ {
			v := m.data[i*m.c+j]
			if conj {
				v = backend.Conj(v)
			}
			out.data[j*m.r+i] = v
		}
	}

	return out, nil
}
