// SPDX-License-Identifier: MIT
// Package matrix: public constructors and conversions.
//
// Purpose:
//   - Provide thin, well-documented entry points for common tasks across the package.
//   - Avoid any logic duplication: each facade delegates to NewDense.
//
// AI-Hints:
//   - Use NewIdentity/NewZeros/NewDiagonal to build matrices with explicit shape and neutral elements.
//   - Use Convert to lift real inputs into a complex pipeline.

package matrix

import (
	"fmt"

	"github.com/katalvlaran/dielectric/backend"
)

// NewZeros returns a new zero-initialized *Dense of size rows×cols.
// It is a thin alias of NewDense with an intention-revealing name.
func NewZeros[T backend.Scalar](rows, cols int, opts ...Option[T]) (*Dense[T], error) {
	return NewDense(rows, cols, opts...)
}

// NewIdentity returns I_n (n×n identity; ones on the diagonal, zeros elsewhere).
// Complexity: O(n^2) zeroing + O(n) diagonal writes.
func NewIdentity[T backend.Scalar](n int, opts ...Option[T]) (*Dense[T], error) {
	id, err := NewDense(n, n, opts...)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		id.data[i*n+i] = 1
	}

	return id, nil
}

// NewDiagonal returns the square matrix diag(d).
func NewDiagonal[T backend.Scalar](d []T, opts ...Option[T]) (*Dense[T], error) {
	n := len(d)
	m, err := NewDense(n, n, opts...)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if m.validateNaNInf && !backend.IsFinite(d[i]) {
			return nil, denseErrorf("NewDiagonal", i, i, ErrNaNInf)
		}
		m.data[i*n+i] = d[i]
	}

	return m, nil
}

// ZerosLike returns a zero matrix with the shape, binding and policy of m.
func ZerosLike[T backend.Scalar](m *Dense[T]) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}
	out, err := NewDense[T](m.r, m.c, WithBackend(m.k))
	if err != nil {
		return nil, err
	}
	out.validateNaNInf = m.validateNaNInf

	return out, nil
}

// Convert copies src into a new matrix of element type D.
// Real → complex widens exactly; complex → real keeps the real part;
// float64 → float32 rounds.
// Complexity: O(r*c).
func Convert[D, S backend.Scalar](src *Dense[S], opts ...Option[D]) (*Dense[D], error) {
	if err := ValidateNotNil(src); err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}
	out, err := NewDense(src.r, src.c, opts...)
	if err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}
	for i, v := range src.data {
		out.data[i] = backend.FromComplex[D](backend.ToComplex(v))
	}

	return out, nil
}

// Vector returns the elements of an n×1 or 1×n matrix as a fresh slice.
// Errors: ErrDimensionMismatch when neither dimension is 1.
func Vector[T backend.Scalar](m *Dense[T]) ([]T, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, fmt.Errorf("Vector: %w", err)
	}
	if m.r != 1 && m.c != 1 {
		return nil, fmt.Errorf("Vector: shape %dx%d: %w", m.r, m.c, ErrDimensionMismatch)
	}
	out := make([]T, len(m.data))
	copy(out, m.data)

	return out, nil
}
