// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set (unified, consistent).
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All operations MUST return these sentinels and tests MUST check them
// via errors.Is. No operation should panic on user-triggered error conditions.
// Panics are reserved for programmer errors in option constructors.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Operations wrap with fmt.Errorf("Op: %w", ErrX)
// at the detection site; callers match with errors.Is.
//
// ERROR PRIORITY (documented, enforced in tests):
// nil -> shape/index -> dimension mismatch -> aliasing -> NaN/Inf policy
// -> structural violations (Hermitian).
//
// Shape checks always run before any backend kernel is entered: a caller that
// receives ErrDimensionMismatch can rely on no kernel having been invoked.

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row, column or view slot) is outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrBadView indicates a strided view that would reach past its buffer
	// (offset < 0, stride < 1, length < 0 or offset+(length-1)*stride >= len(buf)).
	ErrBadView = errors.New("matrix: invalid strided view")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g., Axpy on different shapes, or a product where op(A).Cols != op(B).Rows.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrAliased indicates that a destination shares storage with an input of a
	// kernel that forbids it (gemm/gemv outputs).
	ErrAliased = errors.New("matrix: destination aliases an operand")

	// ErrAsymmetry signals that a matrix expected to be Hermitian (symmetric for
	// real element types) violated that structure within the given epsilon.
	ErrAsymmetry = errors.New("matrix: matrix is not Hermitian within eps")

	// ErrNaNInf signals a NaN or ±Inf value was encountered where finite values
	// are required by the numeric policy (ingestion, Set, Apply).
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil *Dense (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")
)
