// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels/facades minimal by delegating shape/nil/structure checks here.
//  - Return sentinel errors tagged with the validator name so call sites can wrap uniformly.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing.
//  - Hermitian check runs O(n²) on the upper triangle only.
//
// AI-Hints:
//  - Every operation that reaches a backend kernel runs these first; a shape
//    error therefore guarantees that no kernel was entered.
//  - Use ValidateHermitian before the Hermitian eigen path to fail fast.

package matrix

import (
	"fmt"

	"github.com/katalvlaran/dielectric/backend"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil – Ensures the matrix reference is non-nil.
// Returns ErrNilMatrix if m == nil. Complexity: O(1).
func ValidateNotNil[T backend.Scalar](m *Dense[T]) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape – Ensures a and b have equal dimensions.
// Assumes non-nil operands. Complexity: O(1).
func ValidateSameShape(a, b Shaped) error {
	if a.Rows() != b.Rows() {
		return validatorErrorf("ValidateSameShape: Rows", ErrDimensionMismatch)
	}
	if a.Cols() != b.Cols() {
		return validatorErrorf("ValidateSameShape: Columns", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSquare checks that m is square (Rows == Cols).
// Errors: ErrDimensionMismatch if not square. Complexity: O(1).
func ValidateSquare(m Shaped) error {
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrDimensionMismatch)
	}

	return nil
}

// ValidateOrder checks that m is square of order n.
func ValidateOrder(m Shaped, n int) error {
	if m.Rows() != n || m.Cols() != n {
		return validatorErrorf(fmt.Sprintf("ValidateOrder(%d): got %dx%d", n, m.Rows(), m.Cols()), ErrDimensionMismatch)
	}

	return nil
}

// ValidateMulCompatible checks op(a)·op(b) is defined.
// Complexity: O(1).
func ValidateMulCompatible(opA Op, a Shaped, opB Op, b Shaped) error {
	_, ak := opShape(opA, a)
	bk, _ := opShape(opB, b)
	if ak != bk {
		return validatorErrorf(fmt.Sprintf("ValidateMulCompatible: inner %d vs %d", ak, bk), ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen ensures the vector length matches the required size n.
// Time: O(1). Space: O(1).
func ValidateVecLen[T backend.Scalar](x []T, n int) error {
	if len(x) != n {
		return validatorErrorf(fmt.Sprintf("ValidateVecLen: want %d got %d", n, len(x)), ErrDimensionMismatch)
	}

	return nil
}

// ValidateHermitian checks |m[i,j] − conj(m[j,i])| ≤ eps for all i<j and
// |Im m[i,i]| ≤ eps. For real T this is the symmetry check.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (non-square), ErrAsymmetry.
// Complexity: O(n²).
func ValidateHermitian[T backend.Scalar](m *Dense[T], eps float64) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if err := ValidateSquare(m); err != nil {
		return err
	}
	n := m.r
	var i, j int
	for i = 0; i < n; i++ {
		if im := imag(backend.ToComplex(m.data[i*n+i])); im > eps || im < -eps {
			return validatorErrorf(fmt.Sprintf("ValidateHermitian: diag %d", i), ErrAsymmetry)
		}
		for j = i + 1; j < n; j++ {
			d := backend.ToComplex(m.data[i*n+j]) - backend.ToComplex(backend.Conj(m.data[j*n+i]))
			if backend.Abs(d) > eps {
				return validatorErrorf(fmt.Sprintf("ValidateHermitian: (%d,%d)", i, j), ErrAsymmetry)
			}
		}
	}

	return nil
}

// notAliased reports ErrAliased when dst shares its first element with src.
func notAliased[T backend.Scalar](dst, src []T) error {
	if len(dst) > 0 && len(src) > 0 && &dst[0] == &src[0] {
		return ErrAliased
	}

	return nil
}
