// SPDX-License-Identifier: MIT

package matrix

import (
	"math"

	"github.com/katalvlaran/dielectric/backend"
)

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
// For complex T the modulus is used on both sides.
// Time: O(r*c). Space: O(1). Deterministic.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol| (negative values are normalized).
func AllClose[T backend.Scalar](a, b *Dense[T], rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf("AllClose", ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf("AllClose", err)
	}

	for idx := range a.data {
		diff := backend.Abs(a.data[idx] - b.data[idx])
		if diff > atol+rtol*backend.Abs(b.data[idx]) {
			return false, nil // early-exit on first violation
		}
	}

	return true, nil
}

// FrobeniusNorm returns sqrt(Σ|m_ij|²).
// Complexity: O(r*c).
func FrobeniusNorm[T backend.Scalar](m *Dense[T]) float64 {
	var s float64
	for _, v := range m.data {
		s += backend.Abs2(v)
	}

	return math.Sqrt(s)
}

// MaxAbsDiff returns max |a_ij − b_ij|, or an error on shape mismatch.
func MaxAbsDiff[T backend.Scalar](a, b *Dense[T]) (float64, error) {
	if a == nil || b == nil {
		return 0, matrixErrorf("MaxAbsDiff", ErrNilMatrix)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return 0, matrixErrorf("MaxAbsDiff", err)
	}
	var worst float64
	for i := range a.data {
		worst = math.Max(worst, backend.Abs(a.data[i]-b.data[i]))
	}

	return worst, nil
}
