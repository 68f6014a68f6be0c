// SPDX-License-Identifier: MIT

package eigen

import (
	"errors"
	"fmt"
)

var (
	// ErrEigenConvergence is matched by every *ConvergenceError.
	ErrEigenConvergence = errors.New("eigen: decomposition failed to converge")

	// ErrSolverKind indicates a Solver used for a decomposition it was not built for.
	ErrSolverKind = errors.New("eigen: solver kind mismatch")
)

// ConvergenceError carries the raw backend failure code.
type ConvergenceError struct {
	Kernel string // "geev" or "heev"
	Code   int    // backend info value, always > 0
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("eigen: %s did not converge (info=%d)", e.Kernel, e.Code)
}

// Unwrap lets errors.Is(err, ErrEigenConvergence) match.
func (e *ConvergenceError) Unwrap() error { return ErrEigenConvergence }
