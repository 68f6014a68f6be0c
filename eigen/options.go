// SPDX-License-Identifier: MIT

package eigen

import (
	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/matrix"
)

// Option configures a Solver.
type Option[T backend.Scalar] func(*options[T])

type options[T backend.Scalar] struct {
	kernels        backend.Kernels[T]
	eps            float64
	checkHermitian bool
}

// WithBackend selects the kernel binding. Panics on nil.
func WithBackend[T backend.Scalar](k backend.Kernels[T]) Option[T] {
	if k == nil {
		panic("eigen: WithBackend(nil)")
	}

	return func(o *options[T]) { o.kernels = k }
}

// WithEpsilon sets the relative tolerance of the Hermitian input check.
// The absolute tolerance is eps·max(1, ‖A‖_F).
func WithEpsilon[T backend.Scalar](eps float64) Option[T] {
	return func(o *options[T]) {
		if eps >= 0 {
			o.eps = eps
		}
	}
}

// WithoutHermitianCheck skips the symmetry validation before Heev.
func WithoutHermitianCheck[T backend.Scalar]() Option[T] {
	return func(o *options[T]) { o.checkHermitian = false }
}

func gatherOptions[T backend.Scalar](opts ...Option[T]) options[T] {
	o := options[T]{eps: matrix.DefaultEpsilon, checkHermitian: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.kernels == nil {
		o.kernels = backend.For[T]()
	}

	return o
}
