// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for Dense construction.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//
// Notes:
//   - The kernel binding travels with the matrix: every product, axpy or dot
//     involving a Dense uses the binding of its destination (or first operand).
//   - Numeric policy is orthogonal and explicit: validateNaNInf controls whether
//     Set()/Apply()/WithData ingestion rejects NaN or ±Inf components.
package matrix

import "github.com/katalvlaran/dielectric/backend"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon defines the non-negative tolerance used by structural checks.
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf toggles strict finite-value validation on ingestion and Set.
	DefaultValidateNaNInf = true
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicNilKernels = "matrix: WithBackend: kernels must be non-nil"
)

// ---------- Public option type (functional) ----------

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option[T backend.Scalar] func(*Options[T])

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept `...Option[T]`.
type Options[T backend.Scalar] struct {
	kernels        backend.Kernels[T] // nil until finalized; then For[T]()
	validateNaNInf bool               // DefaultValidateNaNInf
	hasFill        bool               // WithFill was applied
	fill           T                  // initial value for every element
	data           []T                // WithData source (copied, row-major)
}

// WithBackend routes arithmetic of the constructed matrix through k.
// Panics on nil (programmer error).
func WithBackend[T backend.Scalar](k backend.Kernels[T]) Option[T] {
	if k == nil {
		panic(panicNilKernels)
	}

	return func(o *Options[T]) { o.kernels = k }
}

// WithFill initializes every element to v instead of zero.
func WithFill[T backend.Scalar](v T) Option[T] {
	return func(o *Options[T]) {
		o.hasFill = true
		o.fill = v
	}
}

// WithData copy-constructs the matrix from a row-major slice.
// The slice length must equal rows*cols (checked by NewDense).
func WithData[T backend.Scalar](data []T) Option[T] {
	return func(o *Options[T]) { o.data = data }
}

// WithValidateNaNInf enables finite-only enforcement (the default).
func WithValidateNaNInf[T backend.Scalar]() Option[T] {
	return func(o *Options[T]) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf disables finite-only enforcement. Use for scratch
// buffers that legitimately pass through non-finite intermediates.
func WithNoValidateNaNInf[T backend.Scalar]() Option[T] {
	return func(o *Options[T]) { o.validateNaNInf = false }
}

// defaultOptions returns Options populated with the documented defaults.
func defaultOptions[T backend.Scalar]() Options[T] {
	return Options[T]{validateNaNInf: DefaultValidateNaNInf}
}

// gatherOptions applies user options over the defaults and finalizes them.
// Complexity: O(len(user)).
func gatherOptions[T backend.Scalar](user ...Option[T]) Options[T] {
	o := defaultOptions[T]()
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}
	if o.kernels == nil {
		o.kernels = backend.For[T]()
	}

	return o
}
