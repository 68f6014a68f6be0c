// SPDX-License-Identifier: MIT

// Package response evaluates sum-over-states response functions.
//
// For N states with energies E, state matrix Ψ (column n is state n) and a
// coupling matrix V, the evaluator precomputes the transition matrix
//
//	M = Ψᴴ · V · Ψ
//
// and the pair weights w_nm = |M_nm|² · F_nm, where F_nm = f_n − f_m when
// occupations are supplied and 1 otherwise. The response at frequency ω is
//
//	R(ω) = p · Σ_n Σ_{m≠n} w_nm / (ω − (E_m − E_n) + iη)
//
// summed over both pair orders in ascending (n, m) order, so every rank
// evaluating the same ω produces the same bits.
//
// The package also carries the dielectric-matrix workflow: Fermi-Dirac
// occupations, the Coulomb potential of a set of sites, ε(ω) = I − V·χ(ω),
// Hamiltonian diagonalization and the loss function.
package response

import (
	"fmt"
	"math"

	"github.com/katalvlaran/dielectric/aggregate"
	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/matrix"
	"github.com/katalvlaran/dielectric/timing"
)

// Timer names recorded through WithTiming.
const (
	TimerTransition = "response.transition"
	TimerSweep      = "response.sweep"
)

// Option configures an Evaluator.
type Option func(*options)

type options struct {
	occ       Occupations
	prefactor complex128
	tc        *timing.Context
}

// WithOccupations weights each pair by f_n − f_m.
func WithOccupations(f Occupations) Option {
	return func(o *options) { o.occ = f }
}

// WithPrefactor multiplies every sample by p (default 1).
func WithPrefactor(p complex128) Option {
	return func(o *options) { o.prefactor = p }
}

// WithTiming records precomputation and sweeps into tc.
func WithTiming(tc *timing.Context) Option {
	return func(o *options) { o.tc = tc }
}

// Evaluator holds the precomputed pair weights of one system.
// It is read-only after construction and safe for concurrent use.
type Evaluator struct {
	n         int
	energies  []float64
	weights   []float64 // row-major n×n, diagonal unused
	eta       float64
	prefactor complex128
	tc        *timing.Context
}

// NewEvaluator validates the inputs and precomputes M = Ψᴴ·V·Ψ with two
// matrix products on the binding of psi.
//
// Errors (all raised before any kernel call):
//   - matrix.ErrNilMatrix for nil psi or coupling.
//   - matrix.ErrDimensionMismatch when psi or coupling is not N×N, with
//     N = len(energies) ≥ 1, or occupations are not of length N.
//   - ErrInvalidBroadening unless broadening is finite and > 0.
//
// Complexity: Time O(N³), Space O(N²).
func NewEvaluator[T backend.Scalar](energies []float64, psi, coupling *matrix.Dense[T], broadening float64, opts ...Option) (*Evaluator, error) {
	o := options{prefactor: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if err := validateInputs(energies, psi, coupling, broadening, o.occ); err != nil {
		return nil, fmt.Errorf("NewEvaluator: %w", err)
	}

	n := len(energies)
	ev := &Evaluator{
		n:         n,
		energies:  append([]float64(nil), energies...),
		weights:   make([]float64, n*n),
		eta:       broadening,
		prefactor: o.prefactor,
		tc:        o.tc,
	}
	err := o.tc.Measure(TimerTransition, func() error {
		m, err := TransitionMatrix(psi, coupling)
		if err != nil {
			return err
		}
		raw := m.Raw()
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				w := backend.Abs2(raw[a*n+b])
				if o.occ != nil {
					w *= o.occ[a] - o.occ[b]
				}
				ev.weights[a*n+b] = w
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("NewEvaluator: %w", err)
	}

	return ev, nil
}

func validateInputs[T backend.Scalar](energies []float64, psi, coupling *matrix.Dense[T], eta float64, occ Occupations) error {
	if err := matrix.ValidateNotNil(psi); err != nil {
		return fmt.Errorf("psi: %w", err)
	}
	if err := matrix.ValidateNotNil(coupling); err != nil {
		return fmt.Errorf("coupling: %w", err)
	}
	n := len(energies)
	if n == 0 {
		return fmt.Errorf("energies: empty: %w", matrix.ErrDimensionMismatch)
	}
	if err := matrix.ValidateOrder(psi, n); err != nil {
		return fmt.Errorf("psi: %w", err)
	}
	if err := matrix.ValidateOrder(coupling, n); err != nil {
		return fmt.Errorf("coupling: %w", err)
	}
	if occ != nil && len(occ) != n {
		return fmt.Errorf("occupations: %d for %d states: %w", len(occ), n, matrix.ErrDimensionMismatch)
	}

	return ValidateBroadening(eta)
}

// ValidateBroadening returns ErrInvalidBroadening unless eta is finite and > 0.
func ValidateBroadening(eta float64) error {
	if math.IsNaN(eta) || math.IsInf(eta, 0) || eta <= 0 {
		return fmt.Errorf("broadening %g: %w", eta, ErrInvalidBroadening)
	}

	return nil
}

// TransitionMatrix returns Ψᴴ·V·Ψ.
func TransitionMatrix[T backend.Scalar](psi, coupling *matrix.Dense[T]) (*matrix.Dense[T], error) {
	vpsi, err := matrix.Mul(coupling, psi)
	if err != nil {
		return nil, err
	}
	out, err := matrix.ZerosLike(psi)
	if err != nil {
		return nil, err
	}
	if err = matrix.Product(out, matrix.ConjTrans, psi, matrix.NoTrans, vpsi); err != nil {
		return nil, err
	}

	return out, nil
}

// States returns the number of states N.
func (e *Evaluator) States() int { return e.n }

// Broadening returns η.
func (e *Evaluator) Broadening() float64 { return e.eta }

// At returns R(omega). It never fails: η > 0 keeps every denominator nonzero.
func (e *Evaluator) At(omega float64) complex128 {
	var sum complex128
	for a := 0; a < e.n; a++ {
		row := e.weights[a*e.n : (a+1)*e.n]
		for b := 0; b < e.n; b++ {
			if a == b {
				continue
			}
			sum += complex(row[b], 0) / complex(omega-(e.energies[b]-e.energies[a]), e.eta)
		}
	}

	return e.prefactor * sum
}

// Sweep evaluates every frequency in order.
func (e *Evaluator) Sweep(freqs []float64) []aggregate.Sample {
	defer e.tc.Start(TimerSweep)()
	out := make([]aggregate.Sample, len(freqs))
	for i, w := range freqs {
		out[i] = aggregate.Sample{Frequency: w, Value: e.At(w)}
	}

	return out
}

// Evaluate is the one-shot form: build an Evaluator and return R(omega).
func Evaluate[T backend.Scalar](omega float64, energies []float64, psi, coupling *matrix.Dense[T], broadening float64, opts ...Option) (complex128, error) {
	ev, err := NewEvaluator(energies, psi, coupling, broadening, opts...)
	if err != nil {
		return 0, err
	}

	return ev.At(omega), nil
}
