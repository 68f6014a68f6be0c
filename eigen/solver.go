// SPDX-License-Identifier: MIT

// Package eigen - eigen-decomposition service over matrix.Dense.
//
// Purpose:
//   - Run the backend workspace query once per (order, kind, vectors) and reuse
//     the allocated workspace for every matrix of that order.
//   - Translate backend info codes into *ConvergenceError.
//
// Contract:
//   - General: complex eigenvalues in backend order (not sorted) and, when
//     requested, unit-norm right eigenvectors as complex128 columns.
//   - Hermitian: real eigenvalues in ascending order and, when requested,
//     orthonormal eigenvector columns of the input element type.
//   - The input matrix is used as kernel scratch and is overwritten on both
//     success and failure. Clone first when the original is still needed.
//   - Results never alias solver workspace.
package eigen

import (
	"fmt"
	"math"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/matrix"
)

// Kind selects the decomposition a Solver is sized for.
type Kind int

const (
	General Kind = iota
	Hermitian
)

func (k Kind) String() string {
	switch k {
	case General:
		return "general"
	case Hermitian:
		return "hermitian"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// GeneralResult holds a general decomposition. Vectors is nil unless requested.
// Column j of Vectors pairs with Values[j].
type GeneralResult struct {
	Values  []complex128
	Vectors *matrix.Dense[complex128]
}

// HermitianResult holds a Hermitian decomposition. Values ascend.
// Vectors is nil unless requested; column j pairs with Values[j].
type HermitianResult[T backend.Scalar] struct {
	Values  []float64
	Vectors *matrix.Dense[T]
}

const (
	opNewSolver = "NewSolver"
	opGeneral   = "General"
	opHermitian = "Hermitian"
)

// Solver owns the workspace for one matrix order and decomposition kind.
// A Solver is not safe for concurrent use.
type Solver[T backend.Scalar] struct {
	k     backend.Kernels[T]
	n     int
	kind  Kind
	wantV bool
	eps   float64
	check bool

	work  []T
	lwork int
	rwork []float64
	w     []complex128 // general eigenvalues
	vr    []complex128 // general eigenvectors (n*n)
	wr    []float64    // hermitian eigenvalues
}

// NewSolver sizes a solver for n×n matrices.
// MAIN DESCRIPTION:
//   - Issue the backend workspace query (lwork = -1) once and allocate work,
//     rwork and output buffers accordingly.
//
// Errors:
//   - matrix.ErrInvalidDimensions when n < 1.
//
// Complexity:
//   - Time O(1) kernel query (plus LAPACK's own query cost), Space O(n² + lwork).
func NewSolver[T backend.Scalar](n int, kind Kind, wantVectors bool, opts ...Option[T]) (*Solver[T], error) {
	if n < 1 {
		return nil, fmt.Errorf("%s(%d): %w", opNewSolver, n, matrix.ErrInvalidDimensions)
	}
	if kind != General && kind != Hermitian {
		return nil, fmt.Errorf("%s: %v: %w", opNewSolver, kind, ErrSolverKind)
	}
	o := gatherOptions(opts...)
	s := &Solver[T]{k: o.kernels, n: n, kind: kind, wantV: wantVectors, eps: o.eps, check: o.checkHermitian}

	job := backend.VectorsNone
	if wantVectors {
		job = backend.VectorsCompute
	}
	q := make([]T, 1)
	rq := make([]float64, 1)
	switch kind {
	case General:
		s.k.Geev(job, n, nil, n, nil, nil, n, q, -1, rq)
	case Hermitian:
		s.k.Heev(job, n, nil, n, nil, q, -1, rq)
	}
	s.lwork = max(1, int(real(backend.ToComplex(q[0]))))
	s.work = make([]T, s.lwork)
	s.rwork = make([]float64, max(1, int(rq[0])))

	switch kind {
	case General:
		s.w = make([]complex128, n)
		if wantVectors {
			s.vr = make([]complex128, n*n)
		}
	case Hermitian:
		s.wr = make([]float64, n)
	}

	return s, nil
}

// Order returns the matrix order the solver was sized for.
func (s *Solver[T]) Order() int { return s.n }

// Kind returns the decomposition kind.
func (s *Solver[T]) Kind() Kind { return s.kind }

// General decomposes a general square matrix of the solver's order.
//
// Errors:
//   - ErrSolverKind, matrix.ErrNilMatrix, matrix.ErrDimensionMismatch (before any kernel call).
//   - *ConvergenceError (ErrEigenConvergence) on backend failure.
func (s *Solver[T]) General(m *matrix.Dense[T]) (*GeneralResult, error) {
	if s.kind != General {
		return nil, fmt.Errorf("%s: %w", opGeneral, ErrSolverKind)
	}
	if err := s.validate(m); err != nil {
		return nil, fmt.Errorf("%s: %w", opGeneral, err)
	}

	job := backend.VectorsNone
	var vr []complex128
	if s.wantV {
		job = backend.VectorsCompute
		vr = s.vr
	}
	if info := s.k.Geev(job, s.n, m.Raw(), s.n, s.w, vr, s.n, s.work, s.lwork, s.rwork); info != 0 {
		return nil, fmt.Errorf("%s: %w", opGeneral, &ConvergenceError{Kernel: "geev", Code: info})
	}

	res := &GeneralResult{Values: append([]complex128(nil), s.w...)}
	if s.wantV {
		vec, err := matrix.NewDense(s.n, s.n, matrix.WithData(s.vr))
		if err != nil {
			return nil, fmt.Errorf("%s: vectors: %w", opGeneral, err)
		}
		res.Vectors = vec
	}

	return res, nil
}

// Hermitian decomposes a Hermitian (real symmetric) matrix of the solver's order.
//
// Errors:
//   - ErrSolverKind, matrix.ErrNilMatrix, matrix.ErrDimensionMismatch,
//     matrix.ErrAsymmetry (unless disabled), all before any kernel call.
//   - *ConvergenceError (ErrEigenConvergence) on backend failure.
func (s *Solver[T]) Hermitian(m *matrix.Dense[T]) (*HermitianResult[T], error) {
	if s.kind != Hermitian {
		return nil, fmt.Errorf("%s: %w", opHermitian, ErrSolverKind)
	}
	if err := s.validate(m); err != nil {
		return nil, fmt.Errorf("%s: %w", opHermitian, err)
	}
	if s.check {
		tol := s.eps * math.Max(1, matrix.FrobeniusNorm(m))
		if err := matrix.ValidateHermitian(m, tol); err != nil {
			return nil, fmt.Errorf("%s: %w", opHermitian, err)
		}
	}

	job := backend.VectorsNone
	if s.wantV {
		job = backend.VectorsCompute
	}
	if info := s.k.Heev(job, s.n, m.Raw(), s.n, s.wr, s.work, s.lwork, s.rwork); info != 0 {
		return nil, fmt.Errorf("%s: %w", opHermitian, &ConvergenceError{Kernel: "heev", Code: info})
	}

	res := &HermitianResult[T]{Values: append([]float64(nil), s.wr...)}
	if s.wantV {
		vec, err := matrix.NewDense(s.n, s.n, matrix.WithData(m.Raw()), matrix.WithBackend(m.Kernels()))
		if err != nil {
			return nil, fmt.Errorf("%s: vectors: %w", opHermitian, err)
		}
		res.Vectors = vec
	}

	return res, nil
}

func (s *Solver[T]) validate(m *matrix.Dense[T]) error {
	if err := matrix.ValidateNotNil(m); err != nil {
		return err
	}

	return matrix.ValidateOrder(m, s.n)
}

// DecomposeGeneral is the one-shot form of Solver.General. The solver uses the
// binding carried by m unless opts override it.
func DecomposeGeneral[T backend.Scalar](m *matrix.Dense[T], wantVectors bool, opts ...Option[T]) (*GeneralResult, error) {
	s, err := oneShot(m, General, wantVectors, opts)
	if err != nil {
		return nil, err
	}

	return s.General(m)
}

// DecomposeHermitian is the one-shot form of Solver.Hermitian.
func DecomposeHermitian[T backend.Scalar](m *matrix.Dense[T], wantVectors bool, opts ...Option[T]) (*HermitianResult[T], error) {
	s, err := oneShot(m, Hermitian, wantVectors, opts)
	if err != nil {
		return nil, err
	}

	return s.Hermitian(m)
}

func oneShot[T backend.Scalar](m *matrix.Dense[T], kind Kind, wantVectors bool, opts []Option[T]) (*Solver[T], error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	if err := matrix.ValidateSquare(m); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	all := append([]Option[T]{WithBackend(m.Kernels())}, opts...)

	return NewSolver(m.Rows(), kind, wantVectors, all...)
}
