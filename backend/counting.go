// SPDX-License-Identifier: MIT

package backend

import "sync/atomic"

// Counting decorates a Kernels binding with per-kernel call counters.
// It is safe for concurrent use; counters only ever grow.
type Counting[T Scalar] struct {
	inner Kernels[T]

	gemm, gemv, dot, axpy, geev, heev atomic.Int64
}

var _ Kernels[float64] = (*Counting[float64])(nil)

// NewCounting wraps inner. A nil inner falls back to For[T]().
func NewCounting[T Scalar](inner Kernels[T]) *Counting[T] {
	if inner == nil {
		inner = For[T]()
	}

	return &Counting[T]{inner: inner}
}

// Calls is a snapshot of the counters.
type Calls struct {
	Gemm, Gemv, Dot, Axpy, Geev, Heev int64
}

// Total sums every counter.
func (c Calls) Total() int64 { return c.Gemm + c.Gemv + c.Dot + c.Axpy + c.Geev + c.Heev }

// Calls returns the current counters.
func (k *Counting[T]) Calls() Calls {
	return Calls{
		Gemm: k.gemm.Load(),
		Gemv: k.gemv.Load(),
		Dot:  k.dot.Load(),
		Axpy: k.axpy.Load(),
		Geev: k.geev.Load(),
		Heev: k.heev.Load(),
	}
}

func (k *Counting[T]) Gemm(tA, tB Transpose, m, n, kk int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int) {
	k.gemm.Add(1)
	k.inner.Gemm(tA, tB, m, n, kk, alpha, a, lda, b, ldb, beta, c, ldc)
}

func (k *Counting[T]) Gemv(tA Transpose, m, n int, alpha T, a []T, lda int, x []T, incX int, beta T, y []T, incY int) {
	k.gemv.Add(1)
	k.inner.Gemv(tA, m, n, alpha, a, lda, x, incX, beta, y, incY)
}

func (k *Counting[T]) Dot(n int, x []T, incX int, y []T, incY int) T {
	k.dot.Add(1)

	return k.inner.Dot(n, x, incX, y, incY)
}

func (k *Counting[T]) Axpy(n int, alpha T, x []T, incX int, y []T, incY int) {
	k.axpy.Add(1)
	k.inner.Axpy(n, alpha, x, incX, y, incY)
}

// Geev counts only real runs, not workspace queries.
func (k *Counting[T]) Geev(jobvr VectorJob, n int, a []T, lda int, w []complex128, vr []complex128, ldvr int, work []T, lwork int, rwork []float64) int {
	if lwork != -1 {
		k.geev.Add(1)
	}

	return k.inner.Geev(jobvr, n, a, lda, w, vr, ldvr, work, lwork, rwork)
}

// Heev counts only real runs, not workspace queries.
func (k *Counting[T]) Heev(jobz VectorJob, n int, a []T, lda int, w []float64, work []T, lwork int, rwork []float64) int {
	if lwork != -1 {
		k.heev.Add(1)
	}

	return k.inner.Heev(jobz, n, a, lda, w, work, lwork, rwork)
}
