// SPDX-License-Identifier: MIT

package backend

import (
	"gonum.org/v1/gonum/blas"
	blasgonum "gonum.org/v1/gonum/blas/gonum"
	"gonum.org/v1/gonum/lapack"
	lapackgonum "gonum.org/v1/gonum/lapack/gonum"
)

var (
	blasImpl   blasgonum.Implementation
	lapackImpl lapackgonum.Implementation
)

// Float64 binds float64 to gonum BLAS and LAPACK (Dgeev, Dsyev).
type Float64 struct{}

var _ Kernels[float64] = Float64{}

func (Float64) Gemm(tA, tB Transpose, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	blasImpl.Dgemm(realTrans(tA), realTrans(tB), m, n, k, alpha, a, lda, b, ldb, beta, c, ldc)
}

func (Float64) Gemv(tA Transpose, m, n int, alpha float64, a []float64, lda int, x []float64, incX int, beta float64, y []float64, incY int) {
	blasImpl.Dgemv(realTrans(tA), m, n, alpha, a, lda, x, incX, beta, y, incY)
}

func (Float64) Dot(n int, x []float64, incX int, y []float64, incY int) float64 {
	return blasImpl.Ddot(n, x, incX, y, incY)
}

func (Float64) Axpy(n int, alpha float64, x []float64, incX int, y []float64, incY int) {
	blasImpl.Daxpy(n, alpha, x, incX, y, incY)
}

// Geev keeps wr, wi and the real Schur-form eigenvectors in rwork
// (2n + n*n) and expands conjugate pairs into complex columns of vr.
func (Float64) Geev(jobvr VectorJob, n int, a []float64, lda int, w []complex128, vr []complex128, ldvr int, work []float64, lwork int, rwork []float64) int {
	wantv := jobvr == VectorsCompute
	if lwork == -1 {
		work[0] = float64(dgeevWork(n, wantv))
		rwork[0] = float64(2*n + n*n)

		return 0
	}
	if n == 0 {
		return 0
	}

	return dgeev(wantv, n, a, lda, w, vr, ldvr, work, lwork, rwork)
}

func (Float64) Heev(jobz VectorJob, n int, a []float64, lda int, w []float64, work []float64, lwork int, rwork []float64) int {
	if lwork == -1 {
		work[0] = float64(dsyevWork(n))
		rwork[0] = 0

		return 0
	}
	if n == 0 {
		return 0
	}

	return dsyev(jobz == VectorsCompute, n, a, lda, w, work, lwork)
}

// Float32 binds float32 to gonum BLAS. Eigen kernels copy into float64
// buffers carved out of rwork and reuse the float64 LAPACK path.
type Float32 struct{}

var _ Kernels[float32] = Float32{}

func (Float32) Gemm(tA, tB Transpose, m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) {
	blasImpl.Sgemm(realTrans(tA), realTrans(tB), m, n, k, alpha, a, lda, b, ldb, beta, c, ldc)
}

func (Float32) Gemv(tA Transpose, m, n int, alpha float32, a []float32, lda int, x []float32, incX int, beta float32, y []float32, incY int) {
	blasImpl.Sgemv(realTrans(tA), m, n, alpha, a, lda, x, incX, beta, y, incY)
}

func (Float32) Dot(n int, x []float32, incX int, y []float32, incY int) float32 {
	return blasImpl.Sdot(n, x, incX, y, incY)
}

func (Float32) Axpy(n int, alpha float32, x []float32, incX int, y []float32, incY int) {
	blasImpl.Saxpy(n, alpha, x, incX, y, incY)
}

// Geev rwork layout: a64 (n*n) | wr, wi, vr64 (2n + n*n) | dgeev work.
func (Float32) Geev(jobvr VectorJob, n int, a []float32, lda int, w []complex128, vr []complex128, ldvr int, work []float32, lwork int, rwork []float64) int {
	wantv := jobvr == VectorsCompute
	q := dgeevWork(n, wantv)
	if lwork == -1 {
		work[0] = 1
		rwork[0] = float64(n*n + 2*n + n*n + q)

		return 0
	}
	if n == 0 {
		return 0
	}
	a64 := rwork[:n*n]
	widen(n, a, lda, a64)
	eig := rwork[n*n : n*n+2*n+n*n]
	w64 := rwork[n*n+2*n+n*n:]
	w64 = w64[:q]

	return dgeev(wantv, n, a64, n, w, vr, ldvr, w64, q, eig)
}

// Heev rwork layout: a64 (n*n) | dsyev work.
func (Float32) Heev(jobz VectorJob, n int, a []float32, lda int, w []float64, work []float32, lwork int, rwork []float64) int {
	q := dsyevWork(n)
	if lwork == -1 {
		work[0] = 1
		rwork[0] = float64(n*n + q)

		return 0
	}
	if n == 0 {
		return 0
	}
	a64 := rwork[:n*n]
	widen(n, a, lda, a64)
	wantv := jobz == VectorsCompute
	info := dsyev(wantv, n, a64, n, w, rwork[n*n:n*n+q], q)
	if info == 0 && wantv {
		var i, j int
		for i = 0; i < n; i++ {
			for j = 0; j < n; j++ {
				a[i*lda+j] = float32(a64[i*n+j])
			}
		}
	}

	return info
}

func widen(n int, a []float32, lda int, dst []float64) {
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			dst[i*n+j] = float64(a[i*lda+j])
		}
	}
}

// dgeevWork returns the optimal Dgeev workspace for order n.
func dgeevWork(n int, wantv bool) int {
	if n == 0 {
		return 1
	}
	job := lapack.RightEVNone
	if wantv {
		job = lapack.RightEVCompute
	}
	// The query reads n and lda only, but hand it buffers of the right size.
	a := make([]float64, n*n)
	wr := make([]float64, n)
	wi := make([]float64, n)
	q := make([]float64, 1)
	lapackImpl.Dgeev(lapack.LeftEVNone, job, n, a, n, wr, wi, nil, 1, nil, n, q, -1)

	return int(q[0])
}

// dsyevWork returns the optimal Dsyev workspace for order n.
func dsyevWork(n int) int {
	if n == 0 {
		return 1
	}
	q := make([]float64, 1)
	lapackImpl.Dsyev(lapack.EVCompute, blas.Upper, n, nil, n, nil, q, -1)

	return max(int(q[0]), 3*n-1)
}

// dgeev runs Dgeev with eig = wr | wi | vr64 and unpacks into w, vr.
func dgeev(wantv bool, n int, a []float64, lda int, w []complex128, vr []complex128, ldvr int, work []float64, lwork int, eig []float64) int {
	wr, wi := eig[:n], eig[n:2*n]
	job := lapack.RightEVNone
	var vrr []float64
	if wantv {
		job = lapack.RightEVCompute
		vrr = eig[2*n : 2*n+n*n]
	}
	if first := lapackImpl.Dgeev(lapack.LeftEVNone, job, n, a, lda, wr, wi, nil, 1, vrr, n, work, lwork); first > 0 {
		return first
	}

	var i, j int
	for j = 0; j < n; j++ {
		w[j] = complex(wr[j], wi[j])
	}
	if !wantv {
		return 0
	}
	// Real eigenvalues own a real column; a pair with wi[j] > 0 stores
	// Re in column j and Im in column j+1.
	for j = 0; j < n; {
		if wi[j] == 0 || j+1 == n {
			for i = 0; i < n; i++ {
				vr[i*ldvr+j] = complex(vrr[i*n+j], 0)
			}
			j++

			continue
		}
		for i = 0; i < n; i++ {
			re, im := vrr[i*n+j], vrr[i*n+j+1]
			vr[i*ldvr+j] = complex(re, im)
			vr[i*ldvr+j+1] = complex(re, -im)
		}
		j += 2
	}

	return 0
}

// dsyev maps Dsyev's ok flag onto an info code.
func dsyev(wantv bool, n int, a []float64, lda int, w []float64, work []float64, lwork int) int {
	job := lapack.EVNone
	if wantv {
		job = lapack.EVCompute
	}
	if !lapackImpl.Dsyev(job, blas.Upper, n, a, lda, w, work, lwork) {
		return 1
	}

	return 0
}
