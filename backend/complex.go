// SPDX-License-Identifier: MIT

package backend

// Complex128 binds complex128 to gonum BLAS (Zgemm, Zgemv, Zdotc, Zaxpy) and
// to the native complex eigen kernels.
type Complex128 struct{}

var _ Kernels[complex128] = Complex128{}

func (Complex128) Gemm(tA, tB Transpose, m, n, k int, alpha complex128, a []complex128, lda int, b []complex128, ldb int, beta complex128, c []complex128, ldc int) {
	blasImpl.Zgemm(tA, tB, m, n, k, alpha, a, lda, b, ldb, beta, c, ldc)
}

func (Complex128) Gemv(tA Transpose, m, n int, alpha complex128, a []complex128, lda int, x []complex128, incX int, beta complex128, y []complex128, incY int) {
	blasImpl.Zgemv(tA, m, n, alpha, a, lda, x, incX, beta, y, incY)
}

func (Complex128) Dot(n int, x []complex128, incX int, y []complex128, incY int) complex128 {
	return blasImpl.Zdotc(n, x, incX, y, incY)
}

func (Complex128) Axpy(n int, alpha complex128, x []complex128, incX int, y []complex128, incY int) {
	blasImpl.Zaxpy(n, alpha, x, incX, y, incY)
}

func (Complex128) Geev(jobvr VectorJob, n int, a []complex128, lda int, w []complex128, vr []complex128, ldvr int, work []complex128, lwork int, rwork []float64) int {
	return zgeev(jobvr == VectorsCompute, n, a, lda, w, vr, ldvr, work, lwork, rwork)
}

func (Complex128) Heev(jobz VectorJob, n int, a []complex128, lda int, w []float64, work []complex128, lwork int, rwork []float64) int {
	return zheev(jobz == VectorsCompute, n, a, lda, w, work, lwork, rwork)
}

// Complex64 binds complex64 to gonum BLAS (Cgemm, Cgemv, Cdotc, Caxpy) and
// to the native complex eigen kernels running in complex64 storage.
type Complex64 struct{}

var _ Kernels[complex64] = Complex64{}

func (Complex64) Gemm(tA, tB Transpose, m, n, k int, alpha complex64, a []complex64, lda int, b []complex64, ldb int, beta complex64, c []complex64, ldc int) {
	blasImpl.Cgemm(tA, tB, m, n, k, alpha, a, lda, b, ldb, beta, c, ldc)
}

func (Complex64) Gemv(tA Transpose, m, n int, alpha complex64, a []complex64, lda int, x []complex64, incX int, beta complex64, y []complex64, incY int) {
	blasImpl.Cgemv(tA, m, n, alpha, a, lda, x, incX, beta, y, incY)
}

func (Complex64) Dot(n int, x []complex64, incX int, y []complex64, incY int) complex64 {
	return blasImpl.Cdotc(n, x, incX, y, incY)
}

func (Complex64) Axpy(n int, alpha complex64, x []complex64, incX int, y []complex64, incY int) {
	blasImpl.Caxpy(n, alpha, x, incX, y, incY)
}

func (Complex64) Geev(jobvr VectorJob, n int, a []complex64, lda int, w []complex128, vr []complex128, ldvr int, work []complex64, lwork int, rwork []float64) int {
	return zgeev(jobvr == VectorsCompute, n, a, lda, w, vr, ldvr, work, lwork, rwork)
}

func (Complex64) Heev(jobz VectorJob, n int, a []complex64, lda int, w []float64, work []complex64, lwork int, rwork []float64) int {
	return zheev(jobz == VectorsCompute, n, a, lda, w, work, lwork, rwork)
}

// epsOf is the unit roundoff of the storage precision of C.
func epsOf[C Complex]() float64 {
	var z C
	if _, ok := any(z).(complex64); ok {
		return 0x1p-23
	}

	return 0x1p-52
}
