// SPDX-License-Identifier: MIT

package backend

import "gonum.org/v1/gonum/blas"

// Transpose selects op(A) for Gemm/Gemv. It is the gonum BLAS flag.
type Transpose = blas.Transpose

// Transpose flags. ConjTrans equals Trans for real element types.
const (
	NoTrans   = blas.NoTrans
	Trans     = blas.Trans
	ConjTrans = blas.ConjTrans
)

// VectorJob selects whether an eigen kernel computes eigenvectors.
type VectorJob byte

const (
	VectorsNone    VectorJob = 'N'
	VectorsCompute VectorJob = 'V'
)

// Kernels is the vendor-style calling convention for one element type.
//
// All matrices are row-major with explicit leading dimensions; vectors carry
// explicit increments. Kernels never validate shapes: the matrix layer does.
//
// Eigen kernels follow the LAPACK workspace protocol:
//   - lwork == -1 is a query: the required length of work is written to
//     work[0] (as T) and the required length of rwork to rwork[0]; nothing
//     else is touched and info is 0. Both slices must have length >= 1.
//   - info == 0 is success, info > 0 is a convergence failure code.
//   - a is overwritten in every case.
//
// Geev writes n complex eigenvalues into w and, with VectorsCompute, the
// right eigenvectors column-wise into vr (n×n, leading dimension ldvr).
// Heev reads the upper triangle of a Hermitian a, writes ascending real
// eigenvalues into w and, with VectorsCompute, the orthonormal eigenvectors
// column-wise into a.
type Kernels[T Scalar] interface {
	Gemm(tA, tB Transpose, m, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int)
	Gemv(tA Transpose, m, n int, alpha T, a []T, lda int, x []T, incX int, beta T, y []T, incY int)
	// Dot conjugates x for complex T.
	Dot(n int, x []T, incX int, y []T, incY int) T
	Axpy(n int, alpha T, x []T, incX int, y []T, incY int)
	Geev(jobvr VectorJob, n int, a []T, lda int, w []complex128, vr []complex128, ldvr int, work []T, lwork int, rwork []float64) (info int)
	Heev(jobz VectorJob, n int, a []T, lda int, w []float64, work []T, lwork int, rwork []float64) (info int)
}

// For returns the default binding for T.
//
//   - float64    gonum blas + lapack (Dgeev, Dsyev).
//   - float32    gonum blas; eigen kernels promote to float64 through rwork.
//   - complex64  gonum blas; native Hermitian Jacobi and Hessenberg QR kernels.
//   - complex128 gonum blas; native Hermitian Jacobi and Hessenberg QR kernels.
func For[T Scalar]() Kernels[T] {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(Float32{}).(Kernels[T])
	case float64:
		return any(Float64{}).(Kernels[T])
	case complex64:
		return any(Complex64{}).(Kernels[T])
	case complex128:
		return any(Complex128{}).(Kernels[T])
	}

	return nil
}

// realTrans maps ConjTrans to Trans for real kernels.
func realTrans(t Transpose) Transpose {
	if t == ConjTrans {
		return Trans
	}

	return t
}

