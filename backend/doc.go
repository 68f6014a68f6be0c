// SPDX-License-Identifier: MIT

// Package backend binds the numeric kernels of the engine to a BLAS/LAPACK
// style implementation, one binding per element type.
//
// What it provides:
//   - Kernels[T]: gemm, gemv, conjugating dot, axpy, general eigen (Geev) and
//     Hermitian eigen (Heev) in the vendor calling convention (row-major data,
//     explicit leading dimensions and increments, lwork == -1 workspace queries,
//     integer info codes).
//   - For[T]() to pick the binding for float32, float64, complex64 or complex128.
//   - Counting[T], a decorator recording how many kernel calls were made.
//   - The numeric trait helpers (Conj, Abs, ToComplex, ...) shared by the
//     generic matrix code.
//
// Nothing here validates shapes: the matrix package checks dimensions before
// any kernel is entered, so a mismatch never reaches this layer.
package backend
