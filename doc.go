// SPDX-License-Identifier: MIT

// Package dielectric computes the linear response and dielectric matrix of
// a tight-binding system, sweeping a frequency range across a group of
// cooperating workers.
//
// What is in the module?
//
//	backend/     typed BLAS/LAPACK kernels (gonum) for float32, float64,
//	             complex64 and complex128, plus a call-counting decorator
//	matrix/      generic row-major Dense[T], strided views, products
//	eigen/       reusable general and Hermitian eigensolvers
//	response/    R(ω), χ(ω), ε(ω), Coulomb potential and loss projection
//	jobs/        frequency ranges and the contiguous rank partition
//	aggregate/   merging per-rank results into one ordered table
//	cluster/     broadcast/gather protocol over in-process or piped workers
//	matrixio/    binary and text matrix files
//	config/      layered YAML/env/flag configuration (viper)
//	timing/      named phase timers reported through logrus
//	cmd/respond  the command-line front end
//
// Quick example:
//
//	pkg := &cluster.Package[complex128]{Range: r, Broadening: 0.05, ...}
//	samples, err := cluster.Simulate(ctx, 4, pkg)
//
// returns the same table, bit for bit, as a serial response.Evaluator.Sweep.
//
//	go install github.com/katalvlaran/dielectric/cmd/respond@latest
package dielectric
