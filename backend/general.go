// SPDX-License-Identifier: MIT

package backend

import (
	"math"
	"math/cmplx"
)

// generalMaxIterPerOrder bounds the QR iteration at 30·n steps, as LAPACK does.
const generalMaxIterPerOrder = 30

// exceptionalShiftEvery injects an ad-hoc shift to break shift cycles.
const exceptionalShiftEvery = 10

// zgeev computes eigenvalues and right eigenvectors of a complex general matrix.
// MAIN DESCRIPTION:
//   - Householder reduction to upper Hessenberg form H = Qᴴ·A·Q, then shifted
//     complex QR (Givens) until H is upper triangular T (Schur form), then
//     triangular back-substitution T·x = λ·x and v = Z·x.
//
// Implementation:
//   - Stage 1: Householder reflectors P = I − 2·u·uᴴ/(uᴴu), u = x − β·e1,
//     β = −e^{i·arg(x0)}·‖x‖; P applied left and right, accumulated into Z.
//   - Stage 2: Wilkinson shift from the trailing 2×2 block (eigenvalue closest to
//     h[ihi,ihi]); exceptional shift every 10 iterations; deflate when
//     |h[k,k−1]| ≤ eps·(|h[k−1,k−1]| + |h[k,k]|).
//   - Stage 3: eigenvector k solves the leading (k+1)×(k+1) triangle with x[k] = 1;
//     tiny pivots are replaced by eps·‖A‖; v = Z·x normalized to unit 2-norm.
//
// Workspace:
//   - work: Z (n*n) | x (n) | u (n), all C. rwork: unused.
//
// Returns:
//   - 0 on success; ihi+1 when the iteration budget runs out with rows 0..ihi unconverged.
//
// Notes:
//   - Eigenvalues come out in Schur diagonal order; they are not sorted.
func zgeev[C Complex](wantv bool, n int, a []C, lda int, w []complex128, vr []complex128, ldvr int, work []C, lwork int, rwork []float64) int {
	if lwork == -1 {
		work[0] = C(complex(float64(max(1, n*n+2*n)), 0))
		rwork[0] = 0

		return 0
	}
	if n == 0 {
		return 0
	}
	if n == 1 {
		w[0] = complex128(a[0])
		if wantv {
			vr[0] = 1
		}

		return 0
	}

	var i, j, k int
	z := work[:n*n]
	x := work[n*n : n*n+n]
	u := work[n*n+n : n*n+2*n]
	eps := epsOf[C]()

	at := func(i, j int) complex128 { return complex128(a[i*lda+j]) }
	set := func(i, j int, v complex128) { a[i*lda+j] = C(v) }

	var anorm float64
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			anorm += abs2(at(i, j))
			z[i*n+j] = 0
		}
		z[i*n+i] = 1
	}
	anorm = math.Sqrt(anorm)
	if anorm == 0 {
		anorm = 1
	}

	// Stage 1: Hessenberg reduction.
	var (
		alpha, unorm2 float64
		beta, sum, f  complex128
	)
	for k = 0; k < n-2; k++ {
		m := n - k - 1
		alpha = 0
		for i = 0; i < m; i++ {
			alpha += abs2(at(k+1+i, k))
		}
		alpha = math.Sqrt(alpha)
		if alpha == 0 {
			continue
		}
		x0 := at(k+1, k)
		phase := complex(1, 0)
		if x0 != 0 {
			phase = x0 / complex(cmplx.Abs(x0), 0)
		}
		beta = -phase * complex(alpha, 0)
		unorm2 = 0
		for i = 0; i < m; i++ {
			ui := at(k+1+i, k)
			if i == 0 {
				ui -= beta
			}
			u[i] = C(ui)
			unorm2 += abs2(ui)
		}
		if unorm2 == 0 {
			continue
		}

		// Left: rows k+1..n-1, columns k..n-1.
		for j = k; j < n; j++ {
			sum = 0
			for i = 0; i < m; i++ {
				sum += cmplx.Conj(complex128(u[i])) * at(k+1+i, j)
			}
			f = 2 * sum / complex(unorm2, 0)
			for i = 0; i < m; i++ {
				set(k+1+i, j, at(k+1+i, j)-f*complex128(u[i]))
			}
		}
		// Right: all rows, columns k+1..n-1; same for Z.
		for i = 0; i < n; i++ {
			sum = 0
			for j = 0; j < m; j++ {
				sum += at(i, k+1+j) * complex128(u[j])
			}
			f = 2 * sum / complex(unorm2, 0)
			for j = 0; j < m; j++ {
				set(i, k+1+j, at(i, k+1+j)-f*cmplx.Conj(complex128(u[j])))
			}

			sum = 0
			for j = 0; j < m; j++ {
				sum += complex128(z[i*n+k+1+j]) * complex128(u[j])
			}
			f = 2 * sum / complex(unorm2, 0)
			for j = 0; j < m; j++ {
				z[i*n+k+1+j] = C(complex128(z[i*n+k+1+j]) - f*cmplx.Conj(complex128(u[j])))
			}
		}
		set(k+1, k, beta)
		for i = k + 2; i < n; i++ {
			set(i, k, 0)
		}
	}
	for i = 2; i < n; i++ {
		for j = 0; j < i-1; j++ {
			set(i, j, 0)
		}
	}

	// Stage 2: shifted QR on the active block l..ihi.
	var (
		l, ihi, iter, total int
		mu, h00, h01        complex128
		h10, h11            complex128
		s                   complex128
		c, r                float64
		xa, ya              complex128
	)
	cs := x // rotation cosines (real parts)
	sn := u // rotation sines
	ihi = n - 1
	for ihi >= 0 {
		for l = ihi; l > 0; l-- {
			ref := cmplx.Abs(at(l-1, l-1)) + cmplx.Abs(at(l, l))
			if ref == 0 {
				ref = anorm
			}
			if cmplx.Abs(at(l, l-1)) <= eps*ref {
				set(l, l-1, 0)

				break
			}
		}
		if l == ihi {
			w[ihi] = at(ihi, ihi)
			ihi--
			iter = 0

			continue
		}
		if total >= generalMaxIterPerOrder*n {
			return ihi + 1
		}
		total++
		iter++

		h00, h01 = at(ihi-1, ihi-1), at(ihi-1, ihi)
		h10, h11 = at(ihi, ihi-1), at(ihi, ihi)
		if iter%exceptionalShiftEvery == 0 {
			mu = h11 + complex(math.Abs(real(h10))+math.Abs(imag(h10)), 0)
		} else {
			half := (h00 - h11) / 2
			disc := cmplx.Sqrt(half*half + h01*h10)
			mid := (h00 + h11) / 2
			e1, e2 := mid+disc, mid-disc
			mu = e1
			if cmplx.Abs(e2-h11) < cmplx.Abs(e1-h11) {
				mu = e2
			}
		}

		for k = l; k <= ihi; k++ {
			set(k, k, at(k, k)-mu)
		}
		for k = l; k < ihi; k++ {
			xa, ya = at(k, k), at(k+1, k)
			r = math.Hypot(cmplx.Abs(xa), cmplx.Abs(ya))
			switch {
			case r == 0:
				c, s = 1, 0
			case xa == 0:
				c, s = 0, 1
			default:
				c = cmplx.Abs(xa) / r
				s = (xa / complex(cmplx.Abs(xa), 0)) * cmplx.Conj(ya) / complex(r, 0)
			}
			cs[k], sn[k] = C(complex(c, 0)), C(s)
			for j = k; j < n; j++ {
				xa, ya = at(k, j), at(k+1, j)
				set(k, j, complex(c, 0)*xa+s*ya)
				set(k+1, j, -cmplx.Conj(s)*xa+complex(c, 0)*ya)
			}
		}
		for k = l; k < ihi; k++ {
			c, s = real(complex128(cs[k])), complex128(sn[k])
			for i = 0; i <= k+1; i++ {
				xa, ya = at(i, k), at(i, k+1)
				set(i, k, xa*complex(c, 0)+ya*cmplx.Conj(s))
				set(i, k+1, -xa*s+ya*complex(c, 0))
			}
			if wantv {
				for i = 0; i < n; i++ {
					xa, ya = complex128(z[i*n+k]), complex128(z[i*n+k+1])
					z[i*n+k] = C(xa*complex(c, 0) + ya*cmplx.Conj(s))
					z[i*n+k+1] = C(-xa*s + ya*complex(c, 0))
				}
			}
		}
		for k = l; k <= ihi; k++ {
			set(k, k, at(k, k)+mu)
		}
	}
	if !wantv {
		return 0
	}

	// Stage 3: back-substitution on T, then v = Z·x.
	small := eps * anorm
	var lambda, d complex128
	var nrm float64
	for k = n - 1; k >= 0; k-- {
		lambda = at(k, k)
		x[k] = 1
		for i = k - 1; i >= 0; i-- {
			sum = 0
			for j = i + 1; j <= k; j++ {
				sum += at(i, j) * complex128(x[j])
			}
			d = at(i, i) - lambda
			if cmplx.Abs(d) < small {
				d = complex(small, 0)
			}
			x[i] = C(-sum / d)
		}
		nrm = 0
		for i = 0; i < n; i++ {
			sum = 0
			for j = 0; j <= k; j++ {
				sum += complex128(z[i*n+j]) * complex128(x[j])
			}
			vr[i*ldvr+k] = sum
			nrm += abs2(sum)
		}
		nrm = math.Sqrt(nrm)
		if nrm == 0 {
			continue
		}
		for i = 0; i < n; i++ {
			vr[i*ldvr+k] /= complex(nrm, 0)
		}
	}

	return 0
}
