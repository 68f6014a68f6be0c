// SPDX-License-Identifier: MIT

package backend

import (
	"math"
	"math/cmplx"
)

// hermitianMaxSweeps bounds the cyclic Jacobi iteration.
const hermitianMaxSweeps = 64

// zheev diagonalizes a complex Hermitian matrix with cyclic Jacobi sweeps.
// MAIN DESCRIPTION:
//   - Complex extension of the real Jacobi rotation: each pivot a[p,q] = |b|·e^{iφ}
//     is first made real by the unitary phase D = diag(1, e^{-iφ}) on index q,
//     then annihilated by the real rotation (c, s) of the symmetric 2×2 block.
//
// Implementation:
//   - Stage 1: mirror the upper triangle into the lower one (a[j,i] = conj(a[i,j]))
//     and drop the imaginary part of the diagonal.
//   - Stage 2: sweep all pivots p<q until off(A)² ≤ (4n·eps·‖A‖_F)².
//   - Stage 3: w = diag(A), sorted ascending; eigenvector columns permuted alongside.
//
// Workspace:
//   - work: V accumulator (n*n, C). rwork: unused.
//
// Returns:
//   - 0 on convergence; otherwise the number of off-diagonal pairs still above tolerance.
//
// Complexity:
//   - Time O(sweeps·n³), Space O(n²).
func zheev[C Complex](wantv bool, n int, a []C, lda int, w []float64, work []C, lwork int, rwork []float64) int {
	if lwork == -1 {
		work[0] = C(complex(float64(max(1, n*n)), 0))
		rwork[0] = 0

		return 0
	}
	if n == 0 {
		return 0
	}

	var i, j, k int
	v := work[:n*n]
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			v[i*n+j] = 0
		}
		v[i*n+i] = 1
	}

	// Stage 1: Hermitian completion from the upper triangle.
	var frob float64
	for i = 0; i < n; i++ {
		d := real(complex128(a[i*lda+i]))
		a[i*lda+i] = C(complex(d, 0))
		frob += d * d
		for j = i + 1; j < n; j++ {
			z := complex128(a[i*lda+j])
			a[j*lda+i] = C(cmplx.Conj(z))
			frob += 2 * (real(z)*real(z) + imag(z)*imag(z))
		}
	}
	tol := 4 * float64(n) * epsOf[C]() * math.Sqrt(frob)
	tol2 := tol * tol

	// Stage 2: cyclic sweeps.
	var (
		p, q          int
		off           float64
		apq, ph       complex128
		aip, aiq      complex128
		mag, app, aqq float64
		theta, t      float64
		c, s          float64
	)
	converged := false
	for sweep := 0; sweep < hermitianMaxSweeps; sweep++ {
		off = 0
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				off += abs2(complex128(a[i*lda+j]))
			}
		}
		if off <= tol2 {
			converged = true

			break
		}

		for p = 0; p < n-1; p++ {
			for q = p + 1; q < n; q++ {
				apq = complex128(a[p*lda+q])
				mag = cmplx.Abs(apq)
				if mag == 0 {
					continue
				}

				// Phase step: column q by e^{-iφ}, row q by e^{iφ}.
				ph = apq / complex(mag, 0)
				for i = 0; i < n; i++ {
					a[i*lda+q] = C(complex128(a[i*lda+q]) * cmplx.Conj(ph))
				}
				for j = 0; j < n; j++ {
					a[q*lda+j] = C(complex128(a[q*lda+j]) * ph)
				}
				for i = 0; i < n; i++ {
					v[i*n+q] = C(complex128(v[i*n+q]) * cmplx.Conj(ph))
				}

				// Real rotation of the block [[app, mag], [mag, aqq]].
				app = real(complex128(a[p*lda+p]))
				aqq = real(complex128(a[q*lda+q]))
				theta = (aqq - app) / (2 * mag)
				t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
				c = 1.0 / math.Sqrt(t*t+1)
				s = t * c

				for i = 0; i < n; i++ {
					if i == p || i == q {
						continue
					}
					aip = complex128(a[i*lda+p])
					aiq = complex128(a[i*lda+q])
					nip := complex(c, 0)*aip - complex(s, 0)*aiq
					niq := complex(s, 0)*aip + complex(c, 0)*aiq
					a[i*lda+p], a[p*lda+i] = C(nip), C(cmplx.Conj(nip))
					a[i*lda+q], a[q*lda+i] = C(niq), C(cmplx.Conj(niq))
				}
				a[p*lda+p] = C(complex(c*c*app-2*c*s*mag+s*s*aqq, 0))
				a[q*lda+q] = C(complex(s*s*app+2*c*s*mag+c*c*aqq, 0))
				a[p*lda+q], a[q*lda+p] = 0, 0

				for i = 0; i < n; i++ {
					vip := complex128(v[i*n+p])
					viq := complex128(v[i*n+q])
					v[i*n+p] = C(complex(c, 0)*vip - complex(s, 0)*viq)
					v[i*n+q] = C(complex(s, 0)*vip + complex(c, 0)*viq)
				}
			}
		}
	}
	if !converged {
		bad := 0
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				if cmplx.Abs(complex128(a[i*lda+j])) > tol {
					bad++
				}
			}
		}
		if bad == 0 {
			bad = 1
		}

		return bad
	}

	// Stage 3: ascending order, vectors follow their values.
	for i = 0; i < n; i++ {
		w[i] = real(complex128(a[i*lda+i]))
	}
	for i = 0; i < n-1; i++ {
		k = i
		for j = i + 1; j < n; j++ {
			if w[j] < w[k] {
				k = j
			}
		}
		if k == i {
			continue
		}
		w[i], w[k] = w[k], w[i]
		for j = 0; j < n; j++ {
			v[j*n+i], v[j*n+k] = v[j*n+k], v[j*n+i]
		}
	}

	if wantv {
		for i = 0; i < n; i++ {
			for j = 0; j < n; j++ {
				a[i*lda+j] = v[i*n+j]
			}
		}
	}

	return 0
}

func abs2(z complex128) float64 { return real(z)*real(z) + imag(z)*imag(z) }
