// SPDX-License-Identifier: MIT

package response

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/eigen"
	"github.com/katalvlaran/dielectric/matrix"
)

// Position is a site coordinate in meters.
type Position [3]float64

func distance(a, b Position) float64 {
	return math.Sqrt((a[0]-b[0])*(a[0]-b[0]) + (a[1]-b[1])*(a[1]-b[1]) + (a[2]-b[2])*(a[2]-b[2]))
}

// CoulombPotential builds V with V_ii = V0 and V_ij = e/(4π·ε0·|r_i − r_j|), in eV.
//
// Errors:
//   - ErrInvalidPositions for non-finite or coincident sites.
//   - ErrInvalidConstant via Constants.Validate.
//   - matrix.ErrInvalidDimensions for an empty site list.
func CoulombPotential[T backend.Scalar](positions []Position, c Constants, opts ...matrix.Option[T]) (*matrix.Dense[T], error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("CoulombPotential: %w", err)
	}
	n := len(positions)
	v, err := matrix.NewDense(n, n, opts...)
	if err != nil {
		return nil, fmt.Errorf("CoulombPotential: %w", err)
	}
	scale := c.ElementaryCharge / (4 * c.Pi * c.VacuumPermittivity)
	raw := v.Raw()
	for i := 0; i < n; i++ {
		for _, x := range positions[i] {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("CoulombPotential: site %d: %w", i, ErrInvalidPositions)
			}
		}
		raw[i*n+i] = backend.FromFloat[T](c.SelfInteraction)
		for j := 0; j < i; j++ {
			d := distance(positions[i], positions[j])
			if d == 0 {
				return nil, fmt.Errorf("CoulombPotential: sites %d and %d coincide: %w", j, i, ErrInvalidPositions)
			}
			raw[i*n+j] = backend.FromFloat[T](scale / d)
			raw[j*n+i] = raw[i*n+j]
		}
	}

	return v, nil
}

// GMatrix returns G_ij = (f_i − f_j)/(E_i − E_j − z) for the complex
// frequency z = omega + iη.
func GMatrix(omega, eta float64, energies []float64, occ Occupations) (*matrix.Dense[complex128], error) {
	n := len(energies)
	if len(occ) != n {
		return nil, fmt.Errorf("GMatrix: %d occupations for %d states: %w", len(occ), n, matrix.ErrDimensionMismatch)
	}
	g, err := matrix.NewDense[complex128](n, n)
	if err != nil {
		return nil, fmt.Errorf("GMatrix: %w", err)
	}
	z := complex(omega, eta)
	raw := g.Raw()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			raw[i*n+j] = complex(occ[i]-occ[j], 0) / (complex(energies[i]-energies[j], 0) - z)
		}
	}

	return g, nil
}

// Susceptibility returns χ(ω) with χ_ab = 2·Aᴴ·Gᵀ·A, A_i = Ψ_ai·conj(Ψ_bi).
// Rows of psi are sites, columns are states.
//
// Complexity: Time O(N⁴), Space O(N²).
func Susceptibility[T backend.Scalar](omega, eta float64, energies []float64, psi *matrix.Dense[T], occ Occupations) (*matrix.Dense[complex128], error) {
	if err := matrix.ValidateNotNil(psi); err != nil {
		return nil, fmt.Errorf("Susceptibility: %w", err)
	}
	n := len(energies)
	if err := matrix.ValidateOrder(psi, n); err != nil {
		return nil, fmt.Errorf("Susceptibility: psi: %w", err)
	}
	if err := ValidateBroadening(eta); err != nil {
		return nil, fmt.Errorf("Susceptibility: %w", err)
	}
	g, err := GMatrix(omega, eta, energies, occ)
	if err != nil {
		return nil, fmt.Errorf("Susceptibility: %w", err)
	}
	p, err := matrix.Convert[complex128](psi)
	if err != nil {
		return nil, fmt.Errorf("Susceptibility: %w", err)
	}

	chi, err := matrix.NewDense[complex128](n, n)
	if err != nil {
		return nil, fmt.Errorf("Susceptibility: %w", err)
	}
	a := make([]complex128, n)
	tmp := make([]complex128, n)
	pr, cr := p.Raw(), chi.Raw()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			for i := 0; i < n; i++ {
				a[i] = pr[r*n+i] * cmplx.Conj(pr[c*n+i])
			}
			if err = matrix.MatVecInto(tmp, matrix.Trans, g, a); err != nil {
				return nil, fmt.Errorf("Susceptibility: %w", err)
			}
			av, _ := matrix.NewView(a, 0, 1, n)
			tv, _ := matrix.NewView(tmp, 0, 1, n)
			d, err := matrix.Dot(av, tv)
			if err != nil {
				return nil, fmt.Errorf("Susceptibility: %w", err)
			}
			cr[r*n+c] = 2 * d
		}
	}

	return chi, nil
}

// DielectricMatrix returns ε(ω) = I − V·χ(ω).
//
// Errors: matrix.ErrDimensionMismatch, ErrInvalidBroadening, all before any
// kernel call.
func DielectricMatrix[T backend.Scalar](omega, eta float64, energies []float64, psi, potential *matrix.Dense[T], occ Occupations) (*matrix.Dense[complex128], error) {
	if err := matrix.ValidateNotNil(potential); err != nil {
		return nil, fmt.Errorf("DielectricMatrix: %w", err)
	}
	if err := matrix.ValidateOrder(potential, len(energies)); err != nil {
		return nil, fmt.Errorf("DielectricMatrix: potential: %w", err)
	}
	chi, err := Susceptibility(omega, eta, energies, psi, occ)
	if err != nil {
		return nil, fmt.Errorf("DielectricMatrix: %w", err)
	}
	v, err := matrix.Convert[complex128](potential)
	if err != nil {
		return nil, fmt.Errorf("DielectricMatrix: %w", err)
	}
	n := len(energies)
	eps, err := matrix.NewIdentity[complex128](n)
	if err != nil {
		return nil, fmt.Errorf("DielectricMatrix: %w", err)
	}
	vchi, err := matrix.Mul(v, chi)
	if err != nil {
		return nil, fmt.Errorf("DielectricMatrix: %w", err)
	}
	if err = matrix.Axpy(eps, -1, vchi); err != nil {
		return nil, fmt.Errorf("DielectricMatrix: %w", err)
	}

	return eps, nil
}

// SolveHamiltonian diagonalizes a Hermitian h and returns ascending energies
// with the matching states as columns. h is left untouched.
func SolveHamiltonian[T backend.Scalar](h *matrix.Dense[T]) ([]float64, *matrix.Dense[T], error) {
	if err := matrix.ValidateNotNil(h); err != nil {
		return nil, nil, fmt.Errorf("SolveHamiltonian: %w", err)
	}
	res, err := eigen.DecomposeHermitian(h.Clone(), true)
	if err != nil {
		return nil, nil, fmt.Errorf("SolveHamiltonian: %w", err)
	}

	return res.Values, res.Vectors, nil
}

// MomentumVector returns q_i = (2π)^(-3/2)·exp(i k·r_i).
func MomentumVector(k Position, positions []Position) []complex128 {
	norm := math.Pow(2*math.Pi, -1.5)
	out := make([]complex128, len(positions))
	for i, r := range positions {
		out[i] = complex(norm, 0) * cmplx.Exp(complex(0, k[0]*r[0]+k[1]*r[1]+k[2]*r[2]))
	}

	return out
}

// Loss projects q onto the eigenvectors of ε and returns
// (Σ c_i·λ_i, Σ c_i/λ_i) with c_i = |⟨v_i|q⟩|². The second value's
// imaginary part is the energy-loss function up to sign.
func Loss(q []complex128, eps *eigen.GeneralResult) (epsilon, inverse complex128, err error) {
	if eps == nil || eps.Vectors == nil {
		return 0, 0, fmt.Errorf("Loss: eigenvectors required: %w", matrix.ErrNilMatrix)
	}
	n := len(eps.Values)
	if err = matrix.ValidateOrder(eps.Vectors, n); err != nil {
		return 0, 0, fmt.Errorf("Loss: %w", err)
	}
	if len(q) != n {
		return 0, 0, fmt.Errorf("Loss: q has %d entries for %d states: %w", len(q), n, matrix.ErrDimensionMismatch)
	}
	qv, err := matrix.NewView(q, 0, 1, n)
	if err != nil {
		return 0, 0, fmt.Errorf("Loss: %w", err)
	}
	for i, lambda := range eps.Values {
		col, err := eps.Vectors.Col(i)
		if err != nil {
			return 0, 0, fmt.Errorf("Loss: %w", err)
		}
		d, err := matrix.Dot(col, qv)
		if err != nil {
			return 0, 0, fmt.Errorf("Loss: %w", err)
		}
		c := complex(backend.Abs2(d), 0)
		epsilon += c * lambda
		inverse += c / lambda
	}

	return epsilon, inverse, nil
}

// SmallestEigenvalue returns the eigenvalue of least modulus, the first one
// on ties, or 0 for an empty slice. Eigenvalues of ε near zero mark
// collective modes.
func SmallestEigenvalue(values []complex128) complex128 {
	if len(values) == 0 {
		return 0
	}
	best := values[0]
	for _, v := range values[1:] {
		if cmplx.Abs(v) < cmplx.Abs(best) {
			best = v
		}
	}

	return best
}
