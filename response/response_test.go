// SPDX-License-Identifier: MIT
package response_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/eigen"
	"github.com/katalvlaran/dielectric/matrix"
	"github.com/katalvlaran/dielectric/response"
	"github.com/katalvlaran/dielectric/timing"
)

func mustFrom[T backend.Scalar](t *testing.T, r, c int, data []T, opts ...matrix.Option[T]) *matrix.Dense[T] {
	t.Helper()
	m, err := matrix.NewDense(r, c, append([]matrix.Option[T]{matrix.WithData(data)}, opts...)...)
	require.NoError(t, err)

	return m
}

// twoLevel is the reference system: E = [0, 1], Ψ = I, V = [[0,1],[1,0]].
func twoLevel[T backend.Scalar](t *testing.T, opts ...matrix.Option[T]) ([]float64, *matrix.Dense[T], *matrix.Dense[T]) {
	t.Helper()
	psi := mustFrom(t, 2, 2, []T{1, 0, 0, 1}, opts...)
	v := mustFrom(t, 2, 2, []T{0, 1, 1, 0}, opts...)

	return []float64{0, 1}, psi, v
}

func TestTwoLevelAnalytic(t *testing.T) {
	e, psi, v := twoLevel[float64](t)
	ev, err := response.NewEvaluator(e, psi, v, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 2, ev.States())
	assert.Equal(t, 0.1, ev.Broadening())

	for _, w := range []float64{0.5, 1, 1.5} {
		want := 1/complex(w-1, 0.1) + 1/complex(w+1, 0.1)
		assert.Equal(t, want, ev.At(w), "ω=%g", w)
	}

	got, err := response.Evaluate(1.0, e, psi, v, 0.1)
	require.NoError(t, err)
	assert.Equal(t, ev.At(1), got)
}

func TestOccupationsAndPrefactor(t *testing.T) {
	e, psi, v := twoLevel[complex128](t)
	ev, err := response.NewEvaluator(e, psi, v, 0.1,
		response.WithOccupations(response.Occupations{1, 0}),
		response.WithPrefactor(2i))
	require.NoError(t, err)

	w := 0.5
	want := 2i * (1/complex(w-1, 0.1) - 1/complex(w+1, 0.1))
	assert.InDelta(t, 0, cmplx.Abs(ev.At(w)-want), 1e-14)
}

func TestAllElementTypesAgree(t *testing.T) {
	e, psi, v := twoLevel[float64](t)
	ref, err := response.Evaluate(0.7, e, psi, v, 0.2)
	require.NoError(t, err)

	e32, psi32, v32 := twoLevel[float32](t)
	got32, err := response.Evaluate(0.7, e32, psi32, v32, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(ref-got32), 1e-6)

	ec, psic, vc := twoLevel[complex64](t)
	gotc, err := response.Evaluate(0.7, ec, psic, vc, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(ref-gotc), 1e-6)
}

func TestTransitionMatrixProjectsStates(t *testing.T) {
	s := 1 / math.Sqrt2
	psi := mustFrom(t, 2, 2, []float64{s, s, s, -s})
	v := mustFrom(t, 2, 2, []float64{0, 1, 1, 0})
	m, err := response.TransitionMatrix(psi, v)
	require.NoError(t, err)
	// Hadamard basis diagonalizes the swap: diag(1, -1).
	want := mustFrom(t, 2, 2, []float64{1, 0, 0, -1})
	ok, err := matrix.AllClose(m, want, 1e-15, 1e-15)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMismatchedCouplingNeverReachesKernel(t *testing.T) {
	k := backend.NewCounting[complex128](nil)
	with := matrix.WithBackend[complex128](k)
	e, psi, _ := twoLevel(t, with)
	bad := mustFrom(t, 3, 3, make([]complex128, 9), with)

	_, err := response.NewEvaluator(e, psi, bad, 0.1)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = response.Evaluate(1, []float64{0, 1, 2}, psi, psi, 0.1)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = response.NewEvaluator(e, psi, psi, 0.1, response.WithOccupations(response.Occupations{1}))
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = response.NewEvaluator(nil, psi, psi, 0.1)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = response.NewEvaluator[complex128](e, nil, psi, 0.1)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)

	for _, eta := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		_, err = response.NewEvaluator(e, psi, psi, eta)
		assert.ErrorIs(t, err, response.ErrInvalidBroadening, "η=%g", eta)
	}

	assert.Zero(t, k.Calls().Total())
}

func TestSweepRecordsTiming(t *testing.T) {
	e, psi, v := twoLevel[float64](t)
	tc := timing.New()
	ev, err := response.NewEvaluator(e, psi, v, 0.1, response.WithTiming(tc))
	require.NoError(t, err)

	samples := ev.Sweep([]float64{0.5, 1, 1.5})
	require.Len(t, samples, 3)
	assert.Equal(t, 1.0, samples[1].Frequency)
	assert.Equal(t, ev.At(1), samples[1].Value)

	for _, name := range []string{response.TimerTransition, response.TimerSweep} {
		s, ok := tc.Stats(name)
		require.True(t, ok, name)
		assert.Equal(t, 1, s.Count)
	}
}

func TestFermiDirac(t *testing.T) {
	c := response.DefaultConstants()
	require.NoError(t, c.Validate())
	assert.Equal(t, 0.5, response.FermiDirac(c.ChemicalPotential, c.Temperature, c.ChemicalPotential, c.Boltzmann))
	assert.Equal(t, 0.0, response.FermiDirac(100, 1, 0, 1e-3))
	assert.Equal(t, 1.0, response.FermiDirac(-100, 1, 0, 1e-3))

	occ := response.NewOccupations([]float64{-10, 10}, c)
	assert.InDelta(t, 1, occ[0], 1e-12)
	assert.InDelta(t, 0, occ[1], 1e-12)

	bad := c
	bad.Temperature = 0
	assert.ErrorIs(t, bad.Validate(), response.ErrInvalidConstant)
}

func TestCoulombPotential(t *testing.T) {
	c := response.DefaultConstants()
	sites := []response.Position{{0, 0, 0}, {1e-10, 0, 0}, {0, 2e-10, 0}}
	v, err := response.CoulombPotential[float64](sites, c)
	require.NoError(t, err)

	scale := c.ElementaryCharge / (4 * math.Pi * c.VacuumPermittivity)
	v01, _ := v.At(0, 1)
	v10, _ := v.At(1, 0)
	v22, _ := v.At(2, 2)
	assert.InDelta(t, scale/1e-10, v01, 1e-9)
	assert.Equal(t, v01, v10)
	assert.Equal(t, c.SelfInteraction, v22)
	assert.NoError(t, matrix.ValidateHermitian(v, 0))

	_, err = response.CoulombPotential[float64]([]response.Position{{1, 1, 1}, {1, 1, 1}}, c)
	assert.ErrorIs(t, err, response.ErrInvalidPositions)
}

func TestDielectricMatrix(t *testing.T) {
	e := []float64{0, 1}
	v := mustFrom(t, 2, 2, []float64{1, 0.5, 0.5, 1})

	t.Run("equal-occupations-give-identity", func(t *testing.T) {
		psi := mustFrom(t, 2, 2, []float64{1, 0, 0, 1})
		eps, err := response.DielectricMatrix(0.3, 0.01, e, psi, v, response.Occupations{0.5, 0.5})
		require.NoError(t, err)
		id, _ := matrix.NewIdentity[complex128](2)
		ok, err := matrix.AllClose(eps, id, 0, 0)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("hadamard-states", func(t *testing.T) {
		s := 1 / math.Sqrt2
		psi := mustFrom(t, 2, 2, []float64{s, s, s, -s})
		occ := response.Occupations{1, 0}
		chi, err := response.Susceptibility(0.3, 0.01, e, psi, occ)
		require.NoError(t, err)

		z := complex(0.3, 0.01)
		want := 0.5 * (1/(-1-z) - 1/(1-z))
		got, _ := chi.At(0, 0)
		assert.InDelta(t, 0, cmplx.Abs(got-want), 1e-12)

		eps, err := response.DielectricMatrix(0.3, 0.01, e, psi, v, occ)
		require.NoError(t, err)
		vc, _ := matrix.Convert[complex128](v)
		vchi, _ := matrix.Mul(vc, chi)
		e00, _ := eps.At(0, 0)
		x00, _ := vchi.At(0, 0)
		assert.InDelta(t, 0, cmplx.Abs(e00-(1-x00)), 1e-12)
	})

	t.Run("mismatch", func(t *testing.T) {
		psi := mustFrom(t, 3, 3, make([]float64, 9))
		_, err := response.DielectricMatrix(0.3, 0.01, e, psi, v, response.Occupations{1, 0})
		assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	})
}

func TestSolveHamiltonianLeavesInputIntact(t *testing.T) {
	h := mustFrom(t, 2, 2, []complex128{0, 1, 1, 0})
	energies, states, err := response.SolveHamiltonian(h)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1, 1}, energies, 1e-12)
	assert.Equal(t, []complex128{0, 1, 1, 0}, h.Raw())

	// Feeding the solved system back gives a finite response.
	ev, err := response.NewEvaluator(energies, states, h, 0.05)
	require.NoError(t, err)
	assert.False(t, cmplx.IsNaN(ev.At(2)))
}

func TestLoss(t *testing.T) {
	vec, err := matrix.NewIdentity[complex128](2)
	require.NoError(t, err)
	res := &eigen.GeneralResult{Values: []complex128{2, 4}, Vectors: vec}

	eps, inv, err := response.Loss([]complex128{1, 0}, res)
	require.NoError(t, err)
	assert.Equal(t, complex128(2), eps)
	assert.Equal(t, complex128(0.5), inv)

	_, _, err = response.Loss([]complex128{1}, res)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, _, err = response.Loss(nil, &eigen.GeneralResult{Values: []complex128{1}})
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)

	q := response.MomentumVector(response.Position{}, []response.Position{{1, 2, 3}, {4, 5, 6}})
	norm := math.Pow(2*math.Pi, -1.5)
	assert.InDelta(t, norm, real(q[0]), 1e-15)
	assert.InDelta(t, 0, imag(q[1]), 1e-15)
}

func TestSmallestEigenvalue(t *testing.T) {
	assert.Equal(t, complex128(0), response.SmallestEigenvalue(nil))
	assert.Equal(t, 0.5-1i, response.SmallestEigenvalue([]complex128{3, 0.5 - 1i, -2i, 1 + 1i}))
	assert.Equal(t, complex128(1), response.SmallestEigenvalue([]complex128{1, -1, 1i}), "first on ties")
}
