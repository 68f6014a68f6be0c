// SPDX-License-Identifier: MIT
package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dielectric/aggregate"
	"github.com/katalvlaran/dielectric/config"
	"github.com/katalvlaran/dielectric/matrix"
	"github.com/katalvlaran/dielectric/matrixio"
	"github.com/katalvlaran/dielectric/response"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(args)
	err = root.Execute()

	return out.String(), errOut.String(), err
}

func save[T float64 | complex128](t *testing.T, dir, name string, r, c int, data []T) string {
	t.Helper()
	m, err := matrix.NewDense(r, c, matrix.WithData(data))
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, matrixio.Save(path, m, matrixio.FormatText))

	return path
}

func TestRunWritesMergedTable(t *testing.T) {
	dir := t.TempDir()
	energies := save(t, dir, "e.txt", 2, 1, []float64{0, 1})
	states := save(t, dir, "psi.txt", 2, 2, []float64{1, 0, 0, 1})
	coupling := save(t, dir, "v.txt", 2, 2, []float64{0, 1, 1, 0})
	out := filepath.Join(dir, "chi.tsv")

	_, _, err := execute(t, "run",
		"--element", "float64",
		"--energies", energies, "--states", states, "--potential", coupling,
		"--start", "0.5", "--stop", "1.5", "--step", "0.5",
		"--broadening", "0.1", "--workers", "2",
		"--output", out)
	require.NoError(t, err)

	fh, err := os.Open(out)
	require.NoError(t, err)
	defer fh.Close()
	got, err := aggregate.ReadTable(fh)
	require.NoError(t, err)

	psi, err := matrix.NewIdentity[float64](2)
	require.NoError(t, err)
	v, err := matrix.NewDense(2, 2, matrix.WithData([]float64{0, 1, 1, 0}))
	require.NoError(t, err)
	ev, err := response.NewEvaluator([]float64{0, 1}, psi, v, 0.1)
	require.NoError(t, err)
	assert.Equal(t, ev.Sweep([]float64{0.5, 1, 1.5}), got)
}

func TestRunRejectsInvalidInputsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "chi.tsv")

	_, _, err := execute(t, "run", "--hamiltonian", "h.txt", "--potential", "v.txt", "--step", "0", "--output", out)
	require.Error(t, err)
	assert.NoFileExists(t, out)

	energies := save(t, dir, "e.txt", 2, 1, []float64{0, 1})
	states := save(t, dir, "psi.txt", 2, 2, []float64{1, 0, 0, 1})
	coupling := save(t, dir, "v3.txt", 3, 3, make([]float64, 9))
	_, _, err = execute(t, "run",
		"--energies", energies, "--states", states, "--potential", coupling,
		"--workers", "3", "--output", out)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	assert.NoFileExists(t, out)
}

func TestSolveThenRunFromHamiltonian(t *testing.T) {
	dir := t.TempDir()
	h := save(t, dir, "h.txt", 2, 2, []complex128{1, 0.5i, -0.5i, 1})
	eOut := filepath.Join(dir, "e.bin")
	sOut := filepath.Join(dir, "s.bin")

	_, _, err := execute(t, "solve", h, "--energies", eOut, "--states", sOut)
	require.NoError(t, err)

	e, err := matrixio.Load[float64](eOut)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 1.5}, e.Raw(), 1e-12)
	s, err := matrixio.Load[complex128](sOut)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Rows())
}

func TestPotentialAndConfig(t *testing.T) {
	dir := t.TempDir()
	pos := save(t, dir, "pos.txt", 2, 3, []float64{0, 0, 0, 1, 0, 0})
	out := filepath.Join(dir, "v.bin")

	_, _, err := execute(t, "potential", pos, out, "--element", "float64")
	require.NoError(t, err)
	v, err := matrixio.Load[float64](out)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Rows())
	assert.Equal(t, response.DefaultConstants().SelfInteraction, v.Raw()[0])

	stdout, _, err := execute(t, "config", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stdout, "level: debug")
	assert.Contains(t, stdout, "mode: "+string(config.ModeLocal))
}

func TestEpsilonThenLoss(t *testing.T) {
	dir := t.TempDir()
	energies := save(t, dir, "e.txt", 2, 1, []float64{0, 1})
	states := save(t, dir, "psi.txt", 2, 2, []float64{1, 0, 0, 1})
	coupling := save(t, dir, "v.txt", 2, 2, []float64{0, 1, 1, 0})
	pos := save(t, dir, "pos.txt", 2, 3, []float64{0, 0, 0, 1, 0, 0})
	values := filepath.Join(dir, "l.bin")
	vectors := filepath.Join(dir, "u.bin")

	_, _, err := execute(t, "epsilon",
		"--energies", energies, "--states", states, "--potential", coupling,
		"--omega", "0.5", "--broadening", "0.1",
		"--eigenvalues", values, "--eigenvectors", vectors)
	require.NoError(t, err)

	stdout, _, err := execute(t, "loss",
		"--eigenvalues", values, "--eigenvectors", vectors,
		"--positions", pos, "--q", "(0, 0, 0)")
	require.NoError(t, err)
	fields := strings.Fields(stdout)
	require.Len(t, fields, 4)
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), f)
	}
}

func TestEpsilonSweepMatchesAcrossRankCounts(t *testing.T) {
	dir := t.TempDir()
	energies := save(t, dir, "e.txt", 3, 1, []float64{-1, 0, 1.5})
	states := save(t, dir, "psi.txt", 3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	coupling := save(t, dir, "v.txt", 3, 3, []float64{2, 1, 0.5, 1, 2, 1, 0.5, 1, 2})

	sweep := func(workers string) (string, string) {
		out := filepath.Join(dir, "w"+workers)
		require.NoError(t, os.Mkdir(out, 0o755))
		table := filepath.Join(out, "eps.tsv")
		_, _, err := execute(t, "epsilon", "--sweep",
			"--energies", energies, "--states", states, "--potential", coupling,
			"--start", "0", "--stop", "2", "--step", "0.5", "--broadening", "0.1",
			"--workers", workers,
			"--eigenvalues", filepath.Join(out, "l.bin"),
			"--eigenvectors", filepath.Join(out, "u.bin"),
			"--output", table)
		require.NoError(t, err)

		return out, table
	}
	one, oneTable := sweep("1")
	three, threeTable := sweep("3")

	for _, omega := range []string{"0", "0.5", "1", "1.5", "2"} {
		for _, base := range []string{"l", "u"} {
			name := base + "." + omega + ".bin"
			want, err := os.ReadFile(filepath.Join(one, name))
			require.NoError(t, err, name)
			got, err := os.ReadFile(filepath.Join(three, name))
			require.NoError(t, err, name)
			assert.Equal(t, want, got, name)
		}
	}
	want, err := os.ReadFile(oneTable)
	require.NoError(t, err)
	got, err := os.ReadFile(threeTable)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	fh, err := os.Open(threeTable)
	require.NoError(t, err)
	defer fh.Close()
	samples, err := aggregate.ReadTable(fh)
	require.NoError(t, err)
	require.Len(t, samples, 5)
	assert.Equal(t, 1.5, samples[3].Frequency)
}

func TestPerFrequency(t *testing.T) {
	assert.Equal(t, "out/eps.0.25.bin", perFrequency("out/eps.bin", 0.25))
	assert.Equal(t, "eps.-1", perFrequency("eps", -1))
}

func TestParseWavevector(t *testing.T) {
	k, err := parseWavevector(" (1, -2.5,3) ")
	require.NoError(t, err)
	assert.Equal(t, response.Position{1, -2.5, 3}, k)

	_, err = parseWavevector("(1,2)")
	assert.Error(t, err)
	_, err = parseWavevector("(1,x,2)")
	assert.Error(t, err)
}

func TestUnknownElementRejected(t *testing.T) {
	_, _, err := execute(t, "solve", "h.txt", "--element", "int8")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
