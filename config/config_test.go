// SPDX-License-Identifier: MIT
package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dielectric/config"
	"github.com/katalvlaran/dielectric/jobs"
	"github.com/katalvlaran/dielectric/response"
)

const sample = `
input:
  energies: e.txt
  states: psi.bin
  potential: v.bin
frequency:
  start: 0.5
  stop: 1.5
  step: 0.25
workers: 3
mode: process
element: double
constants:
  chemical-potential: 0.1
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "respond.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	cfg, err := config.Load(config.New(), writeFile(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "psi.bin", cfg.Input.States)
	assert.Equal(t, "auto", cfg.Input.Format)
	assert.Equal(t, jobs.Range{Begin: 0.5, End: 1.5, Step: 0.25}, cfg.Range())
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, config.ModeProcess, cfg.Mode)
	assert.Equal(t, "double", cfg.Element)

	def := response.DefaultConstants()
	assert.Equal(t, def.Tau, cfg.Broadening, "tau is the default broadening")
	assert.Equal(t, 0.1, cfg.Constants.ChemicalPotential)
	assert.Equal(t, def.Temperature, cfg.Constants.Temperature)
	assert.Equal(t, def.Boltzmann, cfg.Constants.Boltzmann)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("RESPOND_WORKERS", "5")
	t.Setenv("RESPOND_BROADENING", "0.25")
	t.Setenv("RESPOND_CONSTANTS_TEMPERATURE", "77")

	cfg, err := config.Load(config.New(), writeFile(t, sample))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, 0.25, cfg.Broadening)
	assert.Equal(t, 77.0, cfg.Constants.Temperature)
}

func TestValidateRejects(t *testing.T) {
	valid := func() *config.Config {
		c := config.Defaults()
		c.Input = config.Input{Hamiltonian: "h.txt", Potential: "v.txt", Format: "text"}

		return &c
	}
	require.NoError(t, valid().Validate())

	cases := []struct {
		name   string
		mutate func(*config.Config)
		target error
	}{
		{"no potential", func(c *config.Config) { c.Input.Potential = "" }, config.ErrInvalidConfig},
		{"no system", func(c *config.Config) { c.Input.Hamiltonian = "" }, config.ErrInvalidConfig},
		{"format", func(c *config.Config) { c.Input.Format = "csv" }, config.ErrInvalidConfig},
		{"step", func(c *config.Config) { c.Frequency.Step = 0 }, jobs.ErrInvalidRange},
		{"reversed", func(c *config.Config) { c.Frequency.Stop = -1 }, jobs.ErrInvalidRange},
		{"workers", func(c *config.Config) { c.Workers = 0 }, config.ErrInvalidConfig},
		{"mode", func(c *config.Config) { c.Mode = "mpi" }, config.ErrInvalidConfig},
		{"element", func(c *config.Config) { c.Element = "int" }, config.ErrInvalidConfig},
		{"output", func(c *config.Config) { c.Output = "" }, config.ErrInvalidConfig},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, config.ErrInvalidConfig},
		{"temperature", func(c *config.Config) { c.Constants.Temperature = 0 }, response.ErrInvalidConstant},
		{"broadening", func(c *config.Config) { c.Broadening = -1 }, response.ErrInvalidBroadening},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			assert.ErrorIs(t, c.Validate(), tc.target)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestReadSkipsValidation(t *testing.T) {
	cfg, err := config.Read(config.New(), "")
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), *cfg)
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
}

func TestDumpReloads(t *testing.T) {
	cfg, err := config.Load(config.New(), writeFile(t, sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, config.Dump(&buf, cfg))
	assert.Contains(t, buf.String(), "chemical-potential: 0.1")

	back, err := config.Load(config.New(), writeFile(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
