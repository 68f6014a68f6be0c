// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/config"
	"github.com/katalvlaran/dielectric/matrix"
	"github.com/katalvlaran/dielectric/matrixio"
	"github.com/katalvlaran/dielectric/response"
	"github.com/katalvlaran/dielectric/timing"
)

// Timer names of the command layer.
const (
	timerLoad  = "respond.load"
	timerSolve = "respond.solve"
	timerWrite = "respond.write"
)

// systemKeys binds the flags added by addSystemFlags.
var systemKeys = map[string]string{
	"input.energies":      "energies",
	"input.states":        "states",
	"input.potential":     "potential",
	"input.hamiltonian":   "hamiltonian",
	"broadening":          "broadening",
	"occupations.enabled": "occupations",
}

func addSystemFlags(cmd *cobra.Command) {
	d := config.Defaults()
	fl := cmd.Flags()
	fl.String("energies", "", "energies file (N×1)")
	fl.String("states", "", "eigenstates file (N×N, states as columns)")
	fl.String("potential", "", "coupling operator file (N×N)")
	fl.String("hamiltonian", "", "Hamiltonian file (N×N), replaces --energies and --states")
	fl.Float64("broadening", d.Broadening, "broadening η > 0")
	fl.Bool("occupations", d.Occupations.Enabled, "weight transitions by Fermi-Dirac occupations")
}

// system is the quantum system of one run: energies, states as columns of
// psi, and the coupling operator.
type system[T backend.Scalar] struct {
	energies []float64
	psi      *matrix.Dense[T]
	coupling *matrix.Dense[T]
}

func loadMatrix[T backend.Scalar](path string, f matrixio.Format) (*matrix.Dense[T], error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	m, err := matrixio.Decode[T](fh, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

func loadColumn(path string, f matrixio.Format) ([]float64, error) {
	m, err := loadMatrix[float64](path, f)
	if err != nil {
		return nil, err
	}
	v, err := matrix.Vector(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return v, nil
}

// loadSystem reads the configured inputs. A Hamiltonian takes precedence
// over energies and states and is diagonalized on the fly.
func loadSystem[T backend.Scalar](in config.Input, log logrus.FieldLogger, tc *timing.Context) (*system[T], error) {
	f, err := matrixio.ParseFormat(in.Format)
	if err != nil {
		return nil, err
	}
	defer tc.Start(timerLoad)()

	var s system[T]
	if in.Hamiltonian != "" {
		h, err := loadMatrix[T](in.Hamiltonian, f)
		if err != nil {
			return nil, fmt.Errorf("hamiltonian: %w", err)
		}
		stop := tc.Start(timerSolve)
		s.energies, s.psi, err = response.SolveHamiltonian(h)
		stop()
		if err != nil {
			return nil, fmt.Errorf("hamiltonian: %w", err)
		}
		log.WithField("states", len(s.energies)).Info("hamiltonian diagonalized")
	} else {
		if s.energies, err = loadColumn(in.Energies, f); err != nil {
			return nil, fmt.Errorf("energies: %w", err)
		}
		if s.psi, err = loadMatrix[T](in.States, f); err != nil {
			return nil, fmt.Errorf("states: %w", err)
		}
	}
	if s.coupling, err = loadMatrix[T](in.Potential, f); err != nil {
		return nil, fmt.Errorf("potential: %w", err)
	}
	log.WithFields(logrus.Fields{
		"states":  len(s.energies),
		"element": backend.KindOf[T](),
	}).Debug("system loaded")

	return &s, nil
}

// occupations returns Fermi-Dirac occupations when enabled, nil otherwise.
func occupations(cfg *config.Config, energies []float64) response.Occupations {
	if !cfg.Occupations.Enabled {
		return nil
	}

	return response.NewOccupations(energies, cfg.Constants)
}
