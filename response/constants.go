// SPDX-License-Identifier: MIT

package response

import (
	"fmt"
	"math"
)

// Constants holds the physical parameters of a run, in eV, C, F/m, K and s.
type Constants struct {
	Pi                 float64 `mapstructure:"pi"                         yaml:"pi"`
	Boltzmann          float64 `mapstructure:"boltzmann-constant"         yaml:"boltzmann-constant"`
	ChemicalPotential  float64 `mapstructure:"chemical-potential"         yaml:"chemical-potential"`
	ElementaryCharge   float64 `mapstructure:"elementary-charge"          yaml:"elementary-charge"`
	Planck             float64 `mapstructure:"planck-constant"            yaml:"planck-constant"`
	SelfInteraction    float64 `mapstructure:"self-interaction-potential" yaml:"self-interaction-potential"`
	Temperature        float64 `mapstructure:"temperature"                yaml:"temperature"`
	VacuumPermittivity float64 `mapstructure:"vacuum-permittivity"        yaml:"vacuum-permittivity"`
	Tau                float64 `mapstructure:"tau"                        yaml:"tau"`
}

// DefaultConstants returns the reference parameter set. Tau doubles as the
// default broadening.
func DefaultConstants() Constants {
	return Constants{
		Pi:                 math.Pi,
		Boltzmann:          8.6173303e-5,
		ChemicalPotential:  0.4,
		ElementaryCharge:   1.6021766208e-19,
		Planck:             6.582119514e-16,
		SelfInteraction:    15.78,
		Temperature:        300,
		VacuumPermittivity: 8.854187817e-12,
		Tau:                6e-3,
	}
}

// Validate rejects non-finite values and non-positive scales.
func (c Constants) Validate() error {
	named := []struct {
		name     string
		v        float64
		positive bool
	}{
		{"pi", c.Pi, true},
		{"boltzmann-constant", c.Boltzmann, true},
		{"chemical-potential", c.ChemicalPotential, false},
		{"elementary-charge", c.ElementaryCharge, true},
		{"planck-constant", c.Planck, true},
		{"self-interaction-potential", c.SelfInteraction, false},
		{"temperature", c.Temperature, true},
		{"vacuum-permittivity", c.VacuumPermittivity, true},
		{"tau", c.Tau, true},
	}
	for _, n := range named {
		if math.IsNaN(n.v) || math.IsInf(n.v, 0) || (n.positive && n.v <= 0) {
			return fmt.Errorf("Constants: %s = %g: %w", n.name, n.v, ErrInvalidConstant)
		}
	}

	return nil
}

// fermiCutoff bounds the exponent to keep exp finite.
const fermiCutoff = 700

// FermiDirac returns 1/(exp((e-mu)/(kB·t)) + 1), clamped to 0 or 1 when the
// exponent leaves ±700.
func FermiDirac(e, t, mu, kB float64) float64 {
	arg := (e - mu) / (kB * t)
	if arg > fermiCutoff {
		return 0
	}
	if arg < -fermiCutoff {
		return 1
	}

	return 1 / (math.Exp(arg) + 1)
}

// Occupations are per-state occupation numbers f_n.
type Occupations []float64

// NewOccupations evaluates FermiDirac for every energy with the temperature,
// chemical potential and Boltzmann constant of c.
func NewOccupations(energies []float64, c Constants) Occupations {
	out := make(Occupations, len(energies))
	for i, e := range energies {
		out[i] = FermiDirac(e, c.Temperature, c.ChemicalPotential, c.Boltzmann)
	}

	return out
}
