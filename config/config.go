// SPDX-License-Identifier: MIT

// Package config loads the run configuration of the respond command.
//
// Sources, lowest precedence first:
//
//	– defaults (Defaults, physical constants from response.DefaultConstants);
//	– a YAML file (optional);
//	– environment variables RESPOND_<KEY>, dots and dashes as underscores,
//	  e.g. RESPOND_FREQUENCY_STEP, RESPOND_CONSTANTS_CHEMICAL_POTENTIAL;
//	– command-line flags bound by the caller with BindPFlag.
//
// Errors (sentinel):
//   - ErrInvalidConfig - a value failed Validate.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/jobs"
	"github.com/katalvlaran/dielectric/matrixio"
	"github.com/katalvlaran/dielectric/response"
)

// ErrInvalidConfig indicates a configuration value out of its domain.
var ErrInvalidConfig = errors.New("config: invalid value")

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "RESPOND"

// Mode selects how worker ranks run.
type Mode string

const (
	// ModeLocal runs every rank as a goroutine of one process.
	ModeLocal Mode = "local"
	// ModeProcess runs every worker rank as a child process.
	ModeProcess Mode = "process"
)

// Input names the matrix files of the system. Either Hamiltonian or both
// Energies and States must be set; Potential is always required.
type Input struct {
	Energies    string `mapstructure:"energies"    yaml:"energies"`
	States      string `mapstructure:"states"      yaml:"states"`
	Potential   string `mapstructure:"potential"   yaml:"potential"`
	Hamiltonian string `mapstructure:"hamiltonian" yaml:"hamiltonian"`
	Format      string `mapstructure:"format"      yaml:"format"`
}

// Frequency is the sweep range.
type Frequency struct {
	Start float64 `mapstructure:"start" yaml:"start"`
	Stop  float64 `mapstructure:"stop"  yaml:"stop"`
	Step  float64 `mapstructure:"step"  yaml:"step"`
}

// Log configures the logger. An empty File logs to stderr; otherwise every
// rank writes <File>.<rank>.log.
type Log struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	File   string `mapstructure:"file"   yaml:"file"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Occupations switches Fermi-Dirac weighting on; the parameters come from
// Constants.
type Occupations struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Config is the effective configuration of one run.
type Config struct {
	Input       Input              `mapstructure:"input"       yaml:"input"`
	Frequency   Frequency          `mapstructure:"frequency"   yaml:"frequency"`
	Broadening  float64            `mapstructure:"broadening"  yaml:"broadening"`
	Workers     int                `mapstructure:"workers"     yaml:"workers"`
	Mode        Mode               `mapstructure:"mode"        yaml:"mode"`
	Element     string             `mapstructure:"element"     yaml:"element"`
	Output      string             `mapstructure:"output"      yaml:"output"`
	Log         Log                `mapstructure:"log"         yaml:"log"`
	Occupations Occupations        `mapstructure:"occupations" yaml:"occupations"`
	Constants   response.Constants `mapstructure:"constants"   yaml:"constants"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	c := response.DefaultConstants()

	return Config{
		Input:      Input{Format: matrixio.FormatAuto.String()},
		Frequency:  Frequency{Start: 0, Stop: 10, Step: 0.01},
		Broadening: c.Tau,
		Workers:    1,
		Mode:       ModeLocal,
		Element:    backend.KindComplex128.String(),
		Output:     "-",
		Log:        Log{Level: "info", Format: "text"},
		Constants:  c,
	}
}

// New returns a viper instance carrying the defaults and the environment
// binding. Flags are bound to it by the caller before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("input.energies", d.Input.Energies)
	v.SetDefault("input.states", d.Input.States)
	v.SetDefault("input.potential", d.Input.Potential)
	v.SetDefault("input.hamiltonian", d.Input.Hamiltonian)
	v.SetDefault("input.format", d.Input.Format)
	v.SetDefault("frequency.start", d.Frequency.Start)
	v.SetDefault("frequency.stop", d.Frequency.Stop)
	v.SetDefault("frequency.step", d.Frequency.Step)
	v.SetDefault("broadening", d.Broadening)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("mode", string(d.Mode))
	v.SetDefault("element", d.Element)
	v.SetDefault("output", d.Output)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("occupations.enabled", d.Occupations.Enabled)

	c := d.Constants
	v.SetDefault("constants.pi", c.Pi)
	v.SetDefault("constants.boltzmann-constant", c.Boltzmann)
	v.SetDefault("constants.chemical-potential", c.ChemicalPotential)
	v.SetDefault("constants.elementary-charge", c.ElementaryCharge)
	v.SetDefault("constants.planck-constant", c.Planck)
	v.SetDefault("constants.self-interaction-potential", c.SelfInteraction)
	v.SetDefault("constants.temperature", c.Temperature)
	v.SetDefault("constants.vacuum-permittivity", c.VacuumPermittivity)
	v.SetDefault("constants.tau", c.Tau)

	return v
}

// Read reads path (if not empty) into v and decodes the merged view
// without validating it.
func Read(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	return &cfg, nil
}

// Load is Read followed by Validate.
func Load(v *viper.Viper, path string) (*Config, error) {
	cfg, err := Read(v, path)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field that the run depends on.
func (c *Config) Validate() error {
	if c.Input.Potential == "" {
		return invalid("input.potential", "required")
	}
	if c.Input.Hamiltonian == "" && (c.Input.Energies == "" || c.Input.States == "") {
		return invalid("input", "need input.hamiltonian or both input.energies and input.states")
	}
	if _, err := matrixio.ParseFormat(c.Input.Format); err != nil {
		return invalid("input.format", err.Error())
	}
	if err := c.Range().Validate(); err != nil {
		return fmt.Errorf("config: frequency: %w", err)
	}
	if c.Workers < 1 {
		return invalid("workers", fmt.Sprintf("%d < 1", c.Workers))
	}
	if c.Mode != ModeLocal && c.Mode != ModeProcess {
		return invalid("mode", fmt.Sprintf("%q not in {local, process}", c.Mode))
	}
	if _, ok := backend.ParseKind(c.Element); !ok {
		return invalid("element", fmt.Sprintf("unknown element type %q", c.Element))
	}
	if c.Output == "" {
		return invalid("output", "required, use - for stdout")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", fmt.Sprintf("%q not in {text, json}", c.Log.Format))
	}
	if err := c.Constants.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := response.ValidateBroadening(c.Broadening); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// Range returns the sweep as a jobs.Range.
func (c *Config) Range() jobs.Range {
	return jobs.Range{Begin: c.Frequency.Start, End: c.Frequency.Stop, Step: c.Frequency.Step}
}

// Dump writes c as YAML.
func Dump(w io.Writer, c *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: dump: %w", err)
	}

	return enc.Close()
}

func invalid(key, why string) error {
	return fmt.Errorf("config: %s: %s: %w", key, why, ErrInvalidConfig)
}
