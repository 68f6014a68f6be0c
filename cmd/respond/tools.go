// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/dielectric/aggregate"
	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/cluster"
	"github.com/katalvlaran/dielectric/config"
	"github.com/katalvlaran/dielectric/eigen"
	"github.com/katalvlaran/dielectric/matrix"
	"github.com/katalvlaran/dielectric/matrixio"
	"github.com/katalvlaran/dielectric/response"
	"github.com/katalvlaran/dielectric/timing"
)

func newSolveCmd(a *app) *cobra.Command {
	var energiesOut, statesOut string
	cmd := &cobra.Command{
		Use:   "solve HAMILTONIAN",
		Short: "Diagonalize a Hermitian Hamiltonian into energies and states",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.read()
			if err != nil {
				return err
			}
			f, err := matrixio.ParseFormat(cfg.Input.Format)
			if err != nil {
				return err
			}

			return byElement(cfg.Element,
				func() error { return solve[float32](args[0], energiesOut, statesOut, f) },
				func() error { return solve[float64](args[0], energiesOut, statesOut, f) },
				func() error { return solve[complex64](args[0], energiesOut, statesOut, f) },
				func() error { return solve[complex128](args[0], energiesOut, statesOut, f) },
			)
		},
	}
	cmd.Flags().StringVar(&energiesOut, "energies", "energies.bin", "output file for the ascending energies (N×1)")
	cmd.Flags().StringVar(&statesOut, "states", "states.bin", "output file for the states (N×N, columns)")

	return cmd
}

func solve[T backend.Scalar](in, energiesOut, statesOut string, f matrixio.Format) error {
	h, err := loadMatrix[T](in, f)
	if err != nil {
		return err
	}
	energies, states, err := response.SolveHamiltonian(h)
	if err != nil {
		return err
	}
	col, err := matrix.NewDense(len(energies), 1, matrix.WithData(energies))
	if err != nil {
		return err
	}
	if err = matrixio.Save(energiesOut, col, f); err != nil {
		return err
	}

	return matrixio.Save(statesOut, states, f)
}

func newPotentialCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "potential POSITIONS OUT",
		Short: "Build the Coulomb interaction matrix of N sites (POSITIONS is N×3)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.read()
			if err != nil {
				return err
			}
			if err = cfg.Constants.Validate(); err != nil {
				return err
			}
			f, err := matrixio.ParseFormat(cfg.Input.Format)
			if err != nil {
				return err
			}
			pos, err := loadPositions(args[0], f)
			if err != nil {
				return err
			}

			return byElement(cfg.Element,
				func() error { return potential[float32](pos, cfg.Constants, args[1], f) },
				func() error { return potential[float64](pos, cfg.Constants, args[1], f) },
				func() error { return potential[complex64](pos, cfg.Constants, args[1], f) },
				func() error { return potential[complex128](pos, cfg.Constants, args[1], f) },
			)
		},
	}
}

func potential[T backend.Scalar](pos []response.Position, c response.Constants, out string, f matrixio.Format) error {
	v, err := response.CoulombPotential[T](pos, c)
	if err != nil {
		return err
	}

	return matrixio.Save(out, v, f)
}

// loadPositions reads an N×3 matrix of site coordinates.
func loadPositions(path string, f matrixio.Format) ([]response.Position, error) {
	m, err := loadMatrix[float64](path, f)
	if err != nil {
		return nil, err
	}
	if m.Cols() != 3 {
		return nil, fmt.Errorf("%s: positions need 3 columns, got %d: %w", path, m.Cols(), matrix.ErrDimensionMismatch)
	}
	raw := m.Raw()
	out := make([]response.Position, m.Rows())
	for i := range out {
		copy(out[i][:], raw[3*i:3*i+3])
	}

	return out, nil
}

func newEpsilonCmd(a *app) *cobra.Command {
	var (
		omega float64
		sweep bool
		eo    epsilonOutputs
	)
	cmd := &cobra.Command{
		Use:   "epsilon",
		Short: "Build the dielectric matrix and store its eigen-decomposition, at one frequency or over a range",
		Long: `Build ε(ω) = I − V·χ(ω) and store its eigenvalues and eigenvectors.

Without --sweep, ε is evaluated at --omega and written to --eigenvalues and
--eigenvectors. With --sweep, the frequency range is split over the
configured ranks; every rank writes the files of its frequencies as
<base>.<ω><ext> and rank 0 writes a table of the least-modulus eigenvalue
per frequency to --output once every rank has finished.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bind(a.v, cmd, systemKeys)
			if sweep {
				bind(a.v, cmd, sweepKeys)
			}
			cfg, err := a.load()
			if err != nil {
				return err
			}
			if eo.format, err = matrixio.ParseFormat(cfg.Input.Format); err != nil {
				return err
			}
			log, closeLog, err := a.logger(cfg.Log, 0)
			if err != nil {
				return err
			}
			defer closeLog()
			tc := timing.New()

			ctx := cmd.Context()
			if sweep {
				err = byElement(cfg.Element,
					func() error { return epsilonRange[float32](ctx, a, cfg, eo, log, tc) },
					func() error { return epsilonRange[float64](ctx, a, cfg, eo, log, tc) },
					func() error { return epsilonRange[complex64](ctx, a, cfg, eo, log, tc) },
					func() error { return epsilonRange[complex128](ctx, a, cfg, eo, log, tc) },
				)
			} else {
				err = byElement(cfg.Element,
					func() error { return epsilon[float32](cfg, omega, eo, log, tc) },
					func() error { return epsilon[float64](cfg, omega, eo, log, tc) },
					func() error { return epsilon[complex64](cfg, omega, eo, log, tc) },
					func() error { return epsilon[complex128](cfg, omega, eo, log, tc) },
				)
			}
			if err != nil {
				return err
			}
			tc.Log(log)

			return nil
		},
	}
	addSystemFlags(cmd)
	addSweepFlags(cmd)
	fl := cmd.Flags()
	fl.Float64Var(&omega, "omega", 0, "frequency ω")
	fl.BoolVar(&sweep, "sweep", false, "evaluate every frequency of --start/--stop/--step across the ranks")
	fl.StringVar(&eo.values, "eigenvalues", "epsilon-values.bin", "output file for the eigenvalues of ε (N×1 complex)")
	fl.StringVar(&eo.vectors, "eigenvectors", "epsilon-vectors.bin", "output file for the eigenvectors of ε (N×N complex, columns)")

	return cmd
}

// Timer names of the epsilon command.
const (
	timerEpsilon = "respond.epsilon"
	timerGeev    = "respond.geev"
)

// epsilonOutputs names the decomposition files; in sweep mode they are
// bases completed per frequency by perFrequency.
type epsilonOutputs struct {
	values, vectors string
	format          matrixio.Format
}

func (eo epsilonOutputs) save(res *eigen.GeneralResult, omega float64, sweep bool) error {
	values, vectors := eo.values, eo.vectors
	if sweep {
		values, vectors = perFrequency(values, omega), perFrequency(vectors, omega)
	}
	col, err := matrix.NewDense(len(res.Values), 1, matrix.WithData(res.Values))
	if err != nil {
		return err
	}
	if err = matrixio.Save(values, col, eo.format); err != nil {
		return err
	}

	return matrixio.Save(vectors, res.Vectors, eo.format)
}

// perFrequency inserts ω before the extension: ("eps.bin", 0.5) is "eps.0.5.bin".
func perFrequency(path string, omega float64) string {
	ext := filepath.Ext(path)

	return strings.TrimSuffix(path, ext) + "." + formatFloat(omega) + ext
}

// decomposeEpsilon builds ε(ω) with Fermi-Dirac weighted transitions and
// diagonalizes it.
func decomposeEpsilon[T backend.Scalar](omega float64, pkg *cluster.Package[T], tc *timing.Context) (*eigen.GeneralResult, error) {
	stop := tc.Start(timerEpsilon)
	eps, err := response.DielectricMatrix(omega, pkg.Broadening, pkg.Energies, pkg.Psi, pkg.Coupling, pkg.Occupations)
	stop()
	if err != nil {
		return nil, err
	}
	stop = tc.Start(timerGeev)
	defer stop()

	return eigen.DecomposeGeneral(eps, true)
}

// epsilonPackage loads the system and packs it with its occupations, which
// ε always needs.
func epsilonPackage[T backend.Scalar](cfg *config.Config, log logrus.FieldLogger, tc *timing.Context) (*cluster.Package[T], error) {
	sys, err := loadSystem[T](cfg.Input, log, tc)
	if err != nil {
		return nil, err
	}

	return &cluster.Package[T]{
		RunID:       uuid.New(),
		Range:       cfg.Range(),
		Broadening:  cfg.Broadening,
		Prefactor:   1,
		Occupations: response.NewOccupations(sys.energies, cfg.Constants),
		Energies:    sys.energies,
		Psi:         sys.psi,
		Coupling:    sys.coupling,
	}, nil
}

func epsilon[T backend.Scalar](cfg *config.Config, omega float64, eo epsilonOutputs, log logrus.FieldLogger, tc *timing.Context) error {
	pkg, err := epsilonPackage[T](cfg, log, tc)
	if err != nil {
		return err
	}
	res, err := decomposeEpsilon(omega, pkg, tc)
	if err != nil {
		return err
	}
	if err = eo.save(res, omega, false); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"omega": omega, "states": len(pkg.Energies)}).Info("dielectric matrix decomposed")

	return nil
}

// epsilonSweep is the per-rank evaluation of epsilon --sweep: decompose and
// store ε at each frequency, reporting the least-modulus eigenvalue.
func epsilonSweep[T backend.Scalar](eo epsilonOutputs) cluster.Evaluation[T] {
	return func(ctx context.Context, pkg *cluster.Package[T], freqs []float64, tc *timing.Context) ([]aggregate.Sample, error) {
		out := make([]aggregate.Sample, 0, len(freqs))
		for _, omega := range freqs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := decomposeEpsilon(omega, pkg, tc)
			if err != nil {
				return nil, fmt.Errorf("ω=%g: %w", omega, err)
			}
			if err = eo.save(res, omega, true); err != nil {
				return nil, fmt.Errorf("ω=%g: %w", omega, err)
			}
			out = append(out, aggregate.Sample{Frequency: omega, Value: response.SmallestEigenvalue(res.Values)})
		}

		return out, nil
	}
}

// epsilonRange is rank 0 of epsilon --sweep.
func epsilonRange[T backend.Scalar](ctx context.Context, a *app, cfg *config.Config, eo epsilonOutputs, base *logrus.Logger, tc *timing.Context) error {
	pkg, err := epsilonPackage[T](cfg, base, tc)
	if err != nil {
		return err
	}
	log := base.WithField("run", pkg.RunID)
	log.WithFields(logrus.Fields{
		"points":  pkg.Range.Points(),
		"workers": cfg.Workers,
		"mode":    cfg.Mode,
	}).Info("epsilon sweep started")

	task := []string{"--task", taskEpsilon, "--eigenvalues", eo.values, "--eigenvectors", eo.vectors}
	opts := []cluster.Option{cluster.WithLogger(base), cluster.WithTiming(tc)}
	samples, err := distribute(ctx, a, cfg, pkg, epsilonSweep[T](eo), task, opts)
	if err != nil {
		log.WithError(err).Error("epsilon sweep failed")

		return err
	}
	if err = writeTable(a, cfg.Output, samples); err != nil {
		return err
	}
	log.WithField("samples", len(samples)).Info("epsilon sweep finished")

	return nil
}

func newLossCmd(a *app) *cobra.Command {
	var valuesIn, vectorsIn, positionsIn, qIn string
	cmd := &cobra.Command{
		Use:   "loss",
		Short: "Evaluate ε(q) and 1/ε(q) from a stored eigen-decomposition of ε",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.read()
			if err != nil {
				return err
			}
			f, err := matrixio.ParseFormat(cfg.Input.Format)
			if err != nil {
				return err
			}
			k, err := parseWavevector(qIn)
			if err != nil {
				return err
			}
			pos, err := loadPositions(positionsIn, f)
			if err != nil {
				return err
			}
			values, err := loadMatrix[complex128](valuesIn, f)
			if err != nil {
				return err
			}
			res := &eigen.GeneralResult{}
			if res.Values, err = matrix.Vector(values); err != nil {
				return err
			}
			if res.Vectors, err = loadMatrix[complex128](vectorsIn, f); err != nil {
				return err
			}

			eps, inv, err := response.Loss(response.MomentumVector(k, pos), res)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n",
				formatFloat(real(eps)), formatFloat(imag(eps)),
				formatFloat(real(inv)), formatFloat(imag(inv)))

			return err
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&valuesIn, "eigenvalues", "epsilon-values.bin", "eigenvalues of ε (N×1 complex)")
	fl.StringVar(&vectorsIn, "eigenvectors", "epsilon-vectors.bin", "eigenvectors of ε (N×N complex, columns)")
	fl.StringVar(&positionsIn, "positions", "", "site positions (N×3)")
	fl.StringVar(&qIn, "q", "(0,0,0)", "wave vector as (qx, qy, qz)")
	_ = cmd.MarkFlagRequired("positions")

	return cmd
}

// parseWavevector accepts "(x, y, z)" with optional parentheses and spaces.
func parseWavevector(s string) (response.Position, error) {
	var k response.Position
	body := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "("), ")")
	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return k, fmt.Errorf("wave vector %q: want (qx, qy, qz)", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return k, fmt.Errorf("wave vector %q: %w", s, err)
		}
		k[i] = v
	}

	return k, nil
}

func formatFloat(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.read()
			if err != nil {
				return err
			}

			return config.Dump(a.out, cfg)
		},
	}
}
