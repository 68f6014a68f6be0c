// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/dielectric/aggregate"
	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/cluster"
	"github.com/katalvlaran/dielectric/config"
	"github.com/katalvlaran/dielectric/timing"
)

// sweepKeys binds the flags of run that epsilon does not share.
var sweepKeys = map[string]string{
	"frequency.start": "start",
	"frequency.stop":  "stop",
	"frequency.step":  "step",
	"workers":         "workers",
	"mode":            "mode",
	"output":          "output",
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the response over the configured frequency range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bind(a.v, cmd, systemKeys)
			bind(a.v, cmd, sweepKeys)
			cfg, err := a.load()
			if err != nil {
				return err
			}

			return byElement(cfg.Element,
				func() error { return runJob[float32](cmd.Context(), a, cfg) },
				func() error { return runJob[float64](cmd.Context(), a, cfg) },
				func() error { return runJob[complex64](cmd.Context(), a, cfg) },
				func() error { return runJob[complex128](cmd.Context(), a, cfg) },
			)
		},
	}

	addSystemFlags(cmd)
	addSweepFlags(cmd)

	return cmd
}

// addSweepFlags adds the flags bound by sweepKeys.
func addSweepFlags(cmd *cobra.Command) {
	d := config.Defaults()
	fl := cmd.Flags()
	fl.Float64("start", d.Frequency.Start, "first frequency")
	fl.Float64("stop", d.Frequency.Stop, "last frequency (inclusive)")
	fl.Float64("step", d.Frequency.Step, "frequency step")
	fl.Int("workers", d.Workers, "number of ranks, rank 0 included")
	fl.String("mode", string(d.Mode), "rank execution: local (goroutines) or process (child processes)")
	fl.StringP("output", "o", d.Output, "result table, - for stdout")
}

// runJob is rank 0 of a run: it loads the system, distributes the sweep and
// writes the merged table. Nothing is written unless every rank succeeded.
func runJob[T backend.Scalar](ctx context.Context, a *app, cfg *config.Config) error {
	runID := uuid.New()
	base, closeLog, err := a.logger(cfg.Log, 0)
	if err != nil {
		return err
	}
	defer closeLog()
	log := base.WithField("run", runID)
	tc := timing.New()

	sys, err := loadSystem[T](cfg.Input, log, tc)
	if err != nil {
		log.WithError(err).Error("load failed")

		return err
	}
	pkg := &cluster.Package[T]{
		RunID:       runID,
		Range:       cfg.Range(),
		Broadening:  cfg.Broadening,
		Prefactor:   1,
		Occupations: occupations(cfg, sys.energies),
		Energies:    sys.energies,
		Psi:         sys.psi,
		Coupling:    sys.coupling,
	}
	log.WithFields(logrus.Fields{
		"points":  cfg.Range().Points(),
		"workers": cfg.Workers,
		"mode":    cfg.Mode,
	}).Info("run started")

	opts := []cluster.Option{cluster.WithLogger(base), cluster.WithTiming(tc)}
	samples, err := distribute(ctx, a, cfg, pkg, cluster.SweepResponse[T], nil, opts)
	if err != nil {
		log.WithError(err).Error("run failed")

		return err
	}

	stop := tc.Start(timerWrite)
	err = writeTable(a, cfg.Output, samples)
	stop()
	if err != nil {
		return err
	}
	tc.Log(log)
	log.WithField("samples", len(samples)).Info("run finished")

	return nil
}

// distribute runs eval over cfg.Workers ranks in the configured mode and
// returns rank 0's merged samples. task holds the worker flags that select
// the same evaluation in a worker process.
func distribute[T backend.Scalar](ctx context.Context, a *app, cfg *config.Config, pkg *cluster.Package[T], eval cluster.Evaluation[T], task []string, opts []cluster.Option) ([]aggregate.Sample, error) {
	if cfg.Mode == config.ModeProcess {
		return runProcesses(ctx, a, cfg, pkg, eval, task, opts)
	}

	return cluster.SimulateWith(ctx, cfg.Workers, pkg, eval, opts...)
}

// runProcesses starts cfg.Workers-1 worker processes of this executable and
// coordinates them as rank 0.
func runProcesses[T backend.Scalar](ctx context.Context, a *app, cfg *config.Config, pkg *cluster.Package[T], eval cluster.Evaluation[T], task []string, opts []cluster.Option) ([]aggregate.Sample, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	sub := []string{"worker",
		"--element", cfg.Element,
		"--format", cfg.Input.Format,
		"--log-level", cfg.Log.Level,
		"--log-file", cfg.Log.File,
		"--log-format", cfg.Log.Format,
	}
	sub = append(sub, task...)
	if a.cfgPath != "" {
		sub = append(sub, "--config", a.cfgPath)
	}
	world, err := cluster.SpawnWorld(ctx, cfg.Workers, cluster.Spawn{
		Path:   exe,
		Args:   cluster.WorkerArgs(sub...),
		Stderr: a.errOut,
	})
	if err != nil {
		return nil, err
	}

	samples, runErr := cluster.RunWith(ctx, world, pkg, eval, opts...)
	closeErr := world.Close()
	waitErr := world.Wait()
	switch {
	case runErr != nil:
		return nil, runErr
	case closeErr != nil:
		return nil, closeErr
	case waitErr != nil:
		return nil, waitErr
	}

	return samples, nil
}

func writeTable(a *app, path string, samples []aggregate.Sample) (err error) {
	w, closeOut, err := a.output(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer func() {
		if cerr := closeOut(); err == nil && cerr != nil {
			err = fmt.Errorf("output: %w", cerr)
		}
	}()

	return aggregate.WriteTable(w, samples)
}
