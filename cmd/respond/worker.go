// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/cluster"
	"github.com/katalvlaran/dielectric/config"
	"github.com/katalvlaran/dielectric/matrixio"
	"github.com/katalvlaran/dielectric/timing"
)

// newWorkerCmd is one worker rank of the process mode. Stdout carries
// frames, so the command never prints; logs go to stderr or the rank's file.
func newWorkerCmd(a *app) *cobra.Command {
	var (
		rank, size int
		task       string
		eo         epsilonOutputs
	)
	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Run one worker rank over stdin/stdout (started by run --mode process)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.read()
			if err != nil {
				return err
			}
			comm, err := cluster.NewStreamCommunicator(rank, size, os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			defer comm.Close()

			log, closeLog, err := a.logger(cfg.Log, rank)
			if err != nil {
				_ = comm.Fail(cmd.Context(), err)

				return err
			}
			defer closeLog()

			f, err := matrixio.ParseFormat(cfg.Input.Format)
			if err != nil {
				_ = comm.Fail(cmd.Context(), err)

				return err
			}
			eo.format = f
			tc := timing.New()
			opts := []cluster.Option{cluster.WithLogger(log), cluster.WithTiming(tc)}
			err = byElement(cfg.Element,
				func() error { return work[float32](cmd.Context(), comm, task, eo, opts) },
				func() error { return work[float64](cmd.Context(), comm, task, eo, opts) },
				func() error { return work[complex64](cmd.Context(), comm, task, eo, opts) },
				func() error { return work[complex128](cmd.Context(), comm, task, eo, opts) },
			)
			if err != nil {
				log.WithError(err).WithField("rank", rank).Error("worker failed")

				return err
			}
			tc.Log(log.WithField("rank", rank))

			return nil
		},
	}
	cmd.Flags().IntVar(&rank, "rank", 0, "rank of this worker")
	cmd.Flags().IntVar(&size, "size", 0, "number of ranks")
	cmd.Flags().StringVar(&task, "task", taskResponse, "evaluation: response or epsilon")
	cmd.Flags().StringVar(&eo.values, "eigenvalues", "", "epsilon task: eigenvalue file base")
	cmd.Flags().StringVar(&eo.vectors, "eigenvectors", "", "epsilon task: eigenvector file base")
	_ = cmd.MarkFlagRequired("rank")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

// Worker tasks, selected by --task.
const (
	taskResponse = "response"
	taskEpsilon  = "epsilon"
)

func work[T backend.Scalar](ctx context.Context, comm cluster.Communicator, task string, eo epsilonOutputs, opts []cluster.Option) error {
	var eval cluster.Evaluation[T]
	switch task {
	case taskResponse:
		eval = cluster.SweepResponse[T]
	case taskEpsilon:
		eval = epsilonSweep[T](eo)
	default:
		err := fmt.Errorf("task %q: %w", task, config.ErrInvalidConfig)
		_ = comm.Fail(ctx, err)

		return err
	}
	_, err := cluster.RunWith[T](ctx, comm, nil, eval, opts...)

	return err
}
