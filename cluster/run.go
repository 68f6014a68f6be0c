// SPDX-License-Identifier: MIT

package cluster

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/dielectric/aggregate"
	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/jobs"
	"github.com/katalvlaran/dielectric/response"
	"github.com/katalvlaran/dielectric/timing"
)

// Timer names recorded through WithTiming.
const (
	TimerBroadcast = "cluster.broadcast"
	TimerGather    = "cluster.gather"
)

// Option configures Run and Simulate.
type Option func(*runOptions)

type runOptions struct {
	log logrus.FieldLogger
	tc  *timing.Context
}

// WithLogger sets the logger; each rank adds its rank and size fields.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *runOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithTiming records communication and evaluation timings into tc.
func WithTiming(tc *timing.Context) Option {
	return func(o *runOptions) { o.tc = tc }
}

func gatherOptions(opts []Option) runOptions {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	o := runOptions{log: quiet}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Evaluation computes one rank's samples for freqs, in ascending order, from
// the decoded package. It runs on every rank, rank 0 included.
type Evaluation[T backend.Scalar] func(ctx context.Context, pkg *Package[T], freqs []float64, tc *timing.Context) ([]aggregate.Sample, error)

// SweepResponse is the Evaluation of Run: R(ω) at every frequency.
func SweepResponse[T backend.Scalar](_ context.Context, pkg *Package[T], freqs []float64, tc *timing.Context) ([]aggregate.Sample, error) {
	ev, err := newEvaluator(pkg, tc)
	if err != nil {
		return nil, err
	}

	return ev.Sweep(freqs), nil
}

// Run executes one rank of the job.
//
// Rank 0 passes the package; it validates it by building an evaluator and,
// on success, broadcasts it. Every rank then decodes the same broadcast
// payload, evaluates its chunk of the frequency range in ascending order and
// sends the samples to rank 0, which merges them. Non-root ranks pass nil
// and return (nil, nil) on success.
//
// Errors:
//   - validation errors of rank 0 (matrix.ErrDimensionMismatch,
//     response.ErrInvalidBroadening, jobs.ErrInvalidRange) before anything
//     is sent; workers then fail with a *RankError for rank 0.
//   - *RankError for a failing worker, aggregate.ErrIncompleteJobResult for
//     a short or long result.
func Run[T backend.Scalar](ctx context.Context, comm Communicator, pkg *Package[T], opts ...Option) ([]aggregate.Sample, error) {
	return RunWith(ctx, comm, pkg, SweepResponse[T], opts...)
}

// RunWith is Run with a caller-supplied per-rank evaluation. Rank 0 merges
// whatever the ranks return, so a complete merge confirms that every rank
// finished its chunk.
func RunWith[T backend.Scalar](ctx context.Context, comm Communicator, pkg *Package[T], eval Evaluation[T], opts ...Option) ([]aggregate.Sample, error) {
	o := gatherOptions(opts)
	rank, size := comm.Rank(), comm.Size()
	log := o.log.WithFields(logrus.Fields{"rank": rank, "size": size})

	var payload []byte
	if rank == 0 {
		p, err := prepare(pkg)
		if err != nil {
			_ = comm.Fail(ctx, err)

			return nil, err
		}
		payload = p
		log.WithField("run", pkg.RunID).Info("broadcasting package")
	}

	stop := o.tc.Start(TimerBroadcast)
	data, err := comm.Broadcast(ctx, payload)
	stop()
	if err != nil {
		return nil, err
	}

	samples, chunks, err := evaluate(ctx, data, rank, size, eval, o, log)
	if err != nil {
		if rank != 0 {
			_ = comm.Fail(ctx, err)
		}

		return nil, rankError(rank, err)
	}

	stop = o.tc.Start(TimerGather)
	parts, err := comm.Gather(ctx, encodeSamples(samples))
	stop()
	if err != nil {
		return nil, err
	}
	if rank != 0 {
		log.Debug("result sent")

		return nil, nil
	}

	perRank := make([][]aggregate.Sample, size)
	for r, part := range parts {
		if perRank[r], err = decodeSamples(part); err != nil {
			return nil, rankError(r, err)
		}
	}
	merged, err := aggregate.Merge(chunks, perRank)
	if err != nil {
		return nil, err
	}
	log.WithField("samples", len(merged)).Info("results merged")

	return merged, nil
}

// prepare validates pkg on rank 0 and encodes it.
func prepare[T backend.Scalar](pkg *Package[T]) ([]byte, error) {
	if pkg == nil {
		return nil, fmt.Errorf("Run: rank 0 needs a package: %w", ErrProtocol)
	}
	if err := pkg.Range.Validate(); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	if _, err := newEvaluator(pkg, nil); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	return pkg.MarshalBinary()
}

func newEvaluator[T backend.Scalar](pkg *Package[T], tc *timing.Context) (*response.Evaluator, error) {
	opts := []response.Option{response.WithPrefactor(pkg.Prefactor), response.WithTiming(tc)}
	if pkg.Occupations != nil {
		opts = append(opts, response.WithOccupations(pkg.Occupations))
	}

	return response.NewEvaluator(pkg.Energies, pkg.Psi, pkg.Coupling, pkg.Broadening, opts...)
}

// evaluate decodes the broadcast package and runs eval over this rank's chunk.
func evaluate[T backend.Scalar](ctx context.Context, data []byte, rank, size int, eval Evaluation[T], o runOptions, log logrus.FieldLogger) ([]aggregate.Sample, []jobs.Chunk, error) {
	var pkg Package[T]
	if err := pkg.UnmarshalBinary(data); err != nil {
		return nil, nil, err
	}
	chunks, err := jobs.Assign(pkg.Range, size)
	if err != nil {
		return nil, nil, err
	}
	mine := chunks[rank]
	log = log.WithFields(logrus.Fields{"run": pkg.RunID, "chunk": mine.String()})

	samples, err := eval(ctx, &pkg, pkg.Range.Slice(mine), o.tc)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("points", len(samples)).Debug("chunk evaluated")

	return samples, chunks, nil
}

// Simulate runs size in-process ranks over NewLocalWorld and returns rank
// 0's merged samples. The first failing rank cancels the others.
func Simulate[T backend.Scalar](ctx context.Context, size int, pkg *Package[T], opts ...Option) ([]aggregate.Sample, error) {
	return SimulateWith(ctx, size, pkg, SweepResponse[T], opts...)
}

// SimulateWith is Simulate with a caller-supplied per-rank evaluation.
func SimulateWith[T backend.Scalar](ctx context.Context, size int, pkg *Package[T], eval Evaluation[T], opts ...Option) ([]aggregate.Sample, error) {
	comms, err := NewLocalWorld(size)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, c := range comms {
			_ = c.Close()
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	var merged []aggregate.Sample
	for r, comm := range comms {
		g.Go(func() error {
			if r != 0 {
				_, err := RunWith[T](gctx, comm, nil, eval, opts...)

				return err
			}
			out, err := RunWith(gctx, comm, pkg, eval, opts...)
			merged = out

			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return merged, nil
}
