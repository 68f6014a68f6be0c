// SPDX-License-Identifier: MIT

package cluster

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/dielectric/aggregate"
	"github.com/katalvlaran/dielectric/eigen"
	"github.com/katalvlaran/dielectric/jobs"
	"github.com/katalvlaran/dielectric/matrix"
	"github.com/katalvlaran/dielectric/matrixio"
	"github.com/katalvlaran/dielectric/response"
)

var (
	// ErrRankFailed is matched by every *RankError.
	ErrRankFailed = errors.New("cluster: rank failed")

	// ErrProtocol indicates an unexpected frame or malformed payload.
	ErrProtocol = errors.New("cluster: protocol violation")

	// ErrClosed indicates use of a closed communicator.
	ErrClosed = errors.New("cluster: communicator closed")
)

// RankError names the rank whose failure aborted the run.
// errors.Is matches both ErrRankFailed and the cause.
type RankError struct {
	Rank int
	Err  error
}

func (e *RankError) Error() string {
	return fmt.Sprintf("cluster: rank %d: %v", e.Rank, e.Err)
}

func (e *RankError) Unwrap() []error { return []error{ErrRankFailed, e.Err} }

// rankError wraps err unless it already names a rank.
func rankError(rank int, err error) error {
	var re *RankError
	if errors.As(err, &re) {
		return err
	}

	return &RankError{Rank: rank, Err: err}
}

// kinds maps failure kinds carried in failure frames back to sentinels, so
// errors.Is keeps working across process boundaries.
var kinds = []struct {
	name string
	err  error
}{
	{"dimension-mismatch", matrix.ErrDimensionMismatch},
	{"eigen-convergence", eigen.ErrEigenConvergence},
	{"incomplete-job-result", aggregate.ErrIncompleteJobResult},
	{"invalid-range", jobs.ErrInvalidRange},
	{"invalid-partition", jobs.ErrInvalidPartition},
	{"invalid-broadening", response.ErrInvalidBroadening},
	{"format", matrixio.ErrFormat},
	{"element-type", matrixio.ErrElementType},
	{"protocol", ErrProtocol},
}

func kindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}

	return ""
}

// remoteError is a failure decoded from another rank.
type remoteError struct {
	msg  string
	kind error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.kind }

func remote(kind, msg string) error {
	for _, k := range kinds {
		if k.name == kind {
			return &remoteError{msg: msg, kind: k.err}
		}
	}

	return &remoteError{msg: msg}
}
