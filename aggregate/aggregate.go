// SPDX-License-Identifier: MIT

// Package aggregate merges per-rank response samples into one
// frequency-ordered table and reads/writes that table.
//
// Merge is a plain concatenation in rank order: jobs.Partition hands out
// contiguous, increasing chunks, so no re-sorting is ever needed. Any rank
// whose list does not match its chunk length aborts the merge and nothing is
// returned.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/dielectric/jobs"
)

// ErrIncompleteJobResult is matched by every *IncompleteError.
var ErrIncompleteJobResult = errors.New("aggregate: incomplete job result")

// Sample is one response value at a real frequency.
type Sample struct {
	Frequency float64
	Value     complex128
}

// IncompleteError names the rank whose result does not cover its chunk.
// Got is -1 when the rank reported nothing at all.
type IncompleteError struct {
	Rank int
	Want int
	Got  int
}

func (e *IncompleteError) Error() string {
	if e.Got < 0 {
		return fmt.Sprintf("aggregate: rank %d: missing result (want %d samples)", e.Rank, e.Want)
	}

	return fmt.Sprintf("aggregate: rank %d: got %d samples, want %d", e.Rank, e.Got, e.Want)
}

// Unwrap lets errors.Is(err, ErrIncompleteJobResult) match.
func (e *IncompleteError) Unwrap() error { return ErrIncompleteJobResult }

// Merge concatenates perRank[r] for r in rank order after checking every
// length against chunks[r].Len.
//
// Errors:
//   - *IncompleteError when perRank has fewer entries than chunks (missing
//     rank, Got = -1) or a length differs from its chunk.
//
// Complexity: Time O(total), Space O(total).
func Merge(chunks []jobs.Chunk, perRank [][]Sample) ([]Sample, error) {
	total := 0
	for r, c := range chunks {
		if r >= len(perRank) || (perRank[r] == nil && c.Len > 0) {
			return nil, &IncompleteError{Rank: c.Rank, Want: c.Len, Got: -1}
		}
		if got := len(perRank[r]); got != c.Len {
			return nil, &IncompleteError{Rank: c.Rank, Want: c.Len, Got: got}
		}
		total += c.Len
	}
	if len(perRank) > len(chunks) {
		extra := len(chunks)

		return nil, &IncompleteError{Rank: extra, Want: 0, Got: len(perRank[extra])}
	}

	out := make([]Sample, 0, total)
	for r := range chunks {
		out = append(out, perRank[r]...)
	}

	return out, nil
}
