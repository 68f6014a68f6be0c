// SPDX-License-Identifier: MIT

// Package jobs discretizes a frequency range and distributes its points
// across worker ranks.
//
// A Range (Begin, End, Step) yields Points() = floor((End-Begin)/Step + 1e-9) + 1
// frequencies, point i being Begin + i*Step. The small slack absorbs binary
// rounding so that [0.5, 1.5, 0.5] has three points, not two.
//
// Partition splits N points over P ranks:
//
//	– base = N / P; the first N % P ranks get one extra point.
//	– Chunks are contiguous, non-overlapping and increasing in rank order.
//	– Ranks with index ≥ N get an empty chunk (Len == 0).
//
// Complexity:
//
//	– Partition: Time O(P), Space O(P).
//	– Range.Slice: Time O(Len), Space O(Len).
//
// Errors (sentinel):
//
//	– ErrInvalidRange     if Step ≤ 0, End < Begin, any bound is not finite,
//	                      or the range has more than MaxPoints points.
//	– ErrInvalidPartition if workers < 1 or total < 0.
//
// Example usage:
//
//	r, _ := jobs.NewRange(0.5, 1.5, 0.5)
//	chunks, _ := jobs.Partition(r.Points(), 2)
//	mine := r.Slice(chunks[rank]) // [0.5 1.0] on rank 0, [1.5] on rank 1
package jobs

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the jobs package.
var (
	// ErrInvalidRange indicates a frequency range that cannot be discretized.
	ErrInvalidRange = errors.New("jobs: invalid frequency range")

	// ErrInvalidPartition indicates a non-positive worker count or negative total.
	ErrInvalidPartition = errors.New("jobs: invalid partition request")
)

// pointSlack absorbs rounding in (End-Begin)/Step before flooring.
const pointSlack = 1e-9

// MaxPoints bounds the number of points of a valid Range.
const MaxPoints = 1 << 26

// Range is a discretized frequency interval [Begin, End] with spacing Step.
type Range struct {
	Begin float64 `json:"begin" yaml:"begin"`
	End   float64 `json:"end"   yaml:"end"`
	Step  float64 `json:"step"  yaml:"step"`
}

// Chunk is one rank's contiguous share of range indices [Start, Start+Len).
type Chunk struct {
	Rank  int
	Start int
	Len   int
}

// End returns the exclusive end index of the chunk.
func (c Chunk) End() int { return c.Start + c.Len }

// Empty reports whether the chunk carries no points.
func (c Chunk) Empty() bool { return c.Len == 0 }

func (c Chunk) String() string {
	if c.Len == 0 {
		return fmt.Sprintf("rank %d: []", c.Rank)
	}

	return fmt.Sprintf("rank %d: [%d,%d]", c.Rank, c.Start, c.End()-1)
}
