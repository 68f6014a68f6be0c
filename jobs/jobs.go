// SPDX-License-Identifier: MIT

package jobs

import (
	"fmt"
	"math"
)

// NewRange builds and validates a Range.
func NewRange(begin, end, step float64) (Range, error) {
	r := Range{Begin: begin, End: end, Step: step}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}

	return r, nil
}

// Validate checks Step > 0, End ≥ Begin, that all bounds are finite and
// that the range has at most MaxPoints points.
func (r Range) Validate() error {
	for _, v := range [...]float64{r.Begin, r.End, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("Range{%g,%g,%g}: non-finite bound: %w", r.Begin, r.End, r.Step, ErrInvalidRange)
		}
	}
	if r.Step <= 0 {
		return fmt.Errorf("Range: step %g must be positive: %w", r.Step, ErrInvalidRange)
	}
	if r.End < r.Begin {
		return fmt.Errorf("Range: end %g before begin %g: %w", r.End, r.Begin, ErrInvalidRange)
	}
	if n := r.span(); math.IsInf(n, 0) || n+1 > MaxPoints {
		return fmt.Errorf("Range{%g,%g,%g}: more than %d points: %w", r.Begin, r.End, r.Step, MaxPoints, ErrInvalidRange)
	}

	return nil
}

// span is the floored step count (End-Begin)/Step, kept in float64 so that
// overflow stays visible.
func (r Range) span() float64 {
	return math.Floor((r.End-r.Begin)/r.Step + pointSlack)
}

// Points returns the number of discretized frequencies. Callers validate first;
// an invalid range yields 0.
func (r Range) Points() int {
	if r.Validate() != nil {
		return 0
	}

	return int(r.span()) + 1
}

// At returns frequency i. Multiplication (not repeated addition) keeps every
// rank's value for index i bit-identical.
func (r Range) At(i int) float64 {
	return r.Begin + float64(i)*r.Step
}

// Frequencies returns all points in ascending order.
func (r Range) Frequencies() []float64 {
	return r.Slice(Chunk{Start: 0, Len: r.Points()})
}

// Slice returns the frequencies of chunk c.
func (r Range) Slice(c Chunk) []float64 {
	out := make([]float64, c.Len)
	for k := range out {
		out[k] = r.At(c.Start + k)
	}

	return out
}

// Partition splits total points over workers ranks.
// MAIN DESCRIPTION:
//   - base = total/workers; ranks [0, total%workers) receive base+1.
//   - Start of rank r is the sum of the lengths of ranks [0, r).
//
// Errors: ErrInvalidPartition when workers < 1 or total < 0.
// Complexity: Time O(workers), Space O(workers).
func Partition(total, workers int) ([]Chunk, error) {
	if workers < 1 || total < 0 {
		return nil, fmt.Errorf("Partition(%d,%d): %w", total, workers, ErrInvalidPartition)
	}
	base, extra := total/workers, total%workers
	out := make([]Chunk, workers)
	start := 0
	for rank := range out {
		n := base
		if rank < extra {
			n++
		}
		out[rank] = Chunk{Rank: rank, Start: start, Len: n}
		start += n
	}

	return out, nil
}

// Assign validates r, then partitions its points over workers ranks.
func Assign(r Range, workers int) ([]Chunk, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	return Partition(r.Points(), workers)
}
