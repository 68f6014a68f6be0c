// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"

	"github.com/katalvlaran/dielectric/backend"
)

// View is a strided window (offset, stride, length) over a flat buffer.
// It is a small value type: copying a View never copies elements, and writes
// through Set are visible in the owning Dense.
//
// Invariant: offset >= 0, stride >= 1 and, for length > 0,
// offset + (length-1)*stride < len(buf). Views never reach past their buffer.
type View[T backend.Scalar] struct {
	buf    []T
	off    int
	stride int
	n      int
	k      backend.Kernels[T]
}

// NewView validates and builds a view over buf using the default binding for T.
// Errors: ErrBadView.
func NewView[T backend.Scalar](buf []T, offset, stride, length int) (View[T], error) {
	if offset < 0 || stride < 1 || length < 0 {
		return View[T]{}, fmt.Errorf("NewView(%d,%d,%d): %w", offset, stride, length, ErrBadView)
	}
	if length > 0 && offset+(length-1)*stride >= len(buf) {
		return View[T]{}, fmt.Errorf("NewView(%d,%d,%d) over %d: %w", offset, stride, length, len(buf), ErrBadView)
	}

	return View[T]{buf: buf, off: offset, stride: stride, n: length, k: backend.For[T]()}, nil
}

// Len returns the number of addressable elements.
func (v View[T]) Len() int { return v.n }

// Offset returns the index of element 0 in the underlying buffer.
func (v View[T]) Offset() int { return v.off }

// Stride returns the distance between consecutive elements.
func (v View[T]) Stride() int { return v.stride }

// At reads element k or returns ErrOutOfRange.
func (v View[T]) At(k int) (T, error) {
	if k < 0 || k >= v.n {
		var zero T

		return zero, fmt.Errorf("View.At(%d): %w", k, ErrOutOfRange)
	}

	return v.buf[v.off+k*v.stride], nil
}

// Set writes element k or returns ErrOutOfRange.
func (v View[T]) Set(k int, val T) error {
	if k < 0 || k >= v.n {
		return fmt.Errorf("View.Set(%d): %w", k, ErrOutOfRange)
	}
	v.buf[v.off+k*v.stride] = val

	return nil
}

// Slice copies the view into a fresh contiguous slice.
func (v View[T]) Slice() []T {
	out := make([]T, v.n)
	for i := 0; i < v.n; i++ {
		out[i] = v.buf[v.off+i*v.stride]
	}

	return out
}

// vector returns the kernel-facing (x, incX) pair.
func (v View[T]) vector() ([]T, int) {
	if v.n == 0 {
		return nil, v.stride
	}

	return v.buf[v.off:], v.stride
}
