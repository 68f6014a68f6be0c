// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Support no-copy strided views (Row/Col) and copy-based submatrix extraction (Induced).
//   - Enforce a numeric policy (optional rejection of NaN/Inf) from a single source of truth.
//
// AI-Hints:
//   - Hot algebra goes through the backend binding carried by the matrix (see impl_linear_algebra.go).
//   - Use Row(i)/Col(j) to hand a row or column to Dot/kernels without copying.
//   - Use Swap to exchange two matrices' storage in O(1) (ping-pong buffers).
//
// Complexity quicksheet:
//   - NewDense: O(r*c); At/Set: O(1); Clone: O(r*c); Row/Col/Swap: O(1); Induced: O(r'*c').

package matrix

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/dielectric/backend"
)

// ---------- error context tags ----------

const (
	ctxAt       = "At"       // method tag used in error wrappers
	ctxSet      = "Set"      // method tag used in error wrappers
	ctxApply    = "Apply"    // method tag used in error wrappers
	ctxRow      = "Row"      // view ctor tag
	ctxCol      = "Col"      // view ctor tag
	ctxInduce   = "Induced"  // ctor/tag for Dense.Induced
	ctxNewDense = "NewDense" // ctor tag
	ctxCopyFrom = "CopyFrom" // method tag
)

// ---------- Formatting literals  ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
//
// Behavior highlights:
//   - Stable, human-friendly messages "Dense.<method>(row,col): <sentinel>"; preserves sentinel via %w.
//
// Complexity:
//   - Time O(1), Space O(1).
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix of element type T.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - k is the kernel binding used by every arithmetic operation on this matrix.
//   - validateNaNInf enables optional NaN/Inf rejection in Set/Apply.
//
// A Dense exclusively owns its buffer; Clone for an independent copy.
type Dense[T backend.Scalar] struct {
	r, c           int                // row and column counts (>0 for public constructors)
	data           []T                // contiguous row-major storage (len == r*c)
	k              backend.Kernels[T] // arithmetic binding
	validateNaNInf bool               // numeric guard: reject NaN/Inf in Set when true
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Shaped       = (*Dense[float64])(nil)
	_ fmt.Stringer = (*Dense[complex128])(nil)
)

// NewDense creates an r×c matrix using row-major storage.
// MAIN DESCRIPTION:
//   - Public constructor with strict shape validation and the default numeric policy.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: resolve options (backend binding, fill value, source data, policy).
//   - Stage 3: allocate; copy WithData (length must be rows*cols) or apply WithFill.
//
// Behavior highlights:
//   - Zero-initialized unless WithFill or WithData is given.
//   - WithData is copied; the caller keeps ownership of its slice.
//   - Under the NaN/Inf policy, non-finite source data is rejected.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//   - ErrDimensionMismatch (WithData length != rows*cols).
//   - ErrNaNInf (non-finite WithData/WithFill under policy).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - matrix.NewDense(2, 2, matrix.WithData([]complex128{...})) infers T from the option.
func NewDense[T backend.Scalar](rows, cols int, opts ...Option[T]) (*Dense[T], error) {
	// Validate shape.
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	o := gatherOptions(opts...)

	// Allocate a contiguous flat buffer; make() zero-fills it deterministically.
	buf := make([]T, rows*cols)
	switch {
	case o.data != nil:
		if len(o.data) != rows*cols {
			return nil, fmt.Errorf("%s: data length %d for %dx%d: %w", ctxNewDense, len(o.data), rows, cols, ErrDimensionMismatch)
		}
		copy(buf, o.data)
	case o.hasFill:
		for i := range buf {
			buf[i] = o.fill
		}
	}
	if o.validateNaNInf {
		for i, v := range buf {
			if !backend.IsFinite(v) {
				return nil, denseErrorf(ctxNewDense, i/cols, i%cols, ErrNaNInf)
			}
		}
	}

	return &Dense[T]{
		r:              rows,
		c:              cols,
		data:           buf,
		k:              o.kernels,
		validateNaNInf: o.validateNaNInf,
	}, nil
}

// Rows returns the row count. No side effects.
// Complexity: O(1).
func (m *Dense[T]) Rows() int { return m.r }

// Cols returns the column count. No side effects.
// Complexity: O(1).
func (m *Dense[T]) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
// Complexity: O(1).
func (m *Dense[T]) Shape() (rows, cols int) { return m.r, m.c }

// Kernels returns the arithmetic binding of m.
func (m *Dense[T]) Kernels() backend.Kernels[T] { return m.k }

// Raw exposes the row-major backing buffer (len == Rows*Cols).
// Writes through the slice bypass the NaN/Inf policy; intended for codecs
// and kernel callers that validate on their own.
func (m *Dense[T]) Raw() []T { return m.data }

// indexOf computes the row-major offset or returns ErrOutOfRange.
// The sentinel is returned bare; At/Set wrap it with coordinates.
// Complexity: O(1).
func (m *Dense[T]) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
//
// Behavior highlights:
//   - Never panics on out-of-range; returns sentinel error.
//
// Complexity:
//   - Time O(1), Space O(1).
func (m *Dense[T]) At(row, col int) (T, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		var zero T

		return zero, denseErrorf(ctxAt, row, col, err) // wrap with context
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
// MAIN DESCRIPTION:
//   - Safe element write with optional finite-only policy.
//
// Implementation:
//   - Stage 1: compute offset via indexOf (bounds check).
//   - Stage 2: enforce numeric policy (reject NaN/±Inf components when enabled).
//   - Stage 3: write into flat buffer.
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for invalid numbers.
//
// Complexity:
//   - Time O(1), Space O(1).
func (m *Dense[T]) Set(row, col int, v T) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err) // wrap with context
	}
	if m.validateNaNInf && !backend.IsFinite(v) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v // direct flat write

	return nil
}

// Clone returns a deep copy (new buffer, same binding and numeric policy).
// Complexity: O(r*c).
func (m *Dense[T]) Clone() *Dense[T] {
	cp := make([]T, len(m.data))
	copy(cp, m.data)

	return &Dense[T]{
		r:              m.r,
		c:              m.c,
		data:           cp,
		k:              m.k,
		validateNaNInf: m.validateNaNInf, // preserve guard policy
	}
}

// CopyFrom overwrites m with the elements of src (same shape required).
// Complexity: O(r*c).
func (m *Dense[T]) CopyFrom(src *Dense[T]) error {
	if src == nil {
		return fmt.Errorf("Dense.%s: %w", ctxCopyFrom, ErrNilMatrix)
	}
	if err := ValidateSameShape(m, src); err != nil {
		return fmt.Errorf("Dense.%s: %w", ctxCopyFrom, err)
	}
	copy(m.data, src.data)

	return nil
}

// Fill sets every element to v, honoring the numeric policy.
func (m *Dense[T]) Fill(v T) error {
	if m.validateNaNInf && !backend.IsFinite(v) {
		return denseErrorf(ctxSet, 0, 0, ErrNaNInf)
	}
	for i := range m.data {
		m.data[i] = v
	}

	return nil
}

// Swap exchanges the storage, shape, binding and policy of m and o in O(1).
// Existing views keep pointing at the buffer they were created over.
func (m *Dense[T]) Swap(o *Dense[T]) {
	*m, *o = *o, *m
}

// String HUMAN-READABLE dump of rows for diagnostics.
// Implementation:
//   - Stage 1: iterate rows/cols deterministically.
//   - Stage 2: write values (%g) into strings.Builder with standard delimiters.
//
// Complexity:
//   - Time O(r*c), Space O(r*c) for formatting.
//
// AI-Hints:
//   - For large matrices prefer printing a few rows/cols or summarize.
func (m *Dense[T]) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ { // iterate rows deterministically
		b.WriteString(_fmtRowOpen) // open row
		base = i * m.c
		for j = 0; j < m.c; j++ { // iterate cols
			fmt.Fprintf(&b, "%g", m.data[base+j])
			if j+1 < m.c {
				b.WriteString(_fmtSep) // separate values with comma + space
			}
		}
		b.WriteString(_fmtRowClose) // close row
	}

	return b.String()
}

// Row returns a no-copy view over row i (offset i*cols, stride 1, length cols).
// Errors: ErrOutOfRange.
// Complexity: O(1).
func (m *Dense[T]) Row(i int) (View[T], error) {
	if i < 0 || i >= m.r {
		return View[T]{}, denseErrorf(ctxRow, i, 0, ErrOutOfRange)
	}

	return View[T]{buf: m.data, off: i * m.c, stride: 1, n: m.c, k: m.k}, nil
}

// Col returns a no-copy view over column j (offset j, stride cols, length rows).
// Errors: ErrOutOfRange.
// Complexity: O(1).
func (m *Dense[T]) Col(j int) (View[T], error) {
	if j < 0 || j >= m.c {
		return View[T]{}, denseErrorf(ctxCol, 0, j, ErrOutOfRange)
	}

	return View[T]{buf: m.data, off: j, stride: m.c, n: m.r, k: m.k}, nil
}

// Induced materializes a copy submatrix using explicit index sets.
// MAIN DESCRIPTION:
//   - Copy rows/cols at the given index lists (duplicates allowed).
//
// Errors:
//   - ErrInvalidDimensions (empty index set), ErrOutOfRange (index outside bounds).
//
// Determinism:
//   - Fixed nested loops i→j.
//
// Complexity:
//   - Time O(rp*cp), Space O(rp*cp).
func (m *Dense[T]) Induced(rowsIdx, colsIdx []int) (*Dense[T], error) {
	rp := len(rowsIdx) // result rows
	cp := len(colsIdx) // result cols
	res, err := NewDense[T](rp, cp, WithBackend(m.k))
	if err != nil {
		return nil, fmt.Errorf("Dense.%s: %w", ctxInduce, err)
	}
	res.validateNaNInf = m.validateNaNInf

	var i, j, ri, cj int
	for i = 0; i < rp; i++ {
		ri = rowsIdx[i]
		if ri < 0 || ri >= m.r {
			return nil, fmt.Errorf("Dense.%s: row index %d: %w", ctxInduce, ri, ErrOutOfRange)
		}
		for j = 0; j < cp; j++ {
			cj = colsIdx[j]
			if cj < 0 || cj >= m.c {
				return nil, fmt.Errorf("Dense.%s: col index %d: %w", ctxInduce, cj, ErrOutOfRange)
			}
			res.data[i*cp+j] = m.data[ri*m.c+cj]
		}
	}

	return res, nil
}

// Do visits each element (i,j) in row-major order and calls f(i,j,v).
// Read-only visitor; stops early when f returns false.
// Complexity: O(r*c), Space O(1).
func (m *Dense[T]) Do(f func(i, j int, v T) bool) {
	var i, j, base int
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			if !f(i, j, m.data[base+j]) {
				return // early exit requested by caller
			}
		}
	}
}

// Apply replaces each element with f(i,j,v) in-place.
// MAIN DESCRIPTION:
//   - In-place map with policy enforcement and deterministic order.
//
// Behavior highlights:
//   - Respects validateNaNInf (rejects NaN/±Inf when enabled).
//   - Early error aborts; elements written before the error remain updated.
//
// Complexity:
//   - Time O(r*c), Space O(1).
func (m *Dense[T]) Apply(f func(i, j int, v T) T) error {
	var i, j, base int
	var nv T
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			nv = f(i, j, m.data[base+j])
			if m.validateNaNInf && !backend.IsFinite(nv) {
				return denseErrorf(ctxApply, i, j, ErrNaNInf)
			}
			m.data[base+j] = nv
		}
	}

	return nil
}
