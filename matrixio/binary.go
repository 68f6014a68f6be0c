// SPDX-License-Identifier: MIT

// Package matrixio reads and writes matrix.Dense values.
//
// Binary layout (little-endian):
//
//	offset size  field
//	0      4     magic "RSPM"
//	4      2     format major
//	6      2     format minor
//	8      2     format patch
//	10     1     element kind (1 float32, 2 float64, 3 complex64, 4 complex128)
//	11     8     rows
//	19     8     cols
//	27     ...   rows*cols elements, row-major; complex as (re, im)
//
// A reader accepts any format version matching FormatConstraint. Binary
// round trips are bit-exact.
//
// Text layout: one matrix row per line, elements separated by whitespace,
// blank lines and '#' comments ignored. Reals use the shortest exact
// representation, complex values the "(re+imi)" form.
package matrixio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/matrix"
)

// Magic opens every binary matrix stream.
const Magic = "RSPM"

const (
	// FormatVersion is written into every binary header.
	FormatVersion = "1.0.0"

	// FormatConstraint selects the header versions this reader understands.
	FormatConstraint = "^1"
)

// maxElements bounds rows*cols read from an untrusted header.
const maxElements = 1 << 31

// readBlock is the number of elements decoded per read; storage grows with
// the data actually present, not with the header's claim.
const readBlock = 1 << 16

var (
	formatVersion    = semver.MustParse(FormatVersion)
	formatConstraint = mustConstraint(FormatConstraint)
)

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}

	return c
}

type header struct {
	Magic               [4]byte
	Major, Minor, Patch uint16
	Kind                uint8
	Rows, Cols          uint64
}

// Header describes a binary stream without its payload.
type Header struct {
	Version *semver.Version
	Kind    backend.Kind
	Rows    int
	Cols    int
}

// WriteBinary encodes m in the binary layout.
func WriteBinary[T backend.Scalar](w io.Writer, m *matrix.Dense[T]) error {
	if err := matrix.ValidateNotNil(m); err != nil {
		return fmt.Errorf("WriteBinary: %w", err)
	}
	h := header{
		Major: uint16(formatVersion.Major()),
		Minor: uint16(formatVersion.Minor()),
		Patch: uint16(formatVersion.Patch()),
		Kind:  uint8(backend.KindOf[T]()),
		Rows:  uint64(m.Rows()),
		Cols:  uint64(m.Cols()),
	}
	copy(h.Magic[:], Magic)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("WriteBinary: header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, m.Raw()); err != nil {
		return fmt.Errorf("WriteBinary: data: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteBinary: %w", err)
	}

	return nil
}

// ReadHeader decodes and checks a binary header.
//
// Errors:
//   - ErrFormat for a bad magic, unsupported version or invalid shape.
//   - ErrElementType for an unknown element kind.
func ReadHeader(r io.Reader) (Header, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, fmt.Errorf("ReadHeader: %v: %w", err, ErrFormat)
	}
	if string(h.Magic[:]) != Magic {
		return Header{}, fmt.Errorf("ReadHeader: magic %q: %w", h.Magic[:], ErrFormat)
	}
	v := semver.New(uint64(h.Major), uint64(h.Minor), uint64(h.Patch), "", "")
	if !formatConstraint.Check(v) {
		return Header{}, fmt.Errorf("ReadHeader: version %s not %s: %w", v, FormatConstraint, ErrFormat)
	}
	kind := backend.Kind(h.Kind)
	if kind.Size() == 0 {
		return Header{}, fmt.Errorf("ReadHeader: kind %d: %w", h.Kind, ErrElementType)
	}
	if h.Rows == 0 || h.Cols == 0 || h.Rows > maxElements || h.Cols > maxElements || h.Rows*h.Cols > maxElements {
		return Header{}, fmt.Errorf("ReadHeader: shape %dx%d: %w", h.Rows, h.Cols, ErrFormat)
	}

	return Header{Version: v, Kind: kind, Rows: int(h.Rows), Cols: int(h.Cols)}, nil
}

// ReadBinary decodes a binary stream into a matrix of element type T.
// A stored kind that widens exactly into T (float32 → float64, any real →
// complex of at least its precision, complex64 → complex128) is converted;
// any other mismatch is ErrElementType.
func ReadBinary[T backend.Scalar](r io.Reader, opts ...matrix.Option[T]) (*matrix.Dense[T], error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	want := backend.KindOf[T]()
	if !widens(h.Kind, want) {
		return nil, fmt.Errorf("ReadBinary: stored %s, want %s: %w", h.Kind, want, ErrElementType)
	}

	switch h.Kind {
	case backend.KindFloat32:
		return readAs[float32, T](r, h, opts)
	case backend.KindFloat64:
		return readAs[float64, T](r, h, opts)
	case backend.KindComplex64:
		return readAs[complex64, T](r, h, opts)
	default:
		return readAs[complex128, T](r, h, opts)
	}
}

func readAs[S, T backend.Scalar](r io.Reader, h Header, opts []matrix.Option[T]) (*matrix.Dense[T], error) {
	total := h.Rows * h.Cols
	data := make([]S, 0, min(total, readBlock))
	block := make([]S, min(total, readBlock))
	for len(data) < total {
		buf := block[:min(total-len(data), readBlock)]
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, fmt.Errorf("ReadBinary: data: %d of %d elements: %v: %w", len(data), total, err, ErrFormat)
		}
		data = append(data, buf...)
	}
	src, err := matrix.NewDense(h.Rows, h.Cols, matrix.WithData(data), matrix.WithNoValidateNaNInf[S]())
	if err != nil {
		return nil, fmt.Errorf("ReadBinary: %w", err)
	}
	if dst, ok := any(src).(*matrix.Dense[T]); ok && len(opts) == 0 {
		return dst, nil
	}
	out, err := matrix.Convert[T](src, opts...)
	if err != nil {
		return nil, fmt.Errorf("ReadBinary: %w", err)
	}

	return out, nil
}

// widens reports whether every value of kind from is exactly representable in to.
func widens(from, to backend.Kind) bool {
	switch from {
	case to:
		return true
	case backend.KindFloat32:
		return to == backend.KindFloat64 || to == backend.KindComplex64 || to == backend.KindComplex128
	case backend.KindFloat64, backend.KindComplex64:
		return to == backend.KindComplex128
	default:
		return false
	}
}
