// SPDX-License-Identifier: MIT

package matrixio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/matrix"
)

var (
	// ErrFormat indicates a malformed or unsupported stream.
	ErrFormat = errors.New("matrixio: bad format")

	// ErrElementType indicates a stored element kind that cannot be read as the requested type.
	ErrElementType = errors.New("matrixio: element type mismatch")
)

// Format selects an encoding.
type Format int

const (
	FormatAuto Format = iota
	FormatBinary
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatBinary:
		return "binary"
	case FormatText:
		return "text"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps "auto", "binary" and "text" (any case) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "binary", "bin":
		return FormatBinary, nil
	case "text", "txt":
		return FormatText, nil
	}

	return FormatAuto, fmt.Errorf("ParseFormat(%q): %w", s, ErrFormat)
}

// Decode reads a matrix, sniffing the magic when f is FormatAuto.
func Decode[T backend.Scalar](r io.Reader, f Format, opts ...matrix.Option[T]) (*matrix.Dense[T], error) {
	br := bufio.NewReader(r)
	if f == FormatAuto {
		f = FormatText
		if p, err := br.Peek(len(Magic)); err == nil && string(p) == Magic {
			f = FormatBinary
		}
	}
	if f == FormatBinary {
		return ReadBinary(br, opts...)
	}

	return ReadText(br, opts...)
}

// Encode writes m in format f. FormatAuto writes binary.
func Encode[T backend.Scalar](w io.Writer, m *matrix.Dense[T], f Format) error {
	if f == FormatText {
		return WriteText(w, m)
	}

	return WriteBinary(w, m)
}

// Load reads the matrix stored at path, detecting the encoding.
func Load[T backend.Scalar](path string, opts ...matrix.Option[T]) (*matrix.Dense[T], error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	defer fh.Close()

	m, err := Decode(fh, FormatAuto, opts...)
	if err != nil {
		return nil, fmt.Errorf("Load %s: %w", path, err)
	}

	return m, nil
}

// Save writes m to path in format f, replacing any existing file.
func Save[T backend.Scalar](path string, m *matrix.Dense[T], f Format) (err error) {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	defer func() {
		if cerr := fh.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("Save: %w", cerr)
		}
	}()

	if err = Encode(fh, m, f); err != nil {
		return fmt.Errorf("Save %s: %w", path, err)
	}

	return nil
}
