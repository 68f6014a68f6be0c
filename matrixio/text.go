// SPDX-License-Identifier: MIT

package matrixio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/matrix"
)

// WriteText writes m one row per line with a leading "# <kind> <rows>x<cols>" comment.
func WriteText[T backend.Scalar](w io.Writer, m *matrix.Dense[T]) error {
	if err := matrix.ValidateNotNil(m); err != nil {
		return fmt.Errorf("WriteText: %w", err)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s %dx%d\n", backend.KindOf[T](), m.Rows(), m.Cols())
	raw := m.Raw()
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(formatElem(raw[i*m.Cols()+j]))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteText: %w", err)
	}

	return nil
}

func formatElem[T backend.Scalar](v T) string {
	switch x := any(v).(type) {
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case complex64:
		return strconv.FormatComplex(complex128(x), 'g', -1, 64)
	case complex128:
		return strconv.FormatComplex(x, 'g', -1, 128)
	}

	return ""
}

func parseElem[T backend.Scalar](s string) (T, error) {
	var zero T
	switch any(zero).(type) {
	case float32:
		f, err := strconv.ParseFloat(s, 32)

		return backend.FromFloat[T](f), err
	case float64:
		f, err := strconv.ParseFloat(s, 64)

		return backend.FromFloat[T](f), err
	case complex64:
		c, err := strconv.ParseComplex(s, 64)

		return backend.FromComplex[T](c), err
	default:
		c, err := strconv.ParseComplex(s, 128)

		return backend.FromComplex[T](c), err
	}
}

// ReadText parses the text layout. Every row must have the same number of
// columns; an input without rows is ErrFormat.
func ReadText[T backend.Scalar](r io.Reader, opts ...matrix.Option[T]) (*matrix.Dense[T], error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64<<20)
	var (
		data       []T
		rows, cols int
		line       int
	)
	for sc.Scan() {
		line++
		text := sc.Text()
		if k := strings.IndexByte(text, '#'); k >= 0 {
			text = text[:k]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if rows == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, fmt.Errorf("ReadText: line %d: %d columns, want %d: %w", line, len(fields), cols, ErrFormat)
		}
		for _, f := range fields {
			v, err := parseElem[T](f)
			if err != nil {
				return nil, fmt.Errorf("ReadText: line %d: %v: %w", line, err, ErrFormat)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ReadText: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("ReadText: no rows: %w", ErrFormat)
	}

	m, err := matrix.NewDense(rows, cols, append([]matrix.Option[T]{matrix.WithData(data)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("ReadText: %w", err)
	}

	return m, nil
}
