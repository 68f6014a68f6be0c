// SPDX-License-Identifier: MIT

package aggregate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TableHeader is the comment line written before the samples.
const TableHeader = "# frequency\treal\timag"

var (
	// ErrNotAscending indicates samples out of frequency order.
	ErrNotAscending = errors.New("aggregate: frequencies not ascending")

	// ErrTableFormat indicates a malformed table line.
	ErrTableFormat = errors.New("aggregate: malformed table")
)

// WriteTable writes one "frequency\treal\timag" row per sample using %.17g,
// which round-trips float64 exactly. Samples must ascend by frequency.
func WriteTable(w io.Writer, samples []Sample) error {
	for i := 1; i < len(samples); i++ {
		if samples[i].Frequency < samples[i-1].Frequency {
			return fmt.Errorf("WriteTable: row %d: %w", i, ErrNotAscending)
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, TableHeader); err != nil {
		return fmt.Errorf("WriteTable: %w", err)
	}
	for _, s := range samples {
		if _, err := fmt.Fprintf(bw, "%.17g\t%.17g\t%.17g\n", s.Frequency, real(s.Value), imag(s.Value)); err != nil {
			return fmt.Errorf("WriteTable: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteTable: %w", err)
	}

	return nil
}

// ReadTable parses a table written by WriteTable. Blank lines and lines
// starting with '#' are skipped; any whitespace separates columns.
func ReadTable(r io.Reader) ([]Sample, error) {
	var out []Sample
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("ReadTable: line %d: %d columns: %w", line, len(fields), ErrTableFormat)
		}
		var v [3]float64
		for k, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("ReadTable: line %d: %v: %w", line, err, ErrTableFormat)
			}
			v[k] = x
		}
		out = append(out, Sample{Frequency: v[0], Value: complex(v[1], v[2])})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ReadTable: %w", err)
	}

	return out, nil
}
