// SPDX-License-Identifier: MIT

package cluster

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/katalvlaran/dielectric/aggregate"
	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/jobs"
	"github.com/katalvlaran/dielectric/matrix"
	"github.com/katalvlaran/dielectric/matrixio"
	"github.com/katalvlaran/dielectric/response"
)

// Package is everything rank 0 broadcasts: the run parameters and the
// read-only system every rank evaluates.
type Package[T backend.Scalar] struct {
	RunID       uuid.UUID
	Range       jobs.Range
	Broadening  float64
	Prefactor   complex128
	Occupations response.Occupations // nil: unweighted pairs
	Energies    []float64
	Psi         *matrix.Dense[T]
	Coupling    *matrix.Dense[T]
}

type packageHeader struct {
	RunID            uuid.UUID
	Begin, End, Step float64
	Broadening       float64
	PrefRe, PrefIm   float64
	HasOccupations   uint8
}

// MarshalBinary encodes the package: a fixed header followed by the energy
// column, the optional occupation column, Ψ and V in matrixio binary layout.
func (p *Package[T]) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	h := packageHeader{
		RunID:      p.RunID,
		Begin:      p.Range.Begin,
		End:        p.Range.End,
		Step:       p.Range.Step,
		Broadening: p.Broadening,
		PrefRe:     real(p.Prefactor),
		PrefIm:     imag(p.Prefactor),
	}
	if p.Occupations != nil {
		h.HasOccupations = 1
	}
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("Package.MarshalBinary: %w", err)
	}
	if err := writeColumn(&buf, p.Energies); err != nil {
		return nil, fmt.Errorf("Package.MarshalBinary: energies: %w", err)
	}
	if p.Occupations != nil {
		if err := writeColumn(&buf, p.Occupations); err != nil {
			return nil, fmt.Errorf("Package.MarshalBinary: occupations: %w", err)
		}
	}
	if err := matrixio.WriteBinary(&buf, p.Psi); err != nil {
		return nil, fmt.Errorf("Package.MarshalBinary: psi: %w", err)
	}
	if err := matrixio.WriteBinary(&buf, p.Coupling); err != nil {
		return nil, fmt.Errorf("Package.MarshalBinary: coupling: %w", err)
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a payload produced by MarshalBinary.
func (p *Package[T]) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	var h packageHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("Package.UnmarshalBinary: %v: %w", err, ErrProtocol)
	}
	out := Package[T]{
		RunID:      h.RunID,
		Range:      jobs.Range{Begin: h.Begin, End: h.End, Step: h.Step},
		Broadening: h.Broadening,
		Prefactor:  complex(h.PrefRe, h.PrefIm),
	}
	var err error
	if out.Energies, err = readColumn(r); err != nil {
		return fmt.Errorf("Package.UnmarshalBinary: energies: %w", err)
	}
	if h.HasOccupations != 0 {
		if out.Occupations, err = readColumn(r); err != nil {
			return fmt.Errorf("Package.UnmarshalBinary: occupations: %w", err)
		}
	}
	if out.Psi, err = matrixio.ReadBinary[T](r); err != nil {
		return fmt.Errorf("Package.UnmarshalBinary: psi: %w", err)
	}
	if out.Coupling, err = matrixio.ReadBinary[T](r); err != nil {
		return fmt.Errorf("Package.UnmarshalBinary: coupling: %w", err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("Package.UnmarshalBinary: %d trailing bytes: %w", r.Len(), ErrProtocol)
	}
	*p = out

	return nil
}

func writeColumn(buf *bytes.Buffer, v []float64) error {
	m, err := matrix.NewDense(len(v), 1, matrix.WithData(v))
	if err != nil {
		return err
	}

	return matrixio.WriteBinary(buf, m)
}

func readColumn(r *bytes.Reader) ([]float64, error) {
	m, err := matrixio.ReadBinary[float64](r)
	if err != nil {
		return nil, err
	}

	return matrix.Vector(m)
}

// encodeSamples packs samples as a uint32 count followed by
// (frequency, re, im) float64 triples, little-endian.
func encodeSamples(samples []aggregate.Sample) []byte {
	buf := make([]byte, 4+24*len(samples))
	binary.LittleEndian.PutUint32(buf, uint32(len(samples)))
	off := 4
	for _, s := range samples {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(s.Frequency))
		binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(real(s.Value)))
		binary.LittleEndian.PutUint64(buf[off+16:], math.Float64bits(imag(s.Value)))
		off += 24
	}

	return buf
}

func decodeSamples(buf []byte) ([]aggregate.Sample, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("samples: %d bytes: %w", len(buf), ErrProtocol)
	}
	n := int(binary.LittleEndian.Uint32(buf))
	if len(buf) != 4+24*n {
		return nil, fmt.Errorf("samples: %d bytes for %d samples: %w", len(buf), n, ErrProtocol)
	}
	out := make([]aggregate.Sample, n)
	off := 4
	for i := range out {
		f := math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
		re := math.Float64frombits(binary.LittleEndian.Uint64(buf[off+8:]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(buf[off+16:]))
		out[i] = aggregate.Sample{Frequency: f, Value: complex(re, im)}
		off += 24
	}

	return out, nil
}

// encodeFailure packs "<kind>\n<message>".
func encodeFailure(err error) []byte {
	if err == nil {
		return []byte("\nunknown failure")
	}

	return []byte(kindOf(err) + "\n" + err.Error())
}

func decodeFailure(b []byte) error {
	kind, msg, ok := strings.Cut(string(b), "\n")
	if !ok {
		return remote("", string(b))
	}

	return remote(kind, msg)
}
