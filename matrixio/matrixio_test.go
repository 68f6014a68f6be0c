// SPDX-License-Identifier: MIT
package matrixio_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/matrix"
	"github.com/katalvlaran/dielectric/matrixio"
)

func randomDense[T backend.Scalar](t *testing.T, seed int64, r, c int) *matrix.Dense[T] {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]T, r*c)
	for i := range data {
		// Wide exponent spread exercises the shortest-representation path.
		scale := math.Pow(10, float64(rng.Intn(40)-20))
		data[i] = backend.FromComplex[T](complex(rng.NormFloat64()*scale, rng.NormFloat64()*scale))
	}
	m, err := matrix.NewDense(r, c, matrix.WithData(data))
	require.NoError(t, err)

	return m
}

func TestRoundTrip(t *testing.T) {
	t.Run("float32", func(t *testing.T) { checkRoundTrip[float32](t) })
	t.Run("float64", func(t *testing.T) { checkRoundTrip[float64](t) })
	t.Run("complex64", func(t *testing.T) { checkRoundTrip[complex64](t) })
	t.Run("complex128", func(t *testing.T) { checkRoundTrip[complex128](t) })
}

func checkRoundTrip[T backend.Scalar](t *testing.T) {
	m := randomDense[T](t, 3, 4, 5)

	var bin bytes.Buffer
	require.NoError(t, matrixio.WriteBinary(&bin, m))
	assert.Equal(t, 27+20*backend.KindOf[T]().Size(), bin.Len())
	back, err := matrixio.ReadBinary[T](&bin)
	require.NoError(t, err)
	assert.Equal(t, m.Raw(), back.Raw(), "binary is bit-exact")

	var txt bytes.Buffer
	require.NoError(t, matrixio.WriteText(&txt, m))
	fromText, err := matrixio.ReadText[T](&txt)
	require.NoError(t, err)
	assert.Equal(t, m.Raw(), fromText.Raw(), "shortest representation round-trips")
}

func TestHeader(t *testing.T) {
	m, err := matrix.NewIdentity[complex64](3)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, matrixio.WriteBinary(&buf, m))
	assert.Equal(t, matrixio.Magic, buf.String()[:4])

	h, err := matrixio.ReadHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, backend.KindComplex64, h.Kind)
	assert.Equal(t, 3, h.Rows)
	assert.Equal(t, 3, h.Cols)
	assert.Equal(t, matrixio.FormatVersion, h.Version.String())
}

func TestBinaryRejects(t *testing.T) {
	m, err := matrix.NewIdentity[float64](2)
	require.NoError(t, err)
	var good bytes.Buffer
	require.NoError(t, matrixio.WriteBinary(&good, m))

	mutate := func(off int, b ...byte) []byte {
		out := append([]byte(nil), good.Bytes()...)
		copy(out[off:], b)

		return out
	}
	major2 := make([]byte, 2)
	binary.LittleEndian.PutUint16(major2, 2)

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"magic", mutate(0, 'X'), matrixio.ErrFormat},
		{"version", mutate(4, major2...), matrixio.ErrFormat},
		{"kind", mutate(10, 9), matrixio.ErrElementType},
		{"zero-rows", mutate(11, 0, 0, 0, 0, 0, 0, 0, 0), matrixio.ErrFormat},
		{"truncated", good.Bytes()[:good.Len()-3], matrixio.ErrFormat},
		{"empty", nil, matrixio.ErrFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := matrixio.ReadBinary[float64](bytes.NewReader(tc.data))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// A header claiming a huge shape over a short payload fails without
// allocating the claimed size.
func TestBinaryOversizedHeaderFailsCheaply(t *testing.T) {
	m, err := matrix.NewIdentity[complex128](2)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, matrixio.WriteBinary(&buf, m))
	data := buf.Bytes()
	binary.LittleEndian.PutUint64(data[11:], 1<<15)
	binary.LittleEndian.PutUint64(data[19:], 1<<15) // 2^30 elements, 16 GiB

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = matrixio.ReadBinary[complex128](bytes.NewReader(data))
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, matrixio.ErrFormat)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
}

// Payloads larger than one read block still round-trip exactly.
func TestBinaryMultiBlockRoundTrip(t *testing.T) {
	m := randomDense[float32](t, 7, 300, 301)
	var buf bytes.Buffer
	require.NoError(t, matrixio.WriteBinary(&buf, m))

	got, err := matrixio.ReadBinary[complex128](bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	want, err := matrix.Convert[complex128](m)
	require.NoError(t, err)
	assert.Equal(t, want.Raw(), got.Raw())
}

func TestBinaryMinorVersionAccepted(t *testing.T) {
	m, err := matrix.NewIdentity[float64](1)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, matrixio.WriteBinary(&buf, m))
	data := buf.Bytes()
	binary.LittleEndian.PutUint16(data[6:], 7) // 1.7.0

	h, err := matrixio.ReadHeader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "1.7.0", h.Version.String())
}

func TestBinaryWidening(t *testing.T) {
	m, err := matrix.NewDense(1, 2, matrix.WithData([]float32{0.1, -2}))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, matrixio.WriteBinary(&buf, m))
	raw := buf.Bytes()

	c, err := matrixio.ReadBinary[complex128](bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []complex128{complex(float64(float32(0.1)), 0), -2}, c.Raw())

	var narrow bytes.Buffer
	wide, err := matrix.NewDense(1, 1, matrix.WithData([]complex128{1i}))
	require.NoError(t, err)
	require.NoError(t, matrixio.WriteBinary(&narrow, wide))
	_, err = matrixio.ReadBinary[float64](&narrow)
	assert.ErrorIs(t, err, matrixio.ErrElementType)
}

func TestReadTextLayout(t *testing.T) {
	in := `
# energies and friends
1   2 3   # trailing comment

4 5e-1 -6
`
	m, err := matrixio.ReadText[float64](strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, []float64{1, 2, 3, 4, 0.5, -6}, m.Raw())

	c, err := matrixio.ReadText[complex128](strings.NewReader("(1+2i) 3\n-1i 0\n"))
	require.NoError(t, err)
	assert.Equal(t, []complex128{1 + 2i, 3, -1i, 0}, c.Raw())

	for name, text := range map[string]string{
		"ragged":       "1 2\n3\n",
		"not-a-number": "1 x\n",
		"empty":        "# nothing\n",
		"complex-real": "(1+2i)\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := matrixio.ReadText[float64](strings.NewReader(text))
			assert.ErrorIs(t, err, matrixio.ErrFormat)
		})
	}
}

func TestLoadSaveDetectsFormat(t *testing.T) {
	dir := t.TempDir()
	m := randomDense[complex128](t, 9, 2, 3)

	for _, f := range []matrixio.Format{matrixio.FormatBinary, matrixio.FormatText} {
		t.Run(f.String(), func(t *testing.T) {
			path := filepath.Join(dir, "m."+f.String())
			require.NoError(t, matrixio.Save(path, m, f))
			back, err := matrixio.Load[complex128](path)
			require.NoError(t, err)
			assert.Equal(t, m.Raw(), back.Raw())
		})
	}

	_, err := matrixio.Load[float64](filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]matrixio.Format{
		"":       matrixio.FormatAuto,
		"Binary": matrixio.FormatBinary,
		"txt":    matrixio.FormatText,
	} {
		got, err := matrixio.ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := matrixio.ParseFormat("xml")
	assert.ErrorIs(t, err, matrixio.ErrFormat)
}
