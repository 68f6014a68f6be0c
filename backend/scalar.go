// SPDX-License-Identifier: MIT

// Package backend - numeric trait over the supported element types.
//
// Purpose:
//   - Close the set of element types every kernel, matrix and codec supports.
//   - Give generic code a single place to ask "is this complex?", "what is |x|?",
//     "what is conj(x)?" without scattering type switches.
//
// Notes:
//   - The constraint is exact (no ~ tilde): type switches over any(v) must see
//     the concrete type, and the wire codecs tag elements by Kind.
package backend

import (
	"math"
	"math/cmplx"
)

// Scalar is the closed set of element types supported by the engine.
type Scalar interface {
	float32 | float64 | complex64 | complex128
}

// Complex is the complex subset of Scalar.
type Complex interface {
	complex64 | complex128
}

// Kind tags an element type. Values are part of the binary matrix format;
// never renumber them.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
)

// String returns the Go spelling of the element type.
func (k Kind) String() string {
	switch k {
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindComplex64:
		return "complex64"
	case KindComplex128:
		return "complex128"
	default:
		return "invalid"
	}
}

// Size returns the encoded size of one element in bytes.
func (k Kind) Size() int {
	switch k {
	case KindFloat32:
		return 4
	case KindFloat64, KindComplex64:
		return 8
	case KindComplex128:
		return 16
	default:
		return 0
	}
}

// kindAliases are the short element names accepted besides the Go spelling.
var kindAliases = map[string]Kind{
	"float":   KindFloat32,
	"double":  KindFloat64,
	"cfloat":  KindComplex64,
	"cdouble": KindComplex128,
}

// ParseKind maps a Go type spelling ("float64", "complex128", ...) or one of
// float, double, cfloat, cdouble to a Kind.
func ParseKind(s string) (Kind, bool) {
	if k, ok := kindAliases[s]; ok {
		return k, true
	}
	for _, k := range []Kind{KindFloat32, KindFloat64, KindComplex64, KindComplex128} {
		if k.String() == s {
			return k, true
		}
	}

	return KindInvalid, false
}

// KindOf reports the Kind of T.
func KindOf[T Scalar]() Kind {
	var zero T
	switch any(zero).(type) {
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case complex64:
		return KindComplex64
	case complex128:
		return KindComplex128
	}

	return KindInvalid
}

// IsComplex reports whether T is a complex type.
func IsComplex[T Scalar]() bool {
	k := KindOf[T]()

	return k == KindComplex64 || k == KindComplex128
}

// ToComplex widens v to complex128.
func ToComplex[T Scalar](v T) complex128 {
	switch x := any(v).(type) {
	case float32:
		return complex(float64(x), 0)
	case float64:
		return complex(x, 0)
	case complex64:
		return complex128(x)
	case complex128:
		return x
	}

	return 0
}

// FromComplex narrows z to T. For real T the imaginary part is dropped.
func FromComplex[T Scalar](z complex128) T {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		*p = float32(real(z))
	case *float64:
		*p = real(z)
	case *complex64:
		*p = complex64(z)
	case *complex128:
		*p = z
	}

	return out
}

// FromFloat converts a real number to T.
func FromFloat[T Scalar](f float64) T {
	return FromComplex[T](complex(f, 0))
}

// Conj returns the complex conjugate of v (identity for real T).
func Conj[T Scalar](v T) T {
	switch x := any(v).(type) {
	case complex64:
		return any(complex(real(x), -imag(x))).(T)
	case complex128:
		return any(cmplx.Conj(x)).(T)
	}

	return v
}

// Abs returns |v| as float64.
func Abs[T Scalar](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return math.Abs(float64(x))
	case float64:
		return math.Abs(x)
	case complex64:
		return cmplx.Abs(complex128(x))
	case complex128:
		return cmplx.Abs(x)
	}

	return 0
}

// Abs2 returns |v|² without the square root.
func Abs2[T Scalar](v T) float64 {
	z := ToComplex(v)

	return real(z)*real(z) + imag(z)*imag(z)
}

// IsFinite reports whether every component of v is finite.
func IsFinite[T Scalar](v T) bool {
	z := ToComplex(v)
	re, im := real(z), imag(z)

	return !math.IsNaN(re) && !math.IsInf(re, 0) && !math.IsNaN(im) && !math.IsInf(im, 0)
}
