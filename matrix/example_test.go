// SPDX-License-Identifier: MIT
package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/dielectric/matrix"
)

// ExampleMul multiplies a real matrix by the identity.
func ExampleMul() {
	a, _ := matrix.NewDense(2, 2, matrix.WithData([]float64{1, 2, 3, 4}))
	id, _ := matrix.NewIdentity[float64](2)

	p, _ := matrix.Mul(a, id)
	fmt.Println(p.Raw())
	// Output: [1 2 3 4]
}

// ExampleDot projects one column onto another; the first argument is
// conjugated.
func ExampleDot() {
	m, _ := matrix.NewDense(2, 2, matrix.WithData([]complex128{
		1 + 1i, 1,
		2, 1,
	}))
	x, _ := m.Col(0)
	y, _ := m.Col(1)

	d, _ := matrix.Dot(x, y)
	fmt.Println(d)
	// Output: (3-1i)
}

// ExampleConvert widens a real matrix to complex and takes its adjoint;
// conjugation flips the sign of a zero imaginary part.
func ExampleConvert() {
	r, _ := matrix.NewDense(1, 2, matrix.WithData([]float32{0.5, -2}))
	c, _ := matrix.Convert[complex128](r)
	_ = c.Set(0, 1, -2+1i)

	h, _ := matrix.Adjoint(c)
	fmt.Println(h.Rows(), h.Cols(), h.Raw())
	// Output: 2 1 [(0.5-0i) (-2-1i)]
}
