// Package convert implements the vertex converter stack (component C):
// clip, geometry transform, affine transform, simplify, smooth, offset,
// dash, and stroke, each a stream-to-stream transformer over
// vertex.Stream. Ordering between converters is fixed by the symbolizer
// dispatch table (spec.md §4.H), not by this package.
package convert

import "math"

// Matrix is a 2x3 affine transform in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// representing x' = a*x + b*y + c, y' = d*x + e*y + f. Grounded on the
// teacher's matrix.go, kept field-for-field identical.
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix{A: 1, E: 1}

func Translate(x, y float64) Matrix { return Matrix{A: 1, C: x, E: 1, F: y} }

func ScaleMatrix(x, y float64) Matrix { return Matrix{A: x, E: y} }

func Rotate(angle float64) Matrix {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return Matrix{A: cos, B: -sin, D: sin, E: cos}
}

// Multiply composes m then other (m * other).
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		A: m.A*o.A + m.B*o.D,
		B: m.A*o.B + m.B*o.E,
		C: m.A*o.C + m.B*o.F + m.C,
		D: m.D*o.A + m.E*o.D,
		E: m.D*o.B + m.E*o.E,
		F: m.D*o.C + m.E*o.F + m.F,
	}
}

// Apply transforms point (x, y) by m.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// ApplyVector transforms a vector (x, y) by m, ignoring translation.
func (m Matrix) ApplyVector(x, y float64) (float64, float64) {
	return m.A*x + m.B*y, m.D*x + m.E*y
}

// Invert returns m's inverse, or Identity if m is singular.
func (m Matrix) Invert() Matrix {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-10 {
		return Identity
	}
	inv := 1.0 / det
	return Matrix{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}
}

// IsIdentity reports whether m is exactly the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == Identity
}
