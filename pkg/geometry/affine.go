package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Affine is a 2D affine transform. A point (x, y) maps to
// (A*x + C*y + E, B*x + D*y + F).
type Affine struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

// Rotation rotates counter-clockwise by angle radians.
func Rotation(angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{
		A: cos, C: -sin, E: 0,
		B: sin, D: cos, F: 0,
	}
}

func Translation(v Vector2) Affine {
	return Affine{
		A: 1, C: 0, E: v.X,
		B: 0, D: 1, F: v.Y,
	}
}

func Scaling(f float64) Affine {
	return Affine{
		A: f, C: 0, E: 0,
		B: 0, D: f, F: 0,
	}
}

// MirrorX negates the x coordinate.
func MirrorX() Affine {
	return Affine{
		A: -1, C: 0, E: 0,
		B: 0, D: 1, F: 0,
	}
}

// FittingMatrix returns the linear map that turns v1 into the direction of v2.
// If the two vectors differ in length, the map also scales uniformly by
// |v2|/|v1|.
func FittingMatrix(v1, v2 Vector2) Affine {
	l := r2.Norm2(v1)
	return Affine{
		A: (v1.X*v2.X + v1.Y*v2.Y) / l, C: (v1.Y*v2.X - v1.X*v2.Y) / l,
		B: (v1.X*v2.Y - v1.Y*v2.X) / l, D: (v1.X*v2.X + v1.Y*v2.Y) / l,
	}
}

// Multiply returns m∘other: other is applied first.
func (m Affine) Multiply(other Affine) Affine {
	return Affine{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

func (m Affine) transformX(x, y float64) float64 {
	return m.A*x + m.C*y + m.E
}

func (m Affine) transformY(x, y float64) float64 {
	return m.B*x + m.D*y + m.F
}

func (m Affine) TransformPoint(p Point) Point {
	return Point{X: m.transformX(p.X, p.Y), Y: m.transformY(p.X, p.Y)}
}

// TransformVector applies only the linear part of m.
func (m Affine) TransformVector(v Vector2) Vector2 {
	return Vector2{X: m.A*v.X + m.C*v.Y, Y: m.B*v.X + m.D*v.Y}
}

func (m Affine) TransformPoints(points []Point) {
	for i, p := range points {
		points[i] = m.TransformPoint(p)
	}
}

func (m Affine) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}
