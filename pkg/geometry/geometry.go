package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D point in net coordinates.
type Point = r2.Vec

type Vector2 = Point

// Rectangle is an axis-aligned box. An empty rectangle has Min > Max.
type Rectangle struct {
	Min Point
	Max Point
}

// EmptyRectangle returns a rectangle that any point will extend.
func EmptyRectangle() Rectangle {
	return Rectangle{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// Bounds returns the axis-aligned bounding box of the points.
func Bounds(points []Point) Rectangle {
	r := EmptyRectangle()
	for _, p := range points {
		r = r.Extend(p)
	}
	return r
}

func (r Rectangle) Extend(p Point) Rectangle {
	return Rectangle{
		Min: Point{X: math.Min(r.Min.X, p.X), Y: math.Min(r.Min.Y, p.Y)},
		Max: Point{X: math.Max(r.Max.X, p.X), Y: math.Max(r.Max.Y, p.Y)},
	}
}

func (r Rectangle) Width() float64 {
	return r.Max.X - r.Min.X
}

func (r Rectangle) Height() float64 {
	return r.Max.Y - r.Min.Y
}

func (r Rectangle) Size() Vector2 {
	return Vector2{X: r.Width(), Y: r.Height()}
}

// Translate returns the rectangle moved by v.
func (r Rectangle) Translate(v Vector2) Rectangle {
	return Rectangle{Min: r2.Add(r.Min, v), Max: r2.Add(r.Max, v)}
}

// Overlaps reports whether the interiors of two rectangles intersect.
// Rectangles that only touch along an edge do not overlap.
func (r Rectangle) Overlaps(other Rectangle) bool {
	return r.Max.X > other.Min.X && other.Max.X > r.Min.X &&
		r.Max.Y > other.Min.Y && other.Max.Y > r.Min.Y
}

// Contains reports whether other lies inside r, borders included.
func (r Rectangle) Contains(other Rectangle) bool {
	return other.Min.X >= r.Min.X && other.Min.Y >= r.Min.Y &&
		other.Max.X <= r.Max.X && other.Max.Y <= r.Max.Y
}

// Less orders points lexicographically, x first.
func Less(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// LessYX orders points lexicographically, y first.
func LessYX(a, b Point) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}
