package geometry

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// ConvexHull returns the convex hull of the points in counter-clockwise order,
// starting from the lexicographically smallest point. Collinear points on the
// hull boundary are dropped.
func ConvexHull(points []Point) []Point {
	sorted := slices.Clone(points)
	slices.SortFunc(sorted, func(a, b Point) int {
		switch {
		case Less(a, b):
			return -1
		case Less(b, a):
			return 1
		}
		return 0
	})
	sorted = slices.Compact(sorted)
	if len(sorted) < 3 {
		return sorted
	}

	turn := func(o, a, b Point) float64 {
		return r2.Cross(r2.Sub(a, o), r2.Sub(b, o))
	}

	hull := make([]Point, 0, 2*len(sorted))
	// lower chain
	for _, p := range sorted {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper chain
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

type cageGuess struct {
	height float64
	sin    float64
	cos    float64
}

func (g cageGuess) less(other cageGuess) bool {
	if g.height != other.height {
		return g.height < other.height
	}
	if g.sin != other.sin {
		return g.sin < other.sin
	}
	return g.cos < other.cos
}

// CageFit finds the rotation of the points whose bounding box fits best into
// a cage of the given aspect ratio (height / width). It returns the rotation
// angle and the height of the smallest cage of that aspect ratio that holds
// the rotated points.
//
// Only hull edges are tried: for each of them the box is aligned with the
// edge, aligned perpendicular to it, and rotated further so that width and
// height match the aspect ratio, if that rotation keeps the same extremal
// points.
func CageFit(points []Point, aspect float64) (angle, height float64) {
	polygon := ConvexHull(points)
	if len(polygon) < 2 {
		return 0, 0
	}

	best := cageGuess{height: math.Inf(1)}
	consider := func(g cageGuess) {
		if g.less(best) {
			best = g
		}
	}

	rotated := make([]Point, len(polygon))
	for i := range polygon {
		a, b := polygon[i], polygon[(i+1)%len(polygon)]
		if a == b {
			continue
		}
		direction := r2.Unit(r2.Sub(b, a))
		sinx, cosx := -direction.Y, direction.X
		rot := Affine{A: cosx, C: -sinx, B: sinx, D: cosx}
		for j, p := range polygon {
			rotated[j] = rot.TransformPoint(p)
		}
		left, right, bottom, top := extremes(rotated)
		horz := r2.Sub(rotated[right], rotated[left])
		vert := r2.Sub(rotated[top], rotated[bottom])

		// (rot * a).y == (rot * b).y
		consider(cageGuess{math.Max(aspect*horz.X, vert.Y), sinx, cosx})
		// (rot * a).x == (rot * b).x
		consider(cageGuess{math.Max(horz.X, aspect*vert.Y), -cosx, sinx})

		// aspect * (rot * (right - left)).x == (rot * (top - bottom)).y,
		// solved for t = tan(angle / 2)
		q := aspect*horz.X - vert.Y
		r := vert.X + aspect*horz.Y
		t := 0.0
		if q != 0 {
			t = (math.Sqrt(r*r+q*q) - r) / q
		}
		if math.Abs(t) > 1 {
			t = -1 / t
		}
		siny, cosy := 2*t/(1+t*t), (1-t*t)/(1+t*t)
		Affine{A: cosy, C: -siny, B: siny, D: cosy}.TransformPoints(rotated)
		l, rr, bo, to := rotated[left], rotated[right], rotated[bottom], rotated[top]
		if l.X < rr.X && bo.Y < to.Y && insideBox(rotated, l.X, rr.X, bo.Y, to.Y) {
			consider(cageGuess{
				math.Max(aspect*(rr.X-l.X), to.Y-bo.Y),
				sinx*cosy + cosx*siny,
				cosx*cosy - sinx*siny,
			})
		}
	}
	if math.IsInf(best.height, 1) {
		return 0, 0
	}
	return math.Atan2(best.sin, best.cos), best.height
}

// extremes returns the indices of the leftmost, rightmost, lowest and topmost
// points. Ties go to the first point in lexicographic order.
func extremes(points []Point) (left, right, bottom, top int) {
	for i, p := range points {
		if Less(p, points[left]) {
			left = i
		}
		if Less(points[right], p) {
			right = i
		}
		if LessYX(p, points[bottom]) {
			bottom = i
		}
		if LessYX(points[top], p) {
			top = i
		}
	}
	return left, right, bottom, top
}

func insideBox(points []Point, left, right, bottom, top float64) bool {
	for _, p := range points {
		if p.X < left || p.X > right || p.Y < bottom || p.Y > top {
			return false
		}
	}
	return true
}
