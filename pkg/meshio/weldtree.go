package meshio

import (
	"math"

	"github.com/asim/quadtree"
	"github.com/go-gl/mathgl/mgl64"
)

// minSearch keeps the search box from collapsing to a point when welding
// exact duplicates.
const minSearch = 1e-12

type weldSite struct {
	co    mgl64.Vec3
	index int
}

// weldTree finds previously seen vertices near a position. The quadtree
// indexes the x and y coordinates; z is checked on the candidates.
type weldTree struct {
	quadTree *quadtree.QuadTree
	distance float64
}

func newWeldTree(points []mgl64.Vec3, distance float64) *weldTree {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
		minY, maxY = math.Min(minY, p.Y()), math.Max(maxY, p.Y())
	}
	if len(points) == 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	midX := (maxX + minX) / 2
	midY := (maxY + minY) / 2
	halfWidth := maxX - midX
	halfHeight := maxY - midY

	// Add a margin so that points on the border are not dropped
	halfWidth += 1 + distance
	halfHeight += 1 + distance

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))
	return &weldTree{
		quadTree: quadtree.New(aabb, 0, nil),
		distance: distance,
	}
}

func (t *weldTree) add(co mgl64.Vec3, index int) {
	t.quadTree.Insert(quadtree.NewPoint(co.X(), co.Y(), &weldSite{co: co, index: index}))
}

// find returns the index of the closest stored vertex within the weld
// distance.
func (t *weldTree) find(co mgl64.Vec3) (int, bool) {
	half := math.Max(t.distance, minSearch)
	near := quadtree.NewAABB(
		quadtree.NewPoint(co.X(), co.Y(), nil),
		quadtree.NewPoint(half, half, nil),
	)
	best, bestDist := -1, math.Inf(1)
	for _, point := range t.quadTree.Search(near) {
		site := point.Data().(*weldSite)
		d := site.co.Sub(co).Len()
		if t.distance == 0 && site.co != co {
			continue
		}
		if d > t.distance {
			continue
		}
		// prefer the earliest vertex among equally close ones
		if d < bestDist || (d == bestDist && site.index < best) {
			best, bestDist = site.index, d
		}
	}
	return best, best >= 0
}
