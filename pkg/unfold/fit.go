package unfold

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"papernet/pkg/geometry"
	"papernet/pkg/pack"
)

// transform moves all vertices and markers of the island. angle is the
// rotation contained in t, used to turn marker texts.
func (island *Island) transform(t geometry.Affine, angle float64) {
	for _, v := range island.uniqueVertices() {
		v.Co = t.TransformPoint(v.Co)
	}
	for _, m := range island.Markers {
		m.transform(t, angle)
	}
	for _, e := range island.Edges {
		e.update()
	}
}

// EnumerateIslands numbers the islands in their current order and names
// them.
func (u *Unfolder) EnumerateIslands() {
	for i, island := range u.Islands {
		island.Number = i + 1
		island.generateLabel()
	}
}

// ScaleIslands resizes all islands around the origin.
func (u *Unfolder) ScaleIslands(scale float64) {
	for _, island := range u.Islands {
		island.transform(geometry.Scaling(scale), 0)
	}
}

// FinalizeIslands turns every island so that it fits best into the cage,
// reserves a strip of titleHeight along its bottom edge and moves the
// corner of both to the origin. The island's BoundingBox is set, title included.
func (u *Unfolder) FinalizeIslands(cage r2.Vec, titleHeight float64) {
	for _, island := range u.Islands {
		if titleHeight > 0 {
			island.Title = fmt.Sprintf("[%s] %s", island.Abbreviation, island.Label)
		}
		points := island.points()
		angle, _ := geometry.CageFit(points, (cage.Y-titleHeight)/cage.X)
		rot := geometry.Rotation(angle)
		rot.TransformPoints(points)
		box := geometry.Bounds(points)
		bottomLeft := r2.Vec{X: box.Min.X, Y: box.Min.Y - titleHeight}
		island.transform(geometry.Translation(r2.Scale(-1, bottomLeft)).Multiply(rot), angle)
		island.BoundingBox = geometry.Rectangle{Min: bottomLeft, Max: box.Max}.Size()
	}
}

// LargestIslandRatio returns how many times the biggest island exceeds the
// cage in either direction. Values below 1 mean that every island fits.
func (u *Unfolder) LargestIslandRatio(cage r2.Vec) float64 {
	ratio := 0.0
	for _, island := range u.Islands {
		ratio = math.Max(ratio, math.Max(island.BoundingBox.X/cage.X, island.BoundingBox.Y/cage.Y))
	}
	return ratio
}

// FitIslands places the finalized islands onto pages of the cage size.
func (u *Unfolder) FitIslands(cage r2.Vec) error {
	pages, err := pack.Pages(u.Islands, cage)
	var tooBig *pack.TooBigError
	if errors.As(err, &tooBig) {
		island := u.Islands[tooBig.Index]
		return &IslandError{Island: island.Number, Faces: island.FaceIDs(), Err: ErrIslandTooBig}
	}
	if err != nil {
		return err
	}
	u.Pages = make([]*Page, len(pages))
	for i, islands := range pages {
		u.Pages[i] = &Page{Number: i + 1, Islands: islands}
	}
	Logger().Info("islands placed", "islands", len(u.Islands), "pages", len(u.Pages))
	return nil
}
