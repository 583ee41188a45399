package unfold

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r2"

	"papernet/pkg/cfg"
	"papernet/pkg/mesh"
)

// Unfold runs the whole pipeline: it checks the mesh, cuts it into islands,
// scales them to print size, adds stickers or numbers and places the islands
// onto pages. It returns the scale denominator used, which with c.AutoScale
// is the smallest whole one at which every island fits.
func Unfold(m *mesh.Mesh, matrix mgl64.Mat3, c cfg.Config) (*Unfolder, float64, error) {
	if err := c.Validate(); err != nil {
		return nil, 0, err
	}
	if err := m.Check(matrix, c.Epsilon); err != nil {
		return nil, 0, err
	}

	u := New(m, matrix)
	u.Epsilon = c.Epsilon
	u.QuickSweep = c.QuickSweep

	w, h := c.Printable()
	printable := r2.Vec{X: w, Y: h}
	var limit *r2.Vec
	if c.LimitByPage {
		l := r2.Scale(c.Scale, printable)
		limit = &l
	}
	if err := u.GenerateCuts(limit, c.Weights); err != nil {
		return nil, 0, err
	}
	u.FinalizeIslands(printable, 0)
	u.EnumerateIslands()

	scale := c.Scale
	if c.AutoScale {
		room := r2.Sub(printable, r2.Vec{X: 2 * c.StickerWidth, Y: 2 * c.StickerWidth})
		if room.X <= 0 || room.Y <= 0 {
			room = printable
		}
		scale = math.Max(1, math.Ceil(u.LargestIslandRatio(room)))
		Logger().Info("scale chosen", "scale", scale)
	}
	u.ScaleIslands(1 / scale)

	if c.Stickers {
		u.GenerateStickers(c.StickerWidth, c.Numbers)
	} else if c.Numbers {
		u.GenerateNumbersAlone(c.StickerWidth)
	}

	titleHeight := 0.0
	if c.Numbers && len(u.Islands) > 1 {
		titleHeight = c.StickerWidth * cfg.TitleScale
	}
	u.FinalizeIslands(printable, titleHeight)
	if err := u.FitIslands(printable); err != nil {
		return u, scale, fmt.Errorf("at scale 1:%g: %w", scale, err)
	}
	return u, scale, nil
}
