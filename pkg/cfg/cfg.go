// Package cfg holds the tunable settings of the unfolder. Lengths are in
// meters, as measured on the printed page.
package cfg

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Weights set how strongly each edge property pushes an edge to be cut.
// Edges with lower resulting priority are joined first.
type Weights struct {
	Convex  float64 `json:"convex"`
	Concave float64 `json:"concave"`
	Length  float64 `json:"length"`
}

type Config struct {
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`
	Margin     float64 `json:"margin"`

	Weights Weights `json:"weights"`
	// Epsilon is the vertex merge distance, relative to the length of the
	// edge being joined.
	Epsilon float64 `json:"epsilon"`
	// LimitByPage stops islands from growing past the printable area.
	LimitByPage bool `json:"limit_by_page"`

	// Scale is the denominator of the model scale, so 10 prints at 1:10.
	Scale     float64 `json:"scale"`
	AutoScale bool    `json:"auto_scale"`

	StickerWidth float64 `json:"sticker_width"`
	Stickers     bool    `json:"stickers"`
	Numbers      bool    `json:"numbers"`
	// AngleEpsilon hides folds flatter than this angle, in radians.
	AngleEpsilon float64 `json:"angle_epsilon"`

	// QuickSweep enables the binary-search overlap test for islands that
	// never needed the exhaustive one.
	QuickSweep bool `json:"quick_sweep"`
	// Weld is the distance for merging STL vertices.
	Weld float64 `json:"weld"`
}

func Default() Config {
	return Config{
		PageWidth:  0.210,
		PageHeight: 0.297,
		Margin:     0.005,
		Weights: Weights{
			Convex:  0.5,
			Concave: 1,
			Length:  -0.05,
		},
		Epsilon:      1e-6,
		Scale:        1,
		StickerWidth: 0.005,
		Stickers:     true,
		Numbers:      true,
		AngleEpsilon: math.Pi / 360,
	}
}

// Printable returns the page size without margins.
func (c Config) Printable() (width, height float64) {
	return c.PageWidth - 2*c.Margin, c.PageHeight - 2*c.Margin
}

func (c Config) Validate() error {
	w, h := c.Printable()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("margin %g leaves no printable area on a %gx%g page", c.Margin, c.PageWidth, c.PageHeight)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", c.Scale)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", c.Epsilon)
	}
	if c.StickerWidth < 0 {
		return fmt.Errorf("sticker width must not be negative, got %g", c.StickerWidth)
	}
	return nil
}

var pageSizes = map[string][2]float64{
	"a4":     {0.210, 0.297},
	"a3":     {0.297, 0.420},
	"letter": {0.216, 0.279},
	"legal":  {0.216, 0.356},
}

// PageSize looks up a paper size preset by name, ignoring case.
func PageSize(name string) (width, height float64, err error) {
	size, ok := pageSizes[strings.ToLower(name)]
	if !ok {
		return 0, 0, fmt.Errorf("unknown page size %q (known: %s)", name, strings.Join(PageSizeNames(), ", "))
	}
	return size[0], size[1], nil
}

func PageSizeNames() []string {
	var names []string
	for name := range pageSizes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TitleScale is the height of an island title relative to the sticker width;
// glyphs reach below the baseline.
var TitleScale = 1.2

// StopPruneBase and StopPruneFactor bound the packing stop lists: they are
// pruned when their length squared exceeds StopPruneFactor*islands +
// StopPruneBase.
var StopPruneBase = 100
var StopPruneFactor = 4
