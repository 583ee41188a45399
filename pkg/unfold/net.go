package unfold

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Net is a snapshot of the placed islands for drawing. All coordinates are
// in meters from the bottom left corner of the sheet, margin included.
type Net struct {
	PageWidth  float64   `json:"page_width"`
	PageHeight float64   `json:"page_height"`
	Pages      []NetPage `json:"pages"`
}

type NetPage struct {
	Number  int         `json:"number"`
	Islands []NetIsland `json:"islands"`
}

type NetIsland struct {
	Number       int    `json:"number"`
	Label        string `json:"label"`
	Abbreviation string `json:"abbreviation"`
	Title        string `json:"title,omitempty"`
	Faces        []int  `json:"faces"`
	InsideOut    bool   `json:"inside_out,omitempty"`

	Min r2.Vec `json:"min"`
	Max r2.Vec `json:"max"`

	// Outline holds the closed cut outlines, stickers included.
	Outline [][]r2.Vec  `json:"outline"`
	Lines   []NetLine   `json:"lines"`
	Markers []NetMarker `json:"markers"`
}

// NetLine is a fold or a freestyle line inside an island.
type NetLine struct {
	Edge      int    `json:"edge"`
	Category  string `json:"category"`
	Freestyle bool   `json:"freestyle,omitempty"`
	A         r2.Vec `json:"a"`
	B         r2.Vec `json:"b"`
}

type NetMarker struct {
	Kind   string   `json:"kind"`
	Text   string   `json:"text,omitempty"`
	Center r2.Vec   `json:"center"`
	Angle  float64  `json:"angle"`
	Size   float64  `json:"size"`
	Points []r2.Vec `json:"points,omitempty"`
}

// Net describes the pages laid out by FitIslands.
func (u *Unfolder) Net(pageWidth, pageHeight, margin, angleEpsilon float64) *Net {
	net := &Net{PageWidth: pageWidth, PageHeight: pageHeight}
	for _, page := range u.Pages {
		p := NetPage{Number: page.Number}
		for _, island := range page.Islands {
			offset := r2.Add(island.Pos, r2.Vec{X: margin, Y: margin})
			p.Islands = append(p.Islands, u.netIsland(island, offset, angleEpsilon))
		}
		net.Pages = append(net.Pages, p)
	}
	return net
}

func (u *Unfolder) netIsland(island *Island, offset r2.Vec, angleEpsilon float64) NetIsland {
	at := func(co r2.Vec) r2.Vec { return r2.Add(co, offset) }
	out := NetIsland{
		Number:       island.Number,
		Label:        island.Label,
		Abbreviation: island.Abbreviation,
		Title:        island.Title,
		Faces:        island.FaceIDs(),
		InsideOut:    island.IsInsideOut,
		Min:          offset,
		Max:          at(island.BoundingBox),
	}

	visited := make(map[*UVEdge]bool)
	for _, start := range island.Boundary {
		if visited[start] {
			continue
		}
		var loop []r2.Vec
		for uvedge := start; uvedge != nil && !visited[uvedge]; uvedge = uvedge.NeighborRight {
			visited[uvedge] = true
			if uvedge.Sticker != nil {
				for _, p := range uvedge.Sticker.Points[1:] {
					loop = append(loop, at(p))
				}
			} else if uvedge.Face.Flipped {
				loop = append(loop, at(uvedge.VB.Co))
			} else {
				loop = append(loop, at(uvedge.VA.Co))
			}
		}
		out.Outline = append(out.Outline, loop)
	}

	for _, l := range sortedKeys(island.Edges) {
		uvedge := island.Edges[l]
		edge := u.Edges[u.Mesh.Loops[l].Edge]
		category := u.Classify(uvedge, angleEpsilon)
		if category == FoldCut || (category == FoldNone && !edge.Freestyle) {
			continue
		}
		// the two sides of a fold run in opposite directions; keep one
		if uvedge.Sticker == nil && uvedge.Face.Flipped == (uvedge.VA.ID > uvedge.VB.ID) {
			continue
		}
		out.Lines = append(out.Lines, NetLine{
			Edge:      edge.ID,
			Category:  category.String(),
			Freestyle: edge.Freestyle,
			A:         at(uvedge.VA.Co),
			B:         at(uvedge.VB.Co),
		})
	}

	for _, m := range island.Markers {
		nm := NetMarker{Kind: m.Kind.String(), Text: m.Text, Center: at(m.Center), Angle: m.Angle, Size: m.Size}
		for _, p := range m.Points {
			nm.Points = append(nm.Points, at(p))
		}
		out.Markers = append(out.Markers, nm)
	}
	return out
}
