package unfold

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"papernet/pkg/geometry"
)

type MarkerKind int

const (
	// MarkerSticker is a glue tab on a cut edge.
	MarkerSticker MarkerKind = iota
	// MarkerArrow points at an edge whose sticker partner is hard to find.
	MarkerArrow
	// MarkerNumber labels a cut edge when no stickers are made.
	MarkerNumber
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerSticker:
		return "sticker"
	case MarkerArrow:
		return "arrow"
	case MarkerNumber:
		return "number"
	}
	return "unknown"
}

// Marker is printed next to the island outline.
type Marker struct {
	Kind MarkerKind
	Text string
	// Center is where the text goes and Angle its rotation.
	Center r2.Vec
	Angle  float64
	// Size is the text size, or the tab width for stickers.
	Size float64
	// Points is the outline of a sticker, starting and ending on its edge,
	// or the two tips of an arrow.
	Points []r2.Vec
}

// Bounds returns the points that have to stay on the page.
func (m *Marker) Bounds() []r2.Vec {
	switch m.Kind {
	case MarkerSticker:
		return append(append([]r2.Vec(nil), m.Points[1:len(m.Points)-1]...), m.Center)
	case MarkerArrow:
		return append([]r2.Vec{m.Center}, m.Points...)
	}
	return []r2.Vec{m.Center}
}

// transform moves the marker along with its island; angle is the rotation
// contained in t.
func (m *Marker) transform(t geometry.Affine, angle float64) {
	m.Center = t.TransformPoint(m.Center)
	t.TransformPoints(m.Points)
	m.Angle += angle
}

func rotate(v r2.Vec, sin, cos float64) r2.Vec {
	return r2.Vec{X: cos*v.X - sin*v.Y, Y: sin*v.X + cos*v.Y}
}

// newSticker makes a glue tab on uvedge that sticks to other. The tab's
// sides are tilted so that it does not cover the target's neighbours.
func newSticker(uvedge *UVEdge, defaultWidth float64, index string, other *UVEdge) *Marker {
	first, second := uvedge.VA, uvedge.VB
	if uvedge.Face.Flipped {
		first, second = second, first
	}
	edge := r2.Sub(first.Co, second.Co)
	length := r2.Norm(edge)
	width := math.Min(defaultWidth, length/2)
	otherFirst, otherSecond := other.VA, other.VB
	if other.Face.Flipped {
		otherFirst, otherSecond = otherSecond, otherFirst
	}
	otherEdge := r2.Sub(otherSecond.Co, otherFirst.Co)

	// a is the angle at first, b at second
	cosA, cosB := 0.5, 0.5
	sinA, sinB := math.Sqrt(0.75), math.Sqrt(0.75)
	lenA := width / sinA
	lenB := lenA

	// the most common neighbour of a tab is its own target
	if first == otherSecond {
		cosA = math.Max(cosA, r2.Dot(edge, otherEdge)/r2.Norm2(edge))
	} else if second == otherFirst {
		cosB = math.Max(cosB, r2.Dot(edge, otherEdge)/r2.Norm2(edge))
	}

	// keep out of sharp corners of the target face
	if other.NeighborLeft != nil && other.NeighborRight != nil {
		neighborA := r2.Sub(other.NeighborLeft.VB.Co, other.VB.Co)
		neighborB := r2.Sub(other.NeighborRight.VA.Co, other.VA.Co)
		otherLength := r2.Norm(otherEdge)
		if d := otherLength * r2.Norm(neighborA); d != 0 {
			cosA = math.Max(cosA, -r2.Dot(otherEdge, neighborA)/d)
			if d := otherLength * r2.Norm(neighborB); d != 0 {
				cosB = math.Max(cosB, r2.Dot(otherEdge, neighborB)/d)
			}
		}
	}

	sinA = math.Sqrt(math.Abs(1 - cosA*cosA))
	if d := sinA*cosB + sinB*cosA; d != 0 {
		lenB = math.Min(lenA, length*sinA/d)
	}
	lenA = 0
	if sinA != 0 {
		lenA = math.Min(width/sinA, (length-lenB*cosB)/cosA)
	}
	sinB = math.Sqrt(math.Abs(1 - cosB*cosB))
	if d := sinA*cosB + sinB*cosA; d != 0 {
		lenA = math.Min(lenA, length*sinB/d)
	}
	lenB = 0
	if sinB != 0 {
		lenB = math.Min(width/sinB, (length-lenA*cosA)/cosB)
	}

	v3 := r2.Add(second.Co, r2.Scale(lenB/length, rotate(edge, sinB, cosB)))
	v4 := r2.Add(first.Co, r2.Scale(lenA/length, r2.Vec{
		X: -cosA*edge.X - sinA*edge.Y,
		Y: sinA*edge.X - cosA*edge.Y,
	}))
	m := &Marker{Kind: MarkerSticker, Text: index, Size: width * 0.9}
	if v3 != v4 {
		m.Points = []r2.Vec{second.Co, v3, v4, first.Co}
	} else {
		m.Points = []r2.Vec{second.Co, v3, first.Co}
	}
	sin, cos := edge.Y/length, edge.X/length
	m.Angle = math.Atan2(sin, cos)
	if index != "" && uvedge.Face.Island != other.Face.Island {
		m.Text = fmt.Sprintf("%s:%s", other.Face.Island.Abbreviation, index)
	}
	mid := r2.Scale(0.5, r2.Add(uvedge.VA.Co, uvedge.VB.Co))
	m.Center = r2.Add(mid, rotate(r2.Vec{Y: m.Size * 0.2}, sin, cos))
	return m
}

func newArrow(uvedge *UVEdge, size float64, index string) *Marker {
	edge := uvedge.Vector()
	if uvedge.Face.Flipped {
		edge = r2.Scale(-1, edge)
	}
	center := r2.Scale(0.5, r2.Add(uvedge.VA.Co, uvedge.VB.Co))
	tangent := r2.Unit(edge)
	normal := r2.Vec{X: tangent.Y, Y: -tangent.X}
	return &Marker{
		Kind:   MarkerArrow,
		Text:   index,
		Center: center,
		Angle:  math.Atan2(tangent.Y, tangent.X),
		Size:   size,
		Points: []r2.Vec{
			r2.Add(center, r2.Scale(size, r2.Add(r2.Scale(1.2, normal), tangent))),
			r2.Add(center, r2.Scale(size, r2.Sub(r2.Scale(1.2, normal), tangent))),
		},
	}
}

func newNumberAlone(uvedge *UVEdge, index string, size float64) *Marker {
	edge := r2.Sub(uvedge.VA.Co, uvedge.VB.Co)
	if uvedge.Face.Flipped {
		edge = r2.Scale(-1, edge)
	}
	length := r2.Norm(edge)
	sin, cos := edge.Y/length, edge.X/length
	mid := r2.Scale(0.5, r2.Add(uvedge.VA.Co, uvedge.VB.Co))
	return &Marker{
		Kind:   MarkerNumber,
		Text:   index,
		Center: r2.Sub(mid, rotate(r2.Vec{Y: size * 1.2}, sin, cos)),
		Angle:  math.Atan2(sin, cos),
		Size:   size,
	}
}

func indexText(n int) string {
	text := fmt.Sprint(n)
	if isUpsideDownWrong(text) {
		text += "."
	}
	return text
}

// stickerPriority tells how good a face is for carrying a sticker: big faces
// with short perimeters are better.
func (u *Unfolder) stickerPriority(uvedge *UVEdge) float64 {
	face := uvedge.Face.Face
	return u.Mesh.FaceArea(face) / u.Mesh.FacePerimeter(face)
}

// isIndexObvious reports whether the sticker on uvedge will be easy to match
// with target without a number: they are neighbours, or their neighbours
// match.
func (u *Unfolder) isIndexObvious(uvedge, target *UVEdge) bool {
	if uvedge == target.NeighborLeft || uvedge == target.NeighborRight {
		return true
	}
	if uvedge.NeighborLeft == nil || uvedge.NeighborRight == nil || target.NeighborLeft == nil || target.NeighborRight == nil {
		return false
	}
	edgeOf := func(e *UVEdge) int { return u.Mesh.Loops[e.Loop].Edge }
	return edgeOf(uvedge.NeighborLeft) == edgeOf(target.NeighborRight) &&
		edgeOf(uvedge.NeighborRight) == edgeOf(target.NeighborLeft)
}

// GenerateStickers puts a glue tab on one side of every cut edge and on all
// extra faces of edges with more than two. With numbers set, tabs that are
// hard to match get a number and their target an arrow.
func (u *Unfolder) GenerateStickers(width float64, numbers bool) {
	addSticker := func(uvedge *UVEdge, index string, target *UVEdge) {
		uvedge.Sticker = newSticker(uvedge, width, index, target)
		uvedge.Face.Island.addMarker(uvedge.Sticker)
	}

	count := 0
	for _, edge := range u.Edges {
		index := ""
		var target *UVEdge
		if edge.IsMainCut && len(edge.UVEdges) >= 2 && edge.Length() > 0 {
			source := edge.UVEdges[1]
			target = edge.UVEdges[0]
			if u.stickerPriority(target) < u.stickerPriority(source) {
				target, source = source, target
			}
			targetIsland := target.Face.Island
			if numbers {
				for _, uvedge := range append([]*UVEdge{source}, edge.UVEdges[2:]...) {
					if !u.isIndexObvious(uvedge, target) {
						targetIsland.stickerNumbering++
						index = indexText(targetIsland.stickerNumbering)
						targetIsland.addMarker(newArrow(target, width, index))
						break
					}
				}
			}
			addSticker(source, index, target)
			count++
		} else if len(edge.UVEdges) > 2 {
			target = edge.UVEdges[0]
		}
		if len(edge.UVEdges) > 2 {
			for _, source := range edge.UVEdges[2:] {
				addSticker(source, index, target)
				count++
			}
		}
	}
	Logger().Info("stickers generated", "count", count)
}

// GenerateNumbersAlone labels both sides of every cut edge with the same
// number.
func (u *Unfolder) GenerateNumbersAlone(size float64) {
	numbering := 0
	for _, edge := range u.Edges {
		if edge.IsMainCut && len(edge.UVEdges) >= 2 {
			numbering++
			index := indexText(numbering)
			for _, uvedge := range edge.UVEdges {
				uvedge.Face.Island.addMarker(newNumberAlone(uvedge, index, size))
			}
		}
	}
}
