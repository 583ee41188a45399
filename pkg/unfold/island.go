package unfold

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Island is a group of faces flattened into one piece of the net.
type Island struct {
	Number       int
	Label        string
	Abbreviation string
	// Title is printed above the island when there is more than one.
	Title string

	// Faces maps mesh face IDs, Edges and Vertices map loop IDs.
	Faces    map[int]*UVFace
	Edges    map[int]*UVEdge
	Vertices map[int]*UVVertex
	// Boundary lists the cut UV edges around the island.
	Boundary []*UVEdge
	Markers  []*Marker

	// Pos is the offset of the island on its page and BoundingBox its size,
	// title included.
	Pos         r2.Vec
	BoundingBox r2.Vec

	// HasSafeGeometry is cleared when the quick overlap test could not
	// decide about the island; it is then always checked exhaustively.
	HasSafeGeometry bool
	// IsInsideOut swaps convex and concave folds.
	IsInsideOut bool

	stickerNumbering int
}

func (u *Unfolder) newIsland(face int) *Island {
	island := &Island{
		Faces:           make(map[int]*UVFace),
		Edges:           make(map[int]*UVEdge),
		Vertices:        make(map[int]*UVVertex),
		HasSafeGeometry: true,
	}
	uvface := u.newUVFace(face, island)
	for _, l := range uvface.Loops {
		island.Vertices[l] = uvface.Vertices[l]
		island.Edges[l] = uvface.Edges[l]
		island.Boundary = append(island.Boundary, uvface.Edges[l])
	}
	island.Faces[face] = uvface
	return island
}

// FaceIDs returns the mesh faces of the island in ascending order.
func (island *Island) FaceIDs() []int {
	return sortedKeys(island.Faces)
}

// uniqueVertices returns each distinct vertex of the island once, ordered by
// ID.
func (island *Island) uniqueVertices() []*UVVertex {
	seen := make(map[int]bool)
	var out []*UVVertex
	for _, v := range island.Vertices {
		if !seen[v.ID] {
			seen[v.ID] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// points returns the positions that have to fit onto the page: the island's
// vertices and the outer points of its markers.
func (island *Island) points() []r2.Vec {
	var points []r2.Vec
	for _, v := range island.uniqueVertices() {
		points = append(points, v.Co)
	}
	for _, m := range island.Markers {
		points = append(points, m.Bounds()...)
	}
	return points
}

func (island *Island) addMarker(m *Marker) {
	island.Markers = append(island.Markers, m)
}

// generateLabel names the island after its number unless it already has a
// name.
func (island *Island) generateLabel() {
	abbr := island.Abbreviation
	if abbr == "" {
		abbr = fmt.Sprint(island.Number)
	}
	if isUpsideDownWrong(abbr) {
		abbr += "."
	}
	if island.Label == "" {
		island.Label = fmt.Sprintf("Island %d", island.Number)
	}
	island.Abbreviation = abbr
}

// Size, Position and SetPosition let the packer place islands.
func (island *Island) Size() r2.Vec         { return island.BoundingBox }
func (island *Island) Position() r2.Vec     { return island.Pos }
func (island *Island) SetPosition(p r2.Vec) { island.Pos = p }

const (
	mistakableChars = "69NZMWpbqd"
	rotatableChars  = "80oOxXIl" + mistakableChars
)

// isUpsideDownWrong reports whether the text reads as something else when
// turned upside down, like "69" or "N".
func isUpsideDownWrong(text string) bool {
	mistakable := false
	for _, c := range text {
		if !strings.ContainsRune(rotatableChars, c) {
			return false
		}
		if strings.ContainsRune(mistakableChars, c) {
			mistakable = true
		}
	}
	return mistakable
}

// Page is a sheet of paper with islands placed on it.
type Page struct {
	Number  int
	Islands []*Island
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
