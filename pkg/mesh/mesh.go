// Package mesh holds the polygonal model that gets unfolded: vertices, faces,
// edges and the loops (face corners) that tie them together.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type Vertex struct {
	ID int
	Co mgl64.Vec3
	// Loops lists every face corner at this vertex.
	Loops []int
}

// Loop is one corner of a face. It starts at Vert and runs along Edge to the
// vertex of Next.
type Loop struct {
	ID   int
	Vert int
	Edge int
	Face int
	Next int
	Prev int
}

type Edge struct {
	ID    int
	Verts [2]int
	// Loops lists the face corners running along this edge, one per face.
	Loops     []int
	Seam      bool
	Freestyle bool
}

type Face struct {
	ID     int
	Loops  []int
	Normal mgl64.Vec3
}

// Mesh is a face/loop/edge/vertex topology. Build it with New; the slices are
// indexed by the elements' IDs.
type Mesh struct {
	Verts []Vertex
	Edges []Edge
	Faces []Face
	Loops []Loop
}

type edgeKey [2]int

func sortPair(a, b int) edgeKey {
	if a < b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

// New builds a mesh from vertex positions and polygons given as vertex index
// lists. Edges are shared between polygons that use the same vertex pair.
func New(positions []mgl64.Vec3, polygons [][]int) (*Mesh, error) {
	m := &Mesh{
		Verts: make([]Vertex, len(positions)),
		Faces: make([]Face, 0, len(polygons)),
	}
	for i, co := range positions {
		m.Verts[i] = Vertex{ID: i, Co: co}
	}

	edgeMap := make(map[edgeKey]int)
	for faceIdx, polygon := range polygons {
		if len(polygon) < 3 {
			return nil, fmt.Errorf("polygon %d has %d vertices, need at least 3", faceIdx, len(polygon))
		}
		face := Face{ID: faceIdx}
		first := len(m.Loops)
		for i, v := range polygon {
			if v < 0 || v >= len(positions) {
				return nil, fmt.Errorf("polygon %d refers to missing vertex %d", faceIdx, v)
			}
			next := polygon[(i+1)%len(polygon)]
			if next == v {
				return nil, fmt.Errorf("polygon %d repeats vertex %d", faceIdx, v)
			}
			key := sortPair(v, next)
			edgeIdx, ok := edgeMap[key]
			if !ok {
				edgeIdx = len(m.Edges)
				edgeMap[key] = edgeIdx
				m.Edges = append(m.Edges, Edge{ID: edgeIdx, Verts: [2]int{v, next}})
			}
			loopIdx := len(m.Loops)
			m.Loops = append(m.Loops, Loop{
				ID:   loopIdx,
				Vert: v,
				Edge: edgeIdx,
				Face: faceIdx,
				Next: first + (i+1)%len(polygon),
				Prev: first + (i+len(polygon)-1)%len(polygon),
			})
			m.Edges[edgeIdx].Loops = append(m.Edges[edgeIdx].Loops, loopIdx)
			m.Verts[v].Loops = append(m.Verts[v].Loops, loopIdx)
			face.Loops = append(face.Loops, loopIdx)
		}
		m.Faces = append(m.Faces, face)
	}
	for i := range m.Faces {
		m.Faces[i].Normal = m.newellNormal(i)
	}
	return m, nil
}

// newellNormal returns the unit normal of a face, or the zero vector for a
// degenerate face.
func (m *Mesh) newellNormal(face int) mgl64.Vec3 {
	var n mgl64.Vec3
	for _, l := range m.Faces[face].Loops {
		a := m.Verts[m.Loops[l].Vert].Co
		b := m.Verts[m.Loops[m.Loops[l].Next].Vert].Co
		n[0] += (a.Y() - b.Y()) * (a.Z() + b.Z())
		n[1] += (a.Z() - b.Z()) * (a.X() + b.X())
		n[2] += (a.X() - b.X()) * (a.Y() + b.Y())
	}
	if n.Len() == 0 {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}

// ErrNoSuchEdge is returned when a vertex pair is not joined by an edge.
var ErrNoSuchEdge = errors.New("no such edge")

// FindEdge returns the edge joining two vertices.
func (m *Mesh) FindEdge(a, b int) (int, error) {
	if a < 0 || a >= len(m.Verts) {
		return -1, fmt.Errorf("vertex %d: %w", a, ErrNoSuchEdge)
	}
	for _, l := range m.Verts[a].Loops {
		loop := m.Loops[l]
		if m.Loops[loop.Next].Vert == b {
			return loop.Edge, nil
		}
		if m.Loops[loop.Prev].Vert == b {
			return m.Loops[loop.Prev].Edge, nil
		}
	}
	return -1, fmt.Errorf("vertices %d and %d: %w", a, b, ErrNoSuchEdge)
}

// MarkSeam flags the edge between two vertices as a seam, which always gets
// cut.
func (m *Mesh) MarkSeam(a, b int) error {
	e, err := m.FindEdge(a, b)
	if err != nil {
		return err
	}
	m.Edges[e].Seam = true
	return nil
}

// EdgeVector returns the direction from the edge's first vertex to its second.
func (m *Mesh) EdgeVector(e int) mgl64.Vec3 {
	verts := m.Edges[e].Verts
	return m.Verts[verts[1]].Co.Sub(m.Verts[verts[0]].Co)
}

func (m *Mesh) EdgeLength(e int) float64 {
	return m.EdgeVector(e).Len()
}

// IsBoundary reports whether the edge has fewer than two faces.
func (m *Mesh) IsBoundary(e int) bool {
	return len(m.Edges[e].Loops) < 2
}

// LinkLoops returns the other face corners along the same edge as loop l.
func (m *Mesh) LinkLoops(l int) []int {
	all := m.Edges[m.Loops[l].Edge].Loops
	out := make([]int, 0, len(all)-1)
	for _, other := range all {
		if other != l {
			out = append(out, other)
		}
	}
	return out
}

// FaceVerts returns the vertex positions of a face in loop order.
func (m *Mesh) FaceVerts(face int) []mgl64.Vec3 {
	loops := m.Faces[face].Loops
	out := make([]mgl64.Vec3, len(loops))
	for i, l := range loops {
		out[i] = m.Verts[m.Loops[l].Vert].Co
	}
	return out
}

// FaceCenter returns the mean of the face's vertex positions.
func (m *Mesh) FaceCenter(face int) mgl64.Vec3 {
	var c mgl64.Vec3
	verts := m.FaceVerts(face)
	for _, v := range verts {
		c = c.Add(v)
	}
	return c.Mul(1 / float64(len(verts)))
}

// FaceArea returns the area of the face, measured along its normal.
func (m *Mesh) FaceArea(face int) float64 {
	var sum mgl64.Vec3
	verts := m.FaceVerts(face)
	for i, a := range verts {
		b := verts[(i+1)%len(verts)]
		sum = sum.Add(a.Cross(b))
	}
	return sum.Len() / 2
}

func (m *Mesh) FacePerimeter(face int) float64 {
	total := 0.0
	for _, l := range m.Faces[face].Loops {
		total += m.EdgeLength(m.Loops[l].Edge)
	}
	return total
}
