package unfold

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r2"

	"papernet/pkg/geometry"
)

// UVVertex is a corner in the net. Corners of several faces share one
// UVVertex once their faces are joined. ID is unique within an Unfolder.
type UVVertex struct {
	ID int
	Co r2.Vec
}

// keyLess orders vertices lexicographically by position, which is the order
// the sweepline runs in.
func keyLess(a, b *UVVertex) bool {
	return geometry.Less(a.Co, b.Co)
}

// UVEdge is one side of a face in the net. Every UVEdge belongs to exactly
// one UVFace; an edge between two faces has one UVEdge on each of them,
// running in opposite directions.
type UVEdge struct {
	VA, VB *UVVertex
	Face   *UVFace
	Loop   int

	// Min and Max are the endpoints in sweep order.
	Min, Max    *UVVertex
	Bottom, Top float64

	// NeighborLeft and NeighborRight link the boundary of a finished island;
	// NeighborRight goes clockwise.
	NeighborLeft, NeighborRight *UVEdge
	Sticker                     *Marker
}

func newUVEdge(va, vb *UVVertex, face *UVFace, loop int) *UVEdge {
	e := &UVEdge{VA: va, VB: vb, Face: face, Loop: loop}
	e.update()
	return e
}

// update refreshes the cached sweep data after the vertices moved.
func (e *UVEdge) update() {
	if keyLess(e.VA, e.VB) {
		e.Min, e.Max = e.VA, e.VB
	} else {
		e.Min, e.Max = e.VB, e.VA
	}
	e.Bottom, e.Top = e.VA.Co.Y, e.VB.Co.Y
	if e.Top < e.Bottom {
		e.Bottom, e.Top = e.Top, e.Bottom
	}
}

func (e *UVEdge) isUpwards() bool {
	return keyLess(e.VA, e.VB) != e.Face.Flipped
}

// Vector returns the direction of the edge along the face's winding.
func (e *UVEdge) Vector() r2.Vec {
	return r2.Sub(e.VB.Co, e.VA.Co)
}

// UVFace is one face flattened into the plane.
type UVFace struct {
	Face   int
	Island *Island
	// Flipped faces have their edges running clockwise. This happens when
	// an island is mirrored while being joined to another.
	Flipped bool
	// Loops lists the face corners in their mesh order.
	Loops    []int
	Vertices map[int]*UVVertex
	Edges    map[int]*UVEdge
}

// zUpMatrix returns a matrix whose first two rows project onto the plane
// perpendicular to n.
func zUpMatrix(n mgl64.Vec3) mgl64.Mat3 {
	b := mgl64.Vec2{n.X(), n.Y()}.Len()
	s := n.Len()
	if b > 0 {
		return mgl64.Mat3FromRows(
			mgl64.Vec3{n.X() * n.Z() / (b * s), n.Y() * n.Z() / (b * s), -b / s},
			mgl64.Vec3{-n.Y() / b, n.X() / b, 0},
			mgl64.Vec3{},
		)
	}
	y := 1.0
	if n.Z() < 0 {
		y = -1
	}
	return mgl64.Mat3FromRows(
		mgl64.Vec3{1, 0, 0},
		mgl64.Vec3{0, y, 0},
		mgl64.Vec3{},
	)
}

// newUVFace flattens a mesh face in the world transform given by matrix.
func (u *Unfolder) newUVFace(face int, island *Island) *UVFace {
	f := &UVFace{
		Face:     face,
		Island:   island,
		Vertices: make(map[int]*UVVertex),
		Edges:    make(map[int]*UVEdge),
	}
	normal := u.normalMatrix.Mul3x1(u.Mesh.Faces[face].Normal)
	flatten := zUpMatrix(normal).Mul3(u.Matrix)
	loops := u.Mesh.Faces[face].Loops
	f.Loops = append(f.Loops, loops...)
	for _, l := range loops {
		co := flatten.Mul3x1(u.Mesh.Verts[u.Mesh.Loops[l].Vert].Co)
		f.Vertices[l] = u.newVertex(r2.Vec{X: co.X(), Y: co.Y()})
	}
	for _, l := range loops {
		next := u.Mesh.Loops[l].Next
		f.Edges[l] = newUVEdge(f.Vertices[l], f.Vertices[next], f, l)
	}
	return f
}

func (u *Unfolder) newVertex(co r2.Vec) *UVVertex {
	v := &UVVertex{ID: u.nextVertexID, Co: co}
	u.nextVertexID++
	return v
}
