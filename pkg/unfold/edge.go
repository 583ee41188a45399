package unfold

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"papernet/pkg/cfg"
	"papernet/pkg/mesh"
)

// Weights is re-exported so that callers of the unfolder need not import cfg.
type Weights = cfg.Weights

// degenerateAngle is assigned to edges next to a face without a normal. It
// counts as a very sharp concave fold, which makes the edge a likely cut.
const degenerateAngle = -math.Pi

// Edge wraps one mesh edge. All islands touching the edge share it; whether
// its main faces are joined is decided here and nowhere else.
type Edge struct {
	ID     int
	VA, VB int
	Vector mgl64.Vec3

	// MainFaces holds the two loops whose faces may stay connected in the
	// net, or nil. Once the cut pass is finished, UVEdges[0] and UVEdges[1]
	// belong to MainFaces[0] and MainFaces[1].
	MainFaces []int
	UVEdges   []*UVEdge

	// ForceCut edges (seams) are never joined.
	ForceCut bool
	// IsMainCut is false when the two main faces are connected.
	IsMainCut bool
	Freestyle bool

	Angle    float64
	Priority float64

	mesh *mesh.Mesh
}

func newEdge(m *mesh.Mesh, id int) *Edge {
	data := m.Edges[id]
	return &Edge{
		ID:        id,
		VA:        data.Verts[0],
		VB:        data.Verts[1],
		Vector:    m.EdgeVector(id),
		ForceCut:  data.Seam,
		Freestyle: data.Freestyle,
		IsMainCut: true,
		mesh:      m,
	}
}

func (e *Edge) Length() float64 {
	return e.Vector.Len()
}

// ChooseMainFaces picks the two faces that may get connected: the only two
// if there are exactly two, otherwise the pair with the most parallel
// normals. The first main loop is the one starting at VA.
func (e *Edge) ChooseMainFaces() {
	loops := e.mesh.Edges[e.ID].Loops
	switch {
	case len(loops) == 2:
		e.MainFaces = []int{loops[0], loops[1]}
	case len(loops) > 2:
		best := -1.0
		for i := range loops {
			for j := i + 1; j < len(loops); j++ {
				score := math.Abs(e.loopNormal(loops[i]).Dot(e.loopNormal(loops[j])))
				if score > best {
					best = score
					e.MainFaces = []int{loops[i], loops[j]}
				}
			}
		}
	}
	e.orderMainFaces()
}

func (e *Edge) orderMainFaces() {
	if e.MainFaces != nil && e.mesh.Loops[e.MainFaces[1]].Vert == e.VA {
		e.MainFaces[0], e.MainFaces[1] = e.MainFaces[1], e.MainFaces[0]
	}
}

func (e *Edge) loopNormal(loop int) mgl64.Vec3 {
	return e.mesh.Faces[e.mesh.Loops[loop].Face].Normal
}

// CalculateAngle sets the signed dihedral angle between the main faces:
// positive for convex folds, negative for concave ones. If the two faces run
// along the edge in the same direction the sign is meaningless and the angle
// is taken as convex.
func (e *Edge) CalculateAngle() {
	loopA, loopB := e.mesh.Loops[e.MainFaces[0]], e.mesh.Loops[e.MainFaces[1]]
	normalA, normalB := e.loopNormal(loopA.ID), e.loopNormal(loopB.ID)
	if normalA.Len() == 0 || normalB.Len() == 0 {
		e.Angle = degenerateAngle
		return
	}
	s := 0.0
	if length := e.Vector.Len(); length > 0 {
		s = normalA.Cross(normalB).Dot(e.Vector.Mul(1 / length))
	}
	s = math.Max(math.Min(s, 1), -1)
	e.Angle = math.Asin(s)
	if e.mesh.Loops[loopA.Next].Vert != loopB.Vert || e.mesh.Loops[loopB.Next].Vert != loopA.Vert {
		e.Angle = math.Abs(e.Angle)
	}
}

// GeneratePriority scores the edge for the cut pass. Edges with a lower
// priority get joined first.
func (e *Edge) GeneratePriority(w Weights, averageLength float64) {
	if e.Angle > 0 {
		e.Priority = w.Convex * e.Angle / math.Pi
	} else {
		e.Priority = w.Concave * (-e.Angle) / math.Pi
	}
	e.Priority += (e.Length() / averageLength) * w.Length
}

// IsCut reports whether the edge separates the given face from its
// neighbour in the net. Faces other than the two main ones are always cut
// off.
func (e *Edge) IsCut(face int) bool {
	if e.MainFaces != nil &&
		(e.mesh.Loops[e.MainFaces[0]].Face == face || e.mesh.Loops[e.MainFaces[1]].Face == face) {
		return e.IsMainCut
	}
	return true
}

// OtherUVEdge returns a UV edge of this edge other than the given one. The
// edge must have at least two UV edges.
func (e *Edge) OtherUVEdge(this *UVEdge) *UVEdge {
	if this == e.UVEdges[0] {
		return e.UVEdges[1]
	}
	return e.UVEdges[0]
}
