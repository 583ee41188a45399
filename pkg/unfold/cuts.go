// Package unfold cuts a polygon mesh into islands that lie flat without
// overlapping and places them onto pages.
package unfold

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r2"

	"papernet/pkg/mesh"
)

// Unfolder holds the state of one unfolding run. It is not safe for
// concurrent use.
type Unfolder struct {
	Mesh *mesh.Mesh
	// Matrix is the world transform applied before flattening.
	Matrix mgl64.Mat3
	// Edges is indexed by mesh edge ID.
	Edges   []*Edge
	Islands []*Island
	Pages   []*Page

	Epsilon    float64
	QuickSweep bool

	normalMatrix mgl64.Mat3
	nextVertexID int
	// uvFaces is indexed by mesh face ID.
	uvFaces []*UVFace
}

// New wraps the mesh edges and measures their angles. The mesh must have
// passed Check.
func New(m *mesh.Mesh, matrix mgl64.Mat3) *Unfolder {
	u := &Unfolder{
		Mesh:         m,
		Matrix:       matrix,
		Epsilon:      1e-6,
		normalMatrix: matrix.Inv().Transpose(),
	}
	u.Edges = make([]*Edge, len(m.Edges))
	for i := range m.Edges {
		edge := newEdge(m, i)
		edge.ChooseMainFaces()
		if edge.MainFaces != nil {
			edge.CalculateAngle()
		}
		u.Edges[i] = edge
	}
	return u
}

// GenerateCuts flattens every face on its own and then joins faces across
// edges, best edges first, as long as the net stays free of overlaps and,
// if limit is given, every island fits into a limit-sized box. Each edge is
// tried once. Finally the island boundaries are linked up.
func (u *Unfolder) GenerateCuts(limit *r2.Vec, weights Weights) error {
	islands := make([]*Island, len(u.Mesh.Faces))
	u.uvFaces = make([]*UVFace, len(u.Mesh.Faces))
	uvedges := make(map[int]*UVEdge)
	for face := range u.Mesh.Faces {
		islands[face] = u.newIsland(face)
		u.uvFaces[face] = islands[face].Faces[face]
		for loop, uvedge := range islands[face].Edges {
			uvedges[loop] = uvedge
		}
	}
	for _, edge := range u.Edges {
		edge.UVEdges = nil
	}
	for _, loop := range sortedKeys(uvedges) {
		edge := u.Edges[u.Mesh.Loops[loop].Edge]
		edge.UVEdges = append(edge.UVEdges, uvedges[loop])
	}

	var edges []*Edge
	for _, edge := range u.Edges {
		if !edge.ForceCut && edge.MainFaces != nil {
			edges = append(edges, edge)
		}
	}
	if len(edges) > 0 {
		total := 0.0
		for _, edge := range edges {
			total += edge.Length()
		}
		average := total / float64(len(edges))
		for _, edge := range edges {
			edge.GeneratePriority(weights, average)
		}
		sort.SliceStable(edges, func(i, j int) bool { return edges[i].Priority < edges[j].Priority })

		absorbed := make(map[*Island]bool)
		for _, edge := range edges {
			if edge.Length() == 0 {
				continue
			}
			old, err := u.joinIslands(uvedges[edge.MainFaces[0]], uvedges[edge.MainFaces[1]], limit)
			if err != nil {
				return err
			}
			if old != nil {
				absorbed[old] = true
			}
		}
		kept := islands[:0]
		for _, island := range islands {
			if !absorbed[island] {
				kept = append(kept, island)
			}
		}
		islands = kept
	}

	sort.SliceStable(islands, func(i, j int) bool { return len(islands[i].Faces) > len(islands[j].Faces) })
	u.Islands = islands
	Logger().Info("cuts generated", "faces", len(u.Mesh.Faces), "islands", len(islands))

	u.finalizeBoundaries()
	return nil
}

// MarkCuts returns the mesh edges that ended up cut, leaving out edges that
// have only one face anyway. They can be stored as seams so that another run
// reproduces the same net.
func (u *Unfolder) MarkCuts() []int {
	var cuts []int
	for _, edge := range u.Edges {
		if edge.IsMainCut && !u.Mesh.IsBoundary(edge.ID) {
			cuts = append(cuts, edge.ID)
		}
	}
	return cuts
}
