package unfold

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// finalizeBoundaries fixes up the edges after the cut pass and links the
// boundary of every island into a cycle.
func (u *Unfolder) finalizeBoundaries() {
	for _, edge := range u.Edges {
		if edge.MainFaces == nil {
			continue
		}
		// joining a mirrored island decides whether the fold is convex
		faceA := u.Mesh.Loops[edge.MainFaces[0]].Face
		faceB := u.Mesh.Loops[edge.MainFaces[1]].Face
		if u.uvFaces[faceA].Flipped || u.uvFaces[faceB].Flipped {
			edge.CalculateAngle()
		}

		reordered := []*UVEdge{nil, nil}
		for _, uvedge := range edge.UVEdges {
			switch uvedge.Loop {
			case edge.MainFaces[0]:
				reordered[0] = uvedge
			case edge.MainFaces[1]:
				reordered[1] = uvedge
			default:
				reordered = append(reordered, uvedge)
			}
		}
		edge.UVEdges = reordered
	}

	for _, island := range u.Islands {
		u.balanceFolds(island)
		linkBoundary(island)
	}
}

// balanceFolds marks a mirrored island inside out if that gives it more
// convex folds than concave ones.
func (u *Unfolder) balanceFolds(island *Island) {
	anyFlipped := false
	for _, uvface := range island.Faces {
		anyFlipped = anyFlipped || uvface.Flipped
	}
	if !anyFlipped {
		return
	}
	balance := 0
	counted := make(map[int]bool)
	for _, loop := range sortedKeys(island.Edges) {
		uvedge := island.Edges[loop]
		edge := u.Edges[u.Mesh.Loops[loop].Edge]
		if counted[edge.ID] || edge.IsCut(uvedge.Face.Face) {
			continue
		}
		counted[edge.ID] = true
		if edge.Angle > 0 {
			balance++
		} else {
			balance--
		}
	}
	if balance < 0 {
		island.IsInsideOut = true
	}
}

// linkBoundary sets the neighbours of the island's boundary edges. At a
// vertex where more than two boundary edges meet, edges are paired by the
// direction in which they leave the vertex.
func linkBoundary(island *Island) {
	lookup := make(map[*UVVertex]*UVEdge)
	conflicts := make(map[*UVVertex][]*UVEdge)
	var conflictOrder []*UVVertex
	for _, uvedge := range island.Boundary {
		v := uvedge.VB
		if uvedge.Face.Flipped {
			v = uvedge.VA
		}
		first, ok := lookup[v]
		if !ok {
			lookup[v] = uvedge
			continue
		}
		if _, ok := conflicts[v]; !ok {
			conflicts[v] = []*UVEdge{first}
			conflictOrder = append(conflictOrder, v)
		}
		conflicts[v] = append(conflicts[v], uvedge)
	}

	for _, uvedge := range island.Boundary {
		v := uvedge.VA
		if uvedge.Face.Flipped {
			v = uvedge.VB
		}
		if _, ok := conflicts[v]; ok {
			conflicts[v] = append(conflicts[v], uvedge)
			continue
		}
		right, ok := lookup[v]
		if !ok {
			right = uvedge
		}
		uvedge.NeighborRight = right
		right.NeighborLeft = uvedge
	}

	for _, v := range conflictOrder {
		resolveConflict(v, conflicts[v])
	}
}

// directionKey maps a direction to a number that grows with its angle,
// starting from the positive x axis.
func directionKey(vector r2.Vec) float64 {
	length := r2.Norm(vector)
	if vector.Y > 0 {
		return 1 - vector.X/length
	}
	return vector.X/length - 1
}

func resolveConflict(v *UVVertex, uvedges []*UVEdge) {
	isInwards := func(e *UVEdge) bool {
		return e.Face.Flipped == (e.VA == v)
	}
	key := func(e *UVEdge) float64 {
		if isInwards(e) {
			return directionKey(r2.Sub(e.VA.Co, e.VB.Co))
		}
		return directionKey(r2.Sub(e.VB.Co, e.VA.Co))
	}
	sort.SliceStable(uvedges, func(i, j int) bool { return key(uvedges[i]) < key(uvedges[j]) })

	var rights, lefts []*UVEdge
	evens, odds := everyOther(uvedges[:len(uvedges)-1], 0), everyOther(uvedges, 1)
	if isInwards(uvedges[0]) {
		rights, lefts = evens, odds
	} else {
		rights = append([]*UVEdge{uvedges[len(uvedges)-1]}, odds...)
		lefts = evens
	}
	for i := 0; i < len(rights) && i < len(lefts); i++ {
		lefts[i].NeighborRight = rights[i]
		rights[i].NeighborLeft = lefts[i]
	}
}

func everyOther(list []*UVEdge, start int) []*UVEdge {
	var out []*UVEdge
	for i := start; i < len(list); i += 2 {
		out = append(out, list[i])
	}
	return out
}
