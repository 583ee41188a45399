package unfold

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"papernet/pkg/geometry"
)

// forest is a union-find over UV vertices keyed by vertex ID. A vertex
// without an entry is its own root.
type forest map[int]*UVVertex

// root returns the representative of v and compresses the path to it.
func (f forest) root(v *UVVertex) *UVVertex {
	var relink []int
	for {
		parent, ok := f[v.ID]
		if !ok {
			break
		}
		relink = append(relink, v.ID)
		v = parent
	}
	for _, id := range relink {
		f[id] = v
	}
	return v
}

type uvEdgePair struct {
	edge, partner *UVEdge
}

// joinIslands tries to connect the islands of two UV edges of the same mesh
// edge. On success the smaller island is absorbed into the larger one and
// returned so that the caller can drop it. A join that would make the net
// overlap or exceed limit returns nil and leaves both islands untouched.
// An error means the join bookkeeping is broken.
func (u *Unfolder) joinIslands(uvedgeA, uvedgeB *UVEdge, limit *r2.Vec) (*Island, error) {
	islandA, islandB := uvedgeA.Face.Island, uvedgeB.Face.Island
	if islandA == islandB {
		return nil, nil
	}
	if len(islandB.Faces) > len(islandA.Faces) {
		uvedgeA, uvedgeB = uvedgeB, uvedgeA
		islandA, islandB = islandB, islandA
	}
	log := Logger()

	// the edges must end up running in opposite directions
	vertsFlipped := u.Mesh.Loops[uvedgeB.Loop].Vert == u.Mesh.Loops[uvedgeA.Loop].Vert
	flipped := vertsFlipped != uvedgeA.Face.Flipped != uvedgeB.Face.Flipped

	// if the edges differ in length, as happens with twisted n-gons, the
	// transform scales uniformly
	firstB, secondB := uvedgeB.VA, uvedgeB.VB
	if vertsFlipped {
		firstB, secondB = secondB, firstB
	}
	target := r2.Sub(uvedgeA.VB.Co, uvedgeA.VA.Co)
	var rot geometry.Affine
	if !flipped {
		rot = geometry.FittingMatrix(r2.Sub(firstB.Co, secondB.Co), target)
	} else {
		flip := geometry.MirrorX()
		rot = geometry.FittingMatrix(flip.TransformVector(r2.Sub(firstB.Co, secondB.Co)), target).Multiply(flip)
	}
	trans := r2.Sub(uvedgeA.VB.Co, rot.TransformPoint(firstB.Co))
	transform := geometry.Translation(trans).Multiply(rot)

	// preview of island B's vertices after the join
	phantoms := make(forest)
	bVertices := islandB.uniqueVertices()
	for _, v := range bVertices {
		phantoms[v.ID] = u.newVertex(transform.TransformPoint(v.Co))
	}

	if limit != nil && !u.fitsLimit(islandA, phantoms, bVertices, *limit) {
		log.Debug("join rejected: island too big", "edge", u.Mesh.Loops[uvedgeA.Loop].Edge)
		return nil, nil
	}

	isMergedMine := u.coalesce(islandA, islandB, uvedgeA, phantoms)

	merged := make(map[*UVEdge]bool)
	var mergedPairs []uvEdgePair
	candidates := islandB.Boundary
	if isMergedMine {
		candidates = append(append([]*UVEdge(nil), islandA.Boundary...), islandB.Boundary...)
	}
	for _, uvedge := range candidates {
		for _, loop := range u.Mesh.LinkLoops(uvedge.Loop) {
			partner := islandB.Edges[loop]
			if partner == nil {
				partner = islandA.Edges[loop]
			}
			if partner == nil || partner == uvedge {
				continue
			}
			pairedA, pairedB := phantoms.root(partner.VB), phantoms.root(partner.VA)
			if (partner.Face.Flipped != flipped) != uvedge.Face.Flipped {
				pairedA, pairedB = pairedB, pairedA
			}
			if phantoms.root(uvedge.VA) == pairedA && phantoms.root(uvedge.VB) == pairedB {
				merged[uvedge] = true
				merged[partner] = true
				mergedPairs = append(mergedPairs, uvEdgePair{uvedge, partner})
				break
			}
		}
	}
	if !merged[uvedgeB] {
		return nil, fmt.Errorf("edge %d: joined edges did not meet: %w", u.Mesh.Loops[uvedgeB.Loop].Edge, ErrInternal)
	}

	// the boundary of island B as it would be after the join
	var boundaryOther []*segment
	for _, uvedge := range islandB.Boundary {
		if !merged[uvedge] {
			boundaryOther = append(boundaryOther, phantomSegment(
				phantoms.root(uvedge.VA), phantoms.root(uvedge.VB), flipped != uvedge.Face.Flipped))
		}
	}
	segments := append([]*segment(nil), boundaryOther...)
	for _, uvedge := range islandA.Boundary {
		segments = append(segments, edgeSegment(uvedge))
	}

	if !u.fansAreConsistent(islandA, phantoms, segments, merged) {
		log.Debug("join rejected: boundaries cross at a shared vertex", "edge", u.Mesh.Loops[uvedgeA.Loop].Edge)
		return nil, nil
	}

	if r := u.sweepIslands(islandA, islandB, segments); r != sweepClear {
		log.Debug("join rejected: boundaries overlap", "edge", u.Mesh.Loops[uvedgeA.Loop].Edge)
		return nil, nil
	}

	u.commitJoin(islandA, islandB, phantoms, flipped, isMergedMine, merged, mergedPairs)
	return islandB, nil
}

// fitsLimit checks whether the joined island could still be rotated to fit
// into a box of the limit's size.
func (u *Unfolder) fitsLimit(islandA *Island, phantoms forest, bVertices []*UVVertex, limit r2.Vec) bool {
	var points []r2.Vec
	for _, v := range islandA.uniqueVertices() {
		points = append(points, v.Co)
	}
	for _, v := range bVertices {
		points = append(points, phantoms[v.ID].Co)
	}
	box := geometry.Bounds(points)
	width, height := box.Width(), box.Height()
	if small := math.Min(width, height); small*small > limit.X*limit.X+limit.Y*limit.Y {
		return false
	}
	if (width > limit.X || height > limit.Y) && (height > limit.X || width > limit.Y) {
		if _, h := geometry.CageFit(points, limit.Y/limit.X); h > limit.Y {
			return false
		}
	}
	return true
}

// coalesce links every vertex of island B, and any vertex of island A, that
// would lie on a vertex of island A sharing its mesh vertex. It reports
// whether two vertices of island A got merged.
func (u *Unfolder) coalesce(islandA, islandB *Island, uvedgeA *UVEdge, phantoms forest) bool {
	length := u.Edges[u.Mesh.Loops[uvedgeA.Loop].Edge].Length() * u.Epsilon
	limit := length * length

	shared := make(map[int]bool)
	for loop := range islandA.Vertices {
		shared[u.Mesh.Loops[loop].Vert] = true
	}
	for loop := range islandB.Vertices {
		shared[u.Mesh.Loops[loop].Vert] = true
	}

	isMergedMine := false
	for _, vertex := range sortedKeys(shared) {
		uvsA := islandUVs(islandA, u.Mesh.Verts[vertex].Loops)
		uvsB := islandUVs(islandB, u.Mesh.Verts[vertex].Loops)
		for _, a := range uvsA {
			for _, b := range uvsB {
				if r2.Norm2(r2.Sub(a.Co, phantoms[b.ID].Co)) < limit {
					phantoms[b.ID] = phantoms.root(a)
				}
			}
		}
		for i, a1 := range uvsA {
			for _, a2 := range uvsA[i+1:] {
				if r2.Norm2(r2.Sub(a1.Co, a2.Co)) < limit {
					root1, root2 := phantoms.root(a1), phantoms.root(a2)
					if root1 != root2 {
						phantoms[root2.ID] = root1
						isMergedMine = true
					}
				}
			}
		}
		for _, id := range sortedKeys(phantoms) {
			phantoms[id] = phantoms.root(phantoms[id])
		}
	}
	return isMergedMine
}

// islandUVs returns the distinct UV vertices the island has for the given
// loops, ordered by ID.
func islandUVs(island *Island, loops []int) []*UVVertex {
	var out []*UVVertex
	seen := make(map[int]bool)
	for _, l := range loops {
		if v, ok := island.Vertices[l]; ok && !seen[v.ID] {
			seen[v.ID] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// slopeFrom returns a sort key for the direction of a segment leaving
// position. The key grows monotonically with the angle of the direction.
func slopeFrom(position r2.Vec) func(s *segment) float64 {
	return func(s *segment) float64 {
		vec := r2.Sub(s.va.Co, s.vb.Co)
		if s.va.Co == position {
			vec = r2.Sub(s.vb.Co, s.va.Co)
		}
		length := r2.Norm(vec)
		if vec.X > 0 || (vec.X == 0 && vec.Y > 0) {
			return vec.Y/length + 1
		}
		return -1 - vec.Y/length
	}
}

// fansAreConsistent checks every position where the islands would touch.
// Going around such a position, the boundary has to alternate between
// leaving and entering, or the islands would overlap there.
func (u *Unfolder) fansAreConsistent(islandA *Island, phantoms forest, segments []*segment, merged map[*UVEdge]bool) bool {
	phantomPositions := make(map[r2.Vec]bool)
	for _, v := range phantoms {
		phantomPositions[v.Co] = true
	}
	incidence := make(map[r2.Vec][]*segment)
	for _, v := range islandA.Vertices {
		if phantomPositions[v.Co] {
			incidence[v.Co] = nil
		}
	}
	for _, s := range segments {
		if s.va.Co == s.vb.Co {
			continue
		}
		for _, v := range [2]*UVVertex{s.va, s.vb} {
			if site, ok := incidence[v.Co]; ok {
				incidence[v.Co] = append(site, s)
			}
		}
	}

	isMerged := func(s *segment) bool {
		return s.edge != nil && merged[s.edge]
	}
	for position, fan := range incidence {
		if len(fan) <= 2 {
			continue
		}
		slope := slopeFrom(position)
		sort.SliceStable(fan, func(i, j int) bool { return slope(fan[i]) < slope(fan[j]) })
		for i, right := range fan {
			left := fan[(i+1)%len(fan)]
			leftCCW := left.upwards != (left.max.Co == position)
			rightCCW := right.upwards != (right.max.Co == position)
			if rightCCW && !leftCCW && right.isPhantom() != left.isPhantom() && !isMerged(right) && !isMerged(left) {
				return false
			}
			if (!rightCCW && !isMerged(right)) != (leftCCW && !isMerged(left)) {
				return false
			}
		}
	}
	return true
}

// sweepIslands runs the overlap test on the boundary of the would-be
// island. The quick test is only trusted for islands that never confused
// it; if it gets confused now, the exhaustive test decides and the island is
// marked unsafe.
func (u *Unfolder) sweepIslands(islandA, islandB *Island, segments []*segment) sweepResult {
	if u.QuickSweep && islandA.HasSafeGeometry && islandB.HasSafeGeometry {
		switch r := sweep(&quickSweepline{}, segments); r {
		case sweepClear:
			return sweepClear
		case sweepCrossing:
			return r
		}
		Logger().Debug("quick sweep inconclusive, checking all pairs", "segments", len(segments))
		if r := sweep(&bruteSweepline{}, segments); r != sweepClear {
			return r
		}
		islandA.HasSafeGeometry = false
		return sweepClear
	}
	if r := sweep(&bruteSweepline{}, segments); r != sweepClear {
		return r
	}
	islandA.HasSafeGeometry = islandA.HasSafeGeometry && islandB.HasSafeGeometry
	return sweepClear
}

// commitJoin moves island B into island A using the coalesced vertices.
func (u *Unfolder) commitJoin(islandA, islandB *Island, phantoms forest, flipped, isMergedMine bool,
	merged map[*UVEdge]bool, mergedPairs []uvEdgePair) {
	for uvedge := range merged {
		u.Edges[u.Mesh.Loops[uvedge.Loop].Edge].IsMainCut = false
	}

	for loop, v := range islandB.Vertices {
		islandA.Vertices[loop] = phantoms.root(v)
	}
	if isMergedMine {
		for loop, v := range islandA.Vertices {
			islandA.Vertices[loop] = phantoms.root(v)
		}
	}

	for _, uvedge := range islandB.Edges {
		uvedge.VA = phantoms.root(uvedge.VA)
		uvedge.VB = phantoms.root(uvedge.VB)
		uvedge.update()
	}
	if isMergedMine {
		for _, uvedge := range islandA.Edges {
			uvedge.VA = phantoms.root(uvedge.VA)
			uvedge.VB = phantoms.root(uvedge.VB)
			uvedge.update()
		}
	}
	for loop, uvedge := range islandB.Edges {
		islandA.Edges[loop] = uvedge
	}

	for face, uvface := range islandB.Faces {
		uvface.Island = islandA
		for loop, v := range uvface.Vertices {
			uvface.Vertices[loop] = phantoms.root(v)
		}
		uvface.Flipped = uvface.Flipped != flipped
		islandA.Faces[face] = uvface
	}
	if isMergedMine {
		for _, uvface := range islandA.Faces {
			for loop, v := range uvface.Vertices {
				uvface.Vertices[loop] = phantoms.root(v)
			}
		}
	}

	var boundary []*UVEdge
	for _, list := range [2][]*UVEdge{islandA.Boundary, islandB.Boundary} {
		for _, uvedge := range list {
			if !merged[uvedge] {
				boundary = append(boundary, uvedge)
			}
		}
	}
	islandA.Boundary = boundary

	// the faces that were actually joined become the main ones
	for _, pair := range mergedPairs {
		edge := u.Edges[u.Mesh.Loops[pair.edge.Loop].Edge]
		edge.MainFaces = []int{pair.edge.Loop, pair.partner.Loop}
		edge.orderMainFaces()
	}
}
