package unfold

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"papernet/pkg/cfg"
	"papernet/pkg/mesh"
	"papernet/pkg/pack"
)

const tolerance = 1e-9

func smallModelConfig() cfg.Config {
	c := cfg.Default()
	c.Scale = 50
	return c
}

// cutEverything returns an unfolder whose islands are the single faces.
func cutEverything(t *testing.T, m *mesh.Mesh) *Unfolder {
	t.Helper()
	u := New(m, mgl64.Ident3())
	for _, edge := range u.Edges {
		edge.ForceCut = true
	}
	require.NoError(t, u.GenerateCuts(nil, cfg.Default().Weights))
	require.Len(t, u.Islands, len(m.Faces))
	return u
}

func checkPartition(t *testing.T, u *Unfolder) {
	t.Helper()
	var faces []int
	for _, island := range u.Islands {
		for _, face := range island.FaceIDs() {
			assert.Same(t, island, island.Faces[face].Island, "face %d points to another island", face)
		}
		faces = append(faces, island.FaceIDs()...)
	}
	sort.Ints(faces)
	want := make([]int, len(u.Mesh.Faces))
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, faces, "every face must be in exactly one island")
}

func checkBoundaryCycles(t *testing.T, island *Island) {
	t.Helper()
	for _, uvedge := range island.Boundary {
		require.NotNil(t, uvedge.NeighborRight, "boundary edge of loop %d has no right neighbour", uvedge.Loop)
		require.NotNil(t, uvedge.NeighborLeft, "boundary edge of loop %d has no left neighbour", uvedge.Loop)
		assert.Same(t, uvedge, uvedge.NeighborRight.NeighborLeft)
		assert.Same(t, uvedge, uvedge.NeighborLeft.NeighborRight)

		steps := 0
		for e := uvedge.NeighborRight; e != uvedge; e = e.NeighborRight {
			steps++
			require.LessOrEqual(t, steps, len(island.Boundary), "boundary walk from loop %d does not close", uvedge.Loop)
		}
	}
}

func TestGenerateCutsAllSeams(t *testing.T) {
	u := cutEverything(t, mesh.Cube())
	checkPartition(t, u)
	for _, island := range u.Islands {
		require.Len(t, island.Boundary, 4)
		checkBoundaryCycles(t, island)
		for l, uvedge := range island.Edges {
			// right goes clockwise, against the face winding
			assert.Same(t, island.Edges[u.Mesh.Loops[l].Prev], uvedge.NeighborRight)
		}
	}
	for _, edge := range u.Edges {
		assert.True(t, edge.IsMainCut, "edge %d", edge.ID)
		require.Len(t, edge.UVEdges, 2)
		assert.Equal(t, edge.MainFaces[0], edge.UVEdges[0].Loop)
		assert.Equal(t, edge.MainFaces[1], edge.UVEdges[1].Loop)
		assert.Same(t, edge.UVEdges[1], edge.OtherUVEdge(edge.UVEdges[0]))
		assert.Same(t, edge.UVEdges[0], edge.OtherUVEdge(edge.UVEdges[1]))
	}
	assert.Len(t, u.MarkCuts(), len(u.Edges))
}

func islandSnapshot(island *Island) []r2.Vec {
	var out []r2.Vec
	for _, v := range island.uniqueVertices() {
		out = append(out, v.Co)
	}
	return out
}

func TestJoinIslands(t *testing.T) {
	u := cutEverything(t, mesh.Cube())
	edge := u.Edges[0]
	a, b := edge.UVEdges[0], edge.UVEdges[1]
	islandA, islandB := a.Face.Island, b.Face.Island
	beforeA, beforeB := islandSnapshot(islandA), islandSnapshot(islandB)

	// two unit squares side by side cannot fit into half a unit
	absorbed, err := u.joinIslands(a, b, &r2.Vec{X: 0.5, Y: 0.5})
	require.NoError(t, err)
	require.Nil(t, absorbed)
	assert.True(t, edge.IsMainCut)
	assert.NotSame(t, a.Face.Island, b.Face.Island)
	assert.Len(t, islandA.Faces, 1)
	assert.Len(t, islandB.Faces, 1)
	assert.Empty(t, cmp.Diff(beforeA, islandSnapshot(islandA)), "rejected join moved island A")
	assert.Empty(t, cmp.Diff(beforeB, islandSnapshot(islandB)), "rejected join moved island B")

	absorbed, err = u.joinIslands(a, b, nil)
	require.NoError(t, err)
	require.NotNil(t, absorbed)
	assert.False(t, edge.IsMainCut)
	assert.Same(t, a.Face.Island, b.Face.Island)
	joined := a.Face.Island
	assert.NotSame(t, joined, absorbed)
	assert.Len(t, joined.Faces, 2)
	assert.Len(t, joined.Boundary, 6)
	assert.Len(t, joined.uniqueVertices(), 6)
	assert.Same(t, a.VA, b.VB)
	assert.Same(t, a.VB, b.VA)
	assert.Equal(t, beforeA, islandSnapshot(joined)[:4], "the bigger island must not move")

	// the faces of a joined edge lie side by side
	box := islandBounds(joined)
	assert.InDelta(t, 2, math.Max(box.X, box.Y), tolerance)
	assert.InDelta(t, 1, math.Min(box.X, box.Y), tolerance)

	again, err := u.joinIslands(a, b, nil)
	require.NoError(t, err)
	assert.Nil(t, again, "joining an island with itself")
}

// saddleFan returns eight triangles around the origin whose outer corners
// go up and down in turn. Their corner angles add up to about 13 radians, so
// no more than four of them can lie flat around the centre.
func saddleFan() *mesh.Mesh {
	positions := []mgl64.Vec3{{0, 0, 0}}
	var triangles [][]int
	for i := 0; i < 8; i++ {
		sin, cos := math.Sincos(float64(i) * math.Pi / 4)
		z := 0.9
		if i%2 == 1 {
			z = -0.9
		}
		positions = append(positions, mgl64.Vec3{cos, sin, z})
		triangles = append(triangles, []int{0, 1 + i, 1 + (i+1)%8})
	}
	m, err := mesh.New(positions, triangles)
	if err != nil {
		panic(err)
	}
	return m
}

func TestJoinIslandsRejectsOverlap(t *testing.T) {
	for _, quick := range []bool{false, true} {
		u := New(saddleFan(), mgl64.Ident3())
		u.QuickSweep = quick
		require.NoError(t, u.GenerateCuts(nil, cfg.Default().Weights))
		checkPartition(t, u)
		require.Len(t, u.Islands, 4, "quick sweep %v", quick)

		before := make(map[*Island][]r2.Vec)
		for _, island := range u.Islands {
			assert.Len(t, island.Faces, 2)
			var segments []*segment
			for _, uvedge := range island.Boundary {
				segments = append(segments, edgeSegment(uvedge))
			}
			assert.Equal(t, sweepClear, sweep(&bruteSweepline{}, segments))
			checkBoundaryCycles(t, island)
			before[island] = islandSnapshot(island)
		}

		tried := 0
		for _, edge := range u.Edges {
			if !edge.IsMainCut || len(edge.UVEdges) != 2 {
				continue
			}
			tried++
			absorbed, err := u.joinIslands(edge.UVEdges[0], edge.UVEdges[1], nil)
			require.NoError(t, err)
			assert.Nil(t, absorbed, "edge %d joined an overlapping fan", edge.ID)
			assert.True(t, edge.IsMainCut, "edge %d", edge.ID)
		}
		assert.Equal(t, 4, tried)

		for _, island := range u.Islands {
			assert.Len(t, island.Faces, 2)
			assert.Empty(t, cmp.Diff(before[island], islandSnapshot(island)), "rejected join moved island %p", island)
			for _, face := range island.FaceIDs() {
				assert.Same(t, island, island.Faces[face].Island)
			}
		}
	}
}

func islandBounds(island *Island) r2.Vec {
	lo := r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, v := range island.uniqueVertices() {
		lo = r2.Vec{X: math.Min(lo.X, v.Co.X), Y: math.Min(lo.Y, v.Co.Y)}
		hi = r2.Vec{X: math.Max(hi.X, v.Co.X), Y: math.Max(hi.Y, v.Co.Y)}
	}
	return r2.Sub(hi, lo)
}

func TestGenerateCutsLimit(t *testing.T) {
	u := New(mesh.Cube(), mgl64.Ident3())
	require.NoError(t, u.GenerateCuts(&r2.Vec{X: 0.5, Y: 0.5}, cfg.Default().Weights))
	assert.Len(t, u.Islands, 6)
	assert.Len(t, u.MarkCuts(), 12)

	u = New(mesh.Cube(), mgl64.Ident3())
	require.NoError(t, u.GenerateCuts(&r2.Vec{X: 1.5, Y: 2.5}, cfg.Default().Weights))
	checkPartition(t, u)
	assert.Greater(t, len(u.Islands), 1, "a whole cube net cannot fit")
	for _, island := range u.Islands {
		assert.LessOrEqual(t, len(island.Faces), 2)
	}
}

func TestUnfoldCube(t *testing.T) {
	c := smallModelConfig()
	u, scale, err := Unfold(mesh.Cube(), mgl64.Ident3(), c)
	require.NoError(t, err)
	assert.Equal(t, 50.0, scale)
	checkPartition(t, u)
	assert.Len(t, u.Islands, 1, "a cube unfolds into a single net")

	joined := 0
	for _, edge := range u.Edges {
		if edge.IsMainCut {
			continue
		}
		joined++
		faceA := u.Mesh.Loops[edge.MainFaces[0]].Face
		faceB := u.Mesh.Loops[edge.MainFaces[1]].Face
		assert.Same(t, u.uvFaces[faceA].Island, u.uvFaces[faceB].Island, "joined edge %d spans two islands", edge.ID)
	}
	// the face graph of a flat net is a forest
	assert.Equal(t, len(u.Mesh.Faces)-len(u.Islands), joined)
	assert.Len(t, u.MarkCuts(), len(u.Edges)-joined)

	w, h := c.Printable()
	placed := 0
	for i, page := range u.Pages {
		assert.Equal(t, i+1, page.Number)
		placed += len(page.Islands)
	}
	assert.Equal(t, len(u.Islands), placed)

	for i, island := range u.Islands {
		assert.Equal(t, i+1, island.Number)
		assert.NotEmpty(t, island.Label)
		assert.False(t, island.IsInsideOut)
		checkBoundaryCycles(t, island)
		assert.LessOrEqual(t, island.Pos.X+island.BoundingBox.X, w+tolerance)
		assert.LessOrEqual(t, island.Pos.Y+island.BoundingBox.Y, h+tolerance)

		minX, maxX, maxY := math.Inf(1), math.Inf(-1), math.Inf(-1)
		for _, p := range island.points() {
			assert.GreaterOrEqual(t, p.X, -tolerance)
			assert.GreaterOrEqual(t, p.Y, -tolerance)
			minX, maxX, maxY = math.Min(minX, p.X), math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
		assert.InDelta(t, 0, minX, tolerance)
		assert.InDelta(t, island.BoundingBox.X, maxX, tolerance)
		assert.InDelta(t, island.BoundingBox.Y, maxY, tolerance)

		for l, uvedge := range island.Edges {
			edge := u.Edges[u.Mesh.Loops[l].Edge]
			if !edge.IsMainCut {
				assert.Equal(t, FoldConvex, u.Classify(uvedge, c.AngleEpsilon))
			} else if uvedge.Sticker == nil {
				assert.Equal(t, FoldCut, u.Classify(uvedge, c.AngleEpsilon))
			}
		}
	}

	// every cut edge gets exactly one sticker
	stickers := 0
	for _, edge := range u.Edges {
		for _, uvedge := range edge.UVEdges {
			if uvedge.Sticker != nil {
				stickers++
				assert.True(t, edge.IsMainCut, "sticker on joined edge %d", edge.ID)
			}
		}
	}
	assert.Equal(t, len(u.Edges)-joined, stickers)
}

func TestUnfoldIsDeterministic(t *testing.T) {
	c := smallModelConfig()
	var nets []*Net
	for i := 0; i < 3; i++ {
		u, _, err := Unfold(mesh.TriangulatedCube(), mgl64.Ident3(), c)
		require.NoError(t, err)
		require.Len(t, u.Islands, 1)
		assert.Len(t, u.Islands[0].Faces, 12)
		nets = append(nets, u.Net(c.PageWidth, c.PageHeight, c.Margin, c.AngleEpsilon))
	}
	for i := 1; i < len(nets); i++ {
		if diff := cmp.Diff(nets[0], nets[i]); diff != "" {
			t.Errorf("run %d differs from the first: %s", i, diff)
		}
	}
}

func TestUnfoldQuickSweep(t *testing.T) {
	c := smallModelConfig()
	c.QuickSweep = true
	for _, m := range []*mesh.Mesh{mesh.Cube(), mesh.TriangulatedCube(), mesh.Tetrahedron()} {
		u, _, err := Unfold(m, mgl64.Ident3(), c)
		require.NoError(t, err)
		assert.True(t, u.QuickSweep)
		checkPartition(t, u)
		for _, island := range u.Islands {
			checkBoundaryCycles(t, island)
		}
	}
}

func TestUnfoldTetrahedron(t *testing.T) {
	c := smallModelConfig()
	c.Stickers = false
	u, _, err := Unfold(mesh.Tetrahedron(), mgl64.Ident3(), c)
	require.NoError(t, err)
	checkPartition(t, u)
	for _, island := range u.Islands {
		checkBoundaryCycles(t, island)
		for _, m := range island.Markers {
			assert.Equal(t, MarkerNumber, m.Kind)
		}
	}
}

func TestUnfoldTooBig(t *testing.T) {
	c := cfg.Default()
	c.PageWidth, c.PageHeight, c.Margin = 1, 1, 0
	c.Stickers, c.Numbers = false, false

	_, _, err := Unfold(mesh.Box(1.5, 0.5, 0.5), mgl64.Ident3(), c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIslandTooBig))
	assert.True(t, errors.Is(err, pack.ErrTooBig))
	var islandErr *IslandError
	require.True(t, errors.As(err, &islandErr))
	assert.NotEmpty(t, islandErr.Faces)
	assert.Positive(t, islandErr.Island)

	c.AutoScale = true
	u, scale, err := Unfold(mesh.Box(1.5, 0.5, 0.5), mgl64.Ident3(), c)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, scale, 2.0)
	assert.Equal(t, math.Ceil(scale), scale)
	assert.NotEmpty(t, u.Pages)
}

func TestUnfoldLimitByPage(t *testing.T) {
	c := cfg.Default()
	c.Scale = 10
	c.Stickers, c.Numbers = false, false
	torus := func() *mesh.Mesh { return mesh.Torus(2, 0.75, 24, 12) }

	_, _, err := Unfold(torus(), mgl64.Ident3(), c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIslandTooBig)

	c.LimitByPage = true
	u, _, err := Unfold(torus(), mgl64.Ident3(), c)
	require.NoError(t, err)
	checkPartition(t, u)
	assert.Greater(t, len(u.Islands), 1)

	w, h := c.Printable()
	for _, page := range u.Pages {
		for i, a := range page.Islands {
			checkBoundaryCycles(t, a)
			assert.LessOrEqual(t, a.Pos.X+a.BoundingBox.X, w+tolerance, "island %d", a.Number)
			assert.LessOrEqual(t, a.Pos.Y+a.BoundingBox.Y, h+tolerance, "island %d", a.Number)
			for _, b := range page.Islands[i+1:] {
				overlap := a.Pos.X+a.BoundingBox.X > b.Pos.X+tolerance && b.Pos.X+b.BoundingBox.X > a.Pos.X+tolerance &&
					a.Pos.Y+a.BoundingBox.Y > b.Pos.Y+tolerance && b.Pos.Y+b.BoundingBox.Y > a.Pos.Y+tolerance
				assert.False(t, overlap, "islands %d and %d overlap on page %d", a.Number, b.Number, page.Number)
			}
		}
	}
}

func TestUnfoldRejectsMirror(t *testing.T) {
	_, _, err := Unfold(mesh.Cube(), mgl64.Diag3(mgl64.Vec3{-1, 1, 1}), smallModelConfig())
	assert.ErrorIs(t, err, mesh.ErrInvertedScale)
}

func TestNet(t *testing.T) {
	c := smallModelConfig()
	u, _, err := Unfold(mesh.Cube(), mgl64.Ident3(), c)
	require.NoError(t, err)
	net := u.Net(c.PageWidth, c.PageHeight, c.Margin, c.AngleEpsilon)
	require.Len(t, net.Pages, len(u.Pages))

	inside := func(p r2.Vec) bool {
		return p.X >= c.Margin-tolerance && p.X <= c.PageWidth-c.Margin+tolerance &&
			p.Y >= c.Margin-tolerance && p.Y <= c.PageHeight-c.Margin+tolerance
	}
	lines := 0
	for _, page := range net.Pages {
		for _, island := range page.Islands {
			require.Len(t, island.Outline, 1, "island %d", island.Number)
			for _, p := range island.Outline[0] {
				assert.True(t, inside(p), "outline point %v of island %d is off the page", p, island.Number)
			}
			for _, line := range island.Lines {
				assert.Equal(t, "convex", line.Category)
				assert.True(t, inside(line.A) && inside(line.B))
			}
			for _, m := range island.Markers {
				assert.True(t, inside(m.Center), "%s marker of island %d is off the page", m.Kind, island.Number)
			}
			lines += len(island.Lines)
		}
	}
	// every edge is either a fold or carries a sticker, drawn once either way
	assert.Equal(t, len(u.Edges), lines)
}
