package unfold

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"papernet/pkg/cfg"
	"papernet/pkg/mesh"
)

func TestCubeAngles(t *testing.T) {
	u := New(mesh.Cube(), mgl64.Ident3())
	for _, edge := range u.Edges {
		if len(edge.MainFaces) != 2 {
			t.Fatalf("edge %d has main faces %v, want two", edge.ID, edge.MainFaces)
		}
		if got := u.Mesh.Loops[edge.MainFaces[0]].Vert; got != edge.VA {
			t.Errorf("edge %d: first main loop starts at vertex %d, want %d", edge.ID, got, edge.VA)
		}
		if math.Abs(edge.Angle-math.Pi/2) > 1e-9 {
			t.Errorf("edge %d: angle %g, want a convex right angle", edge.ID, edge.Angle)
		}
	}
}

func TestGeneratePriority(t *testing.T) {
	u := New(mesh.Cube(), mgl64.Ident3())
	tests := []struct {
		name    string
		angle   float64
		average float64
		want    float64
	}{
		{"convex", math.Pi / 2, 1, 0.5*0.5 - 0.05},
		{"concave", -math.Pi / 2, 1, 1*0.5 - 0.05},
		{"flat long", 0, 0.5, -0.1},
	}
	for _, test := range tests {
		edge := u.Edges[0]
		edge.Angle = test.angle
		edge.GeneratePriority(cfg.Default().Weights, test.average)
		if diff := cmp.Diff(test.want, edge.Priority, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("test %s: priority incorrect: %s", test.name, diff)
		}
	}
}

func TestChooseMainFacesNonManifold(t *testing.T) {
	// three triangles on the x axis; the two flat ones must be chosen
	m, err := mesh.New([]mgl64.Vec3{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, -1, 0},
		{0, 0, 1},
	}, [][]int{
		{0, 1, 2},
		{1, 0, 3},
		{0, 1, 4},
	})
	if err != nil {
		t.Fatalf("mesh.New: %s", err)
	}
	u := New(m, mgl64.Ident3())
	id, err := m.FindEdge(0, 1)
	if err != nil {
		t.Fatalf("FindEdge: %s", err)
	}
	edge := u.Edges[id]
	if diff := cmp.Diff([]int{0, 3}, edge.MainFaces); diff != "" {
		t.Errorf("main faces incorrect: %s", diff)
	}
	if !edge.IsCut(2) {
		t.Errorf("IsCut(2) = false, the third face must always be cut off")
	}
	edge.IsMainCut = false
	if edge.IsCut(0) || edge.IsCut(1) {
		t.Errorf("main faces reported cut after joining them")
	}
	if !edge.IsCut(2) {
		t.Errorf("IsCut(2) = false after joining the main faces")
	}
}

func TestCalculateAngleConcave(t *testing.T) {
	// two triangles folded upwards along the x axis form a valley
	m, err := mesh.New([]mgl64.Vec3{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 1},
		{0, -1, 1},
	}, [][]int{
		{0, 1, 2},
		{1, 0, 3},
	})
	if err != nil {
		t.Fatalf("mesh.New: %s", err)
	}
	u := New(m, mgl64.Ident3())
	id, _ := m.FindEdge(0, 1)
	if got := u.Edges[id].Angle; math.Abs(got+math.Pi/2) > 1e-9 {
		t.Errorf("angle = %g, want %g", got, -math.Pi/2)
	}
}

func TestCalculateAngleDegenerateFace(t *testing.T) {
	// the first triangle has all corners on the x axis and no normal
	m, err := mesh.New([]mgl64.Vec3{
		{0, 0, 0},
		{1, 0, 0},
		{2, 0, 0},
		{0, -1, 0},
	}, [][]int{
		{0, 1, 2},
		{1, 0, 3},
	})
	if err != nil {
		t.Fatalf("mesh.New: %s", err)
	}
	u := New(m, mgl64.Ident3())
	id, _ := m.FindEdge(0, 1)
	edge := u.Edges[id]
	if edge.Angle != -math.Pi {
		t.Errorf("angle = %g, want %g", edge.Angle, -math.Pi)
	}
	// such an edge is the first one to be cut
	edge.GeneratePriority(cfg.Default().Weights, edge.Length())
	want := cfg.Default().Weights.Concave + cfg.Default().Weights.Length
	if diff := cmp.Diff(want, edge.Priority, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("priority incorrect: %s", diff)
	}
}

func TestCalculateAngleInconsistentWinding(t *testing.T) {
	tests := []struct {
		name  string
		faces [][]int
		want  float64
	}{
		{"consistent valley", [][]int{{0, 1, 2}, {1, 0, 3}}, -math.Pi / 2},
		// both faces run from 0 to 1, so the sign cannot be trusted
		{"flipped valley", [][]int{{0, 1, 2}, {0, 1, 3}}, math.Pi / 2},
		{"flipped ridge", [][]int{{1, 0, 2}, {1, 0, 3}}, math.Pi / 2},
	}
	for _, test := range tests {
		m, err := mesh.New([]mgl64.Vec3{
			{0, 0, 0},
			{1, 0, 0},
			{0, 1, 1},
			{0, -1, 1},
		}, test.faces)
		if err != nil {
			t.Fatalf("test %s: mesh.New: %s", test.name, err)
		}
		u := New(m, mgl64.Ident3())
		id, _ := m.FindEdge(0, 1)
		if got := u.Edges[id].Angle; math.Abs(got-test.want) > 1e-9 {
			t.Errorf("test %s: angle = %g, want %g", test.name, got, test.want)
		}
	}
}
