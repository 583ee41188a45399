package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box returns a closed box with one corner at the origin, made of six quads
// with outward normals.
func Box(width, depth, height float64) *Mesh {
	verts := []mgl64.Vec3{
		{0, 0, 0},
		{width, 0, 0},
		{width, depth, 0},
		{0, depth, 0},
		{0, 0, height},
		{width, 0, height},
		{width, depth, height},
		{0, depth, height},
	}
	m, err := New(verts, boxQuads)
	if err != nil {
		panic(err)
	}
	return m
}

var boxQuads = [][]int{
	{0, 3, 2, 1}, // bottom
	{4, 5, 6, 7}, // top
	{0, 1, 5, 4}, // front
	{1, 2, 6, 5}, // right
	{2, 3, 7, 6}, // back
	{3, 0, 4, 7}, // left
}

// Cube returns a unit cube.
func Cube() *Mesh {
	return Box(1, 1, 1)
}

// TriangulatedCube returns a unit cube with every side split into two
// triangles.
func TriangulatedCube() *Mesh {
	cube := Cube()
	positions := make([]mgl64.Vec3, len(cube.Verts))
	for i, v := range cube.Verts {
		positions[i] = v.Co
	}
	var triangles [][]int
	for _, q := range boxQuads {
		triangles = append(triangles, []int{q[0], q[1], q[2]}, []int{q[0], q[2], q[3]})
	}
	m, err := New(positions, triangles)
	if err != nil {
		panic(err)
	}
	return m
}

// Tetrahedron returns the corner tetrahedron spanned by the unit axes.
func Tetrahedron() *Mesh {
	m, err := New(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[][]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	)
	if err != nil {
		panic(err)
	}
	return m
}

// Torus returns a torus around the z axis made of segments×rings quads.
// major is the distance from the axis to the centre of the tube, minor the
// radius of the tube.
func Torus(major, minor float64, segments, rings int) *Mesh {
	var verts []mgl64.Vec3
	for i := 0; i < segments; i++ {
		sinT, cosT := math.Sincos(2 * math.Pi * float64(i) / float64(segments))
		for j := 0; j < rings; j++ {
			sinP, cosP := math.Sincos(2 * math.Pi * float64(j) / float64(rings))
			d := major + minor*cosP
			verts = append(verts, mgl64.Vec3{d * cosT, d * sinT, minor * sinP})
		}
	}
	at := func(i, j int) int {
		return (i%segments)*rings + j%rings
	}
	var quads [][]int
	for i := 0; i < segments; i++ {
		for j := 0; j < rings; j++ {
			quads = append(quads, []int{at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)})
		}
	}
	m, err := New(verts, quads)
	if err != nil {
		panic(err)
	}
	return m
}
