package meshio

import (
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hschendel/stl"

	"papernet/pkg/mesh"
)

// ReadSTL parses an ASCII or binary STL stream. STL stores every triangle on
// its own, so corners closer than weld (or identical, when weld is 0) are
// merged into shared vertices.
func ReadSTL(r io.ReadSeeker, weld float64) (*mesh.Mesh, error) {
	solid, err := stl.ReadAll(r)
	if err != nil {
		return nil, err
	}

	corners := make([]mgl64.Vec3, 0, 3*len(solid.Triangles))
	for i, t := range solid.Triangles {
		for _, v := range t.Vertices {
			for _, c := range v {
				if math32.IsNaN(c) || math32.IsInf(c, 0) {
					return nil, fmt.Errorf("triangle %d has a non-finite coordinate", i)
				}
			}
			corners = append(corners, mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])})
		}
	}

	tree := newWeldTree(corners, weld)
	var positions []mgl64.Vec3
	polygons := make([][]int, 0, len(solid.Triangles))
	for i := 0; i < len(corners); i += 3 {
		var polygon []int
		for _, co := range corners[i : i+3] {
			index, ok := tree.find(co)
			if !ok {
				index = len(positions)
				positions = append(positions, co)
				tree.add(co, index)
			}
			polygon = append(polygon, index)
		}
		// welding can collapse a sliver triangle to a line
		if polygon[0] == polygon[1] || polygon[1] == polygon[2] || polygon[2] == polygon[0] {
			continue
		}
		polygons = append(polygons, polygon)
	}
	return mesh.New(positions, polygons)
}
