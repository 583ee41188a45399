// Package meshio reads polygon meshes from Wavefront OBJ and STL files.
package meshio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"papernet/pkg/mesh"
)

// ReadFile loads a mesh, choosing the reader by file extension. weld is the
// distance below which STL vertices are merged; OBJ files carry their own
// vertex sharing and ignore it.
func ReadFile(path string, weld float64) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m *mesh.Mesh
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		m, err = ReadOBJ(f)
	case ".stl":
		m, err = ReadSTL(f, weld)
	default:
		return nil, fmt.Errorf("%s: unsupported mesh format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
