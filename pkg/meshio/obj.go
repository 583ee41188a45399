package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"papernet/pkg/mesh"
)

// ReadOBJ parses the vertex and face statements of a Wavefront OBJ stream.
// Texture and normal references in faces are accepted and dropped, and so is
// every other statement.
func ReadOBJ(r io.Reader) (*mesh.Mesh, error) {
	var positions []mgl64.Vec3
	var polygons [][]int

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var co mgl64.Vec3
			for i := range co {
				value, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				co[i] = value
			}
			positions = append(positions, co)
		case "f":
			polygon := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				index, err := objIndex(ref, len(positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				polygon = append(polygon, index)
			}
			polygons = append(polygons, polygon)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mesh.New(positions, polygons)
}

// objIndex converts a face reference like "7", "7/2" or "-1//3" to a
// zero-based vertex index. Negative references count back from the last
// vertex read so far.
func objIndex(ref string, count int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face reference %q", ref)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return count + n, nil
	}
	return 0, fmt.Errorf("face reference 0 is not allowed")
}
