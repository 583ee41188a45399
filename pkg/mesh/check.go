package mesh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// TwistThreshold is the allowed distance of an n-gon's vertex from the face
// plane, relative to the face's diameter.
var TwistThreshold = 0.01

// ErrInvertedScale means the world matrix mirrors the model.
var ErrInvertedScale = errors.New("the object is flipped inside-out; apply its scale to fix it")

// DefectError lists the elements that make a model impossible to unfold.
// The IDs are meant for highlighting the offenders in an editor.
type DefectError struct {
	NullEdges    []int
	NullFaces    []int
	TwistedFaces []int
}

func (e *DefectError) Error() string {
	var b strings.Builder
	b.WriteString("the model contains:")
	if len(e.NullEdges) > 0 {
		fmt.Fprintf(&b, " %d zero-length edge(s);", len(e.NullEdges))
	}
	if len(e.NullFaces) > 0 {
		fmt.Fprintf(&b, " %d zero-area face(s);", len(e.NullFaces))
	}
	if len(e.TwistedFaces) > 0 {
		fmt.Fprintf(&b, " %d twisted polygon(s);", len(e.TwistedFaces))
	}
	var cure []string
	if len(e.NullEdges) > 0 || len(e.NullFaces) > 0 {
		cure = append(cure, "remove doubles")
	}
	if len(e.TwistedFaces) > 0 {
		cure = append(cure, "triangulate")
	}
	fmt.Fprintf(&b, " %s to fix them", strings.Join(cure, " and "))
	return b.String()
}

// Check looks for geometry that cannot be unfolded: zero-length edges,
// zero-area faces, twisted n-gons and a mirroring world matrix.
func (m *Mesh) Check(matrix mgl64.Mat3, epsilon float64) error {
	if matrix.Det() <= 0 {
		return ErrInvertedScale
	}

	var defects DefectError
	for _, e := range m.Edges {
		if len(e.Loops) > 0 && m.EdgeLength(e.ID) < epsilon {
			defects.NullEdges = append(defects.NullEdges, e.ID)
		}
	}
	for _, f := range m.Faces {
		if m.FaceArea(f.ID) < epsilon {
			defects.NullFaces = append(defects.NullFaces, f.ID)
		}
		if m.isTwisted(f.ID) {
			defects.TwistedFaces = append(defects.TwistedFaces, f.ID)
		}
	}
	if len(defects.NullEdges) == 0 && len(defects.NullFaces) == 0 && len(defects.TwistedFaces) == 0 {
		return nil
	}
	return &defects
}

func (m *Mesh) isTwisted(face int) bool {
	verts := m.FaceVerts(face)
	if len(verts) <= 3 {
		return false
	}
	normal := m.Faces[face].Normal
	center := m.FaceCenter(face)
	planeD := center.Dot(normal)
	diameter := 0.0
	for _, v := range verts {
		diameter = max(diameter, center.Sub(v).Len())
	}
	threshold := TwistThreshold * diameter
	for _, v := range verts {
		d := v.Dot(normal) - planeD
		if d > threshold || -d > threshold {
			return true
		}
	}
	return false
}
