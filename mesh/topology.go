package mesh

import (
	"errors"
	"fmt"
)

var ErrShortElement = errors.New("element has fewer nodes than its family requires")

// MaxFallbackFaceNodes bounds the single face built for irregular elements
const MaxFallbackFaceNodes = 8

var (
	tetFaces = [][]int{
		{0, 1, 2}, // Face 0
		{0, 2, 3}, // Face 1
		{0, 3, 1}, // Face 2
		{1, 3, 2}, // Face 3
	}
	hexFaces = [][]int{
		{0, 1, 2, 3}, // Face 0 (bottom)
		{4, 7, 6, 5}, // Face 1 (top)
		{0, 4, 5, 1}, // Face 2
		{1, 5, 6, 2}, // Face 3
		{2, 6, 7, 3}, // Face 4
		{3, 7, 4, 0}, // Face 5
	}
	wedgeFaces = [][]int{
		{0, 1, 2},    // Face 0 (bottom tri)
		{3, 5, 4},    // Face 1 (top tri)
		{0, 3, 4, 1}, // Face 2 (quad)
		{1, 4, 5, 2}, // Face 3 (quad)
		{0, 2, 5, 3}, // Face 4 (quad)
	}
	pyramidFaces = [][]int{
		{0, 3, 2, 1}, // Face 0 (base quad)
		{0, 1, 4},    // Face 1 (tri)
		{1, 2, 4},    // Face 2 (tri)
		{2, 3, 4},    // Face 3 (tri)
		{3, 0, 4},    // Face 4 (tri)
	}
	triFaces  = [][]int{{0, 1, 2}}
	quadFaces = [][]int{{0, 1, 2, 3}}
)

// FaceTable returns the local corner index tuples of each face of the
// family. Quadratic families share the table of their linear counterpart.
// Unknown families return nil.
func FaceTable(e ElementType) [][]int {
	switch e.Linear() {
	case Tet:
		return tetFaces
	case Hex:
		return hexFaces
	case Wedge:
		return wedgeFaces
	case Pyramid:
		return pyramidFaces
	case Triangle:
		return triFaces
	case Quad:
		return quadFaces
	default:
		return nil
	}
}

// CornerNodes returns the element's corner node ids, dropping mid-side
// nodes of quadratic families.
func CornerNodes(el Element) ([]int, error) {
	nc := el.Family.GetNumCorners()
	if nc == 0 {
		return el.Nodes, nil
	}
	if len(el.Nodes) < nc {
		return nil, fmt.Errorf("%w: element %d (%s) has %d nodes, needs %d",
			ErrShortElement, el.ID, el.Family, len(el.Nodes), nc)
	}
	return el.Nodes[:nc], nil
}

// ElementFaces returns the faces of an element as ordered global node ids.
// Elements with no face table fall back to one face made of up to the
// first MaxFallbackFaceNodes nodes.
func ElementFaces(el Element) ([][]int, error) {
	table := FaceTable(el.Family)
	if table == nil {
		if len(el.Nodes) == 0 {
			return nil, fmt.Errorf("%w: element %d has no nodes", ErrShortElement, el.ID)
		}
		n := len(el.Nodes)
		if n > MaxFallbackFaceNodes {
			n = MaxFallbackFaceNodes
		}
		face := make([]int, n)
		copy(face, el.Nodes[:n])
		return [][]int{face}, nil
	}
	v, err := CornerNodes(el)
	if err != nil {
		return nil, err
	}
	faces := make([][]int, len(table))
	for i, local := range table {
		face := make([]int, len(local))
		for j, l := range local {
			face[j] = v[l]
		}
		faces[i] = face
	}
	return faces, nil
}
