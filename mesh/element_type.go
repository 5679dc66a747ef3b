package mesh

// ElementType represents the topological family of an element
type ElementType int

const (
	Unknown ElementType = iota
	// 1D elements, read from files but never exported
	Line
	Line3 // 3-node line (quadratic)
	// 2D (shell) elements
	Triangle
	Quad
	Triangle6 // 6-node triangle (quadratic)
	Quad8     // 8-node quad (quadratic)
	Quad9     // 9-node quad
	// 3D (solid) elements
	Tet
	Hex
	Wedge
	Pyramid
	Tet10     // 10-node tetrahedron (quadratic)
	Hex20     // 20-node hexahedron (quadratic)
	Hex27     // 27-node hexahedron
	Wedge15   // 15-node wedge (quadratic)
	Wedge18   // 18-node wedge
	Pyramid13 // 13-node pyramid (quadratic)
	Pyramid14 // 14-node pyramid
)

// String representation of element types
func (e ElementType) String() string {
	names := []string{
		"Unknown",
		"Line", "Line3",
		"Triangle", "Quad", "Triangle6", "Quad8", "Quad9",
		"Tet", "Hex", "Wedge", "Pyramid",
		"Tet10", "Hex20", "Hex27", "Wedge15", "Wedge18", "Pyramid13", "Pyramid14",
	}
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// GetDimension returns the spatial dimension of the element, -1 if unknown
func (e ElementType) GetDimension() int {
	switch e {
	case Line, Line3:
		return 1
	case Triangle, Quad, Triangle6, Quad8, Quad9:
		return 2
	case Tet, Hex, Wedge, Pyramid, Tet10, Hex20, Hex27, Wedge15, Wedge18, Pyramid13, Pyramid14:
		return 3
	default:
		return -1
	}
}

// IsShell reports whether the family is a 2D surface element
func (e ElementType) IsShell() bool {
	return e.GetDimension() == 2
}

// GetNumNodes returns the number of nodes for each element type
func (e ElementType) GetNumNodes() int {
	switch e {
	case Line:
		return 2
	case Line3:
		return 3
	case Triangle:
		return 3
	case Quad:
		return 4
	case Triangle6:
		return 6
	case Quad8:
		return 8
	case Quad9:
		return 9
	case Tet:
		return 4
	case Hex:
		return 8
	case Wedge:
		return 6
	case Pyramid:
		return 5
	case Tet10:
		return 10
	case Hex20:
		return 20
	case Hex27:
		return 27
	case Wedge15:
		return 15
	case Wedge18:
		return 18
	case Pyramid13:
		return 13
	case Pyramid14:
		return 14
	default:
		return 0
	}
}

// Linear returns the first order family sharing this element's corners
func (e ElementType) Linear() ElementType {
	switch e {
	case Line3:
		return Line
	case Triangle6:
		return Triangle
	case Quad8, Quad9:
		return Quad
	case Tet10:
		return Tet
	case Hex20, Hex27:
		return Hex
	case Wedge15, Wedge18:
		return Wedge
	case Pyramid13, Pyramid14:
		return Pyramid
	default:
		return e
	}
}

// GetNumCorners returns the number of corner (vertex) nodes
func (e ElementType) GetNumCorners() int {
	return e.Linear().GetNumNodes()
}

// FamilyFromNodeCount guesses the family from a raw node count. Counts
// that match no family give Unknown.
func FamilyFromNodeCount(n int, shell bool) ElementType {
	if shell {
		switch n {
		case 3:
			return Triangle
		case 4:
			return Quad
		case 6:
			return Triangle6
		case 8:
			return Quad8
		case 9:
			return Quad9
		}
		return Unknown
	}
	switch n {
	case 4:
		return Tet
	case 5:
		return Pyramid
	case 6:
		return Wedge
	case 8:
		return Hex
	case 10:
		return Tet10
	case 13:
		return Pyramid13
	case 15:
		return Wedge15
	case 18:
		return Wedge18
	case 20:
		return Hex20
	case 27:
		return Hex27
	}
	return Unknown
}
