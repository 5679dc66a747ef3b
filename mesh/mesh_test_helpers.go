package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Box describes a structured block of hexahedra shared by tests across
// packages
type Box struct {
	Part      int
	Min       r3.Vec
	Size      r3.Vec
	Divisions [3]int // Cells along X, Y, Z
}

// BoxSides holds the node ids on each side of a meshed box, keyed by the
// outward direction label ("+X", "-Z", ...)
type BoxSides map[string][]int

// AppendBox meshes b into m as hexahedra, numbering nodes and elements from
// the next free ids.
func AppendBox(m *Mesh, b Box) BoxSides {
	nx, ny, nz := b.Divisions[0], b.Divisions[1], b.Divisions[2]
	firstNode, firstElem := m.nextNodeID(), m.nextElementID()
	nodeID := func(i, j, k int) int {
		return firstNode + i + j*(nx+1) + k*(nx+1)*(ny+1)
	}
	sides := make(BoxSides)
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				id := nodeID(i, j, k)
				_ = m.AddNode(Node{
					ID: id,
					X:  b.Min.X + b.Size.X*float64(i)/float64(nx),
					Y:  b.Min.Y + b.Size.Y*float64(j)/float64(ny),
					Z:  b.Min.Z + b.Size.Z*float64(k)/float64(nz),
				})
				if i == 0 {
					sides["-X"] = append(sides["-X"], id)
				}
				if i == nx {
					sides["+X"] = append(sides["+X"], id)
				}
				if j == 0 {
					sides["-Y"] = append(sides["-Y"], id)
				}
				if j == ny {
					sides["+Y"] = append(sides["+Y"], id)
				}
				if k == 0 {
					sides["-Z"] = append(sides["-Z"], id)
				}
				if k == nz {
					sides["+Z"] = append(sides["+Z"], id)
				}
			}
		}
	}
	eid := firstElem
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				_ = m.AddElement(NewElement(eid, b.Part, Hex, []int{
					nodeID(i, j, k), nodeID(i+1, j, k), nodeID(i+1, j+1, k), nodeID(i, j+1, k),
					nodeID(i, j, k+1), nodeID(i+1, j, k+1), nodeID(i+1, j+1, k+1), nodeID(i, j+1, k+1),
				}))
				eid++
			}
		}
	}
	return sides
}

// AppendPlate meshes an nx by ny grid of quad shells in the plane z = z0
func AppendPlate(m *Mesh, part int, min r3.Vec, sizeX, sizeY float64, nx, ny int) []int {
	firstNode, firstElem := m.nextNodeID(), m.nextElementID()
	nodeID := func(i, j int) int { return firstNode + i + j*(nx+1) }
	var ids []int
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			id := nodeID(i, j)
			_ = m.AddNode(Node{
				ID: id,
				X:  min.X + sizeX*float64(i)/float64(nx),
				Y:  min.Y + sizeY*float64(j)/float64(ny),
				Z:  min.Z,
			})
			ids = append(ids, id)
		}
	}
	eid := firstElem
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			_ = m.AddElement(NewElement(eid, part, Quad, []int{
				nodeID(i, j), nodeID(i+1, j), nodeID(i+1, j+1), nodeID(i, j+1),
			}))
			eid++
		}
	}
	return ids
}

func (m *Mesh) nextNodeID() int {
	next := 1
	for _, n := range m.Nodes {
		if n.ID >= next {
			next = n.ID + 1
		}
	}
	return next
}

func (m *Mesh) nextElementID() int {
	next := 1
	for _, e := range m.Elements {
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	return next
}
