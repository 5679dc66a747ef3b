package mesh

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrNoNodes       = errors.New("mesh has no nodes")
	ErrNoElements    = errors.New("mesh has no elements")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrUnknownNodeID = errors.New("unknown node id")
)

// Node is a mesh vertex in the global frame, meters
type Node struct {
	ID      int
	X, Y, Z float64
}

func (n Node) Vec() r3.Vec {
	return r3.Vec{X: n.X, Y: n.Y, Z: n.Z}
}

// Element is one cell of the mesh. Part is the id of the body the element
// was meshed from.
type Element struct {
	ID     int
	Nodes  []int // Ordered node ids, corners first
	Family ElementType
	Shell  bool
	Part   int
}

// NewElement builds an element, deriving Shell from the family. Unknown
// families are treated as solids.
func NewElement(id, part int, family ElementType, nodes []int) Element {
	return Element{
		ID:     id,
		Nodes:  nodes,
		Family: family,
		Shell:  family.IsShell(),
		Part:   part,
	}
}

// Mesh is an arena of nodes and elements addressed by their external ids
type Mesh struct {
	Nodes    []Node
	Elements []Element

	// Groups holds named node id lists supplied with the mesh, e.g.
	// boundary markers of the input file
	Groups map[string][]int

	nodeIndex map[int]int
	elemIndex map[int]int
}

func NewMesh() *Mesh {
	return &Mesh{
		Groups:    make(map[string][]int),
		nodeIndex: make(map[int]int),
		elemIndex: make(map[int]int),
	}
}

func (m *Mesh) AddNode(n Node) error {
	if _, exists := m.nodeIndex[n.ID]; exists {
		return fmt.Errorf("%w: node %d", ErrDuplicateID, n.ID)
	}
	m.nodeIndex[n.ID] = len(m.Nodes)
	m.Nodes = append(m.Nodes, n)
	return nil
}

func (m *Mesh) AddElement(e Element) error {
	if _, exists := m.elemIndex[e.ID]; exists {
		return fmt.Errorf("%w: element %d", ErrDuplicateID, e.ID)
	}
	m.elemIndex[e.ID] = len(m.Elements)
	m.Elements = append(m.Elements, e)
	return nil
}

// AddGroup appends node ids to a named group
func (m *Mesh) AddGroup(name string, nodeIDs ...int) {
	m.Groups[name] = append(m.Groups[name], nodeIDs...)
}

func (m *Mesh) Node(id int) (Node, bool) {
	i, ok := m.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return m.Nodes[i], true
}

func (m *Mesh) Element(id int) (Element, bool) {
	i, ok := m.elemIndex[id]
	if !ok {
		return Element{}, false
	}
	return m.Elements[i], true
}

// Coords returns the position of a node
func (m *Mesh) Coords(id int) (r3.Vec, bool) {
	n, ok := m.Node(id)
	if !ok {
		return r3.Vec{}, false
	}
	return n.Vec(), true
}

func (m *Mesh) NumNodes() int    { return len(m.Nodes) }
func (m *Mesh) NumElements() int { return len(m.Elements) }

// Validate reports a mesh that has nothing to export
func (m *Mesh) Validate() error {
	if m == nil || len(m.Nodes) == 0 {
		return ErrNoNodes
	}
	if len(m.Elements) == 0 {
		return ErrNoElements
	}
	return nil
}

// CheckElement verifies every node of an element exists
func (m *Mesh) CheckElement(e Element) error {
	for _, id := range e.Nodes {
		if _, ok := m.nodeIndex[id]; !ok {
			return fmt.Errorf("%w: element %d references node %d", ErrUnknownNodeID, e.ID, id)
		}
	}
	return nil
}

// SortedElements returns the elements ordered by id
func (m *Mesh) SortedElements() []Element {
	out := make([]Element, len(m.Elements))
	copy(out, m.Elements)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortedNodes returns the nodes ordered by id
func (m *Mesh) SortedNodes() []Node {
	out := make([]Node, len(m.Nodes))
	copy(out, m.Nodes)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PartIDs returns the distinct part ids, sorted
func (m *Mesh) PartIDs() []int {
	ids := lo.Uniq(lo.Map(m.Elements, func(e Element, _ int) int { return e.Part }))
	sort.Ints(ids)
	return ids
}

// PartNodes returns the set of node ids used by elements of a part
func (m *Mesh) PartNodes(part int) map[int]bool {
	nodes := make(map[int]bool)
	for _, e := range m.Elements {
		if e.Part != part {
			continue
		}
		for _, id := range e.Nodes {
			nodes[id] = true
		}
	}
	return nodes
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Nodes: %d\n", m.NumNodes())
	fmt.Printf("  Elements: %d\n", m.NumElements())

	typeCounts := lo.CountValuesBy(m.Elements, func(e Element) ElementType { return e.Family })
	types := lo.Keys(typeCounts)
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	fmt.Printf("  Element types:\n")
	for _, t := range types {
		fmt.Printf("    %s: %d\n", t, typeCounts[t])
	}
	fmt.Printf("  Parts: %v\n", m.PartIDs())
	if len(m.Groups) > 0 {
		names := lo.Keys(m.Groups)
		sort.Strings(names)
		fmt.Printf("  Node groups:\n")
		for _, name := range names {
			fmt.Printf("    %s: %d nodes\n", name, len(m.Groups[name]))
		}
	}
}
