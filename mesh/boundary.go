package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/dynaprep/utils"
)

// FaceKey identifies a face independently of node order and orientation
type FaceKey struct {
	n int
	v [MaxFallbackFaceNodes]int
}

func NewFaceKey(nodes []int) FaceKey {
	var k FaceKey
	k.n = len(nodes)
	if k.n > MaxFallbackFaceNodes {
		k.n = MaxFallbackFaceNodes
	}
	copy(k.v[:], nodes[:k.n])
	sort.Ints(k.v[:k.n])
	return k
}

// Nodes returns the sorted node ids of the key
func (k FaceKey) Nodes() []int {
	out := make([]int, k.n)
	copy(out, k.v[:k.n])
	return out
}

// BoundaryFace is a face bordering exactly one element
type BoundaryFace struct {
	Element int
	Nodes   []int // Ordered corner node ids
}

// FaceIndex maps every element face to the element entries that produced it
type FaceIndex struct {
	Owners map[FaceKey][]BoundaryFace
	Order  []FaceKey // First appearance order
}

// BuildFaceIndex decomposes every solid element into faces. Elements whose
// faces cannot be built are recorded in log and skipped.
func BuildFaceIndex(m *Mesh, log *utils.RunLog) *FaceIndex {
	fi := &FaceIndex{Owners: make(map[FaceKey][]BoundaryFace)}
	for _, el := range m.SortedElements() {
		if el.Shell || el.Family.GetDimension() == 1 {
			continue
		}
		faces, err := ElementFaces(el)
		if err != nil {
			log.Skip(utils.StageTopology, fmt.Sprintf("element %d", el.ID), err)
			continue
		}
		for _, face := range faces {
			key := NewFaceKey(face)
			if _, exists := fi.Owners[key]; !exists {
				fi.Order = append(fi.Order, key)
			}
			fi.Owners[key] = append(fi.Owners[key], BoundaryFace{Element: el.ID, Nodes: face})
		}
	}
	return fi
}

// Boundary is the set of faces on the outer surface of the mesh
type Boundary struct {
	Faces  []BoundaryFace
	ByNode map[int][]int // Node id -> indices into Faces
}

// ExtractBoundary keeps the solid faces owned by exactly one element and
// every shell element's own face.
func ExtractBoundary(m *Mesh, log *utils.RunLog) *Boundary {
	fi := BuildFaceIndex(m, log)
	b := &Boundary{ByNode: make(map[int][]int)}
	for _, key := range fi.Order {
		owners := fi.Owners[key]
		if len(owners) == 1 {
			b.add(owners[0])
		}
	}
	for _, el := range m.SortedElements() {
		if !el.Shell {
			continue
		}
		corners, err := CornerNodes(el)
		if err != nil {
			log.Skip(utils.StageTopology, fmt.Sprintf("element %d", el.ID), err)
			continue
		}
		face := make([]int, len(corners))
		copy(face, corners)
		b.add(BoundaryFace{Element: el.ID, Nodes: face})
	}
	return b
}

func (b *Boundary) add(f BoundaryFace) {
	idx := len(b.Faces)
	b.Faces = append(b.Faces, f)
	for _, id := range f.Nodes {
		b.ByNode[id] = append(b.ByNode[id], idx)
	}
}

// FacesWithin returns the boundary faces whose nodes all belong to nodes,
// in boundary order.
func (b *Boundary) FacesWithin(nodes map[int]bool) []BoundaryFace {
	candidates := make(map[int]bool)
	for id := range nodes {
		for _, fi := range b.ByNode[id] {
			candidates[fi] = true
		}
	}
	indices := make([]int, 0, len(candidates))
	for fi := range candidates {
		face := b.Faces[fi]
		inside := true
		for _, id := range face.Nodes {
			if !nodes[id] {
				inside = false
				break
			}
		}
		if inside {
			indices = append(indices, fi)
		}
	}
	sort.Ints(indices)
	out := make([]BoundaryFace, len(indices))
	for i, fi := range indices {
		out[i] = b.Faces[fi]
	}
	return out
}

// Patches groups faces into connected components, two faces being
// connected when they share an edge. Components hold indices into faces
// and are ordered by their smallest index.
func Patches(faces []BoundaryFace) [][]int {
	g := simple.NewUndirectedGraph()
	edges := make(map[[2]int][]int)
	for i, f := range faces {
		g.AddNode(simple.Node(i))
		n := len(f.Nodes)
		for j := 0; j < n; j++ {
			a, c := f.Nodes[j], f.Nodes[(j+1)%n]
			if a == c {
				continue
			}
			if a > c {
				a, c = c, a
			}
			edges[[2]int{a, c}] = append(edges[[2]int{a, c}], i)
		}
	}
	for _, shared := range edges {
		for k := 1; k < len(shared); k++ {
			if shared[k] == shared[0] {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(shared[0]), T: simple.Node(shared[k])})
		}
	}
	var patches [][]int
	for _, cc := range topo.ConnectedComponents(g) {
		ids := make([]int, len(cc))
		for i, n := range cc {
			ids[i] = int(n.ID())
		}
		sort.Ints(ids)
		patches = append(patches, ids)
	}
	sort.Slice(patches, func(i, j int) bool { return patches[i][0] < patches[j][0] })
	return patches
}

// EdgeLengths returns the length of every polygon edge of the faces,
// wrapping from the last vertex back to the first. Repeated corners of
// degenerate faces contribute no edge.
func (m *Mesh) EdgeLengths(faces []BoundaryFace) ([]float64, error) {
	var lengths []float64
	for _, f := range faces {
		n := len(f.Nodes)
		for j := 0; j < n; j++ {
			a, c := f.Nodes[j], f.Nodes[(j+1)%n]
			if a == c {
				continue
			}
			pa, ok := m.Coords(a)
			if !ok {
				return nil, fmt.Errorf("%w: %d", ErrUnknownNodeID, a)
			}
			pc, ok := m.Coords(c)
			if !ok {
				return nil, fmt.Errorf("%w: %d", ErrUnknownNodeID, c)
			}
			lengths = append(lengths, r3.Norm(r3.Sub(pa, pc)))
		}
	}
	return lengths, nil
}
