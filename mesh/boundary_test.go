package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/dynaprep/utils"
)

func setOf(ids []int) map[int]bool {
	s := make(map[int]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func TestFaceKey(t *testing.T) {
	assert.Equal(t, NewFaceKey([]int{4, 1, 3, 2}), NewFaceKey([]int{1, 2, 3, 4}))
	assert.NotEqual(t, NewFaceKey([]int{1, 2, 3}), NewFaceKey([]int{1, 2, 3, 4}))
	assert.Equal(t, []int{1, 2, 3}, NewFaceKey([]int{3, 2, 1}).Nodes())
}

func TestExtractBoundarySingleHex(t *testing.T) {
	m := NewMesh()
	AppendBox(m, Box{Part: 1, Size: r3.Vec{X: 1, Y: 1, Z: 1}, Divisions: [3]int{1, 1, 1}})
	b := ExtractBoundary(m, nil)
	assert.Len(t, b.Faces, 6)
	for _, f := range b.Faces {
		assert.Equal(t, 1, f.Element)
		assert.Len(t, f.Nodes, 4)
	}
}

func TestExtractBoundaryBlockOfHexes(t *testing.T) {
	// Six unit hexahedra in a 3x2x1 block share seven internal faces
	m := NewMesh()
	sides := AppendBox(m, Box{Part: 1, Size: r3.Vec{X: 3, Y: 2, Z: 1}, Divisions: [3]int{3, 2, 1}})
	require.Equal(t, 6, m.NumElements())

	fi := BuildFaceIndex(m, nil)
	interior := 0
	for _, key := range fi.Order {
		n := len(fi.Owners[key])
		assert.True(t, n == 1 || n == 2, "face owned by %d elements", n)
		if n == 2 {
			interior++
		}
	}
	assert.Equal(t, 7, interior)

	b := ExtractBoundary(m, nil)
	assert.Len(t, b.Faces, 2*(3*2+3*1+2*1))

	// Every boundary face lies on exactly one side of the outer box
	for _, f := range b.Faces {
		on := 0
		for _, ids := range sides {
			set := setOf(ids)
			inside := true
			for _, id := range f.Nodes {
				inside = inside && set[id]
			}
			if inside {
				on++
			}
		}
		assert.Equal(t, 1, on, "face %v", f.Nodes)
	}

	assert.Len(t, b.FacesWithin(setOf(sides["+Z"])), 6)
	assert.Len(t, b.FacesWithin(setOf(sides["-X"])), 2)
	assert.Len(t, b.FacesWithin(setOf(sides["+Y"])), 3)

	// Deterministic order follows element id
	for i := 1; i < len(b.Faces); i++ {
		assert.LessOrEqual(t, b.Faces[i-1].Element, b.Faces[i].Element)
	}
}

func TestExtractBoundaryTwoTets(t *testing.T) {
	m := NewMesh()
	for i, p := range []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}, {X: 1, Y: 1, Z: 1}} {
		require.NoError(t, m.AddNode(Node{ID: i + 1, X: p.X, Y: p.Y, Z: p.Z}))
	}
	require.NoError(t, m.AddElement(NewElement(1, 1, Tet, []int{1, 2, 3, 4})))
	require.NoError(t, m.AddElement(NewElement(2, 1, Tet, []int{2, 3, 4, 5})))
	b := ExtractBoundary(m, nil)
	assert.Len(t, b.Faces, 6)
	for _, f := range b.Faces {
		assert.NotEqual(t, NewFaceKey([]int{2, 3, 4}), NewFaceKey(f.Nodes))
	}
}

func TestExtractBoundaryShells(t *testing.T) {
	m := NewMesh()
	ids := AppendPlate(m, 5, r3.Vec{}, 2, 2, 2, 2)
	assert.Len(t, ids, 9)
	b := ExtractBoundary(m, nil)
	assert.Len(t, b.Faces, 4)
	assert.Len(t, b.ByNode[ids[4]], 4) // Center node touches every quad
}

func TestExtractBoundarySkipsBrokenElements(t *testing.T) {
	m := NewMesh()
	AppendBox(m, Box{Part: 1, Size: r3.Vec{X: 1, Y: 1, Z: 1}, Divisions: [3]int{1, 1, 1}})
	require.NoError(t, m.AddElement(NewElement(50, 1, Hex, []int{1, 2, 3})))
	log := utils.NewRunLog()
	b := ExtractBoundary(m, log)
	assert.Len(t, b.Faces, 6)
	require.Equal(t, 1, log.Len())
	assert.Equal(t, utils.StageTopology, log.Entries()[0].Stage)
	assert.Equal(t, "element 50", log.Entries()[0].Subject)
}

func TestPatches(t *testing.T) {
	m := NewMesh()
	AppendBox(m, Box{Part: 1, Size: r3.Vec{X: 1, Y: 1, Z: 1}, Divisions: [3]int{2, 1, 1}})
	AppendBox(m, Box{Part: 2, Min: r3.Vec{X: 5}, Size: r3.Vec{X: 1, Y: 1, Z: 1}, Divisions: [3]int{1, 1, 1}})
	b := ExtractBoundary(m, nil)
	patches := Patches(b.Faces)
	require.Len(t, patches, 2)
	assert.Len(t, patches[0], 10)
	assert.Len(t, patches[1], 6)
	assert.Equal(t, 0, patches[0][0])
}

func TestEdgeLengths(t *testing.T) {
	m := NewMesh()
	AppendPlate(m, 1, r3.Vec{}, 2, 1, 1, 1)
	b := ExtractBoundary(m, nil)
	lengths, err := m.EdgeLengths(b.Faces)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 2, 1}, lengths)

	// Repeated corners contribute no edge
	lengths, err = m.EdgeLengths([]BoundaryFace{{Nodes: []int{1, 2, 4, 4}}})
	require.NoError(t, err)
	assert.Len(t, lengths, 3)

	_, err = m.EdgeLengths([]BoundaryFace{{Nodes: []int{1, 99}}})
	assert.ErrorIs(t, err, ErrUnknownNodeID)
}
