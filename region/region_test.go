package region

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/dynaprep/geometry"
	"github.com/notargets/dynaprep/mesh"
	"github.com/notargets/dynaprep/utils"
)

type stackedBoxes struct {
	mesh  *mesh.Mesh
	lower mesh.BoxSides
	upper mesh.BoxSides
	model *geometry.Model
}

// newStackedBoxes meshes two 10 mm cubes, body 2 sitting on body 1
func newStackedBoxes() stackedBoxes {
	m := mesh.NewMesh()
	cube := r3.Vec{X: 0.01, Y: 0.01, Z: 0.01}
	s := stackedBoxes{mesh: m}
	s.lower = mesh.AppendBox(m, mesh.Box{Part: 1, Size: cube, Divisions: [3]int{2, 2, 2}})
	s.upper = mesh.AppendBox(m, mesh.Box{Part: 2, Min: r3.Vec{Z: 0.01}, Size: cube, Divisions: [3]int{2, 2, 2}})
	s.model = &geometry.Model{Bodies: []geometry.BodyRecord{
		geometry.BoxRecord(1, "lower", 1, [3]float64{0, 0, 0}, [3]float64{0.01, 0.01, 0.01}),
		geometry.BoxRecord(2, "upper", 7, [3]float64{0, 0, 0.01}, [3]float64{0.01, 0.01, 0.02}),
		geometry.BoxRecord(3, "unmeshed", 13, [3]float64{0, 0, -0.01}, [3]float64{0.01, 0.01, 0}),
	}}
	return s
}

func sorted(ids []int) []int {
	out := append([]int{}, ids...)
	sort.Ints(out)
	return out
}

func TestResolvePlaneFallback(t *testing.T) {
	s := newStackedBoxes()
	log := utils.NewRunLog()
	rs := NewResolver(MeshSource{M: s.mesh}, s.model, 0, log)
	assert.Equal(t, DefaultPlaneTolerance, rs.Tolerance)

	// Only the lower body's nodes are considered for its own face
	lowerTop := rs.Resolve(NamedRegion{ID: 1, Name: "lower_top", FaceIDs: []int{6}})
	assert.Equal(t, sorted(s.lower["+Z"]), lowerTop)
	upperBottom := rs.Resolve(NamedRegion{ID: 2, Name: "upper_bottom", FaceIDs: []int{11}})
	assert.Equal(t, sorted(s.upper["-Z"]), upperBottom)
	assert.Len(t, lowerTop, len(upperBottom))

	// Two faces resolve to the union of their planes
	both := rs.Resolve(NamedRegion{ID: 3, Name: "lower_x", FaceIDs: []int{1, 2}})
	assert.Len(t, both, 18)

	// A body without elements searches the whole mesh
	unmeshed := rs.Resolve(NamedRegion{ID: 4, Name: "unmeshed_top", FaceIDs: []int{18}})
	assert.Equal(t, sorted(s.lower["-Z"]), unmeshed)
	assert.Zero(t, log.Len())
}

func TestResolveDirectLookup(t *testing.T) {
	s := newStackedBoxes()
	s.mesh.AddGroup("contact", s.upper["-Z"]...)
	s.mesh.AddGroup("contact", s.upper["-Z"][0], 9999)
	src := MeshSource{M: s.mesh}
	require.True(t, src.SupportsDirectLookup())

	rs := NewResolver(src, s.model, 0, nil)
	// Direct lookup wins over the faces of the region
	got := rs.Resolve(NamedRegion{Name: "contact", FaceIDs: []int{6}})
	assert.Equal(t, sorted(s.upper["-Z"]), got)

	// Unknown names fall back to the face planes
	got = rs.Resolve(NamedRegion{Name: "other", FaceIDs: []int{6}})
	assert.Equal(t, sorted(s.lower["+Z"]), got)

	assert.False(t, MeshSource{M: mesh.NewMesh()}.SupportsDirectLookup())
}

func TestResolveEmptyRegion(t *testing.T) {
	s := newStackedBoxes()
	log := utils.NewRunLog()
	rs := NewResolver(MeshSource{M: s.mesh}, s.model, 1e-6, log)

	assert.Nil(t, rs.Resolve(NamedRegion{Name: "ghost", FaceIDs: []int{999}}))
	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "region ghost face 999", entries[0].Subject)
	assert.Equal(t, "region ghost", entries[1].Subject)
	assert.Equal(t, utils.StageRegion, entries[1].Stage)

	// A region is resolved and logged once per run
	assert.Nil(t, rs.Resolve(NamedRegion{Name: "ghost", FaceIDs: []int{999}}))
	assert.Len(t, log.Entries(), 2)
	first := rs.Resolve(NamedRegion{Name: "lower_top", FaceIDs: []int{6}})
	assert.Equal(t, first, rs.Resolve(NamedRegion{Name: "lower_top", FaceIDs: []int{6}}))
	assert.Len(t, log.Entries(), 2)

	noFaces := NewResolver(MeshSource{M: s.mesh}, nil, 0, nil)
	assert.Nil(t, noFaces.Resolve(NamedRegion{Name: "lonely", FaceIDs: []int{6}}))
}
