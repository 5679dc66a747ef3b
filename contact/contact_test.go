package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/dynaprep/geometry"
	"github.com/notargets/dynaprep/mesh"
	"github.com/notargets/dynaprep/region"
	"github.com/notargets/dynaprep/utils"
)

// fineOnCoarse meshes a 10 mm cube at 1 mm under a 10 mm cube at 2 mm
func fineOnCoarse(t *testing.T) (*Builder, *utils.RunLog) {
	t.Helper()
	m := mesh.NewMesh()
	cube := r3.Vec{X: 0.01, Y: 0.01, Z: 0.01}
	mesh.AppendBox(m, mesh.Box{Part: 1, Size: cube, Divisions: [3]int{10, 10, 10}})
	mesh.AppendBox(m, mesh.Box{Part: 2, Min: r3.Vec{Z: 0.01}, Size: cube, Divisions: [3]int{5, 5, 5}})
	model := &geometry.Model{Bodies: []geometry.BodyRecord{
		geometry.BoxRecord(1, "fine", 1, [3]float64{0, 0, 0}, [3]float64{0.01, 0.01, 0.01}),
		geometry.BoxRecord(2, "coarse", 7, [3]float64{0, 0, 0.01}, [3]float64{0.01, 0.01, 0.02}),
	}}
	log := utils.NewRunLog()
	boundary := mesh.ExtractBoundary(m, log)
	rs := region.NewResolver(region.MeshSource{M: m}, model, 0, log)
	return NewBuilder(m, boundary, rs, 0), log
}

var (
	fineTop      = region.NamedRegion{ID: 1, Name: "fine_top", FaceIDs: []int{6}}
	coarseBottom = region.NamedRegion{ID: 2, Name: "coarse_bottom", FaceIDs: []int{11}}
)

func TestBuildAssignsFinerSideAsSlave(t *testing.T) {
	b, log := fineOnCoarse(t)
	friction := ContactType{Kind: Automatic, Friction: 0.2}

	res, err := b.Build(Definition{Name: "C1", Contact: fineTop, Target: coarseBottom, Type: friction})
	require.NoError(t, err)
	assert.True(t, res.ContactIsSlave)
	assert.Len(t, res.Slave.Faces, 100)
	assert.Len(t, res.Master.Faces, 25)
	assert.InDelta(t, 0.001, res.SlaveEdge, 1e-12)
	assert.InDelta(t, 0.002, res.MasterEdge, 1e-12)
	assert.Equal(t, Card{Title: "C1", SlaveSet: 1, MasterSet: 2, Kind: Automatic, Friction: 0.2}, res.Card)
	assert.Equal(t, "C1_Slave", res.Slave.Title)

	// Swapping the argument order keeps the fine side as slave
	swapped, err := b.Build(Definition{Name: "C2", Contact: coarseBottom, Target: fineTop, Type: friction})
	require.NoError(t, err)
	assert.False(t, swapped.ContactIsSlave)
	assert.Equal(t, res.Slave.Faces, swapped.Slave.Faces)
	assert.Equal(t, res.Master.Faces, swapped.Master.Faces)
	assert.Equal(t, 3, swapped.Card.SlaveSet)
	assert.Equal(t, 4, swapped.Card.MasterSet)
	assert.Zero(t, log.Len())
}

func TestBuildEmptySide(t *testing.T) {
	b, log := fineOnCoarse(t)
	ghost := region.NamedRegion{ID: 3, Name: "ghost", FaceIDs: []int{999}}

	_, err := b.Build(Definition{Name: "bad", Contact: fineTop, Target: ghost})
	assert.ErrorIs(t, err, ErrEmptySide)
	_, err = b.Build(Definition{Name: "bad", Contact: ghost, Target: fineTop})
	assert.ErrorIs(t, err, ErrEmptySide)
	assert.NotZero(t, log.Len())

	// Failed builds consume no set ids
	res, err := b.Build(Definition{Name: "good", Contact: fineTop, Target: coarseBottom})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Slave.ID)
	assert.Equal(t, Tied, res.Card.Kind)
}

func TestSegmentsDropWideFaces(t *testing.T) {
	log := utils.NewRunLog()
	faces := []mesh.BoundaryFace{
		{Element: 1, Nodes: []int{1, 2, 3, 4}},
		{Element: 2, Nodes: []int{1, 2, 3, 4, 5, 6}},
		{Element: 3, Nodes: []int{4, 5, 6}},
	}
	got := segments(faces, "top", log)
	assert.Equal(t, []mesh.BoundaryFace{faces[0], faces[2]}, got)
	require.Len(t, log.Entries(), 1)
	assert.Equal(t, "region top element 2", log.Entries()[0].Subject)
	assert.Len(t, faces, 3)
}

func TestContactIsSlave(t *testing.T) {
	assert.True(t, ContactIsSlave(1.0, 2.0))
	assert.False(t, ContactIsSlave(2.0, 1.0))
	// Ties keep the contact side as master
	assert.False(t, ContactIsSlave(1.5, 1.5))
}

func TestAverageEdgeLength(t *testing.T) {
	m := mesh.NewMesh()
	mesh.AppendPlate(m, 1, r3.Vec{}, 3, 1, 1, 1)
	b := mesh.ExtractBoundary(m, nil)
	avg, err := AverageEdgeLength(m, b.Faces)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, avg, 1e-12)

	avg, err = AverageEdgeLength(m, nil)
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "*CONTACT_TIED_SURFACE_TO_SURFACE", Tied.Keyword())
	assert.Equal(t, "*CONTACT_AUTOMATIC_SURFACE_TO_SURFACE", Automatic.Keyword())
	for in, want := range map[string]Kind{"Bonded": Tied, "tied": Tied, "Frictional": Automatic, " automatic ": Automatic} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("glued")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
