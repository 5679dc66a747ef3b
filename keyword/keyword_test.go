package keyword

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dynaprep/contact"
	"github.com/notargets/dynaprep/mesh"
)

func sampleDocument() *Document {
	nodes := make([]mesh.Node, 0, 10)
	for i := 0; i < 8; i++ {
		nodes = append(nodes, mesh.Node{ID: i + 1, X: float64(i & 1), Y: float64((i >> 1) & 1), Z: float64(i >> 2)})
	}
	nodes = append(nodes, mesh.Node{ID: 9, X: 2}, mesh.Node{ID: 10, X: 2, Y: 1})
	steel := DefaultMaterial()
	steel.ID = 1
	return &Document{
		Title: "two parts",
		Nodes: nodes,
		Parts: []Part{
			{
				ID: 1, Title: "block", Material: steel,
				Section:  Section{ID: 1, ElForm: ElFormHex},
				Elements: []mesh.Element{mesh.NewElement(1, 1, mesh.Hex, []int{1, 2, 4, 3, 5, 6, 8, 7})},
			},
			{
				ID: 2, Title: "skin", Material: steel,
				Section:  Section{ID: 2, Shell: true, ElForm: ElFormShell, Thickness: 0.002},
				Elements: []mesh.Element{mesh.NewElement(2, 2, mesh.Triangle, []int{2, 9, 10})},
			},
		},
		NodeSets: []NodeSet{{ID: 1, Title: "Contact_A", Nodes: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}},
		SegmentSets: []contact.SegmentSet{
			{ID: 1, Title: "C1_Slave", Faces: []mesh.BoundaryFace{{Element: 1, Nodes: []int{5, 6, 8, 7}}}},
			{ID: 2, Title: "C1_Master", Faces: []mesh.BoundaryFace{{Element: 2, Nodes: []int{2, 9, 10}}}},
		},
		Contacts: []contact.Card{{Title: "C1", SlaveSet: 1, MasterSet: 2, Kind: contact.Automatic, Friction: 0.2}},
		Control:  &Control{EndTime: 0.001},
		Curves:   []Curve{{ID: 1, Points: [][2]float64{{0, 0}, {0.001, 1}}}},
	}
}

func write(t *testing.T, doc *Document, u Units) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, u))
	return buf.String()
}

func TestFixed(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "       0.0"},
		{1, "       1.0"},
		{0.2, "       0.2"},
		{-0.5, "      -0.5"},
		{200000, "  200000.0"},
		{2e11, "   2.0E+11"},
		{1.0 / 3, "3.3333E-01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r10(tt.in), "%v", tt.in)
	}
	assert.Equal(t, fmt.Sprintf("%20s", "0.001"), fixed(0.001, curveWidth))
}

func TestWriteCardOrder(t *testing.T) {
	out := write(t, sampleDocument(), MM)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "*KEYWORD", lines[0])
	assert.Equal(t, "*END", lines[len(lines)-1])

	order := []string{"*TITLE", "*NODE", "*SECTION_SOLID", "*MAT_ELASTIC", "*PART", "*ELEMENT_SOLID",
		"*SECTION_SHELL", "*ELEMENT_SHELL", "*SET_NODE_TITLE", "*SET_SEGMENT_TITLE",
		"*CONTACT_AUTOMATIC_SURFACE_TO_SURFACE", "*CONTROL_TERMINATION", "*DEFINE_CURVE", "*END"}
	last := -1
	for _, card := range order {
		i := strings.Index(out, "\n"+card+"\n")
		require.Greater(t, i, last, card)
		last = i
	}
	// Both parts share one material
	assert.Equal(t, 1, strings.Count(out, "*MAT_ELASTIC"))
}

func TestWriteCards(t *testing.T) {
	out := write(t, sampleDocument(), MM)
	for _, want := range []string{
		"       2    1.000000E+03    0.000000E+00    0.000000E+00",
		"       1       1",
		"       1       2       4       3       5       6       8       7       0       0",
		"       2       2       2       9      10      10",
		"         1         2         0         0",
		"       0.2       0.2       0.0       0.0       0.0         0       0.0",
		"       1.0       1.0       0.0       0.0       1.0       1.0       1.0       1.0",
		"         1         0       1.0       1.0       0.0       0.0         0         0",
		"       2.0       2.0       2.0       2.0",
		"         5         6         8         7",
		"         2         9        10        10",
		fmt.Sprintf("%20s%20s", "0.001", "1.0"),
		"     0.001         0       0.0       0.0       0.0",
	} {
		assert.Contains(t, out, want+"\n")
	}
}

func TestWriteMaterialUnits(t *testing.T) {
	for _, u := range []Units{MM, SI} {
		out := write(t, sampleDocument(), u)
		lines := strings.Split(out, "\n")
		var row string
		for i, l := range lines {
			if l == "*MAT_ELASTIC" {
				row = lines[i+2]
			}
		}
		require.NotEmpty(t, row, u.Name)
		mid, err := intField(row, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, mid)
		ro, _ := floatField(row, 10, 10)
		e, _ := floatField(row, 20, 10)
		pr, _ := floatField(row, 30, 10)
		assert.InEpsilon(t, 7850*u.Density, ro, 1e-3, u.Name)
		assert.InEpsilon(t, 2e11*u.Stress, e, 1e-3, u.Name)
		assert.InDelta(t, 0.3, pr, 1e-12)
	}
}

func TestRoundTrip(t *testing.T) {
	doc := sampleDocument()
	deck, err := Read(strings.NewReader(write(t, doc, MM)))
	require.NoError(t, err)

	assert.Equal(t, "two parts", deck.Title)
	require.Len(t, deck.Nodes, len(doc.Nodes))
	for i, n := range doc.Nodes {
		assert.Equal(t, n.ID, deck.Nodes[i].ID)
		assert.InDelta(t, n.X*1000, deck.Nodes[i].X, 1e-6)
		assert.InDelta(t, n.Y*1000, deck.Nodes[i].Y, 1e-6)
		assert.InDelta(t, n.Z*1000, deck.Nodes[i].Z, 1e-6)
	}
	assert.Equal(t, []DeckElement{
		{ID: 1, Part: 1, Nodes: []int{1, 2, 4, 3, 5, 6, 8, 7}},
		{ID: 2, Part: 2, Shell: true, Nodes: []int{2, 9, 10, 10}},
	}, deck.Elements)

	set, ok := deck.NodeSet("Contact_A")
	require.True(t, ok)
	assert.Equal(t, doc.NodeSets[0], set)
	_, ok = deck.NodeSet("missing")
	assert.False(t, ok)

	assert.Equal(t, []DeckSegmentSet{
		{ID: 1, Title: "C1_Slave", Segments: [][4]int{{5, 6, 8, 7}}},
		{ID: 2, Title: "C1_Master", Segments: [][4]int{{2, 9, 10, 10}}},
	}, deck.SegmentSets)
	assert.Equal(t, 2, deck.Keywords["*PART"])
	assert.Equal(t, 1, deck.Keywords["*CONTACT_AUTOMATIC_SURFACE_TO_SURFACE"])
}

func TestReadBadField(t *testing.T) {
	_, err := Read(strings.NewReader("*KEYWORD\n*NODE\n     abc\n*END\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3 (*NODE)")
}

func TestWriteRejectsWideSegments(t *testing.T) {
	doc := sampleDocument()
	doc.SegmentSets[0].Faces = append(doc.SegmentSets[0].Faces,
		mesh.BoundaryFace{Element: 3, Nodes: []int{1, 2, 3, 4, 5, 6}})
	err := Write(&bytes.Buffer{}, doc, MM)
	assert.ErrorIs(t, err, ErrSegmentNodes)
	assert.ErrorContains(t, err, "segment set C1_Slave, element 3")
}

func TestSolidNodes(t *testing.T) {
	tests := []struct {
		family mesh.ElementType
		nodes  []int
		want   [8]int
	}{
		{mesh.Tet, []int{1, 2, 3, 4}, [8]int{1, 2, 3, 4, 4, 4, 4, 4}},
		{mesh.Tet10, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, [8]int{1, 2, 3, 4, 4, 4, 4, 4}},
		{mesh.Wedge, []int{1, 2, 3, 4, 5, 6}, [8]int{1, 2, 3, 4, 5, 5, 6, 6}},
		{mesh.Pyramid, []int{1, 2, 3, 4, 5}, [8]int{1, 2, 3, 4, 5, 5, 5, 5}},
		{mesh.Hex, []int{1, 2, 3, 4, 5, 6, 7, 8}, [8]int{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for _, tt := range tests {
		got, err := solidNodes(mesh.NewElement(1, 1, tt.family, tt.nodes))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.family.String())
	}
	_, err := solidNodes(mesh.NewElement(1, 1, mesh.Hex, []int{1, 2, 3}))
	assert.ErrorIs(t, err, mesh.ErrShortElement)
}

func TestSolidElForm(t *testing.T) {
	tet := mesh.NewElement(1, 1, mesh.Tet, []int{1, 2, 3, 4})
	tet10 := mesh.NewElement(2, 1, mesh.Tet10, make([]int, 10))
	wedge := mesh.NewElement(3, 1, mesh.Wedge, make([]int, 6))
	hex := mesh.NewElement(4, 1, mesh.Hex, make([]int, 8))
	assert.Equal(t, ElFormTet, SolidElForm([]mesh.Element{tet, tet10}))
	assert.Equal(t, ElFormWedge, SolidElForm([]mesh.Element{wedge}))
	assert.Equal(t, ElFormHex, SolidElForm([]mesh.Element{tet, wedge}))
	assert.Equal(t, ElFormHex, SolidElForm([]mesh.Element{hex}))
	assert.Equal(t, ElFormHex, SolidElForm(nil))
	assert.Equal(t, Section{ID: 3, Shell: true, ElForm: ElFormShell, Thickness: 0.001},
		NewSection(3, true, 0.001, nil))
}

func TestUnitsAndMaterials(t *testing.T) {
	for in, want := range map[string]Units{"mm": MM, "MM-T-S": MM, "si": SI, " m-kg-s ": SI} {
		got, err := ParseUnits(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseUnits("inch")
	assert.ErrorIs(t, err, ErrInvalidUnits)
	assert.ErrorIs(t, Write(&bytes.Buffer{}, sampleDocument(), Units{}), ErrInvalidUnits)

	assert.Equal(t, []string{"aluminum", "cfrp", "steel"}, PresetNames())
	al, err := Preset("Aluminum")
	require.NoError(t, err)
	assert.InDelta(t, 0.33, al.Poisson, 1e-12)
	assert.NoError(t, al.Validate())
	_, err = Preset("unobtainium")
	assert.Error(t, err)
	assert.Error(t, Material{Density: 1, Youngs: 1, Poisson: 0.5}.Validate())
}
