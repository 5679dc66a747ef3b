package keyword

import (
	"github.com/notargets/dynaprep/contact"
	"github.com/notargets/dynaprep/mesh"
)

// Element formulations written to the section cards
const (
	ElFormHex   = 1
	ElFormShell = 2
	ElFormTet   = 10
	ElFormWedge = 15
)

// Section is the element formulation of one part. Thickness applies to
// shells and is in meters.
type Section struct {
	ID        int
	Shell     bool
	ElForm    int
	Thickness float64
}

// Part is one body's solid or shell elements. Parts sharing a material ID
// share one *MAT_ELASTIC card.
type Part struct {
	ID       int
	Title    string
	Section  Section
	Material Material
	Elements []mesh.Element
}

type NodeSet struct {
	ID    int
	Title string
	Nodes []int
}

// Control holds the optional *CONTROL_TERMINATION card
type Control struct {
	EndTime float64
}

// Curve is a *DEFINE_CURVE load curve of (abscissa, ordinate) points
type Curve struct {
	ID     int
	Title  string
	Points [][2]float64
}

// Document is the content of one keyword deck, in SI units
type Document struct {
	Title       string
	Nodes       []mesh.Node
	Parts       []Part
	NodeSets    []NodeSet
	SegmentSets []contact.SegmentSet
	Contacts    []contact.Card
	Control     *Control
	Curves      []Curve
}

// SolidElForm picks the solid formulation: 10 when every element is a
// tetrahedron, 15 when every element is a wedge and 1 otherwise
func SolidElForm(elements []mesh.Element) int {
	if len(elements) == 0 {
		return ElFormHex
	}
	allTet, allWedge := true, true
	for _, e := range elements {
		switch e.Family.Linear() {
		case mesh.Tet:
			allWedge = false
		case mesh.Wedge:
			allTet = false
		default:
			return ElFormHex
		}
	}
	switch {
	case allTet:
		return ElFormTet
	case allWedge:
		return ElFormWedge
	}
	return ElFormHex
}

// NewSection builds the section of a part from its elements
func NewSection(id int, shell bool, thickness float64, elements []mesh.Element) Section {
	if shell {
		return Section{ID: id, Shell: true, ElForm: ElFormShell, Thickness: thickness}
	}
	return Section{ID: id, ElForm: SolidElForm(elements)}
}

// NumElements counts the elements over all parts
func (d *Document) NumElements() (n int) {
	for _, p := range d.Parts {
		n += len(p.Elements)
	}
	return
}
