package contact

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/dynaprep/mesh"
	"github.com/notargets/dynaprep/region"
	"github.com/notargets/dynaprep/utils"
)

// MaxSegmentNodes is the node count of a keyword segment
const MaxSegmentNodes = 4

var (
	ErrEmptySide   = errors.New("contact side has no boundary faces")
	ErrUnknownKind = errors.New("unknown contact kind")
)

// Kind is the LS-DYNA surface to surface contact family
type Kind int

const (
	Tied Kind = iota
	Automatic
)

func (k Kind) String() string {
	switch k {
	case Tied:
		return "tied"
	case Automatic:
		return "automatic"
	default:
		panic(fmt.Errorf("invalid contact kind %d", k))
	}
}

// Keyword returns the card name for the kind
func (k Kind) Keyword() string {
	return "*CONTACT_" + strings.ToUpper(k.String()) + "_SURFACE_TO_SURFACE"
}

// ParseKind accepts the host contact type names: bonded and tied map to
// Tied, frictional and automatic to Automatic
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tied", "bonded":
		return Tied, nil
	case "automatic", "frictional", "frictionless":
		return Automatic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ContactType is the contact metadata supplied by the host
type ContactType struct {
	Kind     Kind
	Friction float64
}

// Definition names the two regions of one contact
type Definition struct {
	Name    string
	Contact region.NamedRegion
	Target  region.NamedRegion
	Type    ContactType
}

// SegmentSet is a titled list of boundary faces
type SegmentSet struct {
	ID    int
	Title string
	Faces []mesh.BoundaryFace
}

// Card references the slave and master segment sets of a contact
type Card struct {
	Title     string
	SlaveSet  int
	MasterSet int
	Kind      Kind
	Friction  float64
}

// Result is the output of one contact definition
type Result struct {
	Slave, Master SegmentSet
	Card          Card
	// Average edge lengths of the slave and master sides
	SlaveEdge, MasterEdge float64
	// ContactIsSlave records which region became the slave side
	ContactIsSlave bool
}

// AverageEdgeLength is the mean length of the polygon edges of faces
func AverageEdgeLength(m *mesh.Mesh, faces []mesh.BoundaryFace) (float64, error) {
	lengths, err := m.EdgeLengths(faces)
	if err != nil {
		return 0, err
	}
	if len(lengths) == 0 {
		return 0, nil
	}
	return floats.Sum(lengths) / float64(len(lengths)), nil
}

// ContactIsSlave reports whether the contact side, with average edge length
// contactEdge, is the finer side. Equal lengths leave the contact side as
// master.
func ContactIsSlave(contactEdge, targetEdge float64) bool {
	return contactEdge < targetEdge
}

// Builder turns contact definitions into segment sets and cards
type Builder struct {
	Mesh     *mesh.Mesh
	Boundary *mesh.Boundary
	Resolver *region.Resolver

	nextSet int
}

// NewBuilder numbers segment sets from firstSetID
func NewBuilder(m *mesh.Mesh, b *mesh.Boundary, rs *region.Resolver, firstSetID int) *Builder {
	if firstSetID <= 0 {
		firstSetID = 1
	}
	return &Builder{Mesh: m, Boundary: b, Resolver: rs, nextSet: firstSetID}
}

func (b *Builder) side(r region.NamedRegion) []mesh.BoundaryFace {
	nodes := b.Resolver.Resolve(r)
	set := make(map[int]bool, len(nodes))
	for _, id := range nodes {
		set[id] = true
	}
	return segments(b.Boundary.FacesWithin(set), r.Name, b.Resolver.Log)
}

// segments drops faces a four node segment cannot hold, which only the
// single face of an irregular element can produce
func segments(faces []mesh.BoundaryFace, name string, log *utils.RunLog) []mesh.BoundaryFace {
	out := faces[:0:0]
	for _, f := range faces {
		if len(f.Nodes) > MaxSegmentNodes {
			log.Skipf(utils.StageContact, fmt.Sprintf("region %s element %d", name, f.Element),
				"face of %d nodes is not a segment", len(f.Nodes))
			continue
		}
		out = append(out, f)
	}
	return out
}

// Build resolves both regions of def to boundary faces and assigns the side
// with the shorter average edge as slave. Segment set ids are consumed only
// on success. A side without boundary faces gives ErrEmptySide.
func (b *Builder) Build(def Definition) (*Result, error) {
	contactFaces := b.side(def.Contact)
	if len(contactFaces) == 0 {
		return nil, fmt.Errorf("%w: %s contact region %s", ErrEmptySide, def.Name, def.Contact.Name)
	}
	targetFaces := b.side(def.Target)
	if len(targetFaces) == 0 {
		return nil, fmt.Errorf("%w: %s target region %s", ErrEmptySide, def.Name, def.Target.Name)
	}
	contactEdge, err := AverageEdgeLength(b.Mesh, contactFaces)
	if err != nil {
		return nil, err
	}
	targetEdge, err := AverageEdgeLength(b.Mesh, targetFaces)
	if err != nil {
		return nil, err
	}

	res := &Result{ContactIsSlave: ContactIsSlave(contactEdge, targetEdge)}
	slaveFaces, masterFaces := targetFaces, contactFaces
	res.SlaveEdge, res.MasterEdge = targetEdge, contactEdge
	if res.ContactIsSlave {
		slaveFaces, masterFaces = contactFaces, targetFaces
		res.SlaveEdge, res.MasterEdge = contactEdge, targetEdge
	}
	res.Slave = SegmentSet{ID: b.nextSet, Title: def.Name + "_Slave", Faces: slaveFaces}
	res.Master = SegmentSet{ID: b.nextSet + 1, Title: def.Name + "_Master", Faces: masterFaces}
	b.nextSet += 2
	res.Card = Card{
		Title:     def.Name,
		SlaveSet:  res.Slave.ID,
		MasterSet: res.Master.ID,
		Kind:      def.Type.Kind,
		Friction:  def.Type.Friction,
	}
	return res, nil
}
