package geometry

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/dynaprep/utils"
)

// RawFace is a face as reported by the host, before validation
type RawFace struct {
	ID       int
	Centroid r3.Vec
	Normal   r3.Vec // Not necessarily unit length
}

// Accessor enumerates host bodies and their planar faces
type Accessor interface {
	BodyName(id int) (string, error)
	BodyFaces(id int) ([]RawFace, error)
}

// Load reads the bodies named by ids. A body that cannot be read, or that
// has no usable face, is recorded in log and left out. Degenerate faces are
// recorded and dropped from their body.
func Load(acc Accessor, ids []int, log *utils.RunLog) []Body {
	var bodies []Body
	for _, id := range ids {
		subject := fmt.Sprintf("body %d", id)
		name, err := acc.BodyName(id)
		if err != nil {
			log.Skip(utils.StageGeometry, subject, err)
			continue
		}
		raw, err := acc.BodyFaces(id)
		if err != nil {
			log.Skip(utils.StageGeometry, subject, err)
			continue
		}
		body := Body{ID: id, Name: name}
		for _, rf := range raw {
			f, err := NewFace(rf.ID, id, rf.Centroid, rf.Normal)
			if err != nil {
				log.Skip(utils.StageGeometry, fmt.Sprintf("face %d", rf.ID), err)
				continue
			}
			body.Faces = append(body.Faces, f)
		}
		if len(body.Faces) == 0 {
			log.Skip(utils.StageGeometry, subject, ErrNoGeometry)
			continue
		}
		bodies = append(bodies, body)
	}
	return bodies
}

// FaceRecord is the file form of a face
type FaceRecord struct {
	ID       int        `json:"id"`
	Centroid [3]float64 `json:"centroid"`
	Normal   [3]float64 `json:"normal"`
}

// BodyRecord is the file form of a body
type BodyRecord struct {
	ID    int          `json:"id"`
	Name  string       `json:"name"`
	Faces []FaceRecord `json:"faces"`
}

// Model is a body file exported from the host: bodies with their planar
// faces in meters, plus the ids of the bodies to search from
type Model struct {
	Bodies  []BodyRecord `json:"bodies"`
	Targets []int        `json:"targets,omitempty"`

	index map[int]int
}

func vec(v [3]float64) r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

// LoadBodies reads a YAML or JSON body file
func LoadBodies(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBodies(data)
}

func ParseBodies(data []byte) (*Model, error) {
	m := &Model{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing body file: %w", err)
	}
	if err := m.buildIndex(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) buildIndex() error {
	m.index = make(map[int]int, len(m.Bodies))
	for i, b := range m.Bodies {
		if _, dup := m.index[b.ID]; dup {
			return fmt.Errorf("duplicate body id %d", b.ID)
		}
		m.index[b.ID] = i
	}
	return nil
}

func (m *Model) body(id int) (*BodyRecord, error) {
	if m.index == nil {
		if err := m.buildIndex(); err != nil {
			return nil, err
		}
	}
	i, ok := m.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown body %d", ErrNoGeometry, id)
	}
	return &m.Bodies[i], nil
}

// BodyIDs returns every body id in file order
func (m *Model) BodyIDs() []int {
	ids := make([]int, len(m.Bodies))
	for i, b := range m.Bodies {
		ids[i] = b.ID
	}
	return ids
}

// TargetIDs returns the configured targets, or every body when none is set
func (m *Model) TargetIDs() []int {
	if len(m.Targets) == 0 {
		return m.BodyIDs()
	}
	return m.Targets
}

func (m *Model) BodyName(id int) (string, error) {
	b, err := m.body(id)
	if err != nil {
		return "", err
	}
	if b.Name == "" {
		return fmt.Sprintf("Body_%d", b.ID), nil
	}
	return b.Name, nil
}

func (m *Model) BodyFaces(id int) ([]RawFace, error) {
	b, err := m.body(id)
	if err != nil {
		return nil, err
	}
	if len(b.Faces) == 0 {
		return nil, ErrNoGeometry
	}
	faces := make([]RawFace, len(b.Faces))
	for i, f := range b.Faces {
		faces[i] = RawFace{ID: f.ID, Centroid: vec(f.Centroid), Normal: vec(f.Normal)}
	}
	return faces, nil
}

// Face looks up a validated face by id across all bodies
func (m *Model) Face(id int) (Face, bool) {
	for _, b := range m.Bodies {
		for _, f := range b.Faces {
			if f.ID != id {
				continue
			}
			face, err := NewFace(f.ID, b.ID, vec(f.Centroid), vec(f.Normal))
			if err != nil {
				return Face{}, false
			}
			return face, true
		}
	}
	return Face{}, false
}
