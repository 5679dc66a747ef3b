package export

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/notargets/dynaprep/contact"
	"github.com/notargets/dynaprep/geometry"
	"github.com/notargets/dynaprep/keyword"
	"github.com/notargets/dynaprep/mesh"
	"github.com/notargets/dynaprep/region"
	"github.com/notargets/dynaprep/utils"
)

var ErrNoMeshData = errors.New("no mesh data to export")

// BodyOptions are the per body settings of a part
type BodyOptions struct {
	Name      string
	Material  keyword.Material // SI, the default material when zero
	Thickness float64          // Shell thickness, meters
}

// Input is everything one export run consumes
type Input struct {
	Title  string
	Source region.MeshAccessor
	// Faces serves the geometric fallback of region resolution, may be nil
	Faces region.FaceGeometry

	Bodies           map[int]BodyOptions // By element part id
	DefaultThickness float64
	Regions          []region.NamedRegion // Written as node sets
	Contacts         []contact.Definition

	Units          keyword.Units
	PlaneTolerance float64 // Zero selects region.DefaultPlaneTolerance
	Control        *keyword.Control
	Curves         []keyword.Curve

	// Log receives skipped items, a new log is created when nil
	Log *utils.RunLog
}

// Result is the assembled deck and the record of what was left out
type Result struct {
	Document *keyword.Document
	Log      *utils.RunLog
	Boundary *mesh.Boundary
	Contacts []*contact.Result
	// Patches counts the connected boundary surfaces of the mesh
	Patches int
}

func (in *Input) validate() (*mesh.Mesh, error) {
	if in.Source == nil {
		return nil, ErrNoMeshData
	}
	m := in.Source.Mesh()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoMeshData, err)
	}
	if tol := in.PlaneTolerance; math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		return nil, fmt.Errorf("%w: plane tolerance %v", geometry.ErrInvalidTolerance, tol)
	}
	if err := in.Units.Validate(); err != nil {
		return nil, err
	}
	for id, b := range in.Bodies {
		if b.Material == (keyword.Material{}) {
			continue
		}
		if err := b.Material.Validate(); err != nil {
			return nil, fmt.Errorf("body %d: %w", id, err)
		}
	}
	return m, nil
}

// Run assembles the keyword document of one export. Per item failures are
// recorded in the run log; the returned error is fatal to the run.
func Run(in Input) (*Result, error) {
	m, err := in.validate()
	if err != nil {
		return nil, err
	}
	log := in.Log
	if log == nil {
		log = utils.NewRunLog()
	}

	boundary := mesh.ExtractBoundary(m, log)
	res := &Result{
		Log:      log,
		Boundary: boundary,
		Patches:  len(mesh.Patches(boundary.Faces)),
		Document: &keyword.Document{
			Title:   in.Title,
			Nodes:   m.SortedNodes(),
			Control: in.Control,
			Curves:  in.Curves,
		},
	}
	doc := res.Document
	doc.Parts = in.parts(m, log)

	rs := region.NewResolver(in.Source, in.Faces, in.PlaneTolerance, log)
	for _, r := range in.Regions {
		nodes := rs.Resolve(r)
		if len(nodes) == 0 {
			continue
		}
		doc.NodeSets = append(doc.NodeSets, keyword.NodeSet{ID: len(doc.NodeSets) + 1, Title: r.Name, Nodes: nodes})
	}

	builder := contact.NewBuilder(m, boundary, rs, 1)
	for _, def := range in.Contacts {
		cr, err := builder.Build(def)
		switch {
		case errors.Is(err, contact.ErrEmptySide):
			log.Skip(utils.StageContact, "contact "+def.Name, err)
			continue
		case err != nil:
			return nil, fmt.Errorf("contact %s: %w", def.Name, err)
		}
		res.Contacts = append(res.Contacts, cr)
		doc.SegmentSets = append(doc.SegmentSets, cr.Slave, cr.Master)
		doc.Contacts = append(doc.Contacts, cr.Card)
		slog.Debug("contact", "name", def.Name, "slave", cr.Slave.Title, "segments", len(cr.Slave.Faces),
			"master", cr.Master.Title, "masterSegments", len(cr.Master.Faces))
	}

	slog.Info("export assembled", "nodes", len(doc.Nodes), "elements", doc.NumElements(),
		"parts", len(doc.Parts), "nodeSets", len(doc.NodeSets), "contacts", len(doc.Contacts),
		"boundaryFaces", len(boundary.Faces), "patches", res.Patches, "skipped", log.Len())
	return res, nil
}

type partKey struct {
	body  int
	shell bool
}

// parts builds one part per body and element kind, solids before shells.
// Part, section and material ids follow the sorted body ids.
func (in *Input) parts(m *mesh.Mesh, log *utils.RunLog) []keyword.Part {
	elements := lo.Filter(m.SortedElements(), func(e mesh.Element, _ int) bool {
		if e.Family.GetDimension() == 1 {
			log.Skipf(utils.StageExport, fmt.Sprintf("element %d", e.ID), "%s elements are not exported", e.Family)
			return false
		}
		return true
	})
	groups := lo.GroupBy(elements, func(e mesh.Element) partKey { return partKey{body: e.Part, shell: e.Shell} })
	keys := lo.Keys(groups)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].body != keys[j].body {
			return keys[i].body < keys[j].body
		}
		return !keys[i].shell && keys[j].shell
	})

	var (
		parts     []keyword.Part
		materials = make(map[int]keyword.Material)
	)
	for _, k := range keys {
		opts := in.Bodies[k.body]
		mat, ok := materials[k.body]
		if !ok {
			mat = opts.Material
			if mat == (keyword.Material{}) {
				mat = keyword.DefaultMaterial()
			}
			mat.ID = len(materials) + 1
			materials[k.body] = mat
		}
		title := opts.Name
		if title == "" {
			title = fmt.Sprintf("Body_%d", k.body)
		}
		thickness := opts.Thickness
		if k.shell {
			title += "_Shell"
			if thickness <= 0 {
				thickness = in.DefaultThickness
			}
		}
		id := len(parts) + 1
		parts = append(parts, keyword.Part{
			ID:       id,
			Title:    title,
			Section:  keyword.NewSection(id, k.shell, thickness, groups[k]),
			Material: mat,
			Elements: groups[k],
		})
	}
	return parts
}
