package region

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/dynaprep/geometry"
	"github.com/notargets/dynaprep/mesh"
	"github.com/notargets/dynaprep/utils"
)

// DefaultPlaneTolerance is the plane distance used by the geometric
// fallback, meters
const DefaultPlaneTolerance = 5e-5

// NamedRegion is a caller defined set of geometric faces
type NamedRegion struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	FaceIDs []int  `json:"faces,omitempty"`
}

// MeshAccessor supplies the mesh being exported
type MeshAccessor interface {
	Mesh() *mesh.Mesh
}

// DirectLookup is an optional MeshAccessor capability mapping a region
// straight to its mesh nodes
type DirectLookup interface {
	SupportsDirectLookup() bool
	// RegionNodes returns false when the region is unknown to the lookup
	RegionNodes(r NamedRegion) ([]int, bool)
}

// FaceGeometry resolves geometric face ids for the plane fallback
type FaceGeometry interface {
	Face(id int) (geometry.Face, bool)
}

// MeshSource serves a mesh and looks regions up by name in its node groups
type MeshSource struct {
	M *mesh.Mesh
}

func (s MeshSource) Mesh() *mesh.Mesh { return s.M }

func (s MeshSource) SupportsDirectLookup() bool { return s.M != nil && len(s.M.Groups) > 0 }

func (s MeshSource) RegionNodes(r NamedRegion) ([]int, bool) {
	ids, ok := s.M.Groups[r.Name]
	return ids, ok
}

// Resolver maps named regions to mesh node ids. A Resolver caches per part
// node lists and resolved regions, and serves a single export run.
type Resolver struct {
	Source    MeshAccessor
	Faces     FaceGeometry // May be nil when only direct lookup is used
	Tolerance float64
	Log       *utils.RunLog

	partNodes map[int][]int
	resolved  map[string][]int
}

func NewResolver(src MeshAccessor, faces FaceGeometry, tol float64, log *utils.RunLog) *Resolver {
	if tol <= 0 {
		tol = DefaultPlaneTolerance
	}
	return &Resolver{Source: src, Faces: faces, Tolerance: tol, Log: log}
}

// Resolve returns the sorted unique node ids of r. Direct lookup is used
// when the source supports it and knows r, otherwise nodes within Tolerance
// of any face plane of r are collected. A region resolving to no node is
// logged and returns nil. Regions are resolved once per name; later calls
// return the cached ids.
func (rs *Resolver) Resolve(r NamedRegion) []int {
	if nodes, ok := rs.resolved[r.Name]; ok {
		return nodes
	}
	if rs.resolved == nil {
		rs.resolved = make(map[string][]int)
	}
	nodes := rs.resolve(r)
	rs.resolved[r.Name] = nodes
	return nodes
}

func (rs *Resolver) resolve(r NamedRegion) []int {
	subject := fmt.Sprintf("region %s", r.Name)
	if dl, ok := rs.Source.(DirectLookup); ok && dl.SupportsDirectLookup() {
		if ids, found := dl.RegionNodes(r); found {
			nodes := rs.existing(ids)
			slog.Debug("region resolved", "region", r.Name, "method", "direct", "nodes", len(nodes))
			if len(nodes) == 0 {
				rs.Log.Skipf(utils.StageRegion, subject, "no nodes resolved")
				return nil
			}
			return nodes
		}
	}
	nodes := rs.planeNodes(r)
	slog.Debug("region resolved", "region", r.Name, "method", "plane", "nodes", len(nodes))
	if len(nodes) == 0 {
		rs.Log.Skipf(utils.StageRegion, subject, "no nodes resolved")
		return nil
	}
	return nodes
}

// existing returns the sorted unique ids of ids present in the mesh
func (rs *Resolver) existing(ids []int) []int {
	m := rs.Source.Mesh()
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.Node(id); ok {
			set[id] = true
		}
	}
	return sortedKeys(set)
}

func (rs *Resolver) planeNodes(r NamedRegion) []int {
	m := rs.Source.Mesh()
	if rs.Faces == nil {
		return nil
	}
	set := make(map[int]bool)
	for _, fid := range r.FaceIDs {
		f, ok := rs.Faces.Face(fid)
		if !ok {
			rs.Log.Skipf(utils.StageRegion, fmt.Sprintf("region %s face %d", r.Name, fid), "face not found")
			continue
		}
		for _, id := range rs.candidates(m, f.BodyID) {
			p, _ := m.Coords(id)
			if math.Abs(r3.Dot(r3.Sub(p, f.Centroid), f.Normal)) <= rs.Tolerance {
				set[id] = true
			}
		}
	}
	return sortedKeys(set)
}

// candidates returns the nodes of the part meshed from body, or every node
// when no element belongs to that body
func (rs *Resolver) candidates(m *mesh.Mesh, body int) []int {
	if rs.partNodes == nil {
		rs.partNodes = make(map[int][]int)
		for _, part := range m.PartIDs() {
			rs.partNodes[part] = sortedKeys(m.PartNodes(part))
		}
	}
	if ids, ok := rs.partNodes[body]; ok {
		return ids
	}
	all := make([]int, len(m.Nodes))
	for i, n := range m.Nodes {
		all[i] = n.ID
	}
	return all
}

func sortedKeys(set map[int]bool) []int {
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
