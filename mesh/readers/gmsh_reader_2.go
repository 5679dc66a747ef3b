package readers

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/dynaprep/mesh"
)

// ReadGmsh22 reads a Gmsh MSH file format version 2.2
func ReadGmsh22(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseGmsh22(file)
}

type gmshElement struct {
	id    int
	etype mesh.ElementType
	tags  []int
	nodes []int
}

type gmshFile struct {
	version       string
	physicalNames map[int]string
	elements      []gmshElement
}

// ParseGmsh22 reads ASCII MSH 2.2. Elements of the highest dimension present
// become the mesh, their physical tag (else elementary tag) giving the part.
// Lower dimension elements carrying a physical tag become node groups named
// after the physical name.
func ParseGmsh22(r io.Reader) (*mesh.Mesh, error) {
	scanner := bufio.NewScanner(r)
	msh := mesh.NewMesh()
	gf := &gmshFile{physicalNames: make(map[int]string)}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat22(scanner, gf); err != nil {
				return nil, err
			}

		case "$PhysicalNames":
			if err := readPhysicalNames(scanner, gf); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readNodes22(scanner, msh); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readElements22(scanner, gf); err != nil {
				return nil, err
			}

		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				// Skip sections we do not use
				endMarker := "$End" + line[1:]
				for scanner.Scan() {
					if strings.TrimSpace(scanner.Text()) == endMarker {
						break
					}
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if gf.version == "" {
		return nil, fmt.Errorf("could not find $MeshFormat section")
	}
	if err := gf.populate(msh); err != nil {
		return nil, err
	}
	return msh, nil
}

func readMeshFormat22(scanner *bufio.Scanner, gf *gmshFile) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	gf.version = parts[0]
	if !strings.HasPrefix(gf.version, "2.") {
		return fmt.Errorf("unsupported Gmsh format version: %s", gf.version)
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "$EndMeshFormat" {
			break
		}
	}
	return nil
}

func readPhysicalNames(scanner *bufio.Scanner, gf *gmshFile) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in PhysicalNames")
	}
	numNames, err := parseCount(scanner.Text())
	if err != nil {
		return fmt.Errorf("physical name count: %w", err)
	}

	for i := 0; i < numNames; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) >= 3 {
			tag, err := strconv.Atoi(parts[1])
			if err != nil {
				return fmt.Errorf("physical name %q: %w", scanner.Text(), err)
			}
			name := strings.Trim(strings.Join(parts[2:], " "), "\"")
			gf.physicalNames[tag] = name
		}
	}

	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "$EndPhysicalNames" {
			break
		}
	}
	return nil
}

func readNodes22(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	numNodes, err := parseCount(scanner.Text())
	if err != nil {
		return fmt.Errorf("node count: %w", err)
	}

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node id: %w", err)
		}
		var xyz [3]float64
		for j := range xyz {
			if xyz[j], err = strconv.ParseFloat(parts[1+j], 64); err != nil {
				return fmt.Errorf("node %d: %w", nodeID, err)
			}
		}
		if err := msh.AddNode(mesh.Node{ID: nodeID, X: xyz[0], Y: xyz[1], Z: xyz[2]}); err != nil {
			return err
		}
	}

	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "$EndNodes" {
			break
		}
	}
	return nil
}

func readElements22(scanner *bufio.Scanner, gf *gmshFile) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}
	numElements, err := parseCount(scanner.Text())
	if err != nil {
		return fmt.Errorf("element count: %w", err)
	}

	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid element line")
		}

		head, err := parseInts(parts[:3]...)
		if err != nil {
			return fmt.Errorf("element line %q: %w", scanner.Text(), err)
		}
		elemID, elemType, numTags := head[0], head[1], head[2]
		if numTags < 0 || len(parts) < 3+numTags {
			return fmt.Errorf("invalid element tags")
		}
		tags, err := parseInts(parts[3 : 3+numTags]...)
		if err != nil {
			return fmt.Errorf("element %d tags: %w", elemID, err)
		}

		etype, ok := gmshElementType22[elemType]
		if !ok {
			slog.Debug("skipping gmsh element", "id", elemID, "type", elemType)
			continue
		}

		expectedNodes := etype.GetNumNodes()
		nodeStart := 3 + numTags
		if len(parts) < nodeStart+expectedNodes {
			return fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, expectedNodes, len(parts)-nodeStart)
		}
		nodeIDs, err := parseInts(parts[nodeStart : nodeStart+expectedNodes]...)
		if err != nil {
			return fmt.Errorf("element %d nodes: %w", elemID, err)
		}
		gf.elements = append(gf.elements, gmshElement{id: elemID, etype: etype, tags: tags, nodes: nodeIDs})
	}

	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "$EndElements" {
			break
		}
	}
	return nil
}

func (gf *gmshFile) populate(msh *mesh.Mesh) error {
	dim := 0
	for _, e := range gf.elements {
		if d := e.etype.GetDimension(); d > dim {
			dim = d
		}
	}
	seen := make(map[string]map[int]bool)
	for _, e := range gf.elements {
		if e.etype.GetDimension() == dim {
			part := 1
			switch {
			case len(e.tags) > 0 && e.tags[0] > 0:
				part = e.tags[0]
			case len(e.tags) > 1 && e.tags[1] > 0:
				part = e.tags[1]
			}
			el := mesh.NewElement(e.id, part, e.etype, e.nodes)
			if err := msh.CheckElement(el); err != nil {
				return err
			}
			if err := msh.AddElement(el); err != nil {
				return err
			}
			continue
		}
		if len(e.tags) == 0 || e.tags[0] == 0 {
			continue
		}
		name, ok := gf.physicalNames[e.tags[0]]
		if !ok {
			name = fmt.Sprintf("boundary_%d", e.tags[0])
		}
		if seen[name] == nil {
			seen[name] = make(map[int]bool)
		}
		for _, id := range e.nodes {
			if _, ok := msh.Node(id); !ok || seen[name][id] {
				continue
			}
			seen[name][id] = true
			msh.AddGroup(name, id)
		}
	}
	return nil
}

// gmshElementType22 maps Gmsh v2.2 element type numbers to our ElementType
var gmshElementType22 = map[int]mesh.ElementType{
	1:  mesh.Line,      // 2-node line
	2:  mesh.Triangle,  // 3-node triangle
	3:  mesh.Quad,      // 4-node quadrangle
	4:  mesh.Tet,       // 4-node tetrahedron
	5:  mesh.Hex,       // 8-node hexahedron
	6:  mesh.Wedge,     // 6-node prism
	7:  mesh.Pyramid,   // 5-node pyramid
	8:  mesh.Line3,     // 3-node line
	9:  mesh.Triangle6, // 6-node triangle
	10: mesh.Quad9,     // 9-node quadrangle
	11: mesh.Tet10,     // 10-node tetrahedron
	12: mesh.Hex27,     // 27-node hexahedron
	13: mesh.Wedge18,   // 18-node prism
	14: mesh.Pyramid14, // 14-node pyramid
	16: mesh.Quad8,     // 8-node quadrangle
	17: mesh.Hex20,     // 20-node hexahedron
	18: mesh.Wedge15,   // 15-node prism
	19: mesh.Pyramid13, // 13-node pyramid
}
