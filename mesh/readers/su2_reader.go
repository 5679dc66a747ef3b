package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/dynaprep/mesh"
)

// ReadSU2 reads an SU2 native format file
func ReadSU2(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseSU2(file)
}

// ParseSU2 reads SU2 native format. SU2 numbers nodes and elements from
// zero in file order; both are shifted to start at 1. Every volume element
// belongs to part 1 and each marker becomes a node group.
func ParseSU2(r io.Reader) (*mesh.Mesh, error) {
	msh := mesh.NewMesh()
	scanner := bufio.NewScanner(r)

	var ndime int
	var hasNDIME, hasNPOIN bool

	for scanner.Scan() {
		line := stripSU2Comment(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "NDIME="):
			hasNDIME = true
			fmt.Sscanf(line, "NDIME=%d", &ndime)
			if ndime != 2 && ndime != 3 {
				return nil, fmt.Errorf("unsupported dimension: NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NPOIN="):
			if !hasNDIME {
				return nil, fmt.Errorf("NPOIN= before NDIME=")
			}
			hasNPOIN = true
			var npoin int
			fmt.Sscanf(line, "NPOIN=%d", &npoin)
			for i := 0; i < npoin; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < ndime {
					return nil, fmt.Errorf("invalid node line: expected at least %d coordinates", ndime)
				}
				var coords [3]float64
				for j := 0; j < ndime; j++ {
					v, err := strconv.ParseFloat(fields[j], 64)
					if err != nil {
						return nil, fmt.Errorf("invalid coordinate: %w", err)
					}
					coords[j] = v
				}
				if err := msh.AddNode(mesh.Node{ID: i + 1, X: coords[0], Y: coords[1], Z: coords[2]}); err != nil {
					return nil, err
				}
			}

		case strings.HasPrefix(line, "NELEM="):
			var nelem int
			fmt.Sscanf(line, "NELEM=%d", &nelem)
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				etype, nodes, err := parseSU2Element(scanner.Text(), su2ElementTypeMap)
				if err != nil {
					return nil, err
				}
				if err := msh.AddElement(mesh.NewElement(i+1, 1, etype, nodes)); err != nil {
					return nil, err
				}
			}

		case strings.HasPrefix(line, "NMARK="):
			var nmark int
			fmt.Sscanf(line, "NMARK=%d", &nmark)
			for i := 0; i < nmark; i++ {
				if err := readSU2Marker(scanner, msh); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if !hasNDIME {
		return nil, fmt.Errorf("missing required NDIME= section")
	}
	if !hasNPOIN {
		return nil, fmt.Errorf("missing required NPOIN= section")
	}
	for _, el := range msh.Elements {
		if err := msh.CheckElement(el); err != nil {
			return nil, err
		}
	}
	return msh, nil
}

func stripSU2Comment(line string) string {
	if idx := strings.Index(line, "%"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// parseSU2Element reads "type n0 n1 ... [id]" and returns one-based node ids
func parseSU2Element(line string, types map[int]mesh.ElementType) (mesh.ElementType, []int, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return mesh.Unknown, nil, fmt.Errorf("invalid element line: %q", line)
	}
	su2Type, err := strconv.Atoi(fields[0])
	if err != nil {
		return mesh.Unknown, nil, fmt.Errorf("invalid element type: %w", err)
	}
	etype, ok := types[su2Type]
	if !ok {
		return mesh.Unknown, nil, fmt.Errorf("unknown element type: %d", su2Type)
	}
	numNodes := etype.GetNumNodes()
	if len(fields) < numNodes+1 {
		return mesh.Unknown, nil, fmt.Errorf("element type %v expects %d nodes, got %d fields",
			etype, numNodes, len(fields)-1)
	}
	nodes := make([]int, numNodes)
	for j := 0; j < numNodes; j++ {
		idx, err := strconv.Atoi(fields[1+j])
		if err != nil {
			return mesh.Unknown, nil, fmt.Errorf("invalid node index: %w", err)
		}
		nodes[j] = idx + 1
	}
	return etype, nodes, nil
}

func readSU2Marker(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading marker")
	}
	markerLine := stripSU2Comment(scanner.Text())
	if !strings.HasPrefix(markerLine, "MARKER_TAG=") {
		return fmt.Errorf("expected MARKER_TAG=, got: %s", markerLine)
	}
	tagName := strings.TrimSpace(strings.TrimPrefix(markerLine, "MARKER_TAG="))

	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading marker elements for %s", tagName)
	}
	elemLine := stripSU2Comment(scanner.Text())
	var nMarkerElems int
	if _, err := fmt.Sscanf(elemLine, "MARKER_ELEMS=%d", &nMarkerElems); err != nil {
		return fmt.Errorf("invalid MARKER_ELEMS line: %s", elemLine)
	}

	seen := make(map[int]bool)
	for j := 0; j < nMarkerElems; j++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading boundary elements")
		}
		_, nodes, err := parseSU2Element(scanner.Text(), su2BoundaryTypeMap)
		if err != nil {
			return fmt.Errorf("marker %s: %w", tagName, err)
		}
		for _, id := range nodes {
			if !seen[id] {
				seen[id] = true
				msh.AddGroup(tagName, id)
			}
		}
	}
	return nil
}

// su2ElementTypeMap maps SU2/VTK element type identifiers to our ElementType
var su2ElementTypeMap = map[int]mesh.ElementType{
	5:  mesh.Triangle, // VTK_TRIANGLE
	9:  mesh.Quad,     // VTK_QUAD
	10: mesh.Tet,      // VTK_TETRA
	12: mesh.Hex,      // VTK_HEXAHEDRON
	13: mesh.Wedge,    // VTK_WEDGE
	14: mesh.Pyramid,  // VTK_PYRAMID
}

var su2BoundaryTypeMap = map[int]mesh.ElementType{
	3: mesh.Line,     // VTK_LINE
	5: mesh.Triangle, // VTK_TRIANGLE
	9: mesh.Quad,     // VTK_QUAD
}
