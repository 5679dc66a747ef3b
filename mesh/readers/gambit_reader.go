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

// ReadGambitNeutral reads a Gambit neutral file (.neu)
func ReadGambitNeutral(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseGambitNeutral(file)
}

// gambitOrder permutes Gambit's lexicographic corner order into ours
var gambitOrder = map[mesh.ElementType][]int{
	mesh.Hex:     {0, 1, 3, 2, 4, 5, 7, 6},
	mesh.Pyramid: {0, 1, 3, 2, 4},
}

// gambitFaces lists the faces referenced by boundary sets, in file node order
var gambitFaces = map[mesh.ElementType][][]int{
	mesh.Quad:     {{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	mesh.Triangle: {{0, 1}, {1, 2}, {2, 0}},
	mesh.Hex: {
		{0, 1, 5, 4}, {1, 3, 7, 5}, {3, 2, 6, 7},
		{2, 0, 4, 6}, {1, 0, 2, 3}, {4, 5, 7, 6},
	},
	mesh.Wedge:   {{0, 1, 4, 3}, {1, 2, 5, 4}, {2, 0, 3, 5}, {0, 2, 1}, {3, 4, 5}},
	mesh.Tet:     {{1, 0, 2}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}},
	mesh.Pyramid: {{0, 2, 3, 1}, {0, 1, 4}, {1, 3, 4}, {3, 2, 4}, {2, 0, 4}},
}

var gambitElementType = map[int]mesh.ElementType{
	2: mesh.Quad,
	3: mesh.Triangle,
	4: mesh.Hex,
	5: mesh.Wedge,
	6: mesh.Tet,
	7: mesh.Pyramid,
}

// ParseGambitNeutral reads a Gambit neutral file. Element groups become parts
// and boundary condition sets become node groups.
func ParseGambitNeutral(r io.Reader) (*mesh.Mesh, error) {
	msh := mesh.NewMesh()
	scanner := bufio.NewScanner(r)

	var numnp, nelem, ngrps, nbsets int
	var hasControl bool
	raw := make(map[int][]int) // Element id -> file order nodes
	types := make(map[int]mesh.ElementType)
	parts := make(map[int]int)
	var order []int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, "NUMNP") && strings.Contains(line, "NELEM") {
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF after control header")
			}
			values := strings.Fields(scanner.Text())
			if len(values) < 4 {
				return nil, fmt.Errorf("invalid control line: %q", scanner.Text())
			}
			counts, err := parseInts(values[:4]...)
			if err != nil {
				return nil, fmt.Errorf("control line %q: %w", scanner.Text(), err)
			}
			numnp, nelem, ngrps, nbsets = counts[0], counts[1], counts[2], counts[3]
			hasControl = true
			break
		}
	}
	if !hasControl {
		return nil, fmt.Errorf("missing CONTROL INFO section")
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.Contains(line, "NODAL COORDINATES"):
			for i := 0; i < numnp; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 4 {
					return nil, fmt.Errorf("invalid node line: %q", scanner.Text())
				}
				nodeID, err := strconv.Atoi(fields[0])
				if err != nil {
					return nil, fmt.Errorf("node line %q: %w", scanner.Text(), err)
				}
				var xyz [3]float64
				for j := range xyz {
					if xyz[j], err = strconv.ParseFloat(fields[1+j], 64); err != nil {
						return nil, fmt.Errorf("node %d: %w", nodeID, err)
					}
				}
				if err := msh.AddNode(mesh.Node{ID: nodeID, X: xyz[0], Y: xyz[1], Z: xyz[2]}); err != nil {
					return nil, err
				}
			}

		case strings.Contains(line, "ELEMENTS/CELLS"):
			for i := 0; i < nelem; i++ {
				id, etype, nodes, err := readGambitElement(scanner)
				if err != nil {
					return nil, err
				}
				raw[id] = nodes
				types[id] = etype
				parts[id] = 1
				order = append(order, id)
			}

		case strings.HasPrefix(line, "GROUP:"):
			if ngrps == 0 {
				continue
			}
			if err := readGambitGroup(scanner, line, parts); err != nil {
				return nil, err
			}

		case strings.Contains(line, "BOUNDARY CONDITIONS"):
			if nbsets == 0 {
				continue
			}
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF reading boundary set")
			}
			if err := readGambitBoundarySet(scanner, scanner.Text(), raw, types, msh); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	for _, id := range order {
		etype := types[id]
		nodes := raw[id]
		if perm, ok := gambitOrder[etype]; ok {
			reordered := make([]int, len(perm))
			for i, p := range perm {
				reordered[i] = nodes[p]
			}
			nodes = reordered
		}
		el := mesh.NewElement(id, parts[id], etype, nodes)
		if err := msh.CheckElement(el); err != nil {
			return nil, err
		}
		if err := msh.AddElement(el); err != nil {
			return nil, err
		}
	}
	return msh, nil
}

// readGambitElement reads "id ntype ndp n1 n2 ..." where the node list may
// continue on following lines
func readGambitElement(scanner *bufio.Scanner) (int, mesh.ElementType, []int, error) {
	if !scanner.Scan() {
		return 0, mesh.Unknown, nil, fmt.Errorf("unexpected EOF reading elements")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 3 {
		return 0, mesh.Unknown, nil, fmt.Errorf("invalid element line: %q", scanner.Text())
	}
	head, err := parseInts(fields[:3]...)
	if err != nil {
		return 0, mesh.Unknown, nil, fmt.Errorf("element line %q: %w", scanner.Text(), err)
	}
	id, ntype, ndp := head[0], head[1], head[2]
	etype, ok := gambitElementType[ntype]
	if !ok {
		return 0, mesh.Unknown, nil, fmt.Errorf("element %d: unsupported gambit type %d", id, ntype)
	}
	if ndp != etype.GetNumNodes() {
		return 0, mesh.Unknown, nil, fmt.Errorf("element %d: %s with %d nodes", id, etype, ndp)
	}
	fields = fields[3:]
	for len(fields) < ndp {
		if !scanner.Scan() {
			return 0, mesh.Unknown, nil, fmt.Errorf("unexpected EOF in element %d", id)
		}
		fields = append(fields, strings.Fields(scanner.Text())...)
	}
	nodes, err := parseInts(fields[:ndp]...)
	if err != nil {
		return 0, mesh.Unknown, nil, fmt.Errorf("element %d: %w", id, err)
	}
	return id, etype, nodes, nil
}

func readGambitGroup(scanner *bufio.Scanner, header string, parts map[int]int) error {
	var groupID, numElems int
	fields := strings.Fields(header)
	for i := 0; i < len(fields)-1; i++ {
		var err error
		switch fields[i] {
		case "GROUP:":
			groupID, err = strconv.Atoi(fields[i+1])
		case "ELEMENTS:":
			numElems, err = strconv.Atoi(fields[i+1])
		}
		if err != nil {
			return fmt.Errorf("group header %q: %w", header, err)
		}
	}
	// Entity name and solver flags
	for i := 0; i < 2; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in group %d", groupID)
		}
	}
	read := 0
	for read < numElems {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in group %d", groupID)
		}
		for _, field := range strings.Fields(scanner.Text()) {
			elemID, err := strconv.Atoi(field)
			if err != nil {
				return fmt.Errorf("group %d: %w", groupID, err)
			}
			parts[elemID] = groupID
			read++
		}
	}
	return nil
}

// readGambitBoundarySet reads one set. ITYPE 0 lists node ids, ITYPE 1 lists
// (element, type, face) triples.
func readGambitBoundarySet(scanner *bufio.Scanner, header string,
	raw map[int][]int, types map[int]mesh.ElementType, msh *mesh.Mesh) error {
	fields := strings.Fields(header)
	if len(fields) < 3 {
		return fmt.Errorf("invalid boundary set header: %q", header)
	}
	name := fields[0]
	head, err := parseInts(fields[1:3]...)
	if err != nil {
		return fmt.Errorf("boundary set header %q: %w", header, err)
	}
	itype, nentry := head[0], head[1]

	seen := make(map[int]bool)
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			msh.AddGroup(name, id)
		}
	}
	for i := 0; i < nentry; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in boundary set %s", name)
		}
		entry := strings.Fields(scanner.Text())
		if len(entry) == 0 {
			return fmt.Errorf("empty entry in boundary set %s", name)
		}
		if itype == 0 {
			id, err := strconv.Atoi(entry[0])
			if err != nil {
				return fmt.Errorf("boundary set %s: %w", name, err)
			}
			add(id)
			continue
		}
		if len(entry) < 3 {
			return fmt.Errorf("invalid face entry in boundary set %s: %q", name, scanner.Text())
		}
		ef, err := parseInts(entry[0], entry[2])
		if err != nil {
			return fmt.Errorf("boundary set %s: %w", name, err)
		}
		elemID, face := ef[0], ef[1]
		nodes, ok := raw[elemID]
		faces := gambitFaces[types[elemID]]
		if !ok || face < 1 || face > len(faces) {
			return fmt.Errorf("boundary set %s: element %d has no face %d", name, elemID, face)
		}
		for _, l := range faces[face-1] {
			add(nodes[l])
		}
	}
	return nil
}
