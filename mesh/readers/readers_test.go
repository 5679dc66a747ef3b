package readers

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dynaprep/mesh"
)

const su2Cube = `% single hex with two markers
NDIME= 3
NPOIN= 8
0 0 0
1 0 0
1 1 0
0 1 0
0 0 1
1 0 1
1 1 1
0 1 1
NELEM= 1
12 0 1 2 3 4 5 6 7 0
NMARK= 2
MARKER_TAG= bottom
MARKER_ELEMS= 1
9 0 1 2 3
MARKER_TAG= top
MARKER_ELEMS= 1
9 4 5 6 7
`

const gmshCube = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
2
2 1 "contact face"
3 2 "block"
$EndPhysicalNames
$Nodes
8
1 0 0 0
2 1 0 0
3 1 1 0
4 0 1 0
5 0 0 1
6 1 0 1
7 1 1 1
8 0 1 1
$EndNodes
$Elements
3
1 15 2 0 1 1
2 3 2 1 10 1 2 3 4
3 5 2 2 20 1 2 3 4 5 6 7 8
$EndElements
`

const gambitCube = `        CONTROL INFO 2.4.6
** GAMBIT NEUTRAL FILE
cube
PROGRAM:                Gambit     VERSION:  2.4.6
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         8         1         1         1         3         3
ENDOFSECTION
   NODAL COORDINATES 2.4.6
         1   0.0   0.0   0.0
         2   1.0   0.0   0.0
         3   0.0   1.0   0.0
         4   1.0   1.0   0.0
         5   0.0   0.0   1.0
         6   1.0   0.0   1.0
         7   0.0   1.0   1.0
         8   1.0   1.0   1.0
ENDOFSECTION
      ELEMENTS/CELLS 2.4.6
         1  4  8        1       2       3       4       5       6       7
                        8
ENDOFSECTION
       ELEMENT GROUP 2.4.6
GROUP:          3 ELEMENTS:          1 MATERIAL:          2 NFLAGS:          1
                           fluid
       0
       1
ENDOFSECTION
 BOUNDARY CONDITIONS 2.4.6
                       wall       1       1       0       6
         1       4       6
ENDOFSECTION
`

func assertUnitCube(t *testing.T, msh *mesh.Mesh) {
	t.Helper()
	require.NoError(t, msh.Validate())
	assert.Equal(t, 8, msh.NumNodes())
	require.Equal(t, 1, msh.NumElements())
	assert.Equal(t, mesh.Hex, msh.Elements[0].Family)
	b := mesh.ExtractBoundary(msh, nil)
	assert.Len(t, b.Faces, 6)
}

func TestParseSU2(t *testing.T) {
	msh, err := ParseSU2(strings.NewReader(su2Cube))
	require.NoError(t, err)
	assertUnitCube(t, msh)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, msh.Elements[0].Nodes)
	assert.Equal(t, 1, msh.Elements[0].Part)
	assert.Equal(t, []int{1, 2, 3, 4}, msh.Groups["bottom"])
	assert.Equal(t, []int{5, 6, 7, 8}, msh.Groups["top"])
}

func TestParseSU2Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing NDIME", "NPOIN= 1\n0 0 0\n", "NPOIN= before NDIME="},
		{"bad dimension", "NDIME= 4\n", "unsupported dimension"},
		{"unknown element", "NDIME= 3\nNPOIN= 1\n0 0 0\nNELEM= 1\n99 0\n", "unknown element type"},
		{"dangling node", "NDIME= 3\nNPOIN= 1\n0 0 0\nNELEM= 1\n10 0 1 2 3\n", "unknown node id"},
		{"missing NPOIN", "NDIME= 3\n", "missing required NPOIN="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSU2(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseGmsh22(t *testing.T) {
	msh, err := ParseGmsh22(strings.NewReader(gmshCube))
	require.NoError(t, err)
	assertUnitCube(t, msh)
	assert.Equal(t, 2, msh.Elements[0].Part)
	assert.Equal(t, []int{1, 2, 3, 4}, msh.Groups["contact face"])
	assert.NotContains(t, msh.Groups, "block")

	_, err = ParseGmsh22(strings.NewReader("$MeshFormat\n4.1 0 8\n$EndMeshFormat\n"))
	assert.ErrorContains(t, err, "unsupported Gmsh format version")
	_, err = ParseGmsh22(strings.NewReader("$Nodes\n0\n$EndNodes\n"))
	assert.ErrorContains(t, err, "could not find $MeshFormat")
}

func TestParseGambitNeutral(t *testing.T) {
	msh, err := ParseGambitNeutral(strings.NewReader(gambitCube))
	require.NoError(t, err)
	assertUnitCube(t, msh)
	el := msh.Elements[0]
	assert.Equal(t, []int{1, 2, 4, 3, 5, 6, 8, 7}, el.Nodes)
	assert.Equal(t, 3, el.Part)
	assert.Equal(t, []int{5, 6, 8, 7}, msh.Groups["wall"])
	for _, id := range msh.Groups["wall"] {
		n, ok := msh.Node(id)
		require.True(t, ok)
		assert.Equal(t, 1.0, n.Z)
	}
}

func TestParseBadNumbers(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(io.Reader) (*mesh.Mesh, error)
		fixture string
		old     string
		new     string
		want    string
	}{
		{"gmsh element count", ParseGmsh22, gmshCube, "$Elements\n3\n", "$Elements\nthree\n", "element count"},
		{"gmsh element id", ParseGmsh22, gmshCube, "1 15 2 0 1 1", "one 15 2 0 1 1", "element line"},
		{"gmsh element tag", ParseGmsh22, gmshCube, "2 3 2 1 10 ", "2 3 2 1 1O ", "element 2 tags"},
		{"gmsh element node", ParseGmsh22, gmshCube, "20 1 2 3 4 5", "20 1 2 3 x 5", "element 3 nodes"},
		{"gmsh physical tag", ParseGmsh22, gmshCube, `2 1 "contact face"`, `2 a "contact face"`, "physical name"},
		{"gambit control", ParseGambitNeutral, gambitCube, "8         1         1", "8         one       1", "control line"},
		{"gambit node id", ParseGambitNeutral, gambitCube, "         2   1.0", "        2b   1.0", "node line"},
		{"gambit element node", ParseGambitNeutral, gambitCube, "2       3       4", "2       x       4", "element 1:"},
		{"gambit boundary face", ParseGambitNeutral, gambitCube, "1       4       6\n", "1       4       six\n", "boundary set wall"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, tt.fixture, tt.old)
			_, err := tt.parse(strings.NewReader(strings.Replace(tt.fixture, tt.old, tt.new, 1)))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
			assert.ErrorIs(t, err, strconv.ErrSyntax)
		})
	}
}

func TestReadMeshFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"cube.su2": su2Cube,
		"cube.msh": gmshCube,
		"cube.neu": gambitCube,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		msh, err := ReadMeshFile(path)
		require.NoError(t, err, name)
		assertUnitCube(t, msh)
	}

	_, err := ReadMeshFile(filepath.Join(dir, "cube.stl"))
	assert.ErrorContains(t, err, "unsupported mesh format")
	_, err = ReadMeshFile(filepath.Join(dir, "missing.su2"))
	assert.Error(t, err)
}
