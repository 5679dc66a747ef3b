package geometry

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// The plane test admits faces at any lateral distance, so a positional
// index would drop valid pairs. The broad phase indexes faces by unit normal
// instead: dot(na, nb) <= OpposedNormalDot holds exactly when nb lies within
// opposedChord of -na.
var opposedChord = math.Sqrt(2 + 2*OpposedNormalDot)

const pointExtent = 1e-9

type indexedFace struct {
	body, face int // Positions in the other-body list and its face list
	rect       rtreego.Rect
}

func (f *indexedFace) Bounds() rtreego.Rect { return f.rect }

// normalIndex is an R-tree of the other bodies' face normals
type normalIndex struct {
	tree *rtreego.Rtree
}

func cube(center rtreego.Point, half float64) rtreego.Rect {
	p := rtreego.Point{center[0] - half, center[1] - half, center[2] - half}
	r, err := rtreego.NewRect(p, []float64{2 * half, 2 * half, 2 * half})
	if err != nil {
		panic(err)
	}
	return r
}

func newNormalIndex(others []Body) *normalIndex {
	idx := &normalIndex{tree: rtreego.NewTree(3, 4, 16)}
	for bi, b := range others {
		for fi, f := range b.Faces {
			n := rtreego.Point{f.Normal.X, f.Normal.Y, f.Normal.Z}
			idx.tree.Insert(&indexedFace{body: bi, face: fi, rect: cube(n, pointExtent)})
		}
	}
	return idx
}

// query returns, per face of a, the candidate faces of each other body in
// face order
func (idx *normalIndex) query(a Body) []map[int][]int {
	hits := make([]map[int][]int, len(a.Faces))
	for i, f := range a.Faces {
		opposite := rtreego.Point{-f.Normal.X, -f.Normal.Y, -f.Normal.Z}
		byBody := make(map[int][]int)
		for _, s := range idx.tree.SearchIntersect(cube(opposite, opposedChord+pointExtent)) {
			h := s.(*indexedFace)
			byBody[h.body] = append(byBody[h.body], h.face)
		}
		for _, faces := range byBody {
			sort.Ints(faces)
		}
		hits[i] = byBody
	}
	return hits
}
