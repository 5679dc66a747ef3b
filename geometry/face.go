package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Matching thresholds. They come from hand tuning on assemblies meshed in
// millimetres and may need adjustment for very coarse or very fine models.
const (
	// OpposedNormalDot is the largest normal dot product of a touching pair
	OpposedNormalDot = -0.8
	// KeyResolution is the rounding step of the geometric face key, meters
	KeyResolution = 1e-6
	// MinNormalMagnitude rejects faces whose raw normal is degenerate
	MinNormalMagnitude = 0.1
)

var (
	ErrDegenerateNormal = errors.New("degenerate face normal")
	ErrInvalidTolerance = errors.New("tolerance must be finite and positive")
	ErrNoGeometry       = errors.New("body has no accessible geometry")
)

// Face is a planar face of a body with a unit outward normal
type Face struct {
	ID       int
	BodyID   int
	Centroid r3.Vec
	Normal   r3.Vec
}

// NewFace normalizes rawNormal, rejecting normals shorter than
// MinNormalMagnitude.
func NewFace(id, bodyID int, centroid, rawNormal r3.Vec) (Face, error) {
	mag := r3.Norm(rawNormal)
	if math.IsNaN(mag) || mag < MinNormalMagnitude {
		return Face{}, fmt.Errorf("%w: face %d of body %d, |n| = %g", ErrDegenerateNormal, id, bodyID, mag)
	}
	return Face{
		ID:       id,
		BodyID:   bodyID,
		Centroid: centroid,
		Normal:   r3.Scale(1/mag, rawNormal),
	}, nil
}

// Body owns an ordered list of faces
type Body struct {
	ID    int
	Name  string
	Faces []Face
}

// FacePair is a touching pair of faces from two different bodies
type FacePair struct {
	A, B       Face
	DirA, DirB Direction
}

// faceKey is the geometric identity of a face, rounded to KeyResolution
type faceKey [6]int64

func keyOf(f Face) faceKey {
	q := func(v float64) int64 { return int64(math.Round(v / KeyResolution)) }
	return faceKey{
		q(f.Centroid.X), q(f.Centroid.Y), q(f.Centroid.Z),
		q(f.Normal.X), q(f.Normal.Y), q(f.Normal.Z),
	}
}

func (k faceKey) less(o faceKey) bool {
	for i := range k {
		if k[i] != o[i] {
			return k[i] < o[i]
		}
	}
	return false
}

// pairKey is the order independent key of a pair of faces
type pairKey [2]faceKey

func keyOfPair(a, b Face) pairKey {
	ka, kb := keyOf(a), keyOf(b)
	if kb.less(ka) {
		ka, kb = kb, ka
	}
	return pairKey{ka, kb}
}
