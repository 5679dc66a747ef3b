package geometry

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/dynaprep/utils"
)

// Options control a detection run
type Options struct {
	Tolerance  float64 // Gap tolerance, meters
	Workers    int     // Values above 1 split the target bodies across goroutines
	BroadPhase bool    // Pre-filter candidate faces through a normal index
	// SingleSided matches targets against non-target bodies only and keeps
	// the first match of each target face
	SingleSided bool
}

func (o Options) validate() error {
	if math.IsNaN(o.Tolerance) || math.IsInf(o.Tolerance, 0) || o.Tolerance <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTolerance, o.Tolerance)
	}
	return nil
}

// Touching reports whether two faces are nearly anti-parallel and both
// centroids lie within tol of the other face's plane.
func Touching(fa, fb Face, tol float64) bool {
	if r3.Dot(fa.Normal, fb.Normal) > OpposedNormalDot {
		return false
	}
	d := r3.Sub(fa.Centroid, fb.Centroid)
	if math.Abs(r3.Dot(d, fb.Normal)) >= tol {
		return false
	}
	return math.Abs(r3.Dot(d, fa.Normal)) < tol
}

// Detect finds touching face pairs between the target bodies and the other
// bodies. The two lists may overlap; a physical pair found from both sides
// is reported once, in the order it was first discovered. With
// opts.SingleSided every target face appears at most once, as the A side.
func Detect(targets, others []Body, opts Options) ([]FacePair, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.SingleSided {
		targetIDs := lo.Map(targets, func(b Body, _ int) int { return b.ID })
		others = lo.Reject(others, func(b Body, _ int) bool { return lo.Contains(targetIDs, b.ID) })
		if len(others) == 0 {
			slog.Warn("single sided detection without non-target bodies finds nothing", "targets", len(targets))
		}
	}
	var idx *normalIndex
	if opts.BroadPhase {
		idx = newNormalIndex(others)
	}
	scan := func(a Body) []FacePair {
		return scanBody(a, others, idx, opts.Tolerance, opts.SingleSided)
	}

	var candidates []FacePair
	if opts.Workers <= 1 || len(targets) < 2 {
		for _, a := range targets {
			candidates = append(candidates, scan(a)...)
		}
	} else {
		pm := utils.NewPartitionMap(opts.Workers, len(targets))
		slog.Debug("contact detection partition", "workers", pm.ParallelDegree,
			"bodiesPerWorker", pm.GetBucketDimension(0))
		perBucket := make([][]FacePair, pm.ParallelDegree)
		pm.ParallelFor(func(bucket, kMin, kMax int) {
			for k := kMin; k < kMax; k++ {
				perBucket[bucket] = append(perBucket[bucket], scan(targets[k])...)
			}
		})
		for _, found := range perBucket {
			candidates = append(candidates, found...)
		}
	}

	pairs := Dedupe(candidates)
	slog.Debug("contact detection", "targets", len(targets), "others", len(others),
		"candidates", len(candidates), "pairs", len(pairs))
	return pairs, nil
}

// scanBody matches each face of a against the faces of every other body in
// turn. With an index only the indexed candidates are tested, in the same
// order. When first is set a face stops at its first match.
func scanBody(a Body, others []Body, idx *normalIndex, tol float64, first bool) (found []FacePair) {
	var hits []map[int][]int
	if idx != nil {
		hits = idx.query(a)
	}
	try := func(fa, fb Face) bool {
		if fa.BodyID == fb.BodyID || !Touching(fa, fb, tol) {
			return false
		}
		found = append(found, FacePair{
			A: fa, B: fb,
			DirA: Classify(fa.Normal),
			DirB: Classify(fb.Normal),
		})
		return true
	}
	for i, fa := range a.Faces {
	faces:
		for bi, b := range others {
			if a.ID == b.ID {
				continue
			}
			if hits == nil {
				for _, fb := range b.Faces {
					if try(fa, fb) && first {
						break faces
					}
				}
				continue
			}
			for _, fj := range hits[i][bi] {
				if try(fa, b.Faces[fj]) && first {
					break faces
				}
			}
		}
	}
	return found
}

// Dedupe drops pairs whose unordered geometric key was already seen,
// keeping the first occurrence.
func Dedupe(pairs []FacePair) []FacePair {
	seen := make(map[pairKey]bool, len(pairs))
	out := make([]FacePair, 0, len(pairs))
	for _, p := range pairs {
		k := keyOfPair(p.A, p.B)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
