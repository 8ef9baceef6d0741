// Package sampler implements the RRT candidate-state sampler, §4.2 of the
// specification: a rejection sampler over a sphere whose radius is the
// workspace diagonal, translated to the current tree root, optionally
// clipped to the workspace AABB. It takes its parameters as a plain struct
// rather than the config package, so the core planning packages never
// depend on how configuration is sourced (§9 design note).
package sampler

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrRetriesExceeded is returned when Sample rejects maxSampleRetries
// candidates in a row without finding one inside the workspace bounds. It
// is a recoverable error (§7): callers should abandon the current
// iteration, not the planning round.
var ErrRetriesExceeded = errors.New("sampler: exceeded maximum sample retries")

// Bounds describes the sampler's workspace AABB and vertical half-range.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64

	SoftBounds  bool
	BoundingBox r3.Vector

	ZSampleRange     float64
	MaxSampleRetries int
}

// Radius returns the sampling sphere radius R (§4.2 step 1): the diagonal of
// the workspace AABB.
func (b Bounds) Radius() float64 {
	dx := b.MaxX - b.MinX
	dy := b.MaxY - b.MinY
	dz := b.MaxZ - b.MinZ
	return r3.Vector{X: dx, Y: dy, Z: dz}.Norm()
}

// Sampler draws candidate positions per §4.2. The zero value is not usable;
// construct with New.
type Sampler struct {
	bounds Bounds
	rng    *rand.Rand
}

// New returns a Sampler reading workspace bounds from b and drawing from
// rng. rng must be supplied by the caller so that planning is deterministic
// given a fixed seed (§5).
func New(b Bounds, rng *rand.Rand) *Sampler {
	return &Sampler{bounds: b, rng: rng}
}

// Sample draws a candidate position around root, per §4.2 steps 1-6. Yaw is
// not sampled here (§4.2, final paragraph): callers attach it after the
// candidate survives collision checking.
func (s *Sampler) Sample(root r3.Vector) (r3.Vector, error) {
	radius := s.bounds.Radius()
	radiusSq := radius * radius

	for attempt := 0; attempt < s.bounds.MaxSampleRetries; attempt++ {
		ux := uniform(s.rng, -radius, radius)
		uy := uniform(s.rng, -radius, radius)
		uz := uniform(s.rng, -s.bounds.ZSampleRange, s.bounds.ZSampleRange)

		if ux*ux+uy*uy+uz*uz > radiusSq {
			continue
		}

		cand := root.Add(r3.Vector{X: ux, Y: uy, Z: uz})

		if !s.bounds.SoftBounds && !s.withinBounds(cand) {
			continue
		}
		return cand, nil
	}
	return r3.Vector{}, ErrRetriesExceeded
}

// SampleYaw draws a yaw uniformly in (-pi, pi], per the final paragraph of
// §4.2.
func (s *Sampler) SampleYaw() float64 {
	return math.Pi - s.rng.Float64()*2*math.Pi
}

func (s *Sampler) withinBounds(p r3.Vector) bool {
	bb := s.bounds.BoundingBox
	b := s.bounds
	switch {
	case p.X < b.MinX+0.5*bb.X, p.X > b.MaxX-0.5*bb.X:
		return false
	case p.Y < b.MinY+0.5*bb.Y, p.Y > b.MaxY-0.5*bb.Y:
		return false
	case p.Z < b.MinZ+0.5*bb.Z, p.Z > b.MaxZ-0.5*bb.Z:
		return false
	default:
		return true
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
