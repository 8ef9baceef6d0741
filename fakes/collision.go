package fakes

import (
	"github.com/golang/geo/r3"

	"go.viam.com/nbvplanner/occupancy"
	"go.viam.com/nbvplanner/spatialmath"
)

// PeerCollisionChecker reports a collision when the segment stateA->stateB
// passes closer than half the bounding box's diagonal to any peer segment.
type PeerCollisionChecker struct{}

// IsInCollision implements occupancy.PeerCollisionChecker.
func (PeerCollisionChecker) IsInCollision(
	stateA, stateB spatialmath.State,
	bbox r3.Vector,
	segments []occupancy.Segment,
) bool {
	margin := (bbox.Norm()) / 2
	for _, seg := range segments {
		if segmentDistance(stateA.Point(), stateB.Point(), seg.P0, seg.P1) < margin {
			return true
		}
	}
	return false
}

// segmentDistance returns the minimum distance between segments p1-p2 and
// p3-p4, sampling both at a fixed resolution — sufficient fidelity for a
// test fake; a real oracle would solve the closed-form segment-segment
// distance.
func segmentDistance(p1, p2, p3, p4 r3.Vector) float64 {
	const samples = 20
	best := p1.Sub(p3).Norm()
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		a := p1.Add(p2.Sub(p1).Mul(t))
		for j := 0; j <= samples; j++ {
			u := float64(j) / samples
			b := p3.Add(p4.Sub(p3).Mul(u))
			if d := a.Sub(b).Norm(); d < best {
				best = d
			}
		}
	}
	return best
}
