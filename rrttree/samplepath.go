package rrttree

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/nbvplanner/occupancy"
	"go.viam.com/nbvplanner/spatialmath"
)

// SamplePath implements §4.5 samplePath: discretizes the edge from start to
// end at a step size bounded by both the linear and angular velocity
// limits, and transforms every emitted pose from planningFrame into
// targetFrame.
//
// Panics if both the linear and angular deltas are zero: an all-zero edge
// is a caller error (§7 programmer error), not a condition the discretizer
// can recover from.
func SamplePath(
	start, end spatialmath.State,
	planningFrame, targetFrame string,
	transformer occupancy.FrameTransformer,
	dt, vMax, dyawMax float64,
) []spatialmath.State {
	deltaXYZ := end.Point().Sub(start.Point())
	deltaYaw := spatialmath.YawDelta(start.Yaw, end.Yaw)

	linearNorm := deltaXYZ.Norm()
	angularNorm := math.Abs(deltaYaw)

	if linearNorm == 0 && angularNorm == 0 {
		panic("rrttree: SamplePath called with a zero-length edge")
	}

	disc := discretizationStep(linearNorm, angularNorm, dt, vMax, dyawMax)

	transform, err := transformer.LookupTransform(targetFrame, planningFrame)
	if err != nil {
		return nil
	}

	const epsilon = 1e-9
	var path []spatialmath.State
	for tparam := 0.0; tparam <= 1.0+epsilon; tparam += disc {
		path = append(path, interpolate(start, deltaXYZ, deltaYaw, math.Min(tparam, 1.0), transform))
	}
	return path
}

// discretizationStep picks disc = min(dt*vMax/||deltaXYZ||, dt*dyawMax/|deltaYaw|)
// over whichever of the two deltas is nonzero.
func discretizationStep(linearNorm, angularNorm, dt, vMax, dyawMax float64) float64 {
	switch {
	case linearNorm > 0 && angularNorm > 0:
		return math.Min(dt*vMax/linearNorm, dt*dyawMax/angularNorm)
	case linearNorm > 0:
		return dt * vMax / linearNorm
	default:
		return dt * dyawMax / angularNorm
	}
}

func interpolate(start spatialmath.State, deltaXYZ r3.Vector, deltaYaw, t float64, transform spatialmath.Transform) spatialmath.State {
	p := start.Point().Add(deltaXYZ.Mul(t))
	yaw := spatialmath.WrapToPi(start.Yaw + t*deltaYaw)
	pose := spatialmath.NewState(p.X, p.Y, p.Z, yaw)
	return transform.Apply(pose)
}
