// Package spatialmath provides the minimal pose and vector algebra the
// planner needs: a 4-DoF state (x, y, z, yaw), distance and yaw helpers, and
// yaw-about-Z rotation of body-frame vectors used by the gain evaluator.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// State is a planner configuration: position in meters in the planning
// frame, and yaw in radians normalized to (-pi, pi].
type State struct {
	X, Y, Z float64
	Yaw     float64
}

// NewState builds a State, normalizing yaw into (-pi, pi].
func NewState(x, y, z, yaw float64) State {
	return State{X: x, Y: y, Z: z, Yaw: WrapToPi(yaw)}
}

// Point returns the position component as a vector.
func (s State) Point() r3.Vector {
	return r3.Vector{X: s.X, Y: s.Y, Z: s.Z}
}

// WithPoint returns a copy of s with its position replaced.
func (s State) WithPoint(p r3.Vector) State {
	s.X, s.Y, s.Z = p.X, p.Y, p.Z
	return s
}

// Add returns s translated by delta.
func (s State) Add(delta r3.Vector) State {
	return s.WithPoint(s.Point().Add(delta))
}

// Distance returns the Euclidean distance between the xyz components of two
// states.
func Distance(a, b State) float64 {
	return a.Point().Sub(b.Point()).Norm()
}

// WrapToPi normalizes an angle in radians to the interval (-pi, pi].
func WrapToPi(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// YawDelta returns the shortest signed angular difference end-start, wrapped
// to (-pi, pi].
func YawDelta(start, end float64) float64 {
	return WrapToPi(end - start)
}

// RotateZ rotates a body-frame vector about the Z axis by angle radians,
// yielding its representation after a yaw of `angle` has been applied. Used
// to bring camera frustum bound normals (specified in body frame) into the
// planning frame at a candidate pose's yaw.
func RotateZ(v r3.Vector, angle float64) r3.Vector {
	rotated := mgl64.Rotate3DZ(angle).Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return r3.Vector{X: rotated[0], Y: rotated[1], Z: rotated[2]}
}
