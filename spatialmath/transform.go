package spatialmath

import "github.com/golang/geo/r3"

// Transform is a rigid transform (translation + yaw-only rotation about Z)
// between two named frames, as returned by a FrameTransformer lookup. This
// mirrors the subset of go.viam.com/rdk/spatialmath.Pose composition the
// planner actually needs: candidate poses only ever carry a yaw, never full
// 3-D orientation, so a yaw + translation pair is the complete representation.
type Transform struct {
	Translation r3.Vector
	YawOffset   float64
}

// Identity is the no-op transform.
func Identity() Transform {
	return Transform{}
}

// Apply maps a state expressed in the transform's source frame into its
// target frame.
func (t Transform) Apply(s State) State {
	rotated := RotateZ(s.Point(), t.YawOffset)
	return NewState(
		rotated.X+t.Translation.X,
		rotated.Y+t.Translation.Y,
		rotated.Z+t.Translation.Z,
		s.Yaw+t.YawOffset,
	)
}

// Compose returns the transform equivalent to applying `first` then `second`.
func Compose(first, second Transform) Transform {
	rotated := RotateZ(first.Translation, second.YawOffset)
	return Transform{
		Translation: rotated.Add(second.Translation),
		YawOffset:   WrapToPi(first.YawOffset + second.YawOffset),
	}
}
