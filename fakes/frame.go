package fakes

import (
	"fmt"

	"go.viam.com/nbvplanner/spatialmath"
)

// FrameTransformer is a minimal frame-transform service: it always returns
// the identity transform for any frame to itself, and for any other pair
// returns whichever explicit Transform was registered via Add, or an error
// if none was.
type FrameTransformer struct {
	transforms map[frameEdge]spatialmath.Transform
}

type frameEdge struct {
	target, source string
}

// NewFrameTransformer returns a transformer that resolves planningFrame to
// itself as the identity.
func NewFrameTransformer(planningFrame string) *FrameTransformer {
	ft := &FrameTransformer{transforms: make(map[frameEdge]spatialmath.Transform)}
	ft.Add(planningFrame, planningFrame, spatialmath.Identity())
	return ft
}

// Add registers the transform mapping sourceFrame into targetFrame.
func (ft *FrameTransformer) Add(targetFrame, sourceFrame string, t spatialmath.Transform) {
	ft.transforms[frameEdge{targetFrame, sourceFrame}] = t
}

// LookupTransform implements occupancy.FrameTransformer.
func (ft *FrameTransformer) LookupTransform(targetFrame, sourceFrame string) (spatialmath.Transform, error) {
	if targetFrame == sourceFrame {
		return spatialmath.Identity(), nil
	}
	t, ok := ft.transforms[frameEdge{targetFrame, sourceFrame}]
	if !ok {
		return spatialmath.Transform{}, fmt.Errorf("no transform registered from %q to %q", sourceFrame, targetFrame)
	}
	return t, nil
}
