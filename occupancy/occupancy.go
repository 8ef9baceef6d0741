// Package occupancy declares the external collaborator interfaces the
// planner consumes (§6 of the specification): the occupancy/volumetric map,
// the inspection mesh, the multi-agent collision oracle, and the
// frame-transform service. None of these are implemented here — only their
// query surface is specified, exactly as the specification treats them as
// out-of-scope collaborators. See package fakes for in-memory reference
// implementations used by tests and the CLI demo.
package occupancy

import (
	"github.com/golang/geo/r3"

	"go.viam.com/nbvplanner/spatialmath"
)

// CellStatus classifies a voxel of the occupancy map.
type CellStatus int

const (
	// Unknown cells have not yet been observed.
	Unknown CellStatus = iota
	// Occupied cells are known to contain a surface.
	Occupied
	// Free cells are known to be traversable.
	Free
)

func (s CellStatus) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Occupied:
		return "Occupied"
	case Free:
		return "Free"
	default:
		return "invalid"
	}
}

// Map is the occupancy/volumetric map's query surface.
type Map interface {
	// GetLineStatusBoundingBox reports the status of the swept AABB of size
	// bbox from p0 to p1: Free iff every touched cell is Free.
	GetLineStatusBoundingBox(p0, p1, bbox r3.Vector) CellStatus
	// GetCellProbabilityPoint reports the status and occupancy probability
	// of the cell containing v.
	GetCellProbabilityPoint(v r3.Vector) (CellStatus, float64)
	// GetVisibility ray-casts from `from` to `to`, reporting the status of
	// the terminating cell. stopAtUnknown is always false from this
	// planner's callers (§6).
	GetVisibility(from, to r3.Vector, stopAtUnknown bool) CellStatus
	// GetResolution returns the map's voxel edge length.
	GetResolution() float64
}

// Mesh is the triangulated inspection target's view-incorporation and
// inspectable-area query surface.
type Mesh interface {
	// SetPeerPose records the latest known pose of peer peerIndex (0 is
	// this agent).
	SetPeerPose(pose spatialmath.State, peerIndex int)
	// IncorporateViewFromPose marks mesh surface visible from pose as
	// inspected by peer peerIndex.
	IncorporateViewFromPose(pose spatialmath.State, peerIndex int)
	// ComputeInspectableArea returns the mesh surface area newly
	// inspectable from the given pose.
	ComputeInspectableArea(pose spatialmath.State) float64
}

// Segment is a directed line segment describing one committed edge of a
// peer agent's recent trajectory.
type Segment struct {
	P0, P1 r3.Vector
}

// PeerCollisionChecker is the multi-agent collision oracle's query surface.
type PeerCollisionChecker interface {
	// IsInCollision reports whether the swept bbox from stateA to stateB
	// collides with any of the given peer segments.
	IsInCollision(stateA, stateB spatialmath.State, bbox r3.Vector, segments []Segment) bool
}

// FrameTransformer is the frame-transform service's query surface.
type FrameTransformer interface {
	// LookupTransform returns the transform that maps a state in
	// sourceFrame into targetFrame.
	LookupTransform(targetFrame, sourceFrame string) (spatialmath.Transform, error)
}
