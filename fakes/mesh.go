package fakes

import (
	"go.viam.com/nbvplanner/spatialmath"
)

// Mesh is a trivial inspection-mesh stand-in: it does not model any real
// geometry, but tracks peer poses and reports an inspectable area that
// depends only on how much of the workspace a pose newly covers, which is
// enough to exercise the igArea gain term (§4.4) without a real
// triangulated mesh. Like the planner itself, it assumes single-threaded,
// caller-serialized access (§5).
type Mesh struct {
	peerPoses  map[int]spatialmath.State
	inspected  map[int]int
	areaPerNew float64
}

// NewMesh returns a Mesh whose ComputeInspectableArea grants areaPerNew
// square meters for a pose whose cell (coarsely bucketed to one-meter cells)
// no peer has incorporated a view from yet; viewed cells are shared across
// all peers.
func NewMesh(areaPerNew float64) *Mesh {
	return &Mesh{
		peerPoses:  make(map[int]spatialmath.State),
		inspected:  make(map[int]int),
		areaPerNew: areaPerNew,
	}
}

// SetPeerPose implements occupancy.Mesh.
func (m *Mesh) SetPeerPose(pose spatialmath.State, peerIndex int) {
	m.peerPoses[peerIndex] = pose
}

// IncorporateViewFromPose implements occupancy.Mesh.
func (m *Mesh) IncorporateViewFromPose(pose spatialmath.State, peerIndex int) {
	m.inspected[cellKey(pose)]++
}

// ComputeInspectableArea implements occupancy.Mesh.
func (m *Mesh) ComputeInspectableArea(pose spatialmath.State) float64 {
	if m.inspected[cellKey(pose)] > 0 {
		return 0
	}
	return m.areaPerNew
}

func cellKey(s spatialmath.State) int {
	const prime = 73856093
	x := int(s.X)
	y := int(s.Y)
	z := int(s.Z)
	return x*prime ^ y*19349663 ^ z*83492791
}
