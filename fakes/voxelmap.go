// Package fakes provides in-memory reference implementations of the
// external collaborator interfaces declared in package occupancy: an
// occupancy map, an inspection mesh, a peer collision checker, and a frame
// transformer. They exist to exercise and test the planner end-to-end
// without a real sensor stack, mirroring how the teacher corpus's own test
// suites lean on small in-package fakes rather than mocks of a whole ROS
// stack.
package fakes

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/nbvplanner/occupancy"
)

type voxelKey struct{ x, y, z int }

// VoxelMap is a simple grid-based occupancy map keyed on integer voxel
// coordinates at a fixed resolution. Cells never explicitly set are
// Unknown.
type VoxelMap struct {
	resolution float64
	cells      map[voxelKey]occupancy.CellStatus
}

// NewVoxelMap returns an empty VoxelMap at the given resolution (voxel edge
// length, in meters).
func NewVoxelMap(resolution float64) *VoxelMap {
	return &VoxelMap{resolution: resolution, cells: make(map[voxelKey]occupancy.CellStatus)}
}

func (m *VoxelMap) key(v r3.Vector) voxelKey {
	return voxelKey{
		x: int(math.Floor(v.X / m.resolution)),
		y: int(math.Floor(v.Y / m.resolution)),
		z: int(math.Floor(v.Z / m.resolution)),
	}
}

// Set marks the voxel containing v with the given status.
func (m *VoxelMap) Set(v r3.Vector, status occupancy.CellStatus) {
	m.cells[m.key(v)] = status
}

// SetBox marks every voxel in the AABB [min, max] with the given status.
func (m *VoxelMap) SetBox(min, max r3.Vector, status occupancy.CellStatus) {
	for x := min.X; x <= max.X; x += m.resolution {
		for y := min.Y; y <= max.Y; y += m.resolution {
			for z := min.Z; z <= max.Z; z += m.resolution {
				m.Set(r3.Vector{X: x, Y: y, Z: z}, status)
			}
		}
	}
}

// GetResolution implements occupancy.Map.
func (m *VoxelMap) GetResolution() float64 {
	return m.resolution
}

// GetCellProbabilityPoint implements occupancy.Map.
func (m *VoxelMap) GetCellProbabilityPoint(v r3.Vector) (occupancy.CellStatus, float64) {
	status, ok := m.cells[m.key(v)]
	if !ok {
		return occupancy.Unknown, 0.5
	}
	switch status {
	case occupancy.Occupied:
		return occupancy.Occupied, 0.9
	case occupancy.Free:
		return occupancy.Free, 0.1
	default:
		return occupancy.Unknown, 0.5
	}
}

func (m *VoxelMap) statusAt(v r3.Vector) occupancy.CellStatus {
	status, ok := m.cells[m.key(v)]
	if !ok {
		return occupancy.Unknown
	}
	return status
}

// GetLineStatusBoundingBox implements occupancy.Map: the swept AABB of size
// bbox from p0 to p1 is Free iff every cell it touches is Free; Occupied
// takes precedence over Unknown, which takes precedence over Free.
func (m *VoxelMap) GetLineStatusBoundingBox(p0, p1, bbox r3.Vector) occupancy.CellStatus {
	dir := p1.Sub(p0)
	length := dir.Norm()
	if length == 0 {
		return m.sweptStatusAtPoint(p0, bbox)
	}
	steps := int(math.Ceil(length/m.resolution)) + 1
	worst := occupancy.Free
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		center := p0.Add(dir.Mul(t))
		status := m.sweptStatusAtPoint(center, bbox)
		worst = worse(worst, status)
		if worst == occupancy.Occupied {
			return occupancy.Occupied
		}
	}
	return worst
}

func (m *VoxelMap) sweptStatusAtPoint(center, bbox r3.Vector) occupancy.CellStatus {
	half := bbox.Mul(0.5)
	min := center.Sub(half)
	max := center.Add(half)
	worst := occupancy.Free
	for x := min.X; x <= max.X; x += m.resolution {
		for y := min.Y; y <= max.Y; y += m.resolution {
			for z := min.Z; z <= max.Z; z += m.resolution {
				worst = worse(worst, m.statusAt(r3.Vector{X: x, Y: y, Z: z}))
				if worst == occupancy.Occupied {
					return worst
				}
			}
		}
	}
	return worst
}

// worse returns whichever status is more conservative, under the
// precedence Occupied > Unknown > Free.
func worse(a, b occupancy.CellStatus) occupancy.CellStatus {
	rank := func(s occupancy.CellStatus) int {
		switch s {
		case occupancy.Occupied:
			return 2
		case occupancy.Unknown:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// GetVisibility implements occupancy.Map with a grid-stepped ray walk from
// `from` to `to`, returning the status of the first cell that terminates
// the ray: Occupied always terminates it; Unknown terminates it only when
// stopAtUnknown is set. Reaching `to` without termination reports Free.
func (m *VoxelMap) GetVisibility(from, to r3.Vector, stopAtUnknown bool) occupancy.CellStatus {
	dir := to.Sub(from)
	length := dir.Norm()
	if length == 0 {
		return m.statusAt(from)
	}
	steps := int(math.Ceil(length / m.resolution))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		status := m.statusAt(from.Add(dir.Mul(t)))
		if status == occupancy.Occupied {
			return occupancy.Occupied
		}
		if status == occupancy.Unknown && stopAtUnknown {
			return occupancy.Unknown
		}
	}
	return occupancy.Free
}
