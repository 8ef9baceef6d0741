// Package gain implements the information-gain evaluator, §4.4 of the
// specification: a per-voxel integration over an axis-aligned cube around a
// candidate state, clipped to the workspace AABB and admitted only through
// registered camera frustums.
package gain

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/nbvplanner/occupancy"
	"go.viam.com/nbvplanner/spatialmath"
)

// Frustum is an unordered collection of inward-facing bound normals (in
// body frame) describing one camera's view volume.
type Frustum struct {
	Normals []r3.Vector
}

// Bounds is the workspace AABB the cube integration is clipped to.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// Params holds the gain evaluator's tunables (§3), passed as a plain struct
// rather than the config package so the core never depends on how
// configuration is sourced (§9 design note).
type Params struct {
	Workspace  Bounds
	GainRange  float64
	IGUnmapped float64
	IGOccupied float64
	IGFree     float64
	IGArea     float64
	Frustums   []Frustum
}

// Evaluator computes gain(state) per §4.4 against an occupancy map and an
// optional inspection mesh.
type Evaluator struct {
	params Params
	occMap occupancy.Map
	mesh   occupancy.Mesh // nil if no mesh is wired
}

// New returns an Evaluator reading voxel occupancy from occMap. mesh may be
// nil, in which case the igArea term (§4.4 step 6) is omitted.
func New(params Params, occMap occupancy.Map, mesh occupancy.Mesh) *Evaluator {
	return &Evaluator{params: params, occMap: occMap, mesh: mesh}
}

// Gain computes gain(state), §4.4 steps 1-6.
func (e *Evaluator) Gain(state spatialmath.State) float64 {
	disc := e.occMap.GetResolution()
	if disc <= 0 {
		return 0
	}

	rangeSq := e.params.GainRange * e.params.GainRange
	rotated := e.rotatedFrustums(state.Yaw)

	lo, hi := e.clippedCube(state.Point())

	var sum float64
	for x := lo.X; x <= hi.X; x += disc {
		for y := lo.Y; y <= hi.Y; y += disc {
			for z := lo.Z; z <= hi.Z; z += disc {
				v := r3.Vector{X: x, Y: y, Z: z}
				diff := v.Sub(state.Point())
				if diff.Dot(diff) > rangeSq {
					continue
				}
				if !admitted(v, state.Point(), rotated, disc) {
					continue
				}

				term, ok := e.voxelTerm(state.Point(), v)
				if !ok {
					continue
				}
				sum += term
			}
		}
	}

	sum *= disc * disc * disc

	if e.mesh != nil {
		sum += e.params.IGArea * e.mesh.ComputeInspectableArea(state)
	}
	return sum
}

// clippedCube returns the [lo, hi] AABB of the gainRange cube around center,
// clipped to the workspace.
func (e *Evaluator) clippedCube(center r3.Vector) (r3.Vector, r3.Vector) {
	w := e.params.Workspace
	r := e.params.GainRange
	lo := r3.Vector{
		X: math.Max(center.X-r, w.MinX),
		Y: math.Max(center.Y-r, w.MinY),
		Z: math.Max(center.Z-r, w.MinZ),
	}
	hi := r3.Vector{
		X: math.Min(center.X+r, w.MaxX),
		Y: math.Min(center.Y+r, w.MaxY),
		Z: math.Min(center.Z+r, w.MaxZ),
	}
	return lo, hi
}

// voxelTerm queries occupancy and visibility at v from the state's origin,
// returning the unscaled igUnmapped/igOccupied/igFree term and whether v
// contributes at all (it does not if hidden behind an occupied cell).
func (e *Evaluator) voxelTerm(from, v r3.Vector) (float64, bool) {
	status, _ := e.occMap.GetCellProbabilityPoint(v)

	if e.occMap.GetVisibility(from, v, false) == occupancy.Occupied && status != occupancy.Occupied {
		// Something strictly before v occluded the ray; v itself is not the
		// occluder, so it is hidden and contributes nothing.
		return 0, false
	}

	switch status {
	case occupancy.Unknown:
		return e.params.IGUnmapped, true
	case occupancy.Occupied:
		return e.params.IGOccupied, true
	default:
		return e.params.IGFree, true
	}
}

// admitted reports whether v lies inside at least one of the (already
// yaw-rotated) frustums, per §4.4 step 2's conservative margin test.
func admitted(v, origin r3.Vector, frustums []Frustum, disc float64) bool {
	// No frustum is registered: the vacuous "inside some frustum" test
	// admits nothing (§4.4 step 2).
	margin := math.Sqrt2 * disc
	diff := v.Sub(origin)
	for _, f := range frustums {
		inside := true
		for _, n := range f.Normals {
			if diff.Dot(n.Normalize()) < margin {
				inside = false
				break
			}
		}
		if inside {
			return true
		}
	}
	return false
}

// rotatedFrustums rotates every registered frustum's body-frame normals
// about the z-axis by yaw, using the same rotation primitive the teacher's
// own dependency set provides for this class of problem.
func (e *Evaluator) rotatedFrustums(yaw float64) []Frustum {
	if len(e.params.Frustums) == 0 {
		return nil
	}
	out := make([]Frustum, len(e.params.Frustums))
	for i, f := range e.params.Frustums {
		normals := make([]r3.Vector, len(f.Normals))
		for j, n := range f.Normals {
			normals[j] = spatialmath.RotateZ(n, yaw)
		}
		out[i] = Frustum{Normals: normals}
	}
	return out
}

// AccumulatedGain implements the recurrence from the final paragraph of
// §4.4: parentGain + gain(state)*exp(-lambda*distanceFromRoot).
func AccumulatedGain(parentGain, ownGain, degressiveCoeff, distanceFromRoot float64) float64 {
	return parentGain + ownGain*math.Exp(-degressiveCoeff*distanceFromRoot)
}
