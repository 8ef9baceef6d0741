// Package spatialindex implements the 3-D nearest-neighbor structure the
// planner tree grows alongside its nodes: insert a point with an opaque
// payload, then ask for the single nearest neighbor of a query point.
//
// The tree is rebuilt from scratch each planning round (see rrttree.Tree),
// so no deletion is supported. Grounded on the incremental-insert,
// single-nearest-neighbor shape exercised by the teacher corpus's
// pointcloud.KDTree (NearestNeighbor/KNearestNeighbors over r3.Vector), but
// is written here as its own unbalanced incremental k-d tree since the
// planner needs insert-as-you-go rather than a tree built once from a
// complete point cloud.
package spatialindex

import (
	"math"

	"github.com/golang/geo/r3"
)

// Payload is the opaque data associated with an indexed point. The planner
// stores a node index (see rrttree.Tree) here.
type Payload any

type kdNode struct {
	point    r3.Vector
	payload  Payload
	left     *kdNode
	right    *kdNode
	axis     int
}

// Tree is an incrementally-built 3-D k-d tree. The zero value is an empty
// tree ready to use.
type Tree struct {
	root *kdNode
	size int
}

// New returns an empty spatial index.
func New() *Tree {
	return &Tree{}
}

// Len reports the number of points currently indexed.
func (t *Tree) Len() int {
	return t.size
}

// Insert adds point with the given payload to the index.
func (t *Tree) Insert(point r3.Vector, payload Payload) {
	t.size++
	if t.root == nil {
		t.root = &kdNode{point: point, payload: payload, axis: 0}
		return
	}
	n := t.root
	for {
		axis := n.axis
		if component(point, axis) < component(n.point, axis) {
			if n.left == nil {
				n.left = &kdNode{point: point, payload: payload, axis: nextAxis(axis)}
				return
			}
			n = n.left
		} else {
			if n.right == nil {
				n.right = &kdNode{point: point, payload: payload, axis: nextAxis(axis)}
				return
			}
			n = n.right
		}
	}
}

// Nearest returns the payload and distance of the point nearest to query.
// ok is false iff the index is empty.
func (t *Tree) Nearest(query r3.Vector) (payload Payload, distance float64, ok bool) {
	if t.root == nil {
		return nil, 0, false
	}
	best := t.root
	bestDistSq := sqDist(query, t.root.point)
	searchNearest(t.root, query, &best, &bestDistSq)
	return best.payload, math.Sqrt(bestDistSq), true
}

func searchNearest(n *kdNode, query r3.Vector, best **kdNode, bestDistSq *float64) {
	if n == nil {
		return
	}
	d := sqDist(query, n.point)
	if d < *bestDistSq {
		*bestDistSq = d
		*best = n
	}

	axis := n.axis
	delta := component(query, axis) - component(n.point, axis)

	near, far := n.left, n.right
	if delta > 0 {
		near, far = n.right, n.left
	}

	searchNearest(near, query, best, bestDistSq)
	// Only descend into the far side if a closer point could still live
	// there: the splitting hyperplane is nearer than the current best.
	if delta*delta < *bestDistSq {
		searchNearest(far, query, best, bestDistSq)
	}
}

func component(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func nextAxis(axis int) int {
	return (axis + 1) % 3
}

func sqDist(a, b r3.Vector) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}
