// Package rrttree implements the Planner Tree, §4.3 of the specification:
// an RRT grown one sample-and-extend step at a time, tracking the
// highest-gain node reached so far and a warm-start memory of the previous
// round's best branch.
//
// Nodes live in an arena addressed by integer index rather than pointers
// (§9 design note): the spatial index stores those same indices as its
// payload, and Clear simply truncates the arena instead of walking a
// pointer graph to free it.
package rrttree

import (
	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"go.viam.com/nbvplanner/gain"
	"go.viam.com/nbvplanner/occupancy"
	"go.viam.com/nbvplanner/sampler"
	"go.viam.com/nbvplanner/spatialindex"
	"go.viam.com/nbvplanner/spatialmath"
)

// noParent marks the root node's parent slot.
const noParent = -1

// Node is one vertex of the RRT, addressed by its index in Tree.nodes. ID is
// a fresh UUID assigned at insertion, independent of index reuse after
// Clear, so an on-disk tree log line stays referenceable across rounds.
type Node struct {
	ID       string
	State    spatialmath.State
	Parent   int // noParent for the root
	Children []int
	Distance float64
	Gain     float64
}

// Params bundles the Tree's tunables, read as a plain struct rather than
// the config package (§9 design note).
type Params struct {
	ExtensionRange  float64
	DOvershoot      float64
	BoundingBox     r3.Vector
	DegressiveCoeff float64
	ZeroGain        float64
	ExactRoot       bool
	AgentIndex      int // this agent's slot in the peer-segments table
}

// Tree is the Planner Tree. Construct with New.
type Tree struct {
	params Params

	nodes []Node
	index *spatialindex.Tree

	bestNode int // -1 if none
	bestGain float64

	memory  []spatialmath.State // deepest-to-shallowest
	history []spatialmath.State // LIFO

	exactRoot     spatialmath.State
	haveExactRoot bool

	peerSegments map[int][]occupancy.Segment

	sampler  *sampler.Sampler
	gain     *gain.Evaluator
	occMap   occupancy.Map
	collider occupancy.PeerCollisionChecker
}

// New returns an empty Tree. peerSegments is shared with the caller, who is
// responsible for appending this agent's committed edges to its own slot
// between rounds; Initialize clears this agent's own slot per §4.3 step 1.
// The sampler passed in owns the seeded PRNG (§5): the tree itself draws no
// randomness directly.
func New(
	params Params,
	s *sampler.Sampler,
	g *gain.Evaluator,
	occMap occupancy.Map,
	collider occupancy.PeerCollisionChecker,
	peerSegments map[int][]occupancy.Segment,
) *Tree {
	return &Tree{
		params:       params,
		bestNode:     -1,
		peerSegments: peerSegments,
		sampler:      s,
		gain:         g,
		occMap:       occMap,
		collider:     collider,
	}
}

// Initialize implements §4.3 initialize(): resets the tree around root and
// replays the warm-start memory from the previous round.
func (t *Tree) Initialize(root spatialmath.State, firstRound bool) {
	delete(t.peerSegments, t.params.AgentIndex)

	t.nodes = nil
	t.index = spatialindex.New()
	t.bestNode = -1
	t.bestGain = t.params.ZeroGain

	rootState := root
	if t.params.ExactRoot && !firstRound && t.haveExactRoot {
		rootState = t.exactRoot
	}

	rootIdx := t.addNode(Node{
		State:    rootState,
		Parent:   noParent,
		Distance: 0,
		Gain:     t.params.ZeroGain,
	})
	t.index.Insert(rootState.Point(), rootIdx)
	t.bestNode = rootIdx
	t.bestGain = t.params.ZeroGain

	// Replay memory deepest-to-shallowest (§4.3 step 4).
	for _, memState := range t.memory {
		t.replayOne(memState)
	}
}

func (t *Tree) replayOne(candidate spatialmath.State) {
	parentPayload, _, ok := t.index.Nearest(candidate.Point())
	if !ok {
		return
	}
	parentIdx := parentPayload.(int)
	parent := t.nodes[parentIdx]

	direction := candidate.Point().Sub(parent.State.Point())
	direction = clipToRange(direction, t.params.ExtensionRange)

	// Planar replay: force z to the parent's z (§9 design note).
	newPoint := parent.State.Point().Add(direction)
	newPoint.Z = parent.State.Z
	newState := candidate.WithPoint(newPoint)

	if !t.edgeValid(parent.State, newState, direction) {
		return
	}

	dist := parent.Distance + parent.State.Point().Sub(newState.Point()).Norm()
	g := gain.AccumulatedGain(parent.Gain, t.gain.Gain(newState), t.params.DegressiveCoeff, dist)

	idx := t.addNode(Node{
		State:    newState,
		Parent:   parentIdx,
		Distance: dist,
		Gain:     g,
	})
	t.nodes[parentIdx].Children = append(t.nodes[parentIdx].Children, idx)
	t.index.Insert(newState.Point(), idx)

	if g > t.bestGain {
		t.bestGain = g
		t.bestNode = idx
	}
}

// Iterate implements §4.3 iterate(): one sample-and-extend step.
func (t *Tree) Iterate() {
	if t.index == nil || t.index.Len() == 0 {
		return
	}

	root := t.nodes[0]
	sampled, err := t.sampler.Sample(root.State.Point())
	if err != nil {
		return
	}

	parentPayload, _, ok := t.index.Nearest(sampled)
	if !ok {
		return
	}
	parentIdx := parentPayload.(int)
	parent := t.nodes[parentIdx]

	direction := sampled.Sub(parent.State.Point())
	direction = clipToRange(direction, t.params.ExtensionRange)
	newPoint := parent.State.Point().Add(direction)

	newState := spatialmath.NewState(newPoint.X, newPoint.Y, newPoint.Z, 0)

	if !t.edgeValid(parent.State, newState, direction) {
		return
	}
	newState = spatialmath.NewState(newPoint.X, newPoint.Y, newPoint.Z, t.sampler.SampleYaw())

	dist := parent.Distance + direction.Norm()
	g := gain.AccumulatedGain(parent.Gain, t.gain.Gain(newState), t.params.DegressiveCoeff, dist)

	idx := t.addNode(Node{
		State:    newState,
		Parent:   parentIdx,
		Distance: dist,
		Gain:     g,
	})
	t.nodes[parentIdx].Children = append(t.nodes[parentIdx].Children, idx)
	t.index.Insert(newState.Point(), idx)

	if g > t.bestGain {
		t.bestGain = g
		t.bestNode = idx
	}
}

// edgeValid implements §4.3 step 4: the swept AABB from parent to
// new+overshoot must be entirely free, and the peer collision oracle must
// report no collision.
func (t *Tree) edgeValid(parent, newState spatialmath.State, direction r3.Vector) bool {
	length := direction.Norm()
	if length == 0 {
		return false
	}
	overshootEnd := newState.Point().Add(direction.Mul(t.params.DOvershoot / length))

	status := t.occMap.GetLineStatusBoundingBox(parent.Point(), overshootEnd, t.params.BoundingBox)
	if status != occupancy.Free {
		return false
	}

	var segments []occupancy.Segment
	for peer, segs := range t.peerSegments {
		if peer == t.params.AgentIndex {
			continue
		}
		segments = append(segments, segs...)
	}
	return !t.collider.IsInCollision(parent, newState, t.params.BoundingBox, segments)
}

// GetBestEdge implements §4.3 getBestEdge(): walks from bestNode to the
// node just below the root, discretizes that single edge into poses in
// targetFrame, and records history/exact_root for future rounds.
func (t *Tree) GetBestEdge(
	transformer occupancy.FrameTransformer,
	planningFrame, targetFrame string,
	dt, vMax, dyawMax float64,
) []spatialmath.State {
	if t.bestNode < 0 || t.nodes[t.bestNode].Parent == noParent {
		return nil
	}

	firstStep := t.bestNode
	for t.nodes[firstStep].Parent != 0 {
		firstStep = t.nodes[firstStep].Parent
	}

	parentState := t.nodes[t.nodes[firstStep].Parent].State
	path := SamplePath(parentState, t.nodes[firstStep].State, planningFrame, targetFrame, transformer, dt, vMax, dyawMax)

	t.history = append(t.history, parentState)
	t.exactRoot = t.nodes[firstStep].State
	t.haveExactRoot = true

	return path
}

// MemorizeBestBranch implements §4.3 memorizeBestBranch(): walks up from
// bestNode, stopping once the grandparent link is null, so memory excludes
// both the root and the root's direct child.
func (t *Tree) MemorizeBestBranch() {
	t.memory = nil
	if t.bestNode < 0 {
		return
	}
	idx := t.bestNode
	for {
		node := t.nodes[idx]
		if node.Parent == noParent {
			return
		}
		grandparent := t.nodes[node.Parent].Parent
		if grandparent == noParent {
			return
		}
		t.memory = append(t.memory, node.State)
		idx = node.Parent
	}
}

// GetPathBackToPrevious implements §4.3 getPathBackToPrevious(): pops the
// most recent history entry and returns a discretized path from the
// current root to it.
func (t *Tree) GetPathBackToPrevious(
	transformer occupancy.FrameTransformer,
	planningFrame, targetFrame string,
	dt, vMax, dyawMax float64,
) []spatialmath.State {
	if len(t.history) == 0 {
		return nil
	}
	target := t.history[len(t.history)-1]
	t.history = t.history[:len(t.history)-1]

	root := t.nodes[0].State
	return SamplePath(root, target, planningFrame, targetFrame, transformer, dt, vMax, dyawMax)
}

// Clear implements §4.3 clear().
func (t *Tree) Clear() {
	t.nodes = nil
	t.index = spatialindex.New()
	t.bestNode = -1
	t.bestGain = t.params.ZeroGain
}

// BestGain reports the current round's best accumulated gain.
func (t *Tree) BestGain() float64 {
	return t.bestGain
}

// NodeCount reports how many nodes the tree currently holds.
func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

// Nodes returns the current arena of nodes, for callers that need to dump
// tree state (e.g. the session's on-disk tree log).
func (t *Tree) Nodes() []Node {
	return t.nodes
}

func (t *Tree) addNode(n Node) int {
	n.ID = uuid.NewString()
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

func clipToRange(direction r3.Vector, extensionRange float64) r3.Vector {
	length := direction.Norm()
	if length > extensionRange {
		return direction.Mul(extensionRange / length)
	}
	return direction
}
