// Package planning implements the Session/orchestrator, an expansion of the
// specification's "Planning Loop" (§4.6 of SPEC_FULL.md): it wraps a
// rrttree.Tree with pose intake, round-budgeted iteration, coverage
// reporting, and optional on-disk telemetry, the way the teacher's own
// top-level packages wrap a bare algorithm with a usable service surface.
package planning

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/nbvplanner/config"
	"go.viam.com/nbvplanner/gain"
	"go.viam.com/nbvplanner/logging"
	"go.viam.com/nbvplanner/occupancy"
	"go.viam.com/nbvplanner/rrttree"
	"go.viam.com/nbvplanner/sampler"
	"go.viam.com/nbvplanner/spatialmath"
)

// Odometry is a minimal stand-in for a vehicle odometry message: a pose
// plus the frame it was reported in.
type Odometry struct {
	Pose  spatialmath.State
	Frame string
}

// Session is the planner's orchestrator: the library surface the CLI (and
// any other embedder) drives directly.
type Session struct {
	cfg    *config.Config
	logger logging.Logger

	tree        *rrttree.Tree
	occMap      occupancy.Map
	mesh        occupancy.Mesh // nil if no mesh is wired
	transformer occupancy.FrameTransformer

	rootState  spatialmath.State
	firstRound bool

	logThrottle        *throttle
	inspectionThrottle map[int]*throttle

	roundIndex int
}

// New builds a Session wired against the given collaborators. peerSegments
// is shared ownership with any other agents' sessions running in the same
// process (§3 "Peer segments").
func New(
	cfg *config.Config,
	logger logging.Logger,
	occMap occupancy.Map,
	mesh occupancy.Mesh,
	collider occupancy.PeerCollisionChecker,
	transformer occupancy.FrameTransformer,
	peerSegments map[int][]occupancy.Segment,
) *Session {
	rng := rand.New(rand.NewSource(cfg.Seed))

	bounds := sampler.Bounds{
		MinX: cfg.MinX, MaxX: cfg.MaxX,
		MinY: cfg.MinY, MaxY: cfg.MaxY,
		MinZ: cfg.MinZ, MaxZ: cfg.MaxZ,
		SoftBounds:       cfg.SoftBounds,
		BoundingBox:      cfg.BoundingBox,
		ZSampleRange:     cfg.ZSampleRange,
		MaxSampleRetries: cfg.MaxSampleRetries,
	}
	s := sampler.New(bounds, rng)

	frustums := make([]gain.Frustum, len(cfg.CamBoundNormals))
	for i, f := range cfg.CamBoundNormals {
		frustums[i] = gain.Frustum{Normals: f.Normals}
	}
	gainParams := gain.Params{
		Workspace:  gain.Bounds{MinX: cfg.MinX, MaxX: cfg.MaxX, MinY: cfg.MinY, MaxY: cfg.MaxY, MinZ: cfg.MinZ, MaxZ: cfg.MaxZ},
		GainRange:  cfg.GainRange,
		IGUnmapped: cfg.IGUnmapped,
		IGOccupied: cfg.IGOccupied,
		IGFree:     cfg.IGFree,
		IGArea:     cfg.IGArea,
		Frustums:   frustums,
	}
	g := gain.New(gainParams, occMap, mesh)

	treeParams := rrttree.Params{
		ExtensionRange:  cfg.ExtensionRange,
		DOvershoot:      cfg.DOvershoot,
		BoundingBox:     cfg.BoundingBox,
		DegressiveCoeff: cfg.DegressiveCoeff,
		ZeroGain:        cfg.ZeroGain,
		ExactRoot:       cfg.ExactRoot,
		AgentIndex:      0,
	}
	tree := rrttree.New(treeParams, s, g, occMap, collider, peerSegments)

	inspectionThrottles := make(map[int]*throttle, cfg.NumPeers)
	for i := 0; i < cfg.NumPeers; i++ {
		inspectionThrottles[i] = newThrottle(cfg.InspectionThrottle)
	}

	return &Session{
		cfg:                cfg,
		logger:             logger,
		tree:               tree,
		occMap:             occMap,
		mesh:               mesh,
		transformer:        transformer,
		firstRound:         true,
		logThrottle:        newThrottle(cfg.LogThrottle),
		inspectionThrottle: inspectionThrottles,
	}
}

// SetStateFromPose adopts the latest vehicle pose, already expressed in the
// planning frame, as the session's live root. Mesh-view incorporation and
// response logging are throttled (§4.6).
func (s *Session) SetStateFromPose(pose spatialmath.State) {
	s.rootState = pose

	now := time.Now()
	if s.inspectionThrottle[0].ready(now) && s.mesh != nil {
		s.mesh.SetPeerPose(pose, 0)
		s.mesh.IncorporateViewFromPose(pose, 0)
	}
	if s.logThrottle.ready(now) {
		s.logger.Debugf("live pose x=%.3f y=%.3f z=%.3f yaw=%.3f", pose.X, pose.Y, pose.Z, pose.Yaw)
		s.logResponse(pose)
	}
}

// SetStateFromOdometry transforms odom's pose into the planning frame and
// adopts it via SetStateFromPose.
func (s *Session) SetStateFromOdometry(odom Odometry) error {
	transform, err := s.transformer.LookupTransform(s.cfg.NavigationFrame, odom.Frame)
	if err != nil {
		return errors.Wrapf(err, "looking up transform from %q to %q", odom.Frame, s.cfg.NavigationFrame)
	}
	s.SetStateFromPose(transform.Apply(odom.Pose))
	return nil
}

// SetPeerStateFromPose incorporates a throttled mesh view from a peer
// agent's reported pose.
func (s *Session) SetPeerStateFromPose(pose spatialmath.State, peerIndex int) {
	th, ok := s.inspectionThrottle[peerIndex]
	if !ok {
		th = newThrottle(s.cfg.InspectionThrottle)
		s.inspectionThrottle[peerIndex] = th
	}
	if !th.ready(time.Now()) || s.mesh == nil {
		return
	}
	s.mesh.SetPeerPose(pose, peerIndex)
	s.mesh.IncorporateViewFromPose(pose, peerIndex)
}

// Budget bounds one call to RunRound: it stops at whichever limit is hit
// first. A zero value for either field means that limit is not enforced.
type Budget struct {
	MaxIterations int
	MaxDuration   time.Duration
}

// RunRound implements §4.6 RunRound: initializes the tree around the
// current root, iterates until budget is exhausted, extracts the first
// edge of the best branch, and memorizes the remainder for next round.
func (s *Session) RunRound(ctx context.Context, budget Budget) ([]spatialmath.State, error) {
	s.tree.Initialize(s.rootState, s.firstRound)
	s.firstRound = false

	deadline := time.Time{}
	if budget.MaxDuration > 0 {
		deadline = time.Now().Add(budget.MaxDuration)
	}

	iterations := 0
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if budget.MaxIterations > 0 && iterations >= budget.MaxIterations {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		s.tree.Iterate()
		iterations++
	}

	path := s.tree.GetBestEdge(s.transformer, s.cfg.NavigationFrame, s.cfg.NavigationFrame, s.cfg.Dt, s.cfg.VMax, s.cfg.DyawMax)
	s.tree.MemorizeBestBranch()

	if s.cfg.Log {
		if err := s.writeRoundLogs(path); err != nil {
			s.logger.Warnf("failed to write round logs: %v", err)
		}
	}

	s.roundIndex++
	s.logger.Infof("round %d: %d iterations, bestGain=%.4f, path length=%d", s.roundIndex, iterations, s.tree.BestGain(), len(path))
	return path, nil
}

// GetPathBackToPrevious implements §4.6's exposure of getPathBackToPrevious.
func (s *Session) GetPathBackToPrevious() []spatialmath.State {
	return s.tree.GetPathBackToPrevious(s.transformer, s.cfg.NavigationFrame, s.cfg.NavigationFrame, s.cfg.Dt, s.cfg.VMax, s.cfg.DyawMax)
}

// Coverage implements §6 coverage(): the percentage of workspace voxels,
// sampled at the map's resolution, whose status is not Unknown.
func (s *Session) Coverage() float64 {
	res := s.occMap.GetResolution()
	if res <= 0 {
		return 0
	}

	var total, known int
	for x := s.cfg.MinX; x <= s.cfg.MaxX; x += res {
		for y := s.cfg.MinY; y <= s.cfg.MaxY; y += res {
			for z := s.cfg.MinZ; z <= s.cfg.MaxZ; z += res {
				total++
				status, _ := s.occMap.GetCellProbabilityPoint(r3.Vector{X: x, Y: y, Z: z})
				if status != occupancy.Unknown {
					known++
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(known) / float64(total)
}

// RootState returns the session's current live root pose.
func (s *Session) RootState() spatialmath.State {
	return s.rootState
}

// BestGain returns the accumulated gain of the current tree's best node,
// for reporting alongside each round's summary.
func (s *Session) BestGain() float64 {
	return s.tree.BestGain()
}

func (s *Session) writeRoundLogs(path []spatialmath.State) error {
	dir := s.cfg.LogDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating log directory")
	}

	treeFile, err := os.Create(filepath.Join(dir, fmt.Sprintf("tree%d.txt", s.roundIndex)))
	if err != nil {
		return errors.Wrap(err, "creating tree log file")
	}
	defer treeFile.Close()

	for _, n := range s.tree.Nodes() {
		parentGain := 0.0
		parentState := spatialmath.State{}
		if n.Parent >= 0 {
			parent := s.tree.Nodes()[n.Parent]
			parentGain = parent.Gain
			parentState = parent.State
		}
		fmt.Fprintf(treeFile, "%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			n.ID, n.State.X, n.State.Y, n.State.Z, n.State.Yaw, n.Gain,
			parentState.X, parentState.Y, parentState.Z, parentGain)
	}

	pathFile, err := os.OpenFile(filepath.Join(dir, "path.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "opening path log file")
	}
	defer pathFile.Close()
	for _, p := range path {
		fmt.Fprintf(pathFile, "%.6f,%.6f,%.6f,%.6f\n", p.X, p.Y, p.Z, p.Yaw)
	}

	return nil
}

// logResponse appends the current live pose to response.txt, when logging
// is enabled. Called from SetStateFromPose's throttled branch.
func (s *Session) logResponse(pose spatialmath.State) {
	if !s.cfg.Log {
		return
	}
	dir := s.cfg.LogDir
	if dir == "" {
		dir = "."
	}
	f, err := os.OpenFile(filepath.Join(dir, "response.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.Warnf("failed to open response log: %v", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%.6f,%.6f,%.6f,%.6f\n", pose.X, pose.Y, pose.Z, pose.Yaw)
}
