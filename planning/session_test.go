package planning

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/nbvplanner/config"
	"go.viam.com/nbvplanner/fakes"
	"go.viam.com/nbvplanner/logging"
	"go.viam.com/nbvplanner/occupancy"
	"go.viam.com/nbvplanner/spatialmath"
)

func newTestSession(t *testing.T) (*Session, *fakes.VoxelMap) {
	t.Helper()
	cfg := config.Default()
	cfg.NavigationFrame = "world"
	cfg.CamBoundNormals = []config.Frustum{{Normals: nil}} // omni-admitting
	cfg.Log = false

	occMap := fakes.NewVoxelMap(1.0)
	mesh := fakes.NewMesh(2.0)
	collider := fakes.PeerCollisionChecker{}
	transformer := fakes.NewFrameTransformer(cfg.NavigationFrame)
	peerSegments := make(map[int][]occupancy.Segment)

	s := New(cfg, logging.New("test"), occMap, mesh, collider, transformer, peerSegments)
	return s, occMap
}

// mapFreePocket marks the cells around the origin Free so that edges from a
// root there pass the free-line check; every cell outside stays Unknown.
func mapFreePocket(occMap *fakes.VoxelMap) {
	occMap.SetBox(
		spatialmath.NewState(-2, -2, -2, 0).Point(),
		spatialmath.NewState(2, 2, 2, 0).Point(),
		occupancy.Free,
	)
}

func TestRunRoundProducesPathInEmptyWorkspace(t *testing.T) {
	s, occMap := newTestSession(t)
	mapFreePocket(occMap)
	s.SetStateFromPose(spatialmath.NewState(0, 0, 0, 0))

	path, err := s.RunRound(context.Background(), Budget{MaxIterations: 200})
	test.That(t, err, test.ShouldBeNil)
	// With an omni-admitting frustum, a free pocket around the root and an
	// unmapped workspace beyond it, the first round should find a
	// positive-gain branch and emit a path.
	test.That(t, len(path), test.ShouldBeGreaterThan, 0)
}

func TestRunRoundRespectsIterationBudget(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetStateFromPose(spatialmath.NewState(0, 0, 0, 0))

	_, err := s.RunRound(context.Background(), Budget{MaxIterations: 1})
	test.That(t, err, test.ShouldBeNil)
}

func TestRunRoundRespectsCancelledContext(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetStateFromPose(spatialmath.NewState(0, 0, 0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.RunRound(ctx, Budget{MaxIterations: 1000})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCoverageStartsAtZero(t *testing.T) {
	s, _ := newTestSession(t)
	test.That(t, s.Coverage(), test.ShouldEqual, 0)
}

func TestCoverageIncreasesAfterMapping(t *testing.T) {
	s, occMap := newTestSession(t)
	before := s.Coverage()

	occMap.SetBox(
		spatialmath.NewState(-1, -1, -1, 0).Point(),
		spatialmath.NewState(1, 1, 1, 0).Point(),
		occupancy.Free,
	)

	after := s.Coverage()
	test.That(t, after, test.ShouldBeGreaterThan, before)
}

func TestBestGainPositiveAfterRoundInUnmappedWorkspace(t *testing.T) {
	s, occMap := newTestSession(t)
	mapFreePocket(occMap)
	s.SetStateFromPose(spatialmath.NewState(0, 0, 0, 0))

	_, err := s.RunRound(context.Background(), Budget{MaxIterations: 200})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.BestGain(), test.ShouldBeGreaterThan, 0)
}

func TestGetPathBackToPreviousEmptyBeforeAnyRound(t *testing.T) {
	s, _ := newTestSession(t)
	test.That(t, s.GetPathBackToPrevious(), test.ShouldBeNil)
}

func TestSetPeerStateFromPoseDoesNotPanicForUnknownPeer(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetPeerStateFromPose(spatialmath.NewState(5, 5, 0, 0), 99)
}
