package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNewStateWrapsYaw(t *testing.T) {
	s := NewState(1, 2, 3, 3*math.Pi)
	test.That(t, s.Yaw, test.ShouldAlmostEqual, math.Pi, 1e-9)
}

func TestStatePointAndWithPoint(t *testing.T) {
	s := NewState(1, 2, 3, 0)
	test.That(t, s.Point(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})

	moved := s.WithPoint(r3.Vector{X: 4, Y: 5, Z: 6})
	test.That(t, moved.Point(), test.ShouldResemble, r3.Vector{X: 4, Y: 5, Z: 6})
	test.That(t, moved.Yaw, test.ShouldEqual, s.Yaw)
}

func TestStateAddTranslatesPosition(t *testing.T) {
	s := NewState(0, 0, 0, 0)
	moved := s.Add(r3.Vector{X: 1, Y: -1, Z: 2})
	test.That(t, moved.Point(), test.ShouldResemble, r3.Vector{X: 1, Y: -1, Z: 2})
}

func TestDistanceIgnoresYaw(t *testing.T) {
	a := NewState(0, 0, 0, 0)
	b := NewState(3, 4, 0, math.Pi)
	test.That(t, Distance(a, b), test.ShouldEqual, 5.0)
}

func TestWrapToPiStaysInRange(t *testing.T) {
	test.That(t, WrapToPi(0), test.ShouldEqual, 0.0)
	test.That(t, WrapToPi(math.Pi), test.ShouldEqual, math.Pi)
	test.That(t, WrapToPi(math.Pi+0.1), test.ShouldAlmostEqual, -math.Pi+0.1, 1e-9)
	test.That(t, WrapToPi(-math.Pi-0.1), test.ShouldAlmostEqual, math.Pi-0.1, 1e-9)
}

func TestYawDeltaTakesShortestPath(t *testing.T) {
	delta := YawDelta(math.Pi-0.1, -math.Pi+0.1)
	test.That(t, delta, test.ShouldAlmostEqual, 0.2, 1e-9)
}

func TestRotateZByZeroIsIdentity(t *testing.T) {
	v := r3.Vector{X: 1, Y: 2, Z: 3}
	rotated := RotateZ(v, 0)
	test.That(t, rotated.X, test.ShouldAlmostEqual, v.X, 1e-9)
	test.That(t, rotated.Y, test.ShouldAlmostEqual, v.Y, 1e-9)
	test.That(t, rotated.Z, test.ShouldAlmostEqual, v.Z, 1e-9)
}

func TestRotateZByHalfPiSwapsAxes(t *testing.T) {
	rotated := RotateZ(r3.Vector{X: 1, Y: 0, Z: 0}, math.Pi/2)
	test.That(t, rotated.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, rotated.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, rotated.Z, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestIdentityTransformIsNoOp(t *testing.T) {
	s := NewState(1, 2, 3, 0.4)
	test.That(t, Identity().Apply(s), test.ShouldResemble, s)
}

func TestTransformApplyTranslatesAndRotatesYaw(t *testing.T) {
	tr := Transform{Translation: r3.Vector{X: 10, Y: 0, Z: 0}, YawOffset: math.Pi / 2}
	s := NewState(1, 0, 0, 0)
	applied := tr.Apply(s)

	test.That(t, applied.X, test.ShouldAlmostEqual, 10, 1e-9)
	test.That(t, applied.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, applied.Yaw, test.ShouldAlmostEqual, math.Pi/2, 1e-9)
}

func TestComposeChainsTwoTransforms(t *testing.T) {
	first := Transform{Translation: r3.Vector{X: 1, Y: 0, Z: 0}, YawOffset: 0}
	second := Transform{Translation: r3.Vector{X: 0, Y: 1, Z: 0}, YawOffset: math.Pi / 2}

	composed := Compose(first, second)
	direct := second.Apply(first.Apply(NewState(0, 0, 0, 0)))

	test.That(t, composed.Apply(NewState(0, 0, 0, 0)).Point(), test.ShouldResemble, direct.Point())
}
