package referenceframe

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/dock/spatialmath"
	"go.viam.com/dock/utils"
)

func planar(frame string, x, y, yawDeg float64) *PoseInFrame {
	return NewPoseInFrame(frame, spatialmath.NewPlanarPose(x, y, yawDeg))
}

func TestIsComparableReflexive(t *testing.T) {
	poses := []*PoseInFrame{
		NewZeroPoseInFrame(World),
		planar("1", 100, -30, 45),
		NewPoseInFrame("2", spatialmath.NewPose(r3.Vector{X: 5, Y: 6, Z: 7}, &spatialmath.R4AA{Theta: 1, RX: 1, RY: 1})),
	}
	for _, p := range poses {
		for _, tol := range []float64{0, 1, 50} {
			test.That(t, IsComparable(p, p, tol, tol), test.ShouldBeTrue)
		}
	}
}

func TestIsComparableTolerances(t *testing.T) {
	base := planar(World, 0, 0, 0)
	for _, posTol := range []float64{0, 10, 50, 200} {
		for _, angTol := range []float64{0, 2, 10, 45} {
			farther := planar(World, posTol+1, 0, 0)
			test.That(t, IsComparable(base, farther, posTol, angTol), test.ShouldBeFalse)

			rotated := planar(World, 0, 0, angTol+1)
			test.That(t, IsComparable(base, rotated, posTol, angTol), test.ShouldBeFalse)

			inside := planar(World, posTol/2, 0, angTol/2)
			test.That(t, IsComparable(base, inside, posTol, angTol), test.ShouldBeTrue)
		}
	}
}

func TestIsComparableFrames(t *testing.T) {
	test.That(t, IsComparable(planar("O1", 0, 0, 0), planar("O2", 0, 0, 0), 50, 10), test.ShouldBeFalse)
	test.That(t, IsComparable(nil, planar("O1", 0, 0, 0), 50, 10), test.ShouldBeFalse)
}

func TestSubtractTranslateRoundTrip(t *testing.T) {
	pairs := [][2]*PoseInFrame{
		{planar(World, 0, 0, 0), planar(World, 210, 0, 0)},
		{planar(World, 100, -40, 30), planar(World, -15, 80, -120)},
		{planar(World, 1e4, 1e4, 179), planar(World, -1e4, 3, -179)},
		{
			NewPoseInFrame(World, spatialmath.NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, &spatialmath.EulerAngles{Roll: 0.1, Pitch: 0.2, Yaw: 0.3})),
			NewPoseInFrame(World, spatialmath.NewPose(r3.Vector{X: -4, Y: 5, Z: 9}, &spatialmath.EulerAngles{Roll: -0.4, Pitch: 0.5, Yaw: 2})),
		},
	}
	for _, pair := range pairs {
		p, q := pair[0], pair[1]
		delta, err := Subtract(p, q)
		test.That(t, err, test.ShouldBeNil)
		got := Translate(p, delta)
		test.That(t, got.Parent(), test.ShouldEqual, p.Parent())
		test.That(t, spatialmath.PoseAlmostEqualEps(got.Pose(), q.Pose(), 1e-6), test.ShouldBeTrue)
	}
}

func TestSubtract(t *testing.T) {
	delta, err := Subtract(planar(World, 200, 0, 10), planar(World, 210, 5, 40))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, delta.Translation.X, test.ShouldAlmostEqual, 10)
	test.That(t, delta.Translation.Y, test.ShouldAlmostEqual, 5)
	test.That(t, delta.AngleDeg(), test.ShouldAlmostEqual, 30)

	_, err = Subtract(planar("O1", 0, 0, 0), planar("O2", 0, 0, 0))
	test.That(t, errors.Is(err, ErrFrameMismatch), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"O1" vs "O2"`)
}

func TestTranslateZeroDeltaIsExact(t *testing.T) {
	p := planar(World, 12.345, -67.89, 33.3)
	delta, err := Subtract(p, p)
	test.That(t, err, test.ShouldBeNil)
	got := Translate(p, delta)
	test.That(t, got.Pose().Point(), test.ShouldResemble, p.Pose().Point())
	test.That(t, got.Pose().Orientation().Quaternion(), test.ShouldResemble, p.Pose().Orientation().Quaternion())
}

func TestDistance(t *testing.T) {
	test.That(t, Distance(planar("a", 0, 0, 0), planar("b", 3, 4, 90)), test.ShouldAlmostEqual, 5)
	a := NewPoseInFrame(World, spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Y: 1, Z: 1}))
	test.That(t, Distance(a, NewZeroPoseInFrame(World)), test.ShouldAlmostEqual, math.Sqrt(3))
}

func TestPerpendicularOffset(t *testing.T) {
	p := planar(World, 100, 0, 90)
	front := PerpendicularOffset(p, 50)
	test.That(t, front.Pose().Point().X, test.ShouldAlmostEqual, 100)
	test.That(t, front.Pose().Point().Y, test.ShouldAlmostEqual, 50)
	test.That(t, utils.RadToDeg(spatialmath.Yaw(front.Pose().Orientation())), test.ShouldAlmostEqual, 90)
	test.That(t, front.Parent(), test.ShouldEqual, World)

	behind := PerpendicularOffset(planar("O1", 0, 0, 180), -100)
	test.That(t, behind.Pose().Point().X, test.ShouldAlmostEqual, 100)
	test.That(t, behind.Pose().Point().Y, test.ShouldAlmostEqual, 0)
	test.That(t, behind.Parent(), test.ShouldEqual, "O1")
}

func TestPoseInFrameAlmostEqual(t *testing.T) {
	test.That(t, planar("a", 1, 2, 3).AlmostEqual(planar("a", 1, 2, 3)), test.ShouldBeTrue)
	test.That(t, planar("a", 1, 2, 3).AlmostEqual(planar("b", 1, 2, 3)), test.ShouldBeFalse)
	test.That(t, planar("a", 1, 2, 3).AlmostEqual(nil), test.ShouldBeFalse)
}
