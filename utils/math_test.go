package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngleConversions(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, RadToDeg(DegToRad(37.5)), test.ShouldAlmostEqual, 37.5)
}

func TestAngleDiffDeg(t *testing.T) {
	for _, tc := range []struct {
		a1, a2, diff float64
	}{
		{0, 0, 0},
		{0, 90, 90},
		{350, 10, 20},
		{10, 350, 20},
		{-170, 170, 20},
		{720, 0, 0},
		{0, 180, 180},
	} {
		test.That(t, AngleDiffDeg(tc.a1, tc.a2), test.ShouldAlmostEqual, tc.diff)
	}
}

func TestNormalizeAngleDeg(t *testing.T) {
	test.That(t, NormalizeAngleDeg(190), test.ShouldAlmostEqual, -170)
	test.That(t, NormalizeAngleDeg(-190), test.ShouldAlmostEqual, 170)
	test.That(t, NormalizeAngleDeg(180), test.ShouldAlmostEqual, 180)
	test.That(t, NormalizeAngleDeg(-360), test.ShouldAlmostEqual, 0)
}

func TestMaxTurnSteps(t *testing.T) {
	test.That(t, MaxTurnSteps(180), test.ShouldEqual, 3)
	test.That(t, MaxTurnSteps(90), test.ShouldEqual, 5)
	test.That(t, MaxTurnSteps(45), test.ShouldEqual, 9)
	test.That(t, MaxTurnSteps(30), test.ShouldEqual, 13)
	test.That(t, MaxTurnSteps(100), test.ShouldEqual, 5)
	test.That(t, MaxTurnSteps(0), test.ShouldEqual, 0)
	test.That(t, MaxTurnSteps(math.NaN()), test.ShouldEqual, 0)
	test.That(t, MaxTurnSteps(MinTurnStepDeg), test.ShouldBeGreaterThan, 36000)
	test.That(t, MaxTurnSteps(1e-300), test.ShouldEqual, math.MaxInt32)
	test.That(t, MaxTurnSteps(1e-7), test.ShouldEqual, math.MaxInt32)
}

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1, 1.0001, 1e-3), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.01, 1e-3), test.ShouldBeFalse)
}
