package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// AngleDiffDeg returns the closest difference from the two given
// angles. The arguments are commutative.
func AngleDiffDeg(a1, a2 float64) float64 {
	return float64(180) - math.Abs(math.Abs(ModAngDeg(a1)-ModAngDeg(a2))-float64(180))
}

// ModAngDeg wraps the given angle into [0, 360).
func ModAngDeg(ang float64) float64 {
	return math.Mod(math.Mod(ang, 360)+360, 360)
}

// NormalizeAngleDeg wraps the given angle into (-180, 180].
func NormalizeAngleDeg(ang float64) float64 {
	ang = ModAngDeg(ang)
	if ang > 180 {
		ang -= 360
	}
	return ang
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// MinTurnStepDeg is the smallest turn increment a search will make.
const MinTurnStepDeg = 0.01

// MaxTurnSteps is the number of fixed-size turns needed to sweep a full
// circle plus one extra step, i.e. ceil(360/step)+1. Steps too small to count
// saturate at math.MaxInt32.
func MaxTurnSteps(stepDeg float64) int {
	if !(stepDeg > 0) {
		return 0
	}
	n := math.Ceil(360/stepDeg) + 1
	if n >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
