package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// NewOrientationFromYawDeg returns an orientation rotated about +Z by the given number of degrees.
func NewOrientationFromYawDeg(yawDeg float64) Orientation {
	half := yawDeg * math.Pi / 360
	return &quaternion{math.Cos(half), 0, 0, math.Sin(half)}
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return OrientationAlmostEqualEps(o1, o2, 1e-5)
}

// OrientationAlmostEqualEps will return a bool describing whether 2 poses have approximately the same orientation
// within the given epsilon.
func OrientationAlmostEqualEps(o1, o2 Orientation, epsilon float64) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), epsilon)
}

// OrientationBetween returns the orientation representing the difference between the two given Orientations,
// such that composing it with o1 yields o2. Identical inputs yield an exact zero rotation.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q1, q2 := o1.Quaternion(), o2.Quaternion()
	if q1 == q2 {
		return NewZeroOrientation()
	}
	q := quaternion(quat.Mul(q2, quat.Conj(q1)))
	return &q
}

// OrientationInverse returns the orientation representing the opposite rotation.
func OrientationInverse(o Orientation) Orientation {
	q := quaternion(quat.Conj(o.Quaternion()))
	return &q
}

// AngleBetween returns the smallest rotation angle, in radians, that carries o1 onto o2. The result is in [0, pi].
func AngleBetween(o1, o2 Orientation) float64 {
	q := OrientationBetween(o1, o2).Quaternion()
	return 2 * math.Atan2(Norm(q), math.Abs(q.Real))
}

// Yaw returns the rotation of the orientation about +Z in radians, in (-pi, pi].
func Yaw(o Orientation) float64 {
	return o.EulerAngles().Yaw
}

// RotatePoint returns the given vector rotated by the orientation.
func RotatePoint(o Orientation, x, y, z float64) (float64, float64, float64) {
	q := o.Quaternion()
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: x, Jmag: y, Kmag: z}), quat.Conj(q))
	return p.Imag, p.Jmag, p.Kmag
}
