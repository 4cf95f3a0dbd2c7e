package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"

	"go.viam.com/dock/utils"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) mm coordinates,
// and the Orientation() method returns an Orientation object.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type pose struct {
	point       r3.Vector
	orientation Orientation
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return &pose{orientation: NewZeroOrientation()}
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewZeroOrientation()
	}
	return &pose{point: p, orientation: o}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(point r3.Vector) Pose {
	return NewPose(point, nil)
}

// NewPlanarPose returns a pose on the ground plane at (x, y) facing yawDeg degrees counter-clockwise from +X.
func NewPlanarPose(x, y, yawDeg float64) Pose {
	return NewPose(r3.Vector{X: x, Y: y}, NewOrientationFromYawDeg(yawDeg))
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() Orientation {
	return p.orientation
}

func (p *pose) String() string {
	return fmt.Sprintf("{X:%.2f Y:%.2f Z:%.2f Yaw:%.2f°}",
		p.point.X, p.point.Y, p.point.Z, utils.RadToDeg(Yaw(p.orientation)))
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)).
// It is the pose of b, expressed in a's frame, re-expressed in the frame a is measured in.
func Compose(a, b Pose) Pose {
	bx, by, bz := RotatePoint(a.Orientation(), b.Point().X, b.Point().Y, b.Point().Z)
	q := NewQuaternion(quaternionMul(a.Orientation(), b.Orientation()))
	return NewPose(a.Point().Add(r3.Vector{X: bx, Y: by, Z: bz}), q)
}

// PoseInverse returns a Pose representing the inverse of the given pose.
func PoseInverse(p Pose) Pose {
	inv := OrientationInverse(p.Orientation())
	x, y, z := RotatePoint(inv, -p.Point().X, -p.Point().Y, -p.Point().Z)
	return NewPose(r3.Vector{X: x, Y: y, Z: z}, inv)
}

// PoseBetween returns the difference between two spatialmath.Pose objects such that Compose(a, PoseBetween(a, b)) == b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same
// within the given epsilon, in millimetres for position and quaternion components for orientation.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return PoseAlmostCoincidentEps(a, b, epsilon) &&
		(OrientationAlmostEqualEps(a.Orientation(), b.Orientation(), epsilon) ||
			QuaternionAlmostEqual(a.Orientation().Quaternion(), Flip(b.Orientation().Quaternion()), epsilon))
}

// PoseAlmostCoincident will return a bool describing whether 2 poses approximately are at the same 3D coordinate location.
func PoseAlmostCoincident(a, b Pose) bool {
	return PoseAlmostCoincidentEps(a, b, 1e-6)
}

// PoseAlmostCoincidentEps will return a bool describing whether 2 poses approximately are at the same 3D coordinate location
// within the given epsilon.
func PoseAlmostCoincidentEps(a, b Pose, epsilon float64) bool {
	return a.Point().Sub(b.Point()).Norm() <= epsilon
}
