package referenceframe

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/dock/spatialmath"
	"go.viam.com/dock/utils"
)

// PoseDelta is the componentwise difference between two poses in the same frame:
// a translation in mm and the rotation that carries one orientation onto the other.
type PoseDelta struct {
	Translation r3.Vector
	Rotation    spatialmath.Orientation
}

// AngleDeg returns the magnitude of the delta's rotation in degrees.
func (d *PoseDelta) AngleDeg() float64 {
	return utils.RadToDeg(spatialmath.AngleBetween(spatialmath.NewZeroOrientation(), d.Rotation))
}

// Subtract returns the delta that carries a onto b, so that Translate(a, Subtract(a, b)) == b.
// Poses from different frames cannot be subtracted.
func Subtract(a, b *PoseInFrame) (*PoseDelta, error) {
	if a.Parent() != b.Parent() {
		return nil, NewFrameMismatchError(a.Parent(), b.Parent())
	}
	return &PoseDelta{
		Translation: b.Pose().Point().Sub(a.Pose().Point()),
		Rotation:    spatialmath.OrientationBetween(a.Pose().Orientation(), b.Pose().Orientation()),
	}, nil
}

// Translate applies the delta to a, returning a new pose in a's frame.
func Translate(a *PoseInFrame, delta *PoseDelta) *PoseInFrame {
	o := a.Pose().Orientation()
	if delta.Rotation.Quaternion() != spatialmath.NewZeroOrientation().Quaternion() {
		o = spatialmath.NewQuaternion(quatMul(delta.Rotation, o))
	}
	return NewPoseInFrame(a.Parent(), spatialmath.NewPose(a.Pose().Point().Add(delta.Translation), o))
}

// Distance returns the euclidean distance between the positions of a and b in mm.
// Orientation and frame are ignored; callers are responsible for checking the frames agree.
func Distance(a, b *PoseInFrame) float64 {
	return a.Pose().Point().Distance(b.Pose().Point())
}

// IsComparable returns whether a and b share a frame and lie within posTolMm of each other
// with orientations no more than angleTolDeg apart.
func IsComparable(a, b *PoseInFrame, posTolMm, angleTolDeg float64) bool {
	if a == nil || b == nil || a.Parent() != b.Parent() {
		return false
	}
	if Distance(a, b) > posTolMm {
		return false
	}
	return utils.RadToDeg(spatialmath.AngleBetween(a.Pose().Orientation(), b.Pose().Orientation())) <= angleTolDeg
}

// PerpendicularOffset returns p moved distanceMm along the axis it faces (its local +X).
// A negative distance moves behind the pose. Orientation and frame are unchanged.
func PerpendicularOffset(p *PoseInFrame, distanceMm float64) *PoseInFrame {
	x, y, z := spatialmath.RotatePoint(p.Pose().Orientation(), distanceMm, 0, 0)
	pt := p.Pose().Point().Add(r3.Vector{X: x, Y: y, Z: z})
	return NewPoseInFrame(p.Parent(), spatialmath.NewPose(pt, p.Pose().Orientation()))
}

func quatMul(a, b spatialmath.Orientation) quat.Number {
	return quat.Mul(a.Quaternion(), b.Quaternion())
}
