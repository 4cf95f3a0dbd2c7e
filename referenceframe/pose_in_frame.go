package referenceframe

import (
	"fmt"

	"go.viam.com/dock/spatialmath"
)

// World is the default origin name used when no other origin has been established.
const World = "world"

// PoseInFrame is a data structure that packages a pose with the name of the
// origin frame in which it was observed. Poses measured against different origins
// are unrelated until something reconciles the two frames.
type PoseInFrame struct {
	parent string
	pose   spatialmath.Pose
}

// NewPoseInFrame generates a new PoseInFrame.
func NewPoseInFrame(frame string, pose spatialmath.Pose) *PoseInFrame {
	if pose == nil {
		pose = spatialmath.NewZeroPose()
	}
	return &PoseInFrame{
		parent: frame,
		pose:   pose,
	}
}

// NewZeroPoseInFrame returns a zero pose in the given frame.
func NewZeroPoseInFrame(frame string) *PoseInFrame {
	return NewPoseInFrame(frame, spatialmath.NewZeroPose())
}

// Parent returns the name of the origin frame in which the pose was observed.
func (pF *PoseInFrame) Parent() string {
	return pF.parent
}

// Pose returns the pose that was observed.
func (pF *PoseInFrame) Pose() spatialmath.Pose {
	return pF.pose
}

// AlmostEqual returns whether both poses share a frame and are approximately the same pose.
func (pF *PoseInFrame) AlmostEqual(other *PoseInFrame) bool {
	if other == nil {
		return false
	}
	return pF.parent == other.parent && spatialmath.PoseAlmostEqual(pF.pose, other.pose)
}

func (pF *PoseInFrame) String() string {
	return fmt.Sprintf("%s@%v", pF.parent, pF.pose)
}
