package docking

import (
	"errors"
	"sync"
	"testing"

	"go.viam.com/test"

	"go.viam.com/dock/referenceframe"
	"go.viam.com/dock/spatialmath"
)

func planar(frame string, x, y, yawDeg float64) *referenceframe.PoseInFrame {
	return referenceframe.NewPoseInFrame(frame, spatialmath.NewPlanarPose(x, y, yawDeg))
}

func TestComputePossibleDockingPoseWithoutSnapshot(t *testing.T) {
	m := NewChargerMemory(50, 10)
	for _, charger := range []*referenceframe.PoseInFrame{
		planar("O1", 0, 0, 0),
		planar("O1", 210, 0, 0),
		planar("O2", -5, 1e4, 170),
	} {
		_, err := m.ComputePossibleDockingPose(charger)
		test.That(t, errors.Is(err, ErrNoDockingSnapshot), test.ShouldBeTrue)
	}

	// a charging snapshot alone is not enough
	test.That(t, m.RecordChargingSnapshot(planar("O1", 0, 0, 0), planar("O1", 0, 0, 0)), test.ShouldBeNil)
	_, err := m.ComputePossibleDockingPose(planar("O1", 0, 0, 0))
	test.That(t, errors.Is(err, ErrNoDockingSnapshot), test.ShouldBeTrue)
	test.That(t, m.PossibleDockingPose(), test.ShouldBeNil)
}

func TestComputePossibleDockingPoseNoDrift(t *testing.T) {
	for _, tc := range []struct {
		robot, charger *referenceframe.PoseInFrame
	}{
		{planar("O1", 0, 0, 0), planar("O1", 200, 0, 0)},
		{planar("O1", 12.5, -7.25, 33), planar("O1", 150, 40, -147)},
		{planar("O1", -1e3, 1e3, 180), planar("O1", 0.1, 0.2, 0.3)},
	} {
		m := NewChargerMemory(50, 10)
		test.That(t, m.RecordDockingSnapshot(tc.robot, tc.charger), test.ShouldBeNil)

		pose, err := m.ComputePossibleDockingPose(tc.charger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pose.Parent(), test.ShouldEqual, tc.robot.Parent())
		test.That(t, pose.Pose().Point(), test.ShouldResemble, tc.robot.Pose().Point())
		test.That(t, pose.Pose().Orientation().Quaternion(), test.ShouldResemble, tc.robot.Pose().Orientation().Quaternion())
	}
}

func TestComputePossibleDockingPoseDrift(t *testing.T) {
	m := NewChargerMemory(50, 10)
	test.That(t, m.RecordDockingSnapshot(planar("O1", 0, 0, 0), planar("O1", 200, 0, 0)), test.ShouldBeNil)

	pose, err := m.ComputePossibleDockingPose(planar("O1", 210, 0, 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.AlmostEqual(planar("O1", 10, 0, 0)), test.ShouldBeTrue)
	test.That(t, m.PossibleDockingPose(), test.ShouldEqual, pose)

	pose, err = m.ComputePossibleDockingPose(planar("O1", 200, -30, 20))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Pose().Point().X, test.ShouldAlmostEqual, 0)
	test.That(t, pose.Pose().Point().Y, test.ShouldAlmostEqual, -30)
	test.That(t, spatialmath.Yaw(pose.Pose().Orientation()), test.ShouldAlmostEqual, spatialmath.Yaw(spatialmath.NewOrientationFromYawDeg(20)))
}

func TestComputePossibleDockingPoseOtherOrigin(t *testing.T) {
	m := NewChargerMemory(50, 10)
	test.That(t, m.RecordDockingSnapshot(planar("O1", 0, 0, 0), planar("O1", 200, 0, 0)), test.ShouldBeNil)

	_, err := m.ComputePossibleDockingPose(planar("O2", 200, 0, 0))
	test.That(t, errors.Is(err, referenceframe.ErrFrameMismatch), test.ShouldBeTrue)
	test.That(t, m.PossibleDockingPose(), test.ShouldBeNil)

	_, err = m.ComputePossibleDockingPose(nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRecordSnapshots(t *testing.T) {
	m := NewChargerMemory(50, 10)
	test.That(t, m.ChargingSnapshot(), test.ShouldBeNil)
	test.That(t, m.DockingSnapshot(), test.ShouldBeNil)
	test.That(t, m.LastChargerPose(), test.ShouldBeNil)

	test.That(t, m.RecordChargingSnapshot(planar("O1", 0, 0, 0), planar("O1", 0, 0, 180)), test.ShouldBeNil)
	test.That(t, m.ChargingSnapshot().Charger.AlmostEqual(planar("O1", 0, 0, 180)), test.ShouldBeTrue)
	test.That(t, m.LastChargerPose().AlmostEqual(planar("O1", 0, 0, 180)), test.ShouldBeTrue)

	test.That(t, m.RecordDockingSnapshot(planar("O1", 50, 0, 180), planar("O1", 0, 0, 0)), test.ShouldBeNil)
	first := m.DockingSnapshot()
	test.That(t, first.Robot.AlmostEqual(planar("O1", 50, 0, 180)), test.ShouldBeTrue)

	test.That(t, m.RecordDockingSnapshot(planar("O1", 60, 0, 180), planar("O1", 10, 0, 0)), test.ShouldBeNil)
	test.That(t, m.DockingSnapshot(), test.ShouldNotEqual, first)
	test.That(t, m.DockingSnapshot().Robot.AlmostEqual(planar("O1", 60, 0, 180)), test.ShouldBeTrue)
	test.That(t, m.LastChargerPose().AlmostEqual(planar("O1", 10, 0, 0)), test.ShouldBeTrue)

	// the charging snapshot is untouched by docking
	test.That(t, m.ChargingSnapshot().Robot.AlmostEqual(planar("O1", 0, 0, 0)), test.ShouldBeTrue)

	err := m.RecordDockingSnapshot(planar("O1", 0, 0, 0), planar("O2", 0, 0, 0))
	test.That(t, errors.Is(err, referenceframe.ErrFrameMismatch), test.ShouldBeTrue)
	test.That(t, m.DockingSnapshot().Robot.AlmostEqual(planar("O1", 60, 0, 180)), test.ShouldBeTrue)

	test.That(t, m.RecordChargingSnapshot(nil, planar("O1", 0, 0, 0)), test.ShouldNotBeNil)

	m.Reset()
	test.That(t, m.ChargingSnapshot(), test.ShouldBeNil)
	test.That(t, m.DockingSnapshot(), test.ShouldBeNil)
	test.That(t, m.LastChargerPose(), test.ShouldBeNil)
}

func TestKnowsChargerLocation(t *testing.T) {
	m := NewChargerMemory(50, 10)
	charger := planar("O1", 100, 0, 0)
	m.RecordChargerObservation(charger)

	test.That(t, m.KnowsChargerLocation(planar("O1", 0, 0, 0), charger), test.ShouldBeTrue)
	test.That(t, m.KnowsChargerLocation(planar("O2", 0, 0, 0), charger), test.ShouldBeFalse)
	test.That(t, m.KnowsChargerLocation(planar("O1", 0, 0, 0), nil), test.ShouldBeFalse)
	test.That(t, m.KnowsChargerLocation(nil, charger), test.ShouldBeFalse)

	// within tolerance of the last known pose
	test.That(t, m.KnowsChargerLocation(planar("O1", 0, 0, 0), planar("O1", 140, 0, 9)), test.ShouldBeTrue)
	// beyond it
	test.That(t, m.KnowsChargerLocation(planar("O1", 0, 0, 0), planar("O1", 151, 0, 0)), test.ShouldBeFalse)
	test.That(t, m.KnowsChargerLocation(planar("O1", 0, 0, 0), planar("O1", 100, 0, 11)), test.ShouldBeFalse)

	// with nothing remembered, any pose in the robot's origin is trusted
	m.Reset()
	test.That(t, m.KnowsChargerLocation(planar("O2", 0, 0, 0), planar("O2", 500, 0, 90)), test.ShouldBeTrue)
}

func TestChargerMemoryConcurrentAccess(t *testing.T) {
	m := NewChargerMemory(50, 10)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := float64(i)
			for j := 0; j < 50; j++ {
				test.That(t, m.RecordDockingSnapshot(planar("O1", x, 0, 0), planar("O1", x+200, 0, 0)), test.ShouldBeNil)
				pose, err := m.ComputePossibleDockingPose(planar("O1", 200, 0, 0))
				test.That(t, err, test.ShouldBeNil)
				test.That(t, pose.Parent(), test.ShouldEqual, "O1")
				m.KnowsChargerLocation(planar("O1", 0, 0, 0), planar("O1", 200, 0, 0))
			}
		}(i)
	}
	wg.Wait()

	// whichever snapshot won, robot and charger were written together
	snap := m.DockingSnapshot()
	test.That(t, snap.Charger.Pose().Point().X-snap.Robot.Pose().Point().X, test.ShouldAlmostEqual, 200)
}
