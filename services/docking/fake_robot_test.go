package docking

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/dock/logging"
	"go.viam.com/dock/referenceframe"
	"go.viam.com/dock/robot/fake"
)

func TestDockingCyclesWithFakeRobot(t *testing.T) {
	logger := logging.NewTestLogger(t)
	r, err := fake.NewRobot(fake.Config{StartOnCharger: true}, nil, logger.Sublogger("robot"))
	test.That(t, err, test.ShouldBeNil)
	svc := newTestService(t, r, Config{ObservationTimeoutSec: 0.01, LookAroundTimeoutSec: 0.01})
	ctx := context.Background()

	// charger behind the robot, still known from the charging snapshot
	test.That(t, svc.LeaveCharger(ctx, 300, 100), test.ShouldBeNil)
	test.That(t, svc.Memory().ChargingSnapshot(), test.ShouldNotBeNil)
	onCharger, err := r.IsOnCharger(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, onCharger, test.ShouldBeFalse)

	res, err := svc.ReturnToCharger(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Outcome, test.ShouldEqual, Docked)
	test.That(t, res.Searches, test.ShouldBeEmpty)
	test.That(t, res.UsedFallbackApproach, test.ShouldBeTrue)
	test.That(t, svc.Memory().DockingSnapshot(), test.ShouldNotBeNil)

	// picked up: the old sighting no longer relates to the robot's origin
	test.That(t, svc.LeaveCharger(ctx, 300, 100), test.ShouldBeNil)
	r.Delocalize()
	res, err = svc.ReturnToCharger(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Outcome, test.ShouldEqual, Docked)
	test.That(t, len(res.Searches), test.ShouldEqual, 1)
	test.That(t, res.Searches[0].Found, test.ShouldBeTrue)
	test.That(t, res.Searches[0].Steps, test.ShouldEqual, 1)
	test.That(t, res.UsedFallbackApproach, test.ShouldBeTrue)
	snap := svc.Memory().DockingSnapshot()
	pose, err := r.CurrentPose(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, snap.Robot.Parent(), test.ShouldEqual, pose.Parent())

	// the charger is nudged: the remembered docking pose is shifted to match
	test.That(t, svc.LeaveCharger(ctx, 300, 100), test.ShouldBeNil)
	r.MoveCharger(-10, 0, 0)
	res, err = svc.ReturnToCharger(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Outcome, test.ShouldEqual, Docked)
	test.That(t, res.UsedFallbackApproach, test.ShouldBeFalse)
	test.That(t, res.ApproachPose.Parent(), test.ShouldEqual, snap.Robot.Parent())
	test.That(t, res.ApproachPose.Pose().Point().X, test.ShouldAlmostEqual, snap.Robot.Pose().Point().X-10, 1e-6)
	test.That(t, res.ApproachPose.Pose().Point().Y, test.ShouldAlmostEqual, snap.Robot.Pose().Point().Y, 1e-6)
	test.That(t, referenceframe.IsComparable(res.ApproachPose, snap.Robot, 10+1e-6, 1e-6), test.ShouldBeTrue)
	test.That(t, r.WorldPose().Point().X, test.ShouldAlmostEqual, -10, 1e-6)
}
