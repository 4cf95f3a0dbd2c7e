// Package fake implements a simulated planar robot and charger.
package fake

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/dock/logging"
	"go.viam.com/dock/operation"
	"go.viam.com/dock/referenceframe"
	"go.viam.com/dock/robot"
	"go.viam.com/dock/spatialmath"
	"go.viam.com/dock/utils"
)

const chargerID = "charger"

// Robot is a simulated robot on a plane. It tracks its true world pose and reports poses relative
// to an odometry origin that changes whenever it is delocalized.
type Robot struct {
	mu      sync.Mutex
	conf    Config
	motions *operation.SingleOperationManager
	clock   clock.Clock
	logger  logging.Logger

	robotWorld    spatialmath.Pose
	chargerWorld  spatialmath.Pose
	originWorld   spatialmath.Pose
	origins       int
	onCharger     bool
	lookingAround bool
	lastSeen      *robot.ChargerObservation
	behaviorStops int
}

// NewRobot returns a simulated robot. The odometry origin starts at the robot's initial pose.
func NewRobot(conf Config, clk clock.Clock, logger logging.Logger) (*Robot, error) {
	if err := conf.Validate("robot"); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	conf = conf.withDefaults()
	r := &Robot{
		conf:         conf,
		clock:        clk,
		logger:       logger,
		motions:      operation.NewSingleOperationManager(logger),
		robotWorld:   spatialmath.NewPlanarPose(conf.StartXMm, conf.StartYMm, conf.StartYawDeg),
		chargerWorld: spatialmath.NewPlanarPose(conf.ChargerXMm, conf.ChargerYMm, conf.ChargerYawDeg),
	}
	if conf.StartOnCharger {
		r.robotWorld = r.chargerWorld
		r.onCharger = true
	}
	r.originWorld = r.robotWorld
	return r, nil
}

func (r *Robot) originID() string {
	return fmt.Sprintf("origin-%d", r.origins)
}

// Delocalize simulates the robot being picked up: a new origin is started at the robot's current
// pose and anything seen before is no longer related to it.
func (r *Robot) Delocalize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origins++
	r.originWorld = r.robotWorld
	r.logger.Infow("delocalized", "origin", r.originID())
}

// MoveCharger places the charger at a new world pose.
func (r *Robot) MoveCharger(xMm, yMm, yawDeg float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chargerWorld = spatialmath.NewPlanarPose(xMm, yMm, yawDeg)
}

// WorldPose returns the robot's true pose.
func (r *Robot) WorldPose() spatialmath.Pose {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.robotWorld
}

// BehaviorStops returns how many times a behavior handle has been stopped.
func (r *Robot) BehaviorStops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.behaviorStops
}

// CurrentMotion returns the name of the motion in flight, or "" when the robot is idle.
func (r *Robot) CurrentMotion() string {
	return r.motions.Current()
}

// move runs the named simulated motion lasting simSeconds, then applies it. Only one motion runs
// at a time; a motion interrupted by another fails with operation.ErrSuperseded.
func (r *Robot) move(ctx context.Context, name string, simSeconds float64, apply func() error) error {
	ctx, done := r.motions.New(ctx, name)
	defer done()
	if r.conf.TimeScale > 0 {
		wait := time.Duration(simSeconds * r.conf.TimeScale * float64(time.Second))
		if err := r.motions.NewTimedWaitOp(ctx, name, wait); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return apply()
}

func planar(x, y, yawRad float64) spatialmath.Pose {
	return spatialmath.NewPlanarPose(x, y, utils.RadToDeg(yawRad))
}

func yawOf(p spatialmath.Pose) float64 {
	return spatialmath.Yaw(p.Orientation())
}

// DriveStraight drives along the robot's heading; negative distances reverse.
func (r *Robot) DriveStraight(ctx context.Context, distanceMm, mmPerSec float64) error {
	if mmPerSec <= 0 {
		return errors.Errorf("speed must be positive, got %v", mmPerSec)
	}
	return r.move(ctx, "drive straight", math.Abs(distanceMm)/mmPerSec, func() error {
		p := referenceframe.PerpendicularOffset(referenceframe.NewPoseInFrame(referenceframe.World, r.robotWorld), distanceMm)
		r.robotWorld = p.Pose()
		r.onCharger = false
		return nil
	})
}

// TurnInPlace rotates the robot about its own center; positive angles turn left.
func (r *Robot) TurnInPlace(ctx context.Context, angleDeg, degsPerSec float64) error {
	if degsPerSec <= 0 {
		return errors.Errorf("turn speed must be positive, got %v", degsPerSec)
	}
	return r.move(ctx, "turn in place", math.Abs(angleDeg)/degsPerSec, func() error {
		pt := r.robotWorld.Point()
		r.robotWorld = planar(pt.X, pt.Y, yawOf(r.robotWorld)+utils.DegToRad(angleDeg))
		r.onCharger = false
		return nil
	})
}

// GoToPose drives to a pose given in the robot's current origin.
func (r *Robot) GoToPose(ctx context.Context, pose *referenceframe.PoseInFrame) error {
	return r.move(ctx, "go to pose", 0, func() error {
		if pose == nil || pose.Parent() != r.originID() {
			return errors.Errorf("cannot go to pose outside the current origin %q", r.originID())
		}
		w := spatialmath.Compose(r.originWorld, pose.Pose())
		r.robotWorld = planar(w.Point().X, w.Point().Y, yawOf(w))
		r.onCharger = false
		return nil
	})
}

// GoToObject drives to standoffMm in front of the observed charger, facing it.
func (r *Robot) GoToObject(ctx context.Context, charger robot.ChargerObservation, standoffMm float64) error {
	return r.move(ctx, "go to object", 0, func() error {
		if charger.Pose == nil || charger.Pose.Parent() != r.originID() {
			return errors.Errorf("charger %q is not located in the current origin %q", charger.ID, r.originID())
		}
		front := referenceframe.PerpendicularOffset(charger.Pose, standoffMm)
		w := spatialmath.Compose(r.originWorld, front.Pose())
		r.robotWorld = planar(w.Point().X, w.Point().Y, yawOf(w)+math.Pi)
		r.onCharger = false
		return nil
	})
}

// BackOntoCharger turns around and reverses onto the contacts. It fails unless the robot is in
// front of the charger and roughly facing it.
func (r *Robot) BackOntoCharger(ctx context.Context) error {
	return r.move(ctx, "back onto charger", 0, func() error {
		front := referenceframe.PerpendicularOffset(
			referenceframe.NewPoseInFrame(referenceframe.World, r.chargerWorld), r.conf.DockRangeMm/2)
		dist := front.Pose().Point().Distance(r.robotWorld.Point())
		facing := utils.AngleDiffDeg(utils.RadToDeg(yawOf(r.robotWorld)), utils.RadToDeg(yawOf(r.chargerWorld))+180)
		if dist > r.conf.DockRangeMm/2 || facing > r.conf.DockAngleDeg {
			return errors.Errorf("not lined up with charger: %.0fmm off, %.0f° off", dist, facing)
		}
		r.robotWorld = r.chargerWorld
		r.onCharger = true
		return nil
	})
}

// DriveOffChargerContacts drives forward just far enough to leave the contacts.
func (r *Robot) DriveOffChargerContacts(ctx context.Context) error {
	return r.move(ctx, "drive off charger contacts", 0, func() error {
		if !r.onCharger {
			return nil
		}
		p := referenceframe.PerpendicularOffset(
			referenceframe.NewPoseInFrame(referenceframe.World, r.robotWorld), r.conf.ContactsClearMm)
		r.robotWorld = p.Pose()
		r.onCharger = false
		return nil
	})
}

// visibleLocked reports whether the charger is within the camera's field of view and range.
// A robot sitting on the charger always knows where it is.
func (r *Robot) visibleLocked() bool {
	if r.onCharger {
		return true
	}
	d := r.chargerWorld.Point().Sub(r.robotWorld.Point())
	if d.Norm() > r.conf.VisionRangeMm {
		return false
	}
	bearing := utils.RadToDeg(math.Atan2(d.Y, d.X))
	return utils.AngleDiffDeg(bearing, utils.RadToDeg(yawOf(r.robotWorld))) <= r.conf.FieldOfViewDeg/2
}

// observeLocked refreshes and returns what perception knows about the charger.
func (r *Robot) observeLocked() *robot.ChargerObservation {
	visible := r.visibleLocked()
	if visible {
		r.lastSeen = &robot.ChargerObservation{
			ID:   chargerID,
			Pose: referenceframe.NewPoseInFrame(r.originID(), spatialmath.PoseBetween(r.originWorld, r.chargerWorld)),
		}
	}
	if r.lastSeen == nil {
		return nil
	}
	obs := *r.lastSeen
	obs.Visible = visible
	return &obs
}

// CurrentChargerObservation returns the last sighting of the charger, or nil if it was never seen.
func (r *Robot) CurrentChargerObservation(ctx context.Context) (*robot.ChargerObservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observeLocked(), nil
}

// WaitForObservedCharger returns as soon as the charger is in view, or ErrObservationTimeout.
// While looking around, a charger within range is turned toward and seen.
func (r *Robot) WaitForObservedCharger(ctx context.Context, timeout time.Duration) (*robot.ChargerObservation, error) {
	r.mu.Lock()
	if r.lookingAround && !r.visibleLocked() {
		d := r.chargerWorld.Point().Sub(r.robotWorld.Point())
		if d.Norm() <= r.conf.VisionRangeMm {
			pt := r.robotWorld.Point()
			r.robotWorld = planar(pt.X, pt.Y, math.Atan2(d.Y, d.X))
		}
	}
	if obs := r.observeLocked(); obs != nil && obs.Visible {
		r.mu.Unlock()
		return obs, nil
	}
	r.mu.Unlock()

	if timeout <= 0 {
		return nil, robot.ErrObservationTimeout
	}
	timer := r.clock.Timer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, robot.ErrObservationTimeout
	}
}

// CurrentPose returns the robot's pose in its current origin.
func (r *Robot) CurrentPose(ctx context.Context) (*referenceframe.PoseInFrame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return referenceframe.NewPoseInFrame(r.originID(), spatialmath.PoseBetween(r.originWorld, r.robotWorld)), nil
}

// IsOnCharger returns whether the robot is sitting on the charger contacts.
func (r *Robot) IsOnCharger(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.onCharger, nil
}

// StartBehavior starts a simulated behavior. Only LookAroundInPlace is supported.
func (r *Robot) StartBehavior(ctx context.Context, kind robot.BehaviorKind) (robot.BehaviorHandle, error) {
	if kind != robot.LookAroundInPlace {
		return nil, errors.Errorf("unsupported behavior %q", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookingAround {
		return nil, errors.Errorf("behavior %q already running", kind)
	}
	r.lookingAround = true
	return &behavior{robot: r}, nil
}

var _ robot.Robot = (*Robot)(nil)

type behavior struct {
	robot   *Robot
	stopped bool
}

func (b *behavior) Stop(ctx context.Context) error {
	b.robot.mu.Lock()
	defer b.robot.mu.Unlock()
	if b.stopped {
		return nil
	}
	b.stopped = true
	b.robot.lookingAround = false
	b.robot.behaviorStops++
	return nil
}
