// Package robot defines the collaborators the docking stack drives: the robot's motion
// actions, its charger perception, its state, and its background behaviors.
package robot

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/dock/referenceframe"
)

// ErrObservationTimeout is returned by WaitForObservedCharger when the charger was not seen in time.
var ErrObservationTimeout = errors.New("timed out waiting to observe the charger")

// Motion issues physical actions. Every method blocks until the action completes or fails;
// implementations must not run two actions for the same robot at once.
type Motion interface {
	// DriveStraight drives distanceMm forward (negative is backwards).
	DriveStraight(ctx context.Context, distanceMm, mmPerSec float64) error
	// TurnInPlace turns angleDeg counter-clockwise (negative is clockwise).
	TurnInPlace(ctx context.Context, angleDeg, degsPerSec float64) error
	GoToPose(ctx context.Context, pose *referenceframe.PoseInFrame) error
	// GoToObject drives up to the charger, stopping standoffMm in front of it.
	GoToObject(ctx context.Context, charger ChargerObservation, standoffMm float64) error
	// BackOntoCharger performs the final reverse onto the charging contacts.
	BackOntoCharger(ctx context.Context) error
	// DriveOffChargerContacts moves just far enough forward to leave the contacts.
	DriveOffChargerContacts(ctx context.Context) error
}

// Perception reports what the robot knows about the charger.
type Perception interface {
	// CurrentChargerObservation returns the latest known charger, or nil if the robot
	// has never seen one. It does not block.
	CurrentChargerObservation(ctx context.Context) (*ChargerObservation, error)
	// WaitForObservedCharger blocks until the charger is seen or the timeout elapses,
	// in which case ErrObservationTimeout is returned.
	WaitForObservedCharger(ctx context.Context, timeout time.Duration) (*ChargerObservation, error)
}

// State reports the robot's own condition.
type State interface {
	CurrentPose(ctx context.Context) (*referenceframe.PoseInFrame, error)
	IsOnCharger(ctx context.Context) (bool, error)
}

// Behaviors starts autonomous background behaviors.
type Behaviors interface {
	StartBehavior(ctx context.Context, kind BehaviorKind) (BehaviorHandle, error)
}

// BehaviorHandle controls a started behavior.
type BehaviorHandle interface {
	Stop(ctx context.Context) error
}

// BehaviorKind names a background behavior.
type BehaviorKind string

// LookAroundInPlace turns the head and body in place looking for objects.
const LookAroundInPlace = BehaviorKind("look_around_in_place")

// Robot is everything the docking stack needs from a single robot.
type Robot interface {
	Motion
	Perception
	State
	Behaviors
}

// ChargerObservation is what perception knows about the charger: its identity, the pose it
// was last seen at (in the origin frame current at the time) and whether it is in view right now.
type ChargerObservation struct {
	ID      string
	Pose    *referenceframe.PoseInFrame
	Visible bool
}

// SeenFrom returns whether the observation is a sighting that can be related to the given robot pose:
// the charger is in view and was measured in the same origin frame.
func (o *ChargerObservation) SeenFrom(robotPose *referenceframe.PoseInFrame) bool {
	return o != nil && o.Visible && o.Pose != nil && robotPose != nil && o.Pose.Parent() == robotPose.Parent()
}
