package docking

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	// ErrNoDockingSnapshot is returned when an approach pose is requested before the robot
	// has ever aligned with the charger.
	ErrNoDockingSnapshot = errors.New("no docking snapshot has been recorded")
	// ErrChargerNotFound is reported when every configured search failed to see the charger.
	ErrChargerNotFound = errors.New("charger not found")
	// ErrApproachFailed is reported when a motion action driving toward the charger failed.
	ErrApproachFailed = errors.New("approach to charger failed")
	// ErrDockingActionFailed is reported when backing onto the charger contacts failed.
	ErrDockingActionFailed = errors.New("docking action failed")
	// ErrInvalidStepSize is returned when a search is asked to turn by less than
	// utils.MinTurnStepDeg or by an infinite angle.
	ErrInvalidStepSize = errors.New("invalid search step size")
)

// motionError marks a failure reported by the robot's motion collaborator.
type motionError struct {
	action string
	err    error
}

func newMotionError(action string, err error) error {
	return &motionError{action: action, err: err}
}

func (e *motionError) Error() string {
	return e.action + ": " + e.err.Error()
}

func (e *motionError) Unwrap() error {
	return e.err
}

// outcomeError ties the failure category of a docking attempt to its cause so both
// can be matched with errors.Is.
func outcomeError(category, cause error) error {
	if cause == nil {
		return category
	}
	return multierr.Append(category, cause)
}
