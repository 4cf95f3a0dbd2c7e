// Package inject provides robot fakes whose methods can be replaced per test.
package inject

import (
	"context"
	"time"

	"go.viam.com/dock/referenceframe"
	"go.viam.com/dock/robot"
)

// Robot is an injectable robot. Any method whose func is unset falls through to the embedded Robot.
type Robot struct {
	robot.Robot
	DriveStraightFunc             func(ctx context.Context, distanceMm, mmPerSec float64) error
	TurnInPlaceFunc               func(ctx context.Context, angleDeg, degsPerSec float64) error
	GoToPoseFunc                  func(ctx context.Context, pose *referenceframe.PoseInFrame) error
	GoToObjectFunc                func(ctx context.Context, charger robot.ChargerObservation, standoffMm float64) error
	BackOntoChargerFunc           func(ctx context.Context) error
	DriveOffChargerContactsFunc   func(ctx context.Context) error
	CurrentChargerObservationFunc func(ctx context.Context) (*robot.ChargerObservation, error)
	WaitForObservedChargerFunc    func(ctx context.Context, timeout time.Duration) (*robot.ChargerObservation, error)
	CurrentPoseFunc               func(ctx context.Context) (*referenceframe.PoseInFrame, error)
	IsOnChargerFunc               func(ctx context.Context) (bool, error)
	StartBehaviorFunc             func(ctx context.Context, kind robot.BehaviorKind) (robot.BehaviorHandle, error)
}

// DriveStraight calls the injected DriveStraight or the real version.
func (r *Robot) DriveStraight(ctx context.Context, distanceMm, mmPerSec float64) error {
	if r.DriveStraightFunc == nil {
		return r.Robot.DriveStraight(ctx, distanceMm, mmPerSec)
	}
	return r.DriveStraightFunc(ctx, distanceMm, mmPerSec)
}

// TurnInPlace calls the injected TurnInPlace or the real version.
func (r *Robot) TurnInPlace(ctx context.Context, angleDeg, degsPerSec float64) error {
	if r.TurnInPlaceFunc == nil {
		return r.Robot.TurnInPlace(ctx, angleDeg, degsPerSec)
	}
	return r.TurnInPlaceFunc(ctx, angleDeg, degsPerSec)
}

// GoToPose calls the injected GoToPose or the real version.
func (r *Robot) GoToPose(ctx context.Context, pose *referenceframe.PoseInFrame) error {
	if r.GoToPoseFunc == nil {
		return r.Robot.GoToPose(ctx, pose)
	}
	return r.GoToPoseFunc(ctx, pose)
}

// GoToObject calls the injected GoToObject or the real version.
func (r *Robot) GoToObject(ctx context.Context, charger robot.ChargerObservation, standoffMm float64) error {
	if r.GoToObjectFunc == nil {
		return r.Robot.GoToObject(ctx, charger, standoffMm)
	}
	return r.GoToObjectFunc(ctx, charger, standoffMm)
}

// BackOntoCharger calls the injected BackOntoCharger or the real version.
func (r *Robot) BackOntoCharger(ctx context.Context) error {
	if r.BackOntoChargerFunc == nil {
		return r.Robot.BackOntoCharger(ctx)
	}
	return r.BackOntoChargerFunc(ctx)
}

// DriveOffChargerContacts calls the injected DriveOffChargerContacts or the real version.
func (r *Robot) DriveOffChargerContacts(ctx context.Context) error {
	if r.DriveOffChargerContactsFunc == nil {
		return r.Robot.DriveOffChargerContacts(ctx)
	}
	return r.DriveOffChargerContactsFunc(ctx)
}

// CurrentChargerObservation calls the injected CurrentChargerObservation or the real version.
func (r *Robot) CurrentChargerObservation(ctx context.Context) (*robot.ChargerObservation, error) {
	if r.CurrentChargerObservationFunc == nil {
		return r.Robot.CurrentChargerObservation(ctx)
	}
	return r.CurrentChargerObservationFunc(ctx)
}

// WaitForObservedCharger calls the injected WaitForObservedCharger or the real version.
func (r *Robot) WaitForObservedCharger(ctx context.Context, timeout time.Duration) (*robot.ChargerObservation, error) {
	if r.WaitForObservedChargerFunc == nil {
		return r.Robot.WaitForObservedCharger(ctx, timeout)
	}
	return r.WaitForObservedChargerFunc(ctx, timeout)
}

// CurrentPose calls the injected CurrentPose or the real version.
func (r *Robot) CurrentPose(ctx context.Context) (*referenceframe.PoseInFrame, error) {
	if r.CurrentPoseFunc == nil {
		return r.Robot.CurrentPose(ctx)
	}
	return r.CurrentPoseFunc(ctx)
}

// IsOnCharger calls the injected IsOnCharger or the real version.
func (r *Robot) IsOnCharger(ctx context.Context) (bool, error) {
	if r.IsOnChargerFunc == nil {
		return r.Robot.IsOnCharger(ctx)
	}
	return r.IsOnChargerFunc(ctx)
}

// StartBehavior calls the injected StartBehavior or the real version.
func (r *Robot) StartBehavior(ctx context.Context, kind robot.BehaviorKind) (robot.BehaviorHandle, error) {
	if r.StartBehaviorFunc == nil {
		return r.Robot.StartBehavior(ctx, kind)
	}
	return r.StartBehaviorFunc(ctx, kind)
}

// BehaviorHandle is an injectable handle to a running behavior.
type BehaviorHandle struct {
	StopFunc func(ctx context.Context) error
}

// Stop calls the injected Stop or does nothing.
func (h *BehaviorHandle) Stop(ctx context.Context) error {
	if h.StopFunc == nil {
		return nil
	}
	return h.StopFunc(ctx)
}
