// Package docking finds a robot's charger and docks with it, remembering where the robot
// stood when it last lined up so the next approach can correct for drift.
package docking

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/dock/logging"
	"go.viam.com/dock/operation"
	"go.viam.com/dock/referenceframe"
	"go.viam.com/dock/robot"
)

// dockingOpLabel marks operations that drive the robot to or from its charger; starting one
// cancels any other.
const dockingOpLabel = "docking"

// Outcome is how a return-to-charger attempt ended.
type Outcome int

// The possible outcomes of ReturnToCharger. OutcomeUnknown is reported alongside an error,
// when the attempt was cancelled or the robot's state could not be read.
const (
	OutcomeUnknown Outcome = iota
	Docked
	ChargerNotFound
	ApproachFailed
	DockingActionFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnknown:
		return "unknown"
	case Docked:
		return "docked"
	case ChargerNotFound:
		return "charger_not_found"
	case ApproachFailed:
		return "approach_failed"
	case DockingActionFailed:
		return "docking_action_failed"
	default:
		return "unknown"
	}
}

// Result describes a finished return-to-charger attempt.
type Result struct {
	AttemptID uuid.UUID
	Outcome   Outcome
	// Err is set for every outcome but Docked. For the failure outcomes it matches the outcome's
	// sentinel with errors.Is; for OutcomeUnknown it is the error ReturnToCharger returned.
	Err              error
	AlreadyOnCharger bool
	// ApproachPose is the memory-derived pose driven to before backing onto the charger.
	ApproachPose         *referenceframe.PoseInFrame
	UsedFallbackApproach bool
	Searches             []SearchState
}

// Service drives a single robot back to its charger.
type Service struct {
	robot   robot.Robot
	conf    Config
	memory  *ChargerMemory
	search  *SearchController
	ops     *operation.Manager
	clock   clock.Clock
	metrics *Metrics
	logger  logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for search deadlines and attempt timing.
func WithClock(clk clock.Clock) Option {
	return func(s *Service) {
		s.clock = clk
	}
}

// WithMetrics sets the collectors the service reports to.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMemory shares an existing charger memory with the service.
func WithMemory(m *ChargerMemory) Option {
	return func(s *Service) {
		s.memory = m
	}
}

// NewService returns a docking service for r.
func NewService(r robot.Robot, conf Config, logger logging.Logger, opts ...Option) (*Service, error) {
	if err := conf.Validate("docking"); err != nil {
		return nil, err
	}
	conf = conf.withDefaults()
	s := &Service{
		robot:  r,
		conf:   conf,
		ops:    operation.NewManager(logger.Sublogger("operations")),
		clock:  clock.New(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.memory == nil {
		s.memory = NewChargerMemory(conf.PositionToleranceMm, conf.AngleToleranceDeg)
	}
	s.search = NewSearchController(r, s.memory, conf, s.clock, s.metrics, logger.Sublogger("search"))
	return s, nil
}

// Memory returns the service's charger memory.
func (s *Service) Memory() *ChargerMemory {
	return s.memory
}

// Operations returns the manager tracking in-flight docking operations.
func (s *Service) Operations() *operation.Manager {
	return s.ops
}

// LeaveCharger drives the robot off its charger. If the robot is on the charger and can see it,
// the pair of poses is first recorded as the charging snapshot.
func (s *Service) LeaveCharger(ctx context.Context, distanceMm, mmPerSec float64) error {
	ctx, done := s.ops.Create(ctx, "docking::LeaveCharger", map[string]float64{
		"distance_mm": distanceMm, "mm_per_sec": mmPerSec,
	})
	defer done()
	operation.CancelOtherWithLabel(ctx, dockingOpLabel)
	ctx, span := trace.StartSpan(ctx, "docking::Service::LeaveCharger")
	defer span.End()

	onCharger, err := s.robot.IsOnCharger(ctx)
	if err != nil {
		return errors.Wrap(err, "checking charger contacts")
	}
	if onCharger {
		if err := s.recordChargingSnapshot(ctx); err != nil {
			return err
		}
		if err := s.robot.DriveOffChargerContacts(ctx); err != nil {
			return errors.Wrap(err, "driving off charger contacts")
		}
	}
	if distanceMm == 0 {
		return nil
	}
	if mmPerSec <= 0 {
		mmPerSec = s.conf.DriveSpeedMmPerSec
	}
	return errors.Wrap(s.robot.DriveStraight(ctx, distanceMm, mmPerSec), "driving away from charger")
}

func (s *Service) recordChargingSnapshot(ctx context.Context) error {
	pose, err := s.robot.CurrentPose(ctx)
	if err != nil {
		return errors.Wrap(err, "reading robot pose")
	}
	obs, err := s.robot.CurrentChargerObservation(ctx)
	if err != nil {
		return errors.Wrap(err, "reading charger observation")
	}
	if obs == nil || obs.Pose == nil {
		s.logger.Warn("on the charger but cannot see it; charging snapshot not recorded")
		return nil
	}
	if err := s.memory.RecordChargingSnapshot(pose, obs.Pose); err != nil {
		s.logger.Warnw("charging snapshot not recorded", "error", err)
	}
	return nil
}

// ReturnToCharger finds the charger, approaches it and backs onto it. Failures of the docking
// sequence are reported in the Result; the error is reserved for cancellation and failures to
// read the robot's state.
func (s *Service) ReturnToCharger(ctx context.Context) (Result, error) {
	ctx, done := s.ops.Create(ctx, "docking::ReturnToCharger", nil)
	defer done()
	operation.CancelOtherWithLabel(ctx, dockingOpLabel)
	ctx, span := trace.StartSpan(ctx, "docking::Service::ReturnToCharger")
	defer span.End()

	res := Result{AttemptID: operation.Get(ctx).ID}
	start := s.clock.Now()
	err := s.returnToCharger(ctx, &res)
	if err != nil {
		res.Outcome = OutcomeUnknown
		res.Err = err
		s.logger.Warnw("return to charger interrupted", "attempt", res.AttemptID, "error", err)
		return res, err
	}
	s.metrics.observeAttempt(res.Outcome, s.clock.Since(start))
	if res.Err != nil {
		s.logger.Warnw("could not return to charger", "attempt", res.AttemptID, "outcome", res.Outcome, "error", res.Err)
	} else {
		s.logger.Infow("docked with charger", "attempt", res.AttemptID)
	}
	return res, nil
}

func (s *Service) returnToCharger(ctx context.Context, res *Result) error {
	onCharger, err := s.robot.IsOnCharger(ctx)
	if err != nil {
		return errors.Wrap(err, "checking charger contacts")
	}
	if onCharger {
		s.logger.Info("already on the charger")
		res.Outcome = Docked
		res.AlreadyOnCharger = true
		return nil
	}

	charger, err := s.locateCharger(ctx, res)
	if err != nil {
		return s.classify(ctx, res, err)
	}
	if charger == nil {
		res.Outcome = ChargerNotFound
		res.Err = ErrChargerNotFound
		return nil
	}

	s.logger.Infow("going to charger", "pose", charger.Pose)
	if err := s.robot.GoToObject(ctx, *charger, s.conf.StandoffDistanceMm); err != nil {
		return s.classify(ctx, res, newMotionError("go to charger", err))
	}

	charger, err = s.refineCharger(ctx, charger, res)
	if err != nil {
		return s.classify(ctx, res, err)
	}

	approach, err := s.memory.ComputePossibleDockingPose(charger.Pose)
	switch {
	case err == nil:
		res.ApproachPose = approach
		s.logger.Infow("going to remembered docking pose", "pose", approach)
		if err := s.robot.GoToPose(ctx, approach); err != nil {
			return s.classify(ctx, res, newMotionError("go to docking pose", err))
		}
	default:
		s.logger.Infow("no usable docking pose; approaching the charger directly", "reason", err)
		res.UsedFallbackApproach = true
		if err := s.robot.GoToObject(ctx, *charger, s.conf.StandoffDistanceMm); err != nil {
			return s.classify(ctx, res, newMotionError("go to charger", err))
		}
	}

	aligned, err := s.robot.CurrentPose(ctx)
	if err != nil {
		return errors.Wrap(err, "reading robot pose")
	}
	alignedCharger := charger.Pose
	if current, err := s.robot.CurrentChargerObservation(ctx); err == nil && current.SeenFrom(aligned) {
		alignedCharger = current.Pose
	}

	s.logger.Info("docking with charger")
	if err := s.robot.BackOntoCharger(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		res.Outcome = DockingActionFailed
		res.Err = outcomeError(ErrDockingActionFailed, err)
		return nil
	}

	if err := s.memory.RecordDockingSnapshot(aligned, alignedCharger); err != nil {
		s.logger.Warnw("docking snapshot not recorded", "error", err)
	}
	res.Outcome = Docked
	return nil
}

// locateCharger returns a usable sighting of the charger, searching for it if the current
// observation cannot be trusted. It returns nil when every search failed.
func (s *Service) locateCharger(ctx context.Context, res *Result) (*robot.ChargerObservation, error) {
	known := func() (*robot.ChargerObservation, error) {
		pose, err := s.robot.CurrentPose(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "reading robot pose")
		}
		obs, err := s.robot.CurrentChargerObservation(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "reading charger observation")
		}
		if obs != nil && s.memory.KnowsChargerLocation(pose, obs.Pose) {
			return obs, nil
		}
		return nil, nil
	}

	for i, step := range s.conf.SearchStepSizesDeg {
		obs, err := known()
		if err != nil || obs != nil {
			return obs, err
		}
		if i == 0 {
			s.logger.Info("charger location unknown; searching")
		}
		found, err := s.search.Search(ctx, step)
		res.Searches = append(res.Searches, found.State)
		if err != nil {
			return nil, err
		}
		if found.State.Found {
			return found.Observation, nil
		}
	}
	if obs, err := known(); err != nil || obs != nil {
		return obs, err
	}

	if s.conf.DisableLookAround {
		return nil, nil
	}
	s.logger.Info("still cannot find the charger; looking around")
	return s.search.LookAround(ctx, seconds(s.conf.LookAroundTimeoutSec))
}

// refineCharger re-verifies the charger estimate once close to it. If the charger is not in view
// a single sweep is made; if that fails too the earlier sighting is kept.
func (s *Service) refineCharger(
	ctx context.Context,
	charger *robot.ChargerObservation,
	res *Result,
) (*robot.ChargerObservation, error) {
	pose, err := s.robot.CurrentPose(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading robot pose")
	}
	current, err := s.robot.CurrentChargerObservation(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading charger observation")
	}
	if current.SeenFrom(pose) {
		s.memory.RecordChargerObservation(current.Pose)
		return current, nil
	}

	found, err := s.search.Search(ctx, s.conf.RefineStepDeg)
	res.Searches = append(res.Searches, found.State)
	if err != nil {
		return nil, err
	}
	if found.State.Found {
		return found.Observation, nil
	}
	s.logger.Info("lost sight of the charger while approaching; using the earlier sighting")
	return charger, nil
}

// classify turns an error from the docking sequence into an outcome. Cancellation and state
// read failures are returned; motion failures become ApproachFailed.
func (s *Service) classify(ctx context.Context, res *Result, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var me *motionError
	if errors.As(err, &me) {
		res.Outcome = ApproachFailed
		res.Err = outcomeError(ErrApproachFailed, err)
		return nil
	}
	return err
}
