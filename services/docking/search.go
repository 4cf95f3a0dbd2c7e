package docking

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/dock/logging"
	"go.viam.com/dock/robot"
	"go.viam.com/dock/utils"
)

// SearchState is the progress of a single search episode.
type SearchState struct {
	StepSizeDeg    float64
	AngleTurnedDeg float64
	Steps          int
	Found          bool
	TimedOut       bool
}

// SearchResult is the final state of a search episode and, when found, the sighting that ended it.
type SearchResult struct {
	State       SearchState
	Observation *robot.ChargerObservation
}

// Exhausted returns whether the episode ended without seeing the charger.
func (r SearchResult) Exhausted() bool {
	return !r.State.Found
}

// SearchController turns the robot in place in fixed steps, looking for the charger after each one.
type SearchController struct {
	robot              robot.Robot
	memory             *ChargerMemory
	logger             logging.Logger
	clock              clock.Clock
	metrics            *Metrics
	turnSpeed          float64
	observationTimeout time.Duration
	episodeTimeout     time.Duration
	behavior           robot.BehaviorKind
}

// NewSearchController returns a controller that records its sightings in memory. Unset fields
// of conf take their defaults.
func NewSearchController(
	r robot.Robot,
	memory *ChargerMemory,
	conf Config,
	clk clock.Clock,
	metrics *Metrics,
	logger logging.Logger,
) *SearchController {
	conf = conf.withDefaults()
	if clk == nil {
		clk = clock.New()
	}
	return &SearchController{
		robot:              r,
		memory:             memory,
		logger:             logger,
		clock:              clk,
		metrics:            metrics,
		turnSpeed:          conf.TurnSpeedDegsPerSec,
		observationTimeout: seconds(conf.ObservationTimeoutSec),
		episodeTimeout:     seconds(conf.SearchTimeoutSec),
		behavior:           robot.BehaviorKind(conf.SearchBehavior),
	}
}

// Search runs one episode: turn stepDeg, look once, and repeat until the charger is seen in the
// robot's current origin or the robot has turned a full circle plus one step.
// An episode that ends without a sighting is not an error; see SearchResult.Exhausted.
func (sc *SearchController) Search(ctx context.Context, stepDeg float64) (res SearchResult, err error) {
	if !(stepDeg >= utils.MinTurnStepDeg) || math.IsInf(stepDeg, 1) {
		return res, errors.Wrapf(ErrInvalidStepSize, "got %v", stepDeg)
	}
	ctx, span := trace.StartSpan(ctx, "docking::SearchController::Search")
	defer span.End()

	res.State.StepSizeDeg = stepDeg
	defer func() {
		if err == nil {
			sc.metrics.observeEpisode(res.State)
		}
	}()

	if sc.behavior != "" {
		stop := sc.startBehavior(ctx, sc.behavior)
		defer stop()
	}

	var deadline time.Time
	if sc.episodeTimeout > 0 {
		deadline = sc.clock.Now().Add(sc.episodeTimeout)
	}
	maxSteps := utils.MaxTurnSteps(stepDeg)

	sc.logger.Debugw("searching for charger", "step_deg", stepDeg, "max_steps", maxSteps)
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !deadline.IsZero() && !sc.clock.Now().Before(deadline) {
			res.State.TimedOut = true
			sc.logger.Infow("charger search timed out", "step_deg", stepDeg, "turned_deg", res.State.AngleTurnedDeg)
			return res, nil
		}

		if err := sc.robot.TurnInPlace(ctx, stepDeg, sc.turnSpeed); err != nil {
			return res, newMotionError("turn in place", err)
		}
		res.State.Steps++
		sc.metrics.observeTurn()

		obs, err := sc.observe(ctx, sc.observationWindow(deadline))
		if err != nil {
			return res, err
		}
		if obs != nil {
			res.State.Found = true
			res.Observation = obs
			sc.memory.RecordChargerObservation(obs.Pose)
			sc.logger.Infow("found charger", "step_deg", stepDeg, "steps", res.State.Steps, "pose", obs.Pose)
			return res, nil
		}

		res.State.AngleTurnedDeg = float64(res.State.Steps) * stepDeg
		if res.State.Steps >= maxSteps {
			sc.logger.Infow("charger search exhausted", "step_deg", stepDeg, "turned_deg", res.State.AngleTurnedDeg)
			return res, nil
		}
	}
}

// LookAround runs the look-around-in-place behavior until the charger is seen in the robot's
// current origin or timeout elapses. It returns nil without error when nothing was seen.
func (sc *SearchController) LookAround(ctx context.Context, timeout time.Duration) (*robot.ChargerObservation, error) {
	ctx, span := trace.StartSpan(ctx, "docking::SearchController::LookAround")
	defer span.End()

	stop := sc.startBehavior(ctx, robot.LookAroundInPlace)
	defer stop()

	obs, err := sc.observe(ctx, timeout)
	if err != nil || obs == nil {
		return nil, err
	}
	sc.memory.RecordChargerObservation(obs.Pose)
	return obs, nil
}

// startBehavior starts kind and returns a func that stops it exactly once. The stop uses a
// context that is not cancelled with ctx. The behavior only assists the search, so failures to
// start or stop it are logged and the search carries on.
func (sc *SearchController) startBehavior(ctx context.Context, kind robot.BehaviorKind) func() {
	handle, err := sc.robot.StartBehavior(ctx, kind)
	if err != nil {
		sc.logger.Warnw("search behavior did not start", "behavior", kind, "error", err)
		return func() {}
	}
	stopCtx := context.WithoutCancel(ctx)
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := handle.Stop(stopCtx); err != nil {
				sc.logger.Warnw("search behavior did not stop", "behavior", kind, "error", err)
			}
		})
	}
}

func (sc *SearchController) observationWindow(deadline time.Time) time.Duration {
	if deadline.IsZero() {
		return sc.observationTimeout
	}
	remaining := deadline.Sub(sc.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	if remaining < sc.observationTimeout {
		return remaining
	}
	return sc.observationTimeout
}

// observe makes exactly one perception query and returns the sighting if it is usable from the
// robot's current pose. Timeouts and perception faults count as not seen.
func (sc *SearchController) observe(ctx context.Context, timeout time.Duration) (*robot.ChargerObservation, error) {
	obs, err := sc.robot.WaitForObservedCharger(ctx, timeout)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, robot.ErrObservationTimeout) {
			sc.logger.Warnw("charger observation failed", "error", err)
		}
		return nil, nil
	}
	if obs == nil {
		return nil, nil
	}
	pose, err := sc.robot.CurrentPose(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading robot pose")
	}
	if !obs.SeenFrom(pose) {
		sc.logger.Debugw("charger observation not usable from current origin", "observation", obs.Pose, "robot", pose)
		return nil, nil
	}
	return obs, nil
}
