package docking

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/dock/robot"
	"go.viam.com/dock/utils"
)

// Defaults used for any zero-valued Config field.
const (
	DefaultRefineStepDeg         = 30.
	DefaultTurnSpeedDegsPerSec   = 90.
	DefaultDriveSpeedMmPerSec    = 60.
	DefaultObservationTimeoutSec = 2.
	DefaultLookAroundTimeoutSec  = 30.
	DefaultStandoffDistanceMm    = 50.
	DefaultPositionToleranceMm   = 50.
	DefaultAngleToleranceDeg     = 5.
)

// DefaultSearchStepSizesDeg is tried coarse to fine.
var DefaultSearchStepSizesDeg = []float64{180, 90, 45, 30}

// Config describes how a robot looks for and docks with its charger.
type Config struct {
	// SearchStepSizesDeg is the ordered list of turn increments tried, one search episode each.
	SearchStepSizesDeg []float64 `json:"search_step_sizes_deg,omitempty"`
	// RefineStepDeg is the turn increment of the verification sweep once near the charger.
	RefineStepDeg         float64 `json:"refine_step_deg,omitempty"`
	TurnSpeedDegsPerSec   float64 `json:"turn_speed_degs_per_sec,omitempty"`
	DriveSpeedMmPerSec    float64 `json:"drive_speed_mm_per_sec,omitempty"`
	ObservationTimeoutSec float64 `json:"observation_timeout_sec,omitempty"`
	// SearchTimeoutSec bounds a single search episode; zero means unbounded.
	SearchTimeoutSec float64 `json:"search_timeout_sec,omitempty"`
	// SearchBehavior is started for the duration of each search episode when set.
	SearchBehavior       string  `json:"search_behavior,omitempty"`
	LookAroundTimeoutSec float64 `json:"look_around_timeout_sec,omitempty"`
	DisableLookAround    bool    `json:"disable_look_around,omitempty"`
	StandoffDistanceMm   float64 `json:"standoff_distance_mm,omitempty"`
	PositionToleranceMm  float64 `json:"position_tolerance_mm,omitempty"`
	AngleToleranceDeg    float64 `json:"angle_tolerance_deg,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	for _, step := range conf.SearchStepSizesDeg {
		if !(step >= utils.MinTurnStepDeg) || step > 360 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("search step size %v must be in [%v, 360]", step, utils.MinTurnStepDeg))
		}
	}
	for name, v := range map[string]float64{
		"refine_step_deg":         conf.RefineStepDeg,
		"turn_speed_degs_per_sec": conf.TurnSpeedDegsPerSec,
		"drive_speed_mm_per_sec":  conf.DriveSpeedMmPerSec,
		"observation_timeout_sec": conf.ObservationTimeoutSec,
		"search_timeout_sec":      conf.SearchTimeoutSec,
		"look_around_timeout_sec": conf.LookAroundTimeoutSec,
		"standoff_distance_mm":    conf.StandoffDistanceMm,
		"position_tolerance_mm":   conf.PositionToleranceMm,
		"angle_tolerance_deg":     conf.AngleToleranceDeg,
	} {
		if v < 0 || math.IsNaN(v) {
			return utils.NewConfigValidationError(path, errors.Errorf("%q cannot be negative", name))
		}
	}
	if conf.RefineStepDeg > 360 || (conf.RefineStepDeg > 0 && conf.RefineStepDeg < utils.MinTurnStepDeg) {
		return utils.NewConfigValidationError(path,
			errors.Errorf(`"refine_step_deg" must be in [%v, 360]`, utils.MinTurnStepDeg))
	}
	switch robot.BehaviorKind(conf.SearchBehavior) {
	case "", robot.LookAroundInPlace:
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown search behavior %q", conf.SearchBehavior))
	}
	return nil
}

// withDefaults returns a copy of the config with every unset field filled in.
func (conf Config) withDefaults() Config {
	if len(conf.SearchStepSizesDeg) == 0 {
		conf.SearchStepSizesDeg = DefaultSearchStepSizesDeg
	}
	conf.SearchStepSizesDeg = lo.Uniq(conf.SearchStepSizesDeg)
	conf.RefineStepDeg = orDefault(conf.RefineStepDeg, DefaultRefineStepDeg)
	conf.TurnSpeedDegsPerSec = orDefault(conf.TurnSpeedDegsPerSec, DefaultTurnSpeedDegsPerSec)
	conf.DriveSpeedMmPerSec = orDefault(conf.DriveSpeedMmPerSec, DefaultDriveSpeedMmPerSec)
	conf.ObservationTimeoutSec = orDefault(conf.ObservationTimeoutSec, DefaultObservationTimeoutSec)
	conf.LookAroundTimeoutSec = orDefault(conf.LookAroundTimeoutSec, DefaultLookAroundTimeoutSec)
	conf.StandoffDistanceMm = orDefault(conf.StandoffDistanceMm, DefaultStandoffDistanceMm)
	conf.PositionToleranceMm = orDefault(conf.PositionToleranceMm, DefaultPositionToleranceMm)
	conf.AngleToleranceDeg = orDefault(conf.AngleToleranceDeg, DefaultAngleToleranceDeg)
	return conf
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
