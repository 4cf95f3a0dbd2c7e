package fake

import (
	"github.com/pkg/errors"

	"go.viam.com/dock/utils"
)

// Defaults for any zero-valued Config field.
const (
	defaultFieldOfViewDeg  = 60.
	defaultVisionRangeMm   = 1000.
	defaultDockRangeMm     = 150.
	defaultDockAngleDeg    = 20.
	defaultContactsClearMm = 60.
)

// Config describes a simulated robot and its charger in the world frame.
type Config struct {
	StartXMm        float64 `json:"start_x_mm"`
	StartYMm        float64 `json:"start_y_mm"`
	StartYawDeg     float64 `json:"start_yaw_deg"`
	StartOnCharger  bool    `json:"start_on_charger"`
	ChargerXMm      float64 `json:"charger_x_mm"`
	ChargerYMm      float64 `json:"charger_y_mm"`
	ChargerYawDeg   float64 `json:"charger_yaw_deg"`
	FieldOfViewDeg  float64 `json:"field_of_view_deg,omitempty"`
	VisionRangeMm   float64 `json:"vision_range_mm,omitempty"`
	DockRangeMm     float64 `json:"dock_range_mm,omitempty"`
	DockAngleDeg    float64 `json:"dock_angle_deg,omitempty"`
	ContactsClearMm float64 `json:"contacts_clear_mm,omitempty"`
	// TimeScale is the wall time spent per simulated second of motion; zero makes motion instant.
	TimeScale float64 `json:"time_scale,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.FieldOfViewDeg < 0 || conf.FieldOfViewDeg > 360 {
		return utils.NewConfigValidationError(path, errors.New(`"field_of_view_deg" must be in [0, 360]`))
	}
	for name, v := range map[string]float64{
		"vision_range_mm":   conf.VisionRangeMm,
		"dock_range_mm":     conf.DockRangeMm,
		"dock_angle_deg":    conf.DockAngleDeg,
		"contacts_clear_mm": conf.ContactsClearMm,
		"time_scale":        conf.TimeScale,
	} {
		if v < 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("%q cannot be negative", name))
		}
	}
	return nil
}

func (conf Config) withDefaults() Config {
	if conf.FieldOfViewDeg == 0 {
		conf.FieldOfViewDeg = defaultFieldOfViewDeg
	}
	if conf.VisionRangeMm == 0 {
		conf.VisionRangeMm = defaultVisionRangeMm
	}
	if conf.DockRangeMm == 0 {
		conf.DockRangeMm = defaultDockRangeMm
	}
	if conf.DockAngleDeg == 0 {
		conf.DockAngleDeg = defaultDockAngleDeg
	}
	if conf.ContactsClearMm == 0 {
		conf.ContactsClearMm = defaultContactsClearMm
	}
	return conf
}
