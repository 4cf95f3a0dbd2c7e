package docking

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/dock/referenceframe"
)

// Snapshot pairs where the robot was with where it believed the charger to be at the same instant.
type Snapshot struct {
	Robot   *referenceframe.PoseInFrame
	Charger *referenceframe.PoseInFrame
	Taken   time.Time
}

// ChargerMemory holds what the robot remembers about its charger. All methods are safe for
// concurrent use; each call observes or produces a consistent state.
type ChargerMemory struct {
	mu           sync.Mutex
	posTolMm     float64
	angleTolDeg  float64
	charging     *Snapshot
	docking      *Snapshot
	lastCharger  *referenceframe.PoseInFrame
	possibleDock *referenceframe.PoseInFrame
}

// NewChargerMemory returns an empty memory that treats charger poses within the given
// tolerances as the same charger location.
func NewChargerMemory(posTolMm, angleTolDeg float64) *ChargerMemory {
	return &ChargerMemory{posTolMm: posTolMm, angleTolDeg: angleTolDeg}
}

func newSnapshot(robotPose, chargerPose *referenceframe.PoseInFrame) (*Snapshot, error) {
	if robotPose == nil || chargerPose == nil {
		return nil, errors.New("snapshot requires both a robot pose and a charger pose")
	}
	if robotPose.Parent() != chargerPose.Parent() {
		return nil, errors.Wrap(
			referenceframe.NewFrameMismatchError(robotPose.Parent(), chargerPose.Parent()),
			"cannot pair robot and charger poses")
	}
	return &Snapshot{Robot: robotPose, Charger: chargerPose, Taken: time.Now()}, nil
}

// RecordChargingSnapshot remembers the poses taken while sitting on the charger.
func (m *ChargerMemory) RecordChargingSnapshot(robotPose, chargerPose *referenceframe.PoseInFrame) error {
	snap, err := newSnapshot(robotPose, chargerPose)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charging = snap
	m.lastCharger = chargerPose
	return nil
}

// RecordDockingSnapshot remembers the poses taken when the robot was aligned to back onto
// the charger. It replaces any previous docking snapshot.
func (m *ChargerMemory) RecordDockingSnapshot(robotPose, chargerPose *referenceframe.PoseInFrame) error {
	snap, err := newSnapshot(robotPose, chargerPose)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docking = snap
	m.lastCharger = chargerPose
	return nil
}

// RecordChargerObservation updates the last known charger pose.
func (m *ChargerMemory) RecordChargerObservation(chargerPose *referenceframe.PoseInFrame) {
	if chargerPose == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCharger = chargerPose
}

// ComputePossibleDockingPose estimates where the robot should stand to dock, given where the
// charger is now. The stored alignment pose is shifted by however far the charger estimate has
// drifted since the docking snapshot was taken. The result is also retained and available from
// PossibleDockingPose.
func (m *ChargerMemory) ComputePossibleDockingPose(
	currentCharger *referenceframe.PoseInFrame,
) (*referenceframe.PoseInFrame, error) {
	if currentCharger == nil {
		return nil, errors.New("current charger pose is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docking == nil {
		return nil, ErrNoDockingSnapshot
	}
	drift, err := referenceframe.Subtract(m.docking.Charger, currentCharger)
	if err != nil {
		return nil, errors.Wrap(err, "charger has moved to a different origin since docking")
	}
	m.possibleDock = referenceframe.Translate(m.docking.Robot, drift)
	return m.possibleDock, nil
}

// KnowsChargerLocation returns whether chargerPose can be trusted from robotPose: it must exist,
// be in the robot's current origin, and agree with the last known charger pose if there is one.
func (m *ChargerMemory) KnowsChargerLocation(robotPose, chargerPose *referenceframe.PoseInFrame) bool {
	if robotPose == nil || chargerPose == nil || robotPose.Parent() != chargerPose.Parent() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastCharger == nil {
		return true
	}
	return referenceframe.IsComparable(chargerPose, m.lastCharger, m.posTolMm, m.angleTolDeg)
}

// ChargingSnapshot returns the last charging snapshot, or nil.
func (m *ChargerMemory) ChargingSnapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.charging
}

// DockingSnapshot returns the last docking snapshot, or nil.
func (m *ChargerMemory) DockingSnapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docking
}

// LastChargerPose returns the most recent charger pose recorded, or nil.
func (m *ChargerMemory) LastChargerPose() *referenceframe.PoseInFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCharger
}

// PossibleDockingPose returns the result of the last successful ComputePossibleDockingPose, or nil.
func (m *ChargerMemory) PossibleDockingPose() *referenceframe.PoseInFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.possibleDock
}

// Reset forgets everything.
func (m *ChargerMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charging = nil
	m.docking = nil
	m.lastCharger = nil
	m.possibleDock = nil
}
