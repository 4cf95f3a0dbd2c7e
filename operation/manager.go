package operation

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/dock/logging"
)

// ErrSuperseded is the cancellation cause of a motion that was interrupted by a newer one.
var ErrSuperseded = errors.New("motion superseded")

// SingleOperationManager keeps at most one robot motion in flight. Starting a motion
// interrupts the one in flight, unless the new motion was started from inside it.
type SingleOperationManager struct {
	mu      sync.Mutex
	current *motion
	logger  logging.Logger
}

// NewSingleOperationManager returns a manager that logs each interrupted motion.
func NewSingleOperationManager(logger logging.Logger) *SingleOperationManager {
	return &SingleOperationManager{logger: logger}
}

type motionCtxKey byte

const motionCtxKeyCurrent = motionCtxKey(iota)

type motion struct {
	name    string
	started time.Time
	cancel  context.CancelCauseFunc
}

// New starts the named motion and returns its context along with a func to call when it is
// done. A motion already in flight is cancelled with a cause wrapping ErrSuperseded.
func (sm *SingleOperationManager) New(ctx context.Context, name string) (context.Context, func()) {
	if ctx.Value(motionCtxKeyCurrent) != nil {
		return ctx, func() {}
	}

	m := &motion{name: name, started: time.Now()}
	ctx, m.cancel = context.WithCancelCause(context.WithValue(ctx, motionCtxKeyCurrent, m))

	sm.mu.Lock()
	if prev := sm.current; prev != nil {
		sm.logger.Debugw("interrupting motion", "motion", prev.name, "by", name, "ran", time.Since(prev.started))
		prev.cancel(errors.Wrapf(ErrSuperseded, "%s interrupted by %s", prev.name, name))
	}
	sm.current = m
	sm.mu.Unlock()

	return ctx, func() {
		m.cancel(nil)
		sm.mu.Lock()
		if sm.current == m {
			sm.current = nil
		}
		sm.mu.Unlock()
	}
}

// Current returns the name of the motion in flight, or "" when the robot is idle.
func (sm *SingleOperationManager) Current() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.current == nil {
		return ""
	}
	return sm.current.name
}

// NewTimedWaitOp runs the named motion for dur. It returns nil if dur elapsed, otherwise the
// reason the motion was cut short.
func (sm *SingleOperationManager) NewTimedWaitOp(ctx context.Context, name string, dur time.Duration) error {
	ctx, finish := sm.New(ctx, name)
	defer finish()

	if !utils.SelectContextOrWait(ctx, dur) {
		return context.Cause(ctx)
	}
	return nil
}
