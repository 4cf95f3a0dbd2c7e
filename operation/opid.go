// Package operation tracks long running robot operations, such as a docking attempt,
// so they can be found and cancelled from outside the goroutine running them.
package operation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.viam.com/dock/logging"
)

type opidKeyType string

const opidKey = opidKeyType("opid")

// Operation is an operation happening on the robot.
type Operation struct {
	ID        uuid.UUID
	Method    string
	Arguments interface{}
	Started   time.Time

	myManager *Manager
	cancel    context.CancelFunc
	labels    []string
}

// Cancel cancels the context associated with an operation.
func (o *Operation) Cancel() {
	o.cancel()
}

// HasLabel returns true if this operation has a specific label.
func (o *Operation) HasLabel(label string) bool {
	o.myManager.lock.Lock()
	defer o.myManager.lock.Unlock()
	for _, l := range o.labels {
		if l == label {
			return true
		}
	}
	return false
}

// CancelOtherWithLabel will cancel all operations besides this one with this label.
// If no operation is set, it will do nothing.
func CancelOtherWithLabel(ctx context.Context, label string) {
	o := Get(ctx)
	if o == nil {
		return
	}
	for _, op := range o.myManager.All() {
		if op == o {
			continue
		}
		if op.HasLabel(label) {
			op.Cancel()
		}
	}

	o.myManager.lock.Lock()
	o.labels = append(o.labels, label)
	o.myManager.lock.Unlock()
}

// Manager holds the operations of a single robot session.
type Manager struct {
	ops    map[string]*Operation
	lock   sync.Mutex
	logger logging.Logger
}

// NewManager creates a new manager for holding Operations.
func NewManager(logger logging.Logger) *Manager {
	return &Manager{ops: map[string]*Operation{}, logger: logger}
}

func (m *Manager) remove(id uuid.UUID) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.ops, id.String())
}

func (m *Manager) add(op *Operation) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.ops[op.ID.String()] = op
}

// All returns all of the currently running operations.
func (m *Manager) All() []*Operation {
	m.lock.Lock()
	defer m.lock.Unlock()
	a := make([]*Operation, 0, len(m.ops))
	for _, o := range m.ops {
		a = append(a, o)
	}
	return a
}

// Find finds an op by id, could return nil.
func (m *Manager) Find(id uuid.UUID) *Operation {
	return m.FindString(id.String())
}

// FindString finds an op by id, could return nil.
func (m *Manager) FindString(id string) *Operation {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.ops[id]
}

// Create puts an operation on this context. Operations cannot be nested.
func (m *Manager) Create(ctx context.Context, method string, args interface{}) (context.Context, func()) {
	if ctx.Value(opidKey) != nil {
		panic("operations cannot be nested")
	}

	op := &Operation{
		ID:        uuid.New(),
		Method:    method,
		Arguments: args,
		Started:   time.Now(),
		myManager: m,
	}
	ctx = context.WithValue(ctx, opidKey, op)
	ctx, op.cancel = context.WithCancel(ctx)

	m.add(op)
	m.logger.Debugw("operation started", "id", op.ID.String(), "method", method)

	return ctx, func() {
		op.cancel()
		m.remove(op.ID)
		m.logger.Debugw("operation finished", "id", op.ID.String(), "method", method,
			"took", time.Since(op.Started))
	}
}

// Get returns the current Operation. This can be nil.
func Get(ctx context.Context) *Operation {
	o := ctx.Value(opidKey)
	if o == nil {
		return nil
	}
	return o.(*Operation)
}
