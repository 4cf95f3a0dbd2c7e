package operation

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/dock/logging"
)

func TestDockingOperations(t *testing.T) {
	ctx := context.Background()
	m := NewManager(logging.NewTestLogger(t))
	test.That(t, Get(ctx), test.ShouldBeNil)
	test.That(t, m.All(), test.ShouldBeEmpty)

	t.Run("an attempt is tracked until it finishes", func(t *testing.T) {
		attemptCtx, done := m.Create(ctx, "docking::ReturnToCharger", nil)
		test.That(t, func() { m.Create(attemptCtx, "docking::LeaveCharger", nil) }, test.ShouldPanic)

		op := Get(attemptCtx)
		test.That(t, op, test.ShouldNotBeNil)
		test.That(t, op.Method, test.ShouldEqual, "docking::ReturnToCharger")
		test.That(t, m.All(), test.ShouldHaveLength, 1)
		test.That(t, m.Find(op.ID), test.ShouldEqual, op)
		test.That(t, m.FindString(op.ID.String()), test.ShouldEqual, op)

		done()
		test.That(t, attemptCtx.Err(), test.ShouldNotBeNil)
		test.That(t, m.Find(op.ID), test.ShouldBeNil)
	})

	t.Run("a new docking operation cancels the previous one", func(t *testing.T) {
		returnCtx, doneReturn := m.Create(ctx, "docking::ReturnToCharger", nil)
		defer doneReturn()
		CancelOtherWithLabel(returnCtx, "docking")

		statusCtx, doneStatus := m.Create(ctx, "status", nil)
		defer doneStatus()

		leaveCtx, doneLeave := m.Create(ctx, "docking::LeaveCharger", nil)
		defer doneLeave()
		CancelOtherWithLabel(leaveCtx, "docking")

		test.That(t, returnCtx.Err(), test.ShouldEqual, context.Canceled)
		test.That(t, statusCtx.Err(), test.ShouldBeNil)
		test.That(t, leaveCtx.Err(), test.ShouldBeNil)
		test.That(t, Get(leaveCtx).HasLabel("docking"), test.ShouldBeTrue)
		test.That(t, Get(statusCtx).HasLabel("docking"), test.ShouldBeFalse)

		// no operation on the context
		CancelOtherWithLabel(ctx, "docking")
		test.That(t, leaveCtx.Err(), test.ShouldBeNil)
	})

	t.Run("an attempt can be cancelled by id", func(t *testing.T) {
		attemptCtx, done := m.Create(ctx, "docking::ReturnToCharger", nil)
		defer done()

		m.Find(Get(attemptCtx).ID).Cancel()
		test.That(t, attemptCtx.Err(), test.ShouldEqual, context.Canceled)
	})
}
