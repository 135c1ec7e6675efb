package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/task"
)

func seedTask(t *testing.T, f *fixture, assignedTo, unitID uint, due *time.Time) task.Task {
	t.Helper()
	tk, err := f.tasks.Create(context.Background(), task.New("KYC review", task.KindKYCReview, task.PriorityHigh, assignedTo, 2, unitID, due))
	require.NoError(t, err)
	return tk
}

func TestTaskService_GetByIDFlipsOverdueOnRead(t *testing.T) {
	f := newFixture(t, false)
	due := time.Now().Add(-time.Hour)
	tk := seedTask(t, f, 10, 4, &due)
	ctx := ctxAs(asUser(10, user.LevelIndividual, 4))

	got, err := f.taskSvc.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.Equal(t, task.StatusOverdue, got.Status())

	stored, err := f.tasks.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.Equal(t, task.StatusOverdue, stored.Status())
}

func TestTaskService_RunOverdueSweep(t *testing.T) {
	f := newFixture(t, false)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	overdueTask := seedTask(t, f, 10, 4, &past)
	onTime := seedTask(t, f, 10, 4, &future)
	noDue := seedTask(t, f, 10, 4, nil)

	changed, err := f.taskSvc.RunOverdueSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, _ := f.tasks.GetByID(context.Background(), overdueTask.ID())
	assert.Equal(t, task.StatusOverdue, got.Status())
	got, _ = f.tasks.GetByID(context.Background(), onTime.ID())
	assert.Equal(t, task.StatusPending, got.Status())
	got, _ = f.tasks.GetByID(context.Background(), noDue.ID())
	assert.Equal(t, task.StatusPending, got.Status())

	// sweep again: nothing left to flip
	changed, err = f.taskSvc.RunOverdueSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestTaskService_CompleteIsIdempotentThroughService(t *testing.T) {
	f := newFixture(t, false)
	tk := seedTask(t, f, 10, 4, nil)
	ctx := ctxAs(asUser(10, user.LevelIndividual, 4))

	done, err := f.taskSvc.Complete(ctx, tk.ID())
	require.NoError(t, err)
	first := *done.CompletedAt()

	done, err = f.taskSvc.Complete(ctx, tk.ID())
	require.NoError(t, err)
	assert.Equal(t, first, *done.CompletedAt())
}

func TestTaskService_CancelledTaskCannotComplete(t *testing.T) {
	f := newFixture(t, false)
	tk := seedTask(t, f, 10, 4, nil)
	ctx := ctxAs(asUser(10, user.LevelIndividual, 4))

	_, err := f.taskSvc.Cancel(ctx, tk.ID())
	require.NoError(t, err)

	_, err = f.taskSvc.Complete(ctx, tk.ID())
	require.ErrorIs(t, err, task.ErrInvalidTransition)
}

func TestTaskService_EscalateNeedsApproveCapability(t *testing.T) {
	f := newFixture(t, false)
	tk := seedTask(t, f, 10, 4, nil)

	_, err := f.taskSvc.Escalate(ctxAs(asUser(10, user.LevelIndividual, 4)), tk.ID(), 2)
	require.ErrorIs(t, err, ErrForbidden)

	escalated, err := f.taskSvc.Escalate(ctxAs(asUser(2, user.LevelBranch, 4)), tk.ID(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, escalated.EscalationTier())
	assert.Equal(t, uint(2), escalated.EscalatedToID())

	require.Len(t, f.auditEntries.entries, 1)
	assert.Equal(t, "task.escalate", f.auditEntries.entries[0].Action)
}

func TestTaskService_ListUsesUnitMemberScope(t *testing.T) {
	f := newFixture(t, false)
	seedTask(t, f, 10, 4, nil)
	seedTask(t, f, 11, 5, nil)

	out, err := f.taskSvc.List(ctxAs(asUser(2, user.LevelBranch, 4)), task.FindParams{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, uint(10), out[0].AssignedToID())

	out, err = f.taskSvc.List(ctxAs(asUser(9, user.LevelRegional, 2)), task.FindParams{})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
