package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/task"
)

func newTask(due *time.Time) task.Task {
	return task.New("Call about mortgage docs", task.KindCall, task.PriorityHigh, 3, 2, 4, due)
}

func TestCompleteIsIdempotent(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	tk := newTask(nil)

	tk, err := tk.Complete(now)
	require.NoError(t, err)
	require.NotNil(t, tk.CompletedAt())
	first := *tk.CompletedAt()

	later := now.Add(2 * time.Hour)
	tk, err = tk.Complete(later)
	require.NoError(t, err)
	assert.Equal(t, first, *tk.CompletedAt())
	assert.Equal(t, task.StatusCompleted, tk.Status())
}

func TestCompleteCancelledFails(t *testing.T) {
	tk := newTask(nil)
	tk, err := tk.Cancel()
	require.NoError(t, err)

	_, err = tk.Complete(time.Now())
	require.ErrorIs(t, err, task.ErrInvalidTransition)
}

func TestCancelTerminalFails(t *testing.T) {
	tk := newTask(nil)
	tk, err := tk.Complete(time.Now())
	require.NoError(t, err)

	_, err = tk.Cancel()
	require.ErrorIs(t, err, task.ErrInvalidTransition)
}

func TestCheckOverdue(t *testing.T) {
	due := time.Date(2026, 4, 1, 17, 0, 0, 0, time.UTC)

	t.Run("past due flips", func(t *testing.T) {
		tk := newTask(&due)
		tk, changed := tk.CheckOverdue(due.Add(time.Minute))
		assert.True(t, changed)
		assert.Equal(t, task.StatusOverdue, tk.Status())

		// second check is a no-op
		tk, changed = tk.CheckOverdue(due.Add(time.Hour))
		assert.False(t, changed)
		assert.Equal(t, task.StatusOverdue, tk.Status())
	})

	t.Run("before due no change", func(t *testing.T) {
		tk := newTask(&due)
		tk, changed := tk.CheckOverdue(due.Add(-time.Minute))
		assert.False(t, changed)
		assert.Equal(t, task.StatusPending, tk.Status())
	})

	t.Run("no due date never overdue", func(t *testing.T) {
		tk := newTask(nil)
		_, changed := tk.CheckOverdue(time.Now())
		assert.False(t, changed)
	})

	t.Run("completed task stays completed", func(t *testing.T) {
		tk := newTask(&due)
		tk, err := tk.Complete(due.Add(-time.Hour))
		require.NoError(t, err)
		tk, changed := tk.CheckOverdue(due.Add(time.Hour))
		assert.False(t, changed)
		assert.Equal(t, task.StatusCompleted, tk.Status())
	})
}

func TestOverdueTaskCanStillBeCompleted(t *testing.T) {
	due := time.Date(2026, 4, 1, 17, 0, 0, 0, time.UTC)
	tk := newTask(&due)
	tk, _ = tk.CheckOverdue(due.Add(time.Hour))
	require.Equal(t, task.StatusOverdue, tk.Status())

	tk, err := tk.Complete(due.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, tk.Status())
}

func TestEscalateMovesTierUpOnly(t *testing.T) {
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	tk := newTask(nil)

	tk, err := tk.Escalate(10, now)
	require.NoError(t, err)
	assert.Equal(t, 1, tk.EscalationTier())
	assert.Equal(t, uint(10), tk.EscalatedToID())

	tk, err = tk.Escalate(20, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, tk.EscalationTier())
	assert.Equal(t, uint(20), tk.EscalatedToID())
}

func TestEscalateTerminalFails(t *testing.T) {
	tk := newTask(nil)
	tk, err := tk.Complete(time.Now())
	require.NoError(t, err)

	_, err = tk.Escalate(10, time.Now())
	require.ErrorIs(t, err, task.ErrInvalidTransition)
}

func TestStart(t *testing.T) {
	tk := newTask(nil)
	tk, err := tk.Start()
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, tk.Status())

	_, err = tk.Start()
	require.ErrorIs(t, err, task.ErrInvalidTransition)
}

func TestAccessRecordUsesAssignee(t *testing.T) {
	tk := newTask(nil)
	rec := tk.AccessRecord()
	assert.Equal(t, uint(3), rec.OwnerID)
	assert.Equal(t, uint(4), rec.OrgUnitID)
}
