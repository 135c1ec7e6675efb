package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	auditservices "github.com/iota-uz/bankcrm/modules/audit/services"
	"github.com/iota-uz/bankcrm/modules/core/access"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/task"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/eventbus"
)

const overdueSweepBatch = 500

type TaskService struct {
	repo      task.Repository
	units     TreeProvider
	audit     *auditservices.AuditService
	publisher eventbus.EventBus
}

func NewTaskService(repo task.Repository, units TreeProvider, audit *auditservices.AuditService, publisher eventbus.EventBus) *TaskService {
	return &TaskService{repo: repo, units: units, audit: audit, publisher: publisher}
}

type TaskEscalatedEvent struct {
	TaskID uint
	ToID   uint
	Tier   int
}

// GetByID returns the task, flipping it to overdue on read when its due
// date has passed. Overdue is detected lazily; nothing mutates tasks the
// caller never looks at except the explicit sweep.
func (s *TaskService) GetByID(ctx context.Context, id uint) (task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapView, t.AccessRecord()); err != nil {
		return task.Task{}, err
	}
	if flipped, changed := t.CheckOverdue(time.Now()); changed {
		return s.repo.Update(ctx, flipped)
	}
	return t, nil
}

func (s *TaskService) List(ctx context.Context, params task.FindParams) ([]task.Task, error) {
	scope, err := scopeFn(ctx, s.units.Tree(), access.KindTask)
	if err != nil {
		return nil, err
	}
	params.Scope = scope
	return s.repo.List(ctx, params)
}

func (s *TaskService) Count(ctx context.Context, params task.FindParams) (int64, error) {
	scope, err := scopeFn(ctx, s.units.Tree(), access.KindTask)
	if err != nil {
		return 0, err
	}
	params.Scope = scope
	return s.repo.Count(ctx, params)
}

func (s *TaskService) Create(ctx context.Context, t task.Task) (task.Task, error) {
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, t.AccessRecord()); err != nil {
		return task.Task{}, err
	}
	return s.repo.Create(ctx, t)
}

func (s *TaskService) Update(ctx context.Context, t task.Task) (task.Task, error) {
	current, err := s.repo.GetByID(ctx, t.ID())
	if err != nil {
		return task.Task{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, current.AccessRecord()); err != nil {
		return task.Task{}, err
	}
	return s.repo.Update(ctx, t)
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapDelete, t.AccessRecord()); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) Start(ctx context.Context, id uint) (task.Task, error) {
	return s.transition(ctx, id, func(t task.Task) (task.Task, error) {
		return t.Start()
	})
}

func (s *TaskService) Complete(ctx context.Context, id uint) (task.Task, error) {
	return s.transition(ctx, id, func(t task.Task) (task.Task, error) {
		return t.Complete(time.Now())
	})
}

func (s *TaskService) Cancel(ctx context.Context, id uint) (task.Task, error) {
	return s.transition(ctx, id, func(t task.Task) (task.Task, error) {
		return t.Cancel()
	})
}

func (s *TaskService) transition(ctx context.Context, id uint, fn func(task.Task) (task.Task, error)) (task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, t.AccessRecord()); err != nil {
		return task.Task{}, err
	}
	moved, err := fn(t)
	if err != nil {
		return task.Task{}, err
	}
	return s.repo.Update(ctx, moved)
}

// Escalate bumps the task a tier and hands it to another user. Escalation
// requires approve rights on the task and is audited.
func (s *TaskService) Escalate(ctx context.Context, id, toID uint) (task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapApprove, t.AccessRecord()); err != nil {
		return task.Task{}, err
	}
	details := map[string]any{"to": toID}
	var updated task.Task
	err = s.audit.Wrapped(ctx, "task.escalate", "task", id, details, func(ctx context.Context) error {
		escalated, err := t.Escalate(toID, time.Now())
		if err != nil {
			return err
		}
		updated, err = s.repo.Update(ctx, escalated)
		return err
	})
	if err != nil {
		return task.Task{}, err
	}
	s.publisher.Publish(TaskEscalatedEvent{TaskID: id, ToID: toID, Tier: updated.EscalationTier()})
	return updated, nil
}

// RunOverdueSweep flips every due pending or in-progress task to overdue
// and returns how many changed. The sweep runs without a subject; it is
// invoked by the scheduler or the admin CLI, not by end users.
func (s *TaskService) RunOverdueSweep(ctx context.Context) (int, error) {
	now := time.Now()
	due, err := s.repo.ListDue(ctx, now, overdueSweepBatch)
	if err != nil {
		return 0, errors.Wrap(err, "list due tasks")
	}
	changed := 0
	for _, t := range due {
		flipped, ok := t.CheckOverdue(now)
		if !ok {
			continue
		}
		if _, err := s.repo.Update(ctx, flipped); err != nil {
			return changed, errors.Wrap(err, "mark task overdue")
		}
		changed++
	}
	if changed > 0 {
		composables.UseLogger(ctx).WithField("count", changed).Info("marked tasks overdue")
	}
	return changed, nil
}
