package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/task"
	"github.com/iota-uz/bankcrm/modules/crm/infrastructure/persistence/models"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/repo"
)

const (
	taskFindQuery = `
        SELECT
            t.id,
            t.title,
            t.description,
            t.kind,
            t.status,
            t.priority,
            t.customer_id,
            t.opportunity_id,
            t.assigned_to_id,
            t.assigned_by_id,
            t.org_unit_id,
            t.due_date,
            t.completed_at,
            t.escalation_tier,
            t.escalated_to_id,
            t.escalated_at,
            t.created_at,
            t.updated_at
        FROM tasks t`

	taskCountQuery = `SELECT COUNT(t.id) FROM tasks t`

	taskInsertQuery = `
        INSERT INTO tasks (
            title, description, kind, status, priority, customer_id,
            opportunity_id, assigned_to_id, assigned_by_id, org_unit_id,
            due_date, completed_at, escalation_tier, escalated_to_id,
            escalated_at, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
            $15, NOW(), NOW()
        )
        RETURNING id`

	taskUpdateQuery = `
        UPDATE tasks SET
            title = $1,
            description = $2,
            kind = $3,
            status = $4,
            priority = $5,
            customer_id = $6,
            opportunity_id = $7,
            assigned_to_id = $8,
            assigned_by_id = $9,
            org_unit_id = $10,
            due_date = $11,
            completed_at = $12,
            escalation_tier = $13,
            escalated_to_id = $14,
            escalated_at = $15,
            updated_at = NOW()
        WHERE id = $16 AND updated_at = $17`

	taskDeleteQuery = `DELETE FROM tasks WHERE id = $1`

	taskListDueQuery = `
        SELECT
            t.id,
            t.title,
            t.description,
            t.kind,
            t.status,
            t.priority,
            t.customer_id,
            t.opportunity_id,
            t.assigned_to_id,
            t.assigned_by_id,
            t.org_unit_id,
            t.due_date,
            t.completed_at,
            t.escalation_tier,
            t.escalated_to_id,
            t.escalated_at,
            t.created_at,
            t.updated_at
        FROM tasks t
        WHERE t.status IN ('pending', 'in_progress') AND t.due_date < $1
        ORDER BY t.due_date
        LIMIT $2`
)

type PgTaskRepository struct{}

func NewTaskRepository() task.Repository {
	return &PgTaskRepository{}
}

func (g *PgTaskRepository) buildFilters(params task.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if clause, newArgs := scopeFilter(params.Scope, "t.assigned_to_id", "t.org_unit_id", args); clause != "" {
		where = append(where, clause)
		args = newArgs
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if params.Priority != "" {
		args = append(args, string(params.Priority))
		where = append(where, fmt.Sprintf("t.priority = $%d", len(args)))
	}
	if params.AssignedToID != 0 {
		args = append(args, params.AssignedToID)
		where = append(where, fmt.Sprintf("t.assigned_to_id = $%d", len(args)))
	}
	if params.CustomerID != 0 {
		args = append(args, params.CustomerID)
		where = append(where, fmt.Sprintf("t.customer_id = $%d", len(args)))
	}
	if params.DueBefore != nil {
		args = append(args, *params.DueBefore)
		where = append(where, fmt.Sprintf("t.due_date < $%d", len(args)))
	}
	return where, args
}

func (g *PgTaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query tasks")
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		var m models.Task
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Description, &m.Kind, &m.Status, &m.Priority,
			&m.CustomerID, &m.OpportunityID, &m.AssignedToID, &m.AssignedByID,
			&m.OrgUnitID, &m.DueDate, &m.CompletedAt, &m.EscalationTier,
			&m.EscalatedToID, &m.EscalatedAt, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan task")
		}
		out = append(out, toDomainTask(m))
	}
	return out, rows.Err()
}

func (g *PgTaskRepository) GetByID(ctx context.Context, id uint) (task.Task, error) {
	tasks, err := g.queryTasks(ctx, taskFindQuery+" WHERE t.id = $1", id)
	if err != nil {
		return task.Task{}, err
	}
	if len(tasks) == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return tasks[0], nil
}

func (g *PgTaskRepository) List(ctx context.Context, params task.FindParams) ([]task.Task, error) {
	where, args := g.buildFilters(params)
	query := taskFindQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.due_date NULLS LAST, t.id " + repo.FormatLimitOffset(params.Limit, params.Offset)
	return g.queryTasks(ctx, query, args...)
}

func (g *PgTaskRepository) Count(ctx context.Context, params task.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := g.buildFilters(params)
	query := taskCountQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count tasks")
	}
	return count, nil
}

func (g *PgTaskRepository) Create(ctx context.Context, data task.Task) (task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return task.Task{}, err
	}
	m := toDBTask(data)
	var id uint
	err = tx.QueryRow(ctx, taskInsertQuery,
		m.Title, m.Description, m.Kind, m.Status, m.Priority, m.CustomerID,
		m.OpportunityID, m.AssignedToID, m.AssignedByID, m.OrgUnitID,
		m.DueDate, m.CompletedAt, m.EscalationTier, m.EscalatedToID,
		m.EscalatedAt,
	).Scan(&id)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "insert task")
	}
	return g.GetByID(ctx, id)
}

func (g *PgTaskRepository) Update(ctx context.Context, data task.Task) (task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return task.Task{}, err
	}
	m := toDBTask(data)
	tag, err := tx.Exec(ctx, taskUpdateQuery,
		m.Title, m.Description, m.Kind, m.Status, m.Priority, m.CustomerID,
		m.OpportunityID, m.AssignedToID, m.AssignedByID, m.OrgUnitID,
		m.DueDate, m.CompletedAt, m.EscalationTier, m.EscalatedToID,
		m.EscalatedAt, m.ID, m.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "update task")
	}
	if tag.RowsAffected() == 0 {
		if _, err := g.GetByID(ctx, m.ID); err != nil {
			return task.Task{}, err
		}
		return task.Task{}, ErrConcurrentModification
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgTaskRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, taskDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "delete task")
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (g *PgTaskRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]task.Task, error) {
	return g.queryTasks(ctx, taskListDueQuery, before, limit)
}
