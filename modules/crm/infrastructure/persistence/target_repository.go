package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/target"
	"github.com/iota-uz/bankcrm/modules/crm/infrastructure/persistence/models"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/repo"
)

const (
	targetFindQuery = `
        SELECT
            tg.id,
            tg.name,
            tg.target_type,
            tg.period,
            tg.period_start,
            tg.period_end,
            tg.target_value,
            tg.achieved_value,
            tg.user_id,
            tg.org_unit_id,
            tg.is_active,
            tg.created_at,
            tg.updated_at
        FROM targets tg`

	targetInsertQuery = `
        INSERT INTO targets (
            name, target_type, period, period_start, period_end,
            target_value, achieved_value, user_id, org_unit_id, is_active,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING id`

	targetUpdateQuery = `
        UPDATE targets SET
            name = $1,
            target_type = $2,
            period = $3,
            period_start = $4,
            period_end = $5,
            target_value = $6,
            achieved_value = $7,
            user_id = $8,
            org_unit_id = $9,
            is_active = $10,
            updated_at = NOW()
        WHERE id = $11 AND updated_at = $12`

	targetDeleteQuery = `DELETE FROM targets WHERE id = $1`

	targetActiveForUserQuery = `
        SELECT
            tg.id,
            tg.name,
            tg.target_type,
            tg.period,
            tg.period_start,
            tg.period_end,
            tg.target_value,
            tg.achieved_value,
            tg.user_id,
            tg.org_unit_id,
            tg.is_active,
            tg.created_at,
            tg.updated_at
        FROM targets tg
        WHERE tg.user_id = $1
          AND tg.target_type = $2
          AND tg.is_active
          AND tg.period_start <= $3
          AND tg.period_end >= $3
        ORDER BY tg.id`

	achievementInsertQuery = `
        INSERT INTO target_achievements (
            target_id, amount, source_kind, source_id, description, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`

	achievementListQuery = `
        SELECT
            ta.id,
            ta.target_id,
            ta.amount,
            ta.source_kind,
            ta.source_id,
            ta.description,
            ta.created_at
        FROM target_achievements ta
        WHERE ta.target_id = $1
        ORDER BY ta.created_at`
)

type PgTargetRepository struct{}

func NewTargetRepository() target.Repository {
	return &PgTargetRepository{}
}

func (g *PgTargetRepository) buildFilters(params target.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if params.UserID != 0 {
		args = append(args, params.UserID)
		where = append(where, fmt.Sprintf("tg.user_id = $%d", len(args)))
	}
	if len(params.OrgUnitIDs) > 0 {
		args = append(args, params.OrgUnitIDs)
		where = append(where, fmt.Sprintf("tg.org_unit_id = ANY($%d)", len(args)))
	}
	if params.Type != "" {
		args = append(args, string(params.Type))
		where = append(where, fmt.Sprintf("tg.target_type = $%d", len(args)))
	}
	if params.ActiveOnly {
		where = append(where, "tg.is_active")
	}
	if params.CoversAt != nil {
		args = append(args, *params.CoversAt)
		where = append(where, fmt.Sprintf("tg.period_start <= $%d AND tg.period_end >= $%d", len(args), len(args)))
	}
	return where, args
}

func (g *PgTargetRepository) queryTargets(ctx context.Context, query string, args ...interface{}) ([]target.Target, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query targets")
	}
	defer rows.Close()

	var out []target.Target
	for rows.Next() {
		var m models.Target
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Type, &m.Period, &m.PeriodStart, &m.PeriodEnd,
			&m.TargetValue, &m.AchievedValue, &m.UserID, &m.OrgUnitID,
			&m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan target")
		}
		out = append(out, toDomainTarget(m))
	}
	return out, rows.Err()
}

func (g *PgTargetRepository) GetByID(ctx context.Context, id uint) (target.Target, error) {
	targets, err := g.queryTargets(ctx, targetFindQuery+" WHERE tg.id = $1", id)
	if err != nil {
		return target.Target{}, err
	}
	if len(targets) == 0 {
		return target.Target{}, target.ErrNotFound
	}
	return targets[0], nil
}

func (g *PgTargetRepository) List(ctx context.Context, params target.FindParams) ([]target.Target, error) {
	where, args := g.buildFilters(params)
	query := targetFindQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY tg.period_start DESC, tg.id " + repo.FormatLimitOffset(params.Limit, params.Offset)
	return g.queryTargets(ctx, query, args...)
}

func (g *PgTargetRepository) Create(ctx context.Context, data target.Target) (target.Target, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return target.Target{}, err
	}
	m := toDBTarget(data)
	var id uint
	err = tx.QueryRow(ctx, targetInsertQuery,
		m.Name, m.Type, m.Period, m.PeriodStart, m.PeriodEnd, m.TargetValue,
		m.AchievedValue, m.UserID, m.OrgUnitID, m.IsActive,
	).Scan(&id)
	if err != nil {
		return target.Target{}, errors.Wrap(err, "insert target")
	}
	return g.GetByID(ctx, id)
}

func (g *PgTargetRepository) Update(ctx context.Context, data target.Target) (target.Target, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return target.Target{}, err
	}
	m := toDBTarget(data)
	tag, err := tx.Exec(ctx, targetUpdateQuery,
		m.Name, m.Type, m.Period, m.PeriodStart, m.PeriodEnd, m.TargetValue,
		m.AchievedValue, m.UserID, m.OrgUnitID, m.IsActive, m.ID, m.UpdatedAt,
	)
	if err != nil {
		return target.Target{}, errors.Wrap(err, "update target")
	}
	if tag.RowsAffected() == 0 {
		if _, err := g.GetByID(ctx, m.ID); err != nil {
			return target.Target{}, err
		}
		return target.Target{}, ErrConcurrentModification
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgTargetRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, targetDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "delete target")
	}
	if tag.RowsAffected() == 0 {
		return target.ErrNotFound
	}
	return nil
}

func (g *PgTargetRepository) ListActiveForUser(ctx context.Context, userID uint, targetType target.Type, at time.Time) ([]target.Target, error) {
	return g.queryTargets(ctx, targetActiveForUserQuery, userID, string(targetType), at)
}

func (g *PgTargetRepository) CreateAchievement(ctx context.Context, a target.Achievement) (target.Achievement, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return target.Achievement{}, err
	}
	created := a
	err = tx.QueryRow(ctx, achievementInsertQuery,
		a.TargetID, a.Amount, a.SourceKind, a.SourceID,
		nullString(a.Description), a.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return target.Achievement{}, errors.Wrap(err, "insert achievement")
	}
	return created, nil
}

func (g *PgTargetRepository) ListAchievements(ctx context.Context, targetID uint) ([]target.Achievement, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, achievementListQuery, targetID)
	if err != nil {
		return nil, errors.Wrap(err, "query achievements")
	}
	defer rows.Close()

	var out []target.Achievement
	for rows.Next() {
		var m models.TargetAchievement
		if err := rows.Scan(&m.ID, &m.TargetID, &m.Amount, &m.SourceKind, &m.SourceID, &m.Description, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan achievement")
		}
		out = append(out, toDomainAchievement(m))
	}
	return out, rows.Err()
}
