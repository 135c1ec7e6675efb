package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/audit/domain/entities/auditlog"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/repo"
)

const (
	auditFindQuery = `
        SELECT
            a.id,
            a.actor_id,
            a.actor_name,
            a.action,
            a.entity_kind,
            a.entity_id,
            a.success,
            a.error,
            a.details,
            a.ip,
            a.user_agent,
            a.request_path,
            a.created_at
        FROM audit_entries a`

	auditCountQuery = `SELECT COUNT(a.id) FROM audit_entries a`

	auditInsertQuery = `
        INSERT INTO audit_entries (
            actor_id, actor_name, action, entity_kind, entity_id, success,
            error, details, ip, user_agent, request_path, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id`
)

// PgAuditLogRepository is append-only; entries are never updated or
// deleted through the application.
type PgAuditLogRepository struct{}

func NewAuditLogRepository() auditlog.Repository {
	return &PgAuditLogRepository{}
}

func (g *PgAuditLogRepository) buildFilters(params auditlog.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if params.ActorID != 0 {
		args = append(args, params.ActorID)
		where = append(where, fmt.Sprintf("a.actor_id = $%d", len(args)))
	}
	if params.Action != "" {
		args = append(args, params.Action)
		where = append(where, fmt.Sprintf("a.action = $%d", len(args)))
	}
	if params.EntityKind != "" {
		args = append(args, params.EntityKind)
		where = append(where, fmt.Sprintf("a.entity_kind = $%d", len(args)))
	}
	if params.EntityID != 0 {
		args = append(args, params.EntityID)
		where = append(where, fmt.Sprintf("a.entity_id = $%d", len(args)))
	}
	if params.After != nil {
		args = append(args, *params.After)
		where = append(where, fmt.Sprintf("a.created_at >= $%d", len(args)))
	}
	if params.Before != nil {
		args = append(args, *params.Before)
		where = append(where, fmt.Sprintf("a.created_at < $%d", len(args)))
	}
	return where, args
}

func (g *PgAuditLogRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]auditlog.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query audit entries")
	}
	defer rows.Close()

	var out []auditlog.Entry
	for rows.Next() {
		var e auditlog.Entry
		var details []byte
		if err := rows.Scan(
			&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.EntityKind,
			&e.EntityID, &e.Success, &e.Error, &details, &e.IP,
			&e.UserAgent, &e.RequestPath, &e.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan audit entry")
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, errors.Wrap(err, "decode audit details")
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (g *PgAuditLogRepository) GetByID(ctx context.Context, id uint) (auditlog.Entry, error) {
	entries, err := g.queryEntries(ctx, auditFindQuery+" WHERE a.id = $1", id)
	if err != nil {
		return auditlog.Entry{}, err
	}
	if len(entries) == 0 {
		return auditlog.Entry{}, auditlog.ErrNotFound
	}
	return entries[0], nil
}

func (g *PgAuditLogRepository) List(ctx context.Context, params auditlog.FindParams) ([]auditlog.Entry, error) {
	where, args := g.buildFilters(params)
	query := auditFindQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.created_at DESC, a.id DESC " + repo.FormatLimitOffset(params.Limit, params.Offset)
	return g.queryEntries(ctx, query, args...)
}

func (g *PgAuditLogRepository) Count(ctx context.Context, params auditlog.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := g.buildFilters(params)
	query := auditCountQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count audit entries")
	}
	return count, nil
}

func (g *PgAuditLogRepository) Create(ctx context.Context, e auditlog.Entry) (auditlog.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return auditlog.Entry{}, err
	}
	var details []byte
	if e.Details != nil {
		details, err = json.Marshal(e.Details)
		if err != nil {
			return auditlog.Entry{}, errors.Wrap(err, "encode audit details")
		}
	}
	created := e
	err = tx.QueryRow(ctx, auditInsertQuery,
		e.ActorID, e.ActorName, e.Action, e.EntityKind, e.EntityID,
		e.Success, e.Error, details, e.IP, e.UserAgent, e.RequestPath,
		e.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return auditlog.Entry{}, errors.Wrap(err, "insert audit entry")
	}
	return created, nil
}
