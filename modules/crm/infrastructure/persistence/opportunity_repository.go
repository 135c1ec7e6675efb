package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/opportunity"
	"github.com/iota-uz/bankcrm/modules/crm/infrastructure/persistence/models"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/repo"
)

const (
	opportunityFindQuery = `
        SELECT
            o.id,
            o.name,
            o.customer_id,
            o.product_line,
            o.stage,
            o.amount,
            o.probability,
            o.expected_revenue,
            o.actual_revenue,
            o.expected_close_date,
            o.actual_close_date,
            o.owner_id,
            o.org_unit_id,
            o.is_active,
            o.won_date,
            o.lost_date,
            o.lost_reason,
            o.lost_notes,
            o.competitor_name,
            o.created_at,
            o.updated_at
        FROM opportunities o`

	opportunityCountQuery = `SELECT COUNT(o.id) FROM opportunities o`

	opportunityInsertQuery = `
        INSERT INTO opportunities (
            name, customer_id, product_line, stage, amount, probability,
            expected_revenue, actual_revenue, expected_close_date,
            actual_close_date, owner_id, org_unit_id, is_active, won_date,
            lost_date, lost_reason, lost_notes, competitor_name,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
            $15, $16, $17, $18, NOW(), NOW()
        )
        RETURNING id`

	opportunityUpdateQuery = `
        UPDATE opportunities SET
            name = $1,
            customer_id = $2,
            product_line = $3,
            stage = $4,
            amount = $5,
            probability = $6,
            expected_revenue = $7,
            actual_revenue = $8,
            expected_close_date = $9,
            actual_close_date = $10,
            owner_id = $11,
            org_unit_id = $12,
            is_active = $13,
            won_date = $14,
            lost_date = $15,
            lost_reason = $16,
            lost_notes = $17,
            competitor_name = $18,
            updated_at = NOW()
        WHERE id = $19 AND updated_at = $20`

	opportunityDeleteQuery = `DELETE FROM opportunities WHERE id = $1`

	opportunityHasActiveQuery = `SELECT 1 FROM opportunities WHERE customer_id = $1 AND is_active LIMIT 1`
)

type PgOpportunityRepository struct{}

func NewOpportunityRepository() opportunity.Repository {
	return &PgOpportunityRepository{}
}

func (g *PgOpportunityRepository) buildFilters(params opportunity.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if clause, newArgs := scopeFilter(params.Scope, "o.owner_id", "o.org_unit_id", args); clause != "" {
		where = append(where, clause)
		args = newArgs
	}
	if params.CustomerID != 0 {
		args = append(args, params.CustomerID)
		where = append(where, fmt.Sprintf("o.customer_id = $%d", len(args)))
	}
	if params.Stage != "" {
		args = append(args, string(params.Stage))
		where = append(where, fmt.Sprintf("o.stage = $%d", len(args)))
	}
	if params.ProductLine != "" {
		args = append(args, string(params.ProductLine))
		where = append(where, fmt.Sprintf("o.product_line = $%d", len(args)))
	}
	if params.OwnerID != 0 {
		args = append(args, params.OwnerID)
		where = append(where, fmt.Sprintf("o.owner_id = $%d", len(args)))
	}
	if params.ActiveOnly {
		where = append(where, "o.is_active")
	}
	return where, args
}

func (g *PgOpportunityRepository) queryOpportunities(ctx context.Context, query string, args ...interface{}) ([]opportunity.Opportunity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query opportunities")
	}
	defer rows.Close()

	var out []opportunity.Opportunity
	for rows.Next() {
		var m models.Opportunity
		if err := rows.Scan(
			&m.ID, &m.Name, &m.CustomerID, &m.ProductLine, &m.Stage,
			&m.Amount, &m.Probability, &m.ExpectedRevenue, &m.ActualRevenue,
			&m.ExpectedClose, &m.ActualClose, &m.OwnerID, &m.OrgUnitID,
			&m.IsActive, &m.WonDate, &m.LostDate, &m.LostReason,
			&m.LostNotes, &m.CompetitorName, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan opportunity")
		}
		out = append(out, toDomainOpportunity(m))
	}
	return out, rows.Err()
}

func (g *PgOpportunityRepository) GetByID(ctx context.Context, id uint) (opportunity.Opportunity, error) {
	opportunities, err := g.queryOpportunities(ctx, opportunityFindQuery+" WHERE o.id = $1", id)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	if len(opportunities) == 0 {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	return opportunities[0], nil
}

func (g *PgOpportunityRepository) List(ctx context.Context, params opportunity.FindParams) ([]opportunity.Opportunity, error) {
	where, args := g.buildFilters(params)
	query := opportunityFindQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.expected_close_date NULLS LAST, o.id " + repo.FormatLimitOffset(params.Limit, params.Offset)
	return g.queryOpportunities(ctx, query, args...)
}

func (g *PgOpportunityRepository) Count(ctx context.Context, params opportunity.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := g.buildFilters(params)
	query := opportunityCountQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count opportunities")
	}
	return count, nil
}

func (g *PgOpportunityRepository) Create(ctx context.Context, data opportunity.Opportunity) (opportunity.Opportunity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	m := toDBOpportunity(data)
	var id uint
	err = tx.QueryRow(ctx, opportunityInsertQuery,
		m.Name, m.CustomerID, m.ProductLine, m.Stage, m.Amount,
		m.Probability, m.ExpectedRevenue, m.ActualRevenue, m.ExpectedClose,
		m.ActualClose, m.OwnerID, m.OrgUnitID, m.IsActive, m.WonDate,
		m.LostDate, m.LostReason, m.LostNotes, m.CompetitorName,
	).Scan(&id)
	if err != nil {
		return opportunity.Opportunity{}, errors.Wrap(err, "insert opportunity")
	}
	return g.GetByID(ctx, id)
}

func (g *PgOpportunityRepository) Update(ctx context.Context, data opportunity.Opportunity) (opportunity.Opportunity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	m := toDBOpportunity(data)
	tag, err := tx.Exec(ctx, opportunityUpdateQuery,
		m.Name, m.CustomerID, m.ProductLine, m.Stage, m.Amount,
		m.Probability, m.ExpectedRevenue, m.ActualRevenue, m.ExpectedClose,
		m.ActualClose, m.OwnerID, m.OrgUnitID, m.IsActive, m.WonDate,
		m.LostDate, m.LostReason, m.LostNotes, m.CompetitorName,
		m.ID, m.UpdatedAt,
	)
	if err != nil {
		return opportunity.Opportunity{}, errors.Wrap(err, "update opportunity")
	}
	if tag.RowsAffected() == 0 {
		if _, err := g.GetByID(ctx, m.ID); err != nil {
			return opportunity.Opportunity{}, err
		}
		return opportunity.Opportunity{}, ErrConcurrentModification
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgOpportunityRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, opportunityDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "delete opportunity")
	}
	if tag.RowsAffected() == 0 {
		return opportunity.ErrNotFound
	}
	return nil
}

func (g *PgOpportunityRepository) HasActiveForCustomer(ctx context.Context, customerID uint) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	rows, err := tx.Query(ctx, opportunityHasActiveQuery, customerID)
	if err != nil {
		return false, errors.Wrap(err, "check active opportunities")
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}
