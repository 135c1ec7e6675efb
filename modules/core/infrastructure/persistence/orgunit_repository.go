package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
	"github.com/iota-uz/bankcrm/modules/core/infrastructure/persistence/models"
	"github.com/iota-uz/bankcrm/pkg/composables"
)

const (
	orgUnitFindQuery = `
        SELECT
            ou.id,
            ou.name,
            ou.kind,
            ou.code,
            ou.parent_id,
            ou.is_active,
            ou.created_at
        FROM org_units ou`

	orgUnitInsertQuery = `
        INSERT INTO org_units (name, kind, code, parent_id, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id`
)

type PgOrgUnitRepository struct{}

func NewOrgUnitRepository() orgunit.Repository {
	return &PgOrgUnitRepository{}
}

func (g *PgOrgUnitRepository) queryUnits(ctx context.Context, query string, args ...interface{}) ([]orgunit.OrgUnit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query org units")
	}
	defer rows.Close()

	var out []orgunit.OrgUnit
	for rows.Next() {
		var m models.OrgUnit
		if err := rows.Scan(&m.ID, &m.Name, &m.Kind, &m.Code, &m.ParentID, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan org unit")
		}
		out = append(out, toDomainOrgUnit(m))
	}
	return out, rows.Err()
}

func (g *PgOrgUnitRepository) GetAll(ctx context.Context) ([]orgunit.OrgUnit, error) {
	return g.queryUnits(ctx, orgUnitFindQuery+" ORDER BY ou.id")
}

func (g *PgOrgUnitRepository) GetByID(ctx context.Context, id uint) (orgunit.OrgUnit, error) {
	units, err := g.queryUnits(ctx, orgUnitFindQuery+" WHERE ou.id = $1", id)
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	if len(units) == 0 {
		return orgunit.OrgUnit{}, orgunit.ErrNotFound
	}
	return units[0], nil
}

func (g *PgOrgUnitRepository) Create(ctx context.Context, data orgunit.OrgUnit) (orgunit.OrgUnit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	m := toDBOrgUnit(data)
	var id uint
	err = tx.QueryRow(ctx, orgUnitInsertQuery, m.Name, m.Kind, m.Code, m.ParentID, m.IsActive).Scan(&id)
	if err != nil {
		return orgunit.OrgUnit{}, errors.Wrap(err, "insert org unit")
	}
	return g.GetByID(ctx, id)
}
