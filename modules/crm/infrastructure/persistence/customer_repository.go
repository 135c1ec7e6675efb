package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
	"github.com/iota-uz/bankcrm/modules/crm/infrastructure/persistence/models"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/repo"
)

// ErrConcurrentModification is returned when an update lost the race
// against a concurrent writer; the caller should reload and retry.
var ErrConcurrentModification = errors.New("record was modified concurrently")

const (
	customerFindQuery = `
        SELECT
            c.id,
            c.first_name,
            c.last_name,
            c.company_name,
            c.email,
            c.phone,
            c.mobile,
            c.stage,
            c.segment,
            c.qualification_score,
            c.estimated_assets,
            c.credit_score,
            c.high_net_worth,
            c.account_number,
            c.owner_id,
            c.org_unit_id,
            c.source,
            c.suspect_date,
            c.prospect_date,
            c.lead_date,
            c.customer_date,
            c.last_contact_date,
            c.is_active,
            c.do_not_contact,
            c.kyc_status,
            c.created_at,
            c.updated_at
        FROM customers c`

	customerCountQuery = `SELECT COUNT(c.id) FROM customers c`

	customerInsertQuery = `
        INSERT INTO customers (
            first_name, last_name, company_name, email, phone, mobile,
            stage, segment, qualification_score, estimated_assets,
            credit_score, high_net_worth, account_number, owner_id,
            org_unit_id, source, suspect_date, prospect_date, lead_date,
            customer_date, last_contact_date, is_active, do_not_contact,
            kyc_status, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
            $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, NOW(), NOW()
        )
        RETURNING id`

	customerUpdateQuery = `
        UPDATE customers SET
            first_name = $1,
            last_name = $2,
            company_name = $3,
            email = $4,
            phone = $5,
            mobile = $6,
            stage = $7,
            segment = $8,
            qualification_score = $9,
            estimated_assets = $10,
            credit_score = $11,
            high_net_worth = $12,
            account_number = $13,
            owner_id = $14,
            org_unit_id = $15,
            source = $16,
            suspect_date = $17,
            prospect_date = $18,
            lead_date = $19,
            customer_date = $20,
            last_contact_date = $21,
            is_active = $22,
            do_not_contact = $23,
            kyc_status = $24,
            updated_at = NOW()
        WHERE id = $25 AND updated_at = $26`

	customerDeleteQuery = `DELETE FROM customers WHERE id = $1`
)

type PgCustomerRepository struct{}

func NewCustomerRepository() customer.Repository {
	return &PgCustomerRepository{}
}

func (g *PgCustomerRepository) buildFilters(params customer.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if clause, newArgs := scopeFilter(params.Scope, "c.owner_id", "c.org_unit_id", args); clause != "" {
		where = append(where, clause)
		args = newArgs
	}
	if params.Stage != "" {
		args = append(args, string(params.Stage))
		where = append(where, fmt.Sprintf("c.stage = $%d", len(args)))
	}
	if params.Segment != "" {
		args = append(args, string(params.Segment))
		where = append(where, fmt.Sprintf("c.segment = $%d", len(args)))
	}
	if params.OwnerID != 0 {
		args = append(args, params.OwnerID)
		where = append(where, fmt.Sprintf("c.owner_id = $%d", len(args)))
	}
	return where, args
}

func (g *PgCustomerRepository) queryCustomers(ctx context.Context, query string, args ...interface{}) ([]customer.Customer, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query customers")
	}
	defer rows.Close()

	var out []customer.Customer
	for rows.Next() {
		var m models.Customer
		if err := rows.Scan(
			&m.ID, &m.FirstName, &m.LastName, &m.CompanyName, &m.Email,
			&m.Phone, &m.Mobile, &m.Stage, &m.Segment, &m.Score,
			&m.EstimatedAssets, &m.CreditScore, &m.HighNetWorth,
			&m.AccountNumber, &m.OwnerID, &m.OrgUnitID, &m.Source,
			&m.SuspectDate, &m.ProspectDate, &m.LeadDate, &m.CustomerDate,
			&m.LastContactDate, &m.IsActive, &m.DoNotContact, &m.KYCStatus,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan customer")
		}
		out = append(out, toDomainCustomer(m))
	}
	return out, rows.Err()
}

func (g *PgCustomerRepository) GetByID(ctx context.Context, id uint) (customer.Customer, error) {
	customers, err := g.queryCustomers(ctx, customerFindQuery+" WHERE c.id = $1", id)
	if err != nil {
		return customer.Customer{}, err
	}
	if len(customers) == 0 {
		return customer.Customer{}, customer.ErrNotFound
	}
	return customers[0], nil
}

func (g *PgCustomerRepository) List(ctx context.Context, params customer.FindParams) ([]customer.Customer, error) {
	where, args := g.buildFilters(params)
	query := customerFindQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.last_name, c.first_name " + repo.FormatLimitOffset(params.Limit, params.Offset)
	return g.queryCustomers(ctx, query, args...)
}

func (g *PgCustomerRepository) Count(ctx context.Context, params customer.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := g.buildFilters(params)
	query := customerCountQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count customers")
	}
	return count, nil
}

func (g *PgCustomerRepository) Create(ctx context.Context, data customer.Customer) (customer.Customer, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return customer.Customer{}, err
	}
	m := toDBCustomer(data)
	var id uint
	err = tx.QueryRow(ctx, customerInsertQuery,
		m.FirstName, m.LastName, m.CompanyName, m.Email, m.Phone, m.Mobile,
		m.Stage, m.Segment, m.Score, m.EstimatedAssets, m.CreditScore,
		m.HighNetWorth, m.AccountNumber, m.OwnerID, m.OrgUnitID, m.Source,
		m.SuspectDate, m.ProspectDate, m.LeadDate, m.CustomerDate,
		m.LastContactDate, m.IsActive, m.DoNotContact, m.KYCStatus,
	).Scan(&id)
	if err != nil {
		return customer.Customer{}, errors.Wrap(err, "insert customer")
	}
	return g.GetByID(ctx, id)
}

// Update writes the record back guarded by the timestamp it was read
// with; a zero row count means another writer got there first.
func (g *PgCustomerRepository) Update(ctx context.Context, data customer.Customer) (customer.Customer, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return customer.Customer{}, err
	}
	m := toDBCustomer(data)
	tag, err := tx.Exec(ctx, customerUpdateQuery,
		m.FirstName, m.LastName, m.CompanyName, m.Email, m.Phone, m.Mobile,
		m.Stage, m.Segment, m.Score, m.EstimatedAssets, m.CreditScore,
		m.HighNetWorth, m.AccountNumber, m.OwnerID, m.OrgUnitID, m.Source,
		m.SuspectDate, m.ProspectDate, m.LeadDate, m.CustomerDate,
		m.LastContactDate, m.IsActive, m.DoNotContact, m.KYCStatus,
		m.ID, m.UpdatedAt,
	)
	if err != nil {
		return customer.Customer{}, errors.Wrap(err, "update customer")
	}
	if tag.RowsAffected() == 0 {
		if _, err := g.GetByID(ctx, m.ID); err != nil {
			return customer.Customer{}, err
		}
		return customer.Customer{}, ErrConcurrentModification
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgCustomerRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, customerDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "delete customer")
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}
