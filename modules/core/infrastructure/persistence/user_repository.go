package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/core/infrastructure/persistence/models"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/repo"
)

const (
	userFindQuery = `
        SELECT
            u.id,
            u.email,
            u.username,
            u.password,
            u.first_name,
            u.last_name,
            u.phone,
            u.access_level,
            u.role,
            u.org_unit_id,
            u.is_active,
            u.is_verified,
            u.last_login,
            u.created_at,
            u.updated_at
        FROM users u`

	userCountQuery = `SELECT COUNT(u.id) FROM users u`

	userInsertQuery = `
        INSERT INTO users (
            email, username, password, first_name, last_name, phone,
            access_level, role, org_unit_id, is_active, is_verified,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
        RETURNING id`

	userUpdateQuery = `
        UPDATE users SET
            email = $1,
            username = $2,
            password = $3,
            first_name = $4,
            last_name = $5,
            phone = $6,
            access_level = $7,
            role = $8,
            org_unit_id = $9,
            is_active = $10,
            is_verified = $11,
            updated_at = NOW()
        WHERE id = $12`

	userUpdateLastLoginQuery = `UPDATE users SET last_login = NOW() WHERE id = $1`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (g *PgUserRepository) buildFilters(params user.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if len(params.OrgUnitIDs) > 0 {
		args = append(args, params.OrgUnitIDs)
		where = append(where, fmt.Sprintf("u.org_unit_id = ANY($%d)", len(args)))
	}
	if params.Role != "" {
		args = append(args, string(params.Role))
		where = append(where, fmt.Sprintf("u.role = $%d", len(args)))
	}
	return where, args
}

func (g *PgUserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query users")
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		var m models.User
		if err := rows.Scan(
			&m.ID, &m.Email, &m.Username, &m.Password, &m.FirstName, &m.LastName,
			&m.Phone, &m.AccessLevel, &m.Role, &m.OrgUnitID, &m.IsActive,
			&m.IsVerified, &m.LastLogin, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		out = append(out, toDomainUser(m))
	}
	return out, rows.Err()
}

func (g *PgUserRepository) GetAll(ctx context.Context) ([]user.User, error) {
	return g.queryUsers(ctx, userFindQuery+" ORDER BY u.id")
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uint) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE u.id = $1", id)
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE u.email = $1", strings.ToLower(email))
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) GetPaginated(ctx context.Context, params user.FindParams) ([]user.User, error) {
	where, args := g.buildFilters(params)
	query := userFindQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY u.last_name, u.first_name " + repo.FormatLimitOffset(params.Limit, params.Offset)
	return g.queryUsers(ctx, query, args...)
}

func (g *PgUserRepository) Count(ctx context.Context, params user.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := g.buildFilters(params)
	query := userCountQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return count, nil
}

func (g *PgUserRepository) Create(ctx context.Context, data user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	m := toDBUser(data)
	var id uint
	err = tx.QueryRow(ctx, userInsertQuery,
		m.Email, m.Username, m.Password, m.FirstName, m.LastName, m.Phone,
		m.AccessLevel, m.Role, m.OrgUnitID, m.IsActive, m.IsVerified,
	).Scan(&id)
	if err != nil {
		return user.User{}, errors.Wrap(err, "insert user")
	}
	return g.GetByID(ctx, id)
}

func (g *PgUserRepository) Update(ctx context.Context, data user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	m := toDBUser(data)
	tag, err := tx.Exec(ctx, userUpdateQuery,
		m.Email, m.Username, m.Password, m.FirstName, m.LastName, m.Phone,
		m.AccessLevel, m.Role, m.OrgUnitID, m.IsActive, m.IsVerified, m.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return user.User{}, user.ErrNotFound
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgUserRepository) UpdateLastLogin(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, userUpdateLastLoginQuery, id); err != nil {
		return errors.Wrap(err, "update last login")
	}
	return nil
}

