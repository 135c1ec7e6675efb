package persistence

import (
	"database/sql"
	"time"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
	"github.com/iota-uz/bankcrm/modules/core/infrastructure/persistence/models"
)

func toDomainUser(m models.User) user.User {
	var lastLogin *time.Time
	if m.LastLogin.Valid {
		t := m.LastLogin.Time
		lastLogin = &t
	}
	return user.Hydrate(user.HydrateParams{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.Password.String,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Phone:        m.Phone.String,
		AccessLevel:  user.AccessLevel(m.AccessLevel),
		Role:         user.Role(m.Role),
		OrgUnitID:    m.OrgUnitID,
		Active:       m.IsActive,
		Verified:     m.IsVerified,
		LastLogin:    lastLogin,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	})
}

func toDBUser(u user.User) models.User {
	return models.User{
		ID:          u.ID(),
		Email:       u.Email(),
		Username:    u.Username(),
		Password:    sql.NullString{String: u.PasswordHash(), Valid: u.PasswordHash() != ""},
		FirstName:   u.FirstName(),
		LastName:    u.LastName(),
		Phone:       sql.NullString{String: u.Phone(), Valid: u.Phone() != ""},
		AccessLevel: int(u.AccessLevel()),
		Role:        string(u.Role()),
		OrgUnitID:   u.OrgUnitID(),
		IsActive:    u.IsActive(),
		IsVerified:  u.IsVerified(),
	}
}

func toDomainOrgUnit(m models.OrgUnit) orgunit.OrgUnit {
	var parentID uint
	if m.ParentID.Valid {
		parentID = uint(m.ParentID.Int64)
	}
	return orgunit.Hydrate(
		m.ID,
		m.Name,
		orgunit.Kind(m.Kind),
		m.Code,
		parentID,
		m.IsActive,
		m.CreatedAt,
	)
}

func toDBOrgUnit(u orgunit.OrgUnit) models.OrgUnit {
	var parentID sql.NullInt64
	if !u.IsRoot() {
		parentID = sql.NullInt64{Int64: int64(u.ParentID()), Valid: true}
	}
	return models.OrgUnit{
		ID:       u.ID(),
		Name:     u.Name(),
		Kind:     string(u.Kind()),
		Code:     u.Code(),
		ParentID: parentID,
		IsActive: u.IsActive(),
	}
}
