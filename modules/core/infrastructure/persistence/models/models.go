package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID           uint
	Email        string
	Username     string
	Password     sql.NullString
	FirstName    string
	LastName     string
	Phone        sql.NullString
	AccessLevel  int
	Role         string
	OrgUnitID    uint
	IsActive     bool
	IsVerified   bool
	LastLogin    sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrgUnit struct {
	ID        uint
	Name      string
	Kind      string
	Code      string
	ParentID  sql.NullInt64
	IsActive  bool
	CreatedAt time.Time
}
