package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID              uint
	FirstName       string
	LastName        string
	CompanyName     sql.NullString
	Email           sql.NullString
	Phone           sql.NullString
	Mobile          sql.NullString
	Stage           string
	Segment         string
	Score           int
	EstimatedAssets decimal.Decimal
	CreditScore     int
	HighNetWorth    bool
	AccountNumber   sql.NullString
	OwnerID         uint
	OrgUnitID       uint
	Source          sql.NullString
	SuspectDate     sql.NullTime
	ProspectDate    sql.NullTime
	LeadDate        sql.NullTime
	CustomerDate    sql.NullTime
	LastContactDate sql.NullTime
	IsActive        bool
	DoNotContact    bool
	KYCStatus       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Opportunity struct {
	ID              uint
	Name            string
	CustomerID      uint
	ProductLine     string
	Stage           string
	Amount          decimal.Decimal
	Probability     int
	ExpectedRevenue decimal.Decimal
	ActualRevenue   decimal.Decimal
	ExpectedClose   sql.NullTime
	ActualClose     sql.NullTime
	OwnerID         uint
	OrgUnitID       uint
	IsActive        bool
	WonDate         sql.NullTime
	LostDate        sql.NullTime
	LostReason      sql.NullString
	LostNotes       sql.NullString
	CompetitorName  sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Task struct {
	ID             uint
	Title          string
	Description    sql.NullString
	Kind           string
	Status         string
	Priority       string
	CustomerID     sql.NullInt64
	OpportunityID  sql.NullInt64
	AssignedToID   uint
	AssignedByID   uint
	OrgUnitID      uint
	DueDate        sql.NullTime
	CompletedAt    sql.NullTime
	EscalationTier int
	EscalatedToID  sql.NullInt64
	EscalatedAt    sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Target struct {
	ID            uint
	Name          string
	Type          string
	Period        string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TargetValue   decimal.Decimal
	AchievedValue decimal.Decimal
	UserID        uint
	OrgUnitID     uint
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TargetAchievement struct {
	ID          uint
	TargetID    uint
	Amount      decimal.Decimal
	SourceKind  string
	SourceID    uint
	Description sql.NullString
	CreatedAt   time.Time
}
