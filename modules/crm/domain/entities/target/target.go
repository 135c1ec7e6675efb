package target

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("target not found")
	ErrInvalidPeriod = errors.New("target period end precedes start")
)

type Type string

const (
	TypeRevenue      Type = "revenue"
	TypeNewCustomers Type = "new_customers"
	TypeOpportunity  Type = "opportunities_won"
	TypeCalls        Type = "calls"
	TypeMeetings     Type = "meetings"
)

type Period string

const (
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// Target is a quota assigned to a user for a bounded period. Achievement
// only ever accumulates; credits are applied inside the transaction of the
// action that earned them.
type Target struct {
	id            uint
	name          string
	targetType    Type
	period        Period
	periodStart   time.Time
	periodEnd     time.Time
	targetValue   decimal.Decimal
	achievedValue decimal.Decimal
	userID        uint
	orgUnitID     uint
	active        bool
	createdAt     time.Time
	updatedAt     time.Time
}

func New(name string, targetType Type, period Period, start, end time.Time, targetValue decimal.Decimal, userID, orgUnitID uint) (Target, error) {
	if end.Before(start) {
		return Target{}, ErrInvalidPeriod
	}
	return Target{
		name:        name,
		targetType:  targetType,
		period:      period,
		periodStart: start,
		periodEnd:   end,
		targetValue: targetValue,
		userID:      userID,
		orgUnitID:   orgUnitID,
		active:      true,
	}, nil
}

func (t Target) ID() uint                       { return t.id }
func (t Target) Name() string                   { return t.name }
func (t Target) Type() Type                     { return t.targetType }
func (t Target) Period() Period                 { return t.period }
func (t Target) PeriodStart() time.Time         { return t.periodStart }
func (t Target) PeriodEnd() time.Time           { return t.periodEnd }
func (t Target) TargetValue() decimal.Decimal   { return t.targetValue }
func (t Target) AchievedValue() decimal.Decimal { return t.achievedValue }
func (t Target) UserID() uint                   { return t.userID }
func (t Target) OrgUnitID() uint                { return t.orgUnitID }
func (t Target) IsActive() bool                 { return t.active }
func (t Target) CreatedAt() time.Time           { return t.createdAt }
func (t Target) UpdatedAt() time.Time           { return t.updatedAt }

// Covers reports whether the instant falls inside the target period,
// inclusive on both ends.
func (t Target) Covers(at time.Time) bool {
	return !at.Before(t.periodStart) && !at.After(t.periodEnd)
}

// ApplyAchievement credits the target with an earned amount. Negative
// amounts are ignored; achieved value never goes down.
func (t Target) ApplyAchievement(amount decimal.Decimal) Target {
	if amount.IsNegative() {
		return t
	}
	t.achievedValue = t.achievedValue.Add(amount)
	return t
}

// AchievementPercentage returns achieved over target as a percentage,
// zero when the target value is not positive.
func (t Target) AchievementPercentage() decimal.Decimal {
	if !t.targetValue.IsPositive() {
		return decimal.Zero
	}
	return t.achievedValue.Div(t.targetValue).Mul(decimal.NewFromInt(100))
}

// IsOnTrack compares actual progress to the share of the period elapsed
// at the given instant.
func (t Target) IsOnTrack(now time.Time) bool {
	total := t.periodEnd.Sub(t.periodStart)
	if total <= 0 {
		return false
	}
	elapsed := now.Sub(t.periodStart)
	if elapsed <= 0 {
		return true
	}
	if elapsed > total {
		elapsed = total
	}
	expected := decimal.NewFromInt(100).
		Mul(decimal.NewFromInt(int64(elapsed))).
		Div(decimal.NewFromInt(int64(total)))
	return t.AchievementPercentage().GreaterThanOrEqual(expected)
}

func (t Target) Deactivate() Target {
	t.active = false
	return t
}

// Achievement records a single credit against a target, kept for the
// achievement history view.
type Achievement struct {
	ID          uint
	TargetID    uint
	Amount      decimal.Decimal
	SourceKind  string
	SourceID    uint
	Description string
	CreatedAt   time.Time
}

type FindParams struct {
	UserID     uint
	OrgUnitIDs []uint
	Type       Type
	ActiveOnly bool
	CoversAt   *time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (Target, error)
	List(ctx context.Context, params FindParams) ([]Target, error)
	Create(ctx context.Context, t Target) (Target, error)
	Update(ctx context.Context, t Target) (Target, error)
	Delete(ctx context.Context, id uint) error
	// ListActiveForUser returns the user's active targets of the given
	// type whose period covers the instant; WON crediting walks this set.
	ListActiveForUser(ctx context.Context, userID uint, targetType Type, at time.Time) ([]Target, error)
	CreateAchievement(ctx context.Context, a Achievement) (Achievement, error)
	ListAchievements(ctx context.Context, targetID uint) ([]Achievement, error)
}
