package target

import (
	"time"

	"github.com/shopspring/decimal"
)

type HydrateParams struct {
	ID            uint
	Name          string
	Type          Type
	Period        Period
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TargetValue   decimal.Decimal
	AchievedValue decimal.Decimal
	UserID        uint
	OrgUnitID     uint
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func Hydrate(p HydrateParams) Target {
	return Target{
		id:            p.ID,
		name:          p.Name,
		targetType:    p.Type,
		period:        p.Period,
		periodStart:   p.PeriodStart,
		periodEnd:     p.PeriodEnd,
		targetValue:   p.TargetValue,
		achievedValue: p.AchievedValue,
		userID:        p.UserID,
		orgUnitID:     p.OrgUnitID,
		active:        p.Active,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}
}
