package opportunity

import (
	"time"

	"github.com/shopspring/decimal"
)

// HydrateParams carries every persisted field. Used by the storage layer
// only; application code goes through New.
type HydrateParams struct {
	ID              uint
	Name            string
	CustomerID      uint
	ProductLine     ProductLine
	Stage           Stage
	Amount          decimal.Decimal
	Probability     int
	ExpectedRevenue decimal.Decimal
	ActualRevenue   decimal.Decimal
	ExpectedClose   *time.Time
	ActualClose     *time.Time
	OwnerID         uint
	OrgUnitID       uint
	Active          bool
	WonDate         *time.Time
	LostDate        *time.Time
	LostReason      LostReason
	LostNotes       string
	CompetitorName  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func Hydrate(p HydrateParams) Opportunity {
	return Opportunity{
		id:              p.ID,
		name:            p.Name,
		customerID:      p.CustomerID,
		productLine:     p.ProductLine,
		stage:           p.Stage,
		amount:          p.Amount,
		probability:     p.Probability,
		expectedRevenue: p.ExpectedRevenue,
		actualRevenue:   p.ActualRevenue,
		expectedClose:   p.ExpectedClose,
		actualClose:     p.ActualClose,
		ownerID:         p.OwnerID,
		orgUnitID:       p.OrgUnitID,
		active:          p.Active,
		wonDate:         p.WonDate,
		lostDate:        p.LostDate,
		lostReason:      p.LostReason,
		lostNotes:       p.LostNotes,
		competitorName:  p.CompetitorName,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}
}
