package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

// HydrateParams carries every persisted field; the persistence layer is
// its only intended caller.
type HydrateParams struct {
	ID              uint
	FirstName       string
	LastName        string
	CompanyName     string
	Email           string
	Phone           string
	Mobile          string
	Stage           Stage
	Segment         Segment
	Score           int
	EstimatedAssets decimal.Decimal
	CreditScore     int
	HighNetWorth    bool
	AccountNumber   string
	OwnerID         uint
	OrgUnitID       uint
	Source          string
	SuspectDate     *time.Time
	ProspectDate    *time.Time
	LeadDate        *time.Time
	CustomerDate    *time.Time
	LastContactDate *time.Time
	Active          bool
	DoNotContact    bool
	KYCStatus       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func Hydrate(p HydrateParams) Customer {
	return Customer{
		id:              p.ID,
		firstName:       p.FirstName,
		lastName:        p.LastName,
		companyName:     p.CompanyName,
		email:           p.Email,
		phone:           p.Phone,
		mobile:          p.Mobile,
		stage:           p.Stage,
		segment:         p.Segment,
		score:           p.Score,
		estimatedAssets: p.EstimatedAssets,
		creditScore:     p.CreditScore,
		highNetWorth:    p.HighNetWorth,
		accountNumber:   p.AccountNumber,
		ownerID:         p.OwnerID,
		orgUnitID:       p.OrgUnitID,
		source:          p.Source,
		suspectDate:     p.SuspectDate,
		prospectDate:    p.ProspectDate,
		leadDate:        p.LeadDate,
		customerDate:    p.CustomerDate,
		lastContactDate: p.LastContactDate,
		active:          p.Active,
		doNotContact:    p.DoNotContact,
		kycStatus:       p.KYCStatus,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}
}
