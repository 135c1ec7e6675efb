package customer

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/bankcrm/modules/core/access"
)

var (
	ErrNotFound          = errors.New("customer not found")
	ErrInvalidTransition = errors.New("invalid customer stage transition")
)

type Stage string

const (
	StageSuspect  Stage = "suspect"
	StageProspect Stage = "prospect"
	StageLead     Stage = "lead"
	StageCustomer Stage = "customer"
	StageInactive Stage = "inactive"
)

func (s Stage) IsValid() bool {
	switch s {
	case StageSuspect, StageProspect, StageLead, StageCustomer, StageInactive:
		return true
	}
	return false
}

// Transitions is the adjacency table consulted in strict mode. The funnel
// moves forward one stage at a time; INACTIVE is reachable from anywhere
// and a reactivated record restarts at SUSPECT. In permissive mode (the
// historical behavior, kept for manual corrections) any valid stage is
// accepted.
var Transitions = map[Stage][]Stage{
	StageSuspect:  {StageProspect, StageInactive},
	StageProspect: {StageLead, StageInactive},
	StageLead:     {StageCustomer, StageInactive},
	StageCustomer: {StageInactive},
	StageInactive: {StageSuspect},
}

type Segment string

const (
	SegmentRetail         Segment = "retail"
	SegmentSME            Segment = "sme"
	SegmentCorporate      Segment = "corporate"
	SegmentPrivateBanking Segment = "private_banking"
)

type Customer struct {
	id              uint
	firstName       string
	lastName        string
	companyName     string
	email           string
	phone           string
	mobile          string
	stage           Stage
	segment         Segment
	score           int
	estimatedAssets decimal.Decimal
	creditScore     int
	highNetWorth    bool
	accountNumber   string
	ownerID         uint
	orgUnitID       uint
	source          string
	suspectDate     *time.Time
	prospectDate    *time.Time
	leadDate        *time.Time
	customerDate    *time.Time
	lastContactDate *time.Time
	active          bool
	doNotContact    bool
	kycStatus       string
	createdAt       time.Time
	updatedAt       time.Time
}

func New(firstName, lastName string, segment Segment, ownerID, orgUnitID uint, now time.Time) Customer {
	suspectDate := now
	return Customer{
		firstName:   strings.TrimSpace(firstName),
		lastName:    strings.TrimSpace(lastName),
		stage:       StageSuspect,
		segment:     segment,
		ownerID:     ownerID,
		orgUnitID:   orgUnitID,
		suspectDate: &suspectDate,
		active:      true,
		kycStatus:   "pending",
	}
}

func (c Customer) ID() uint                         { return c.id }
func (c Customer) FirstName() string                { return c.firstName }
func (c Customer) LastName() string                 { return c.lastName }
func (c Customer) CompanyName() string              { return c.companyName }
func (c Customer) Email() string                    { return c.email }
func (c Customer) Phone() string                    { return c.phone }
func (c Customer) Mobile() string                   { return c.mobile }
func (c Customer) Stage() Stage                     { return c.stage }
func (c Customer) Segment() Segment                 { return c.segment }
func (c Customer) QualificationScore() int          { return c.score }
func (c Customer) EstimatedAssets() decimal.Decimal { return c.estimatedAssets }
func (c Customer) CreditScore() int                 { return c.creditScore }
func (c Customer) IsHighNetWorth() bool             { return c.highNetWorth }
func (c Customer) AccountNumber() string            { return c.accountNumber }
func (c Customer) OwnerID() uint                    { return c.ownerID }
func (c Customer) OrgUnitID() uint                  { return c.orgUnitID }
func (c Customer) Source() string                   { return c.source }
func (c Customer) SuspectDate() *time.Time          { return c.suspectDate }
func (c Customer) ProspectDate() *time.Time         { return c.prospectDate }
func (c Customer) LeadDate() *time.Time             { return c.leadDate }
func (c Customer) CustomerDate() *time.Time         { return c.customerDate }
func (c Customer) LastContactDate() *time.Time      { return c.lastContactDate }
func (c Customer) IsActive() bool                   { return c.active }
func (c Customer) DoNotContact() bool               { return c.doNotContact }
func (c Customer) KYCStatus() string                { return c.kycStatus }
func (c Customer) CreatedAt() time.Time             { return c.createdAt }
func (c Customer) UpdatedAt() time.Time             { return c.updatedAt }

func (c Customer) FullName() string {
	if c.companyName != "" {
		return c.companyName
	}
	return strings.TrimSpace(c.firstName + " " + c.lastName)
}

// AccessRecord exposes the ownership edges the access policy compares.
func (c Customer) AccessRecord() access.Record {
	return access.Record{OwnerID: c.ownerID, OrgUnitID: c.orgUnitID}
}

// AdvanceStage moves the customer to newStage. Stage timestamps are set the
// first time a stage is reached and never cleared, so the funnel history
// stays monotonic even when the stage itself moves backward. In strict mode
// only transitions listed in Transitions are accepted.
func (c Customer) AdvanceStage(newStage Stage, now time.Time, strict bool) (Customer, error) {
	if !newStage.IsValid() {
		return c, ErrInvalidTransition
	}
	if strict && !allowedTransition(c.stage, newStage) {
		return c, ErrInvalidTransition
	}

	c.stage = newStage
	switch newStage {
	case StageProspect:
		if c.prospectDate == nil {
			c.prospectDate = &now
		}
	case StageLead:
		if c.leadDate == nil {
			c.leadDate = &now
		}
	case StageCustomer:
		if c.customerDate == nil {
			c.customerDate = &now
		}
	case StageInactive:
		c.active = false
	}
	if newStage != StageInactive {
		c.active = true
	}
	return c, nil
}

func allowedTransition(from, to Stage) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CalculateQualificationScore derives the 0-100 qualification score from
// contact data, financials and engagement. Whether the customer has at
// least one active opportunity is supplied by the caller since it lives
// on another aggregate.
func (c Customer) CalculateQualificationScore(now time.Time, hasActiveOpportunity bool) int {
	score := 0
	if c.email != "" {
		score += 10
	}
	if c.mobile != "" || c.phone != "" {
		score += 10
	}
	if !c.estimatedAssets.IsZero() {
		score += 20
	}
	if c.creditScore > 600 {
		score += 20
	}
	if c.lastContactDate != nil {
		days := int(now.Sub(*c.lastContactDate).Hours() / 24)
		if days < 7 {
			score += 20
		} else if days < 30 {
			score += 10
		}
	}
	if hasActiveOpportunity {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Requalify recomputes and stores the qualification score.
func (c Customer) Requalify(now time.Time, hasActiveOpportunity bool) Customer {
	c.score = c.CalculateQualificationScore(now, hasActiveOpportunity)
	return c
}

// RecordContact stamps the last contact date.
func (c Customer) RecordContact(now time.Time) Customer {
	c.lastContactDate = &now
	return c
}

// Reassign hands the customer to another owner and unit.
func (c Customer) Reassign(ownerID, orgUnitID uint) Customer {
	c.ownerID = ownerID
	c.orgUnitID = orgUnitID
	return c
}

// highNetWorthThreshold is the estimated-assets floor above which a
// customer is flagged as high net worth.
var highNetWorthThreshold = decimal.NewFromInt(1_000_000)

// ProfileParams carries the editable contact and classification attributes.
type ProfileParams struct {
	FirstName   string
	LastName    string
	CompanyName string
	Email       string
	Phone       string
	Mobile      string
	Source      string
	Segment     Segment
}

// UpdateProfile replaces the editable attributes. Lifecycle state, ownership
// and banking data are managed through their dedicated operations.
func (c Customer) UpdateProfile(p ProfileParams) Customer {
	c.firstName = strings.TrimSpace(p.FirstName)
	c.lastName = strings.TrimSpace(p.LastName)
	c.companyName = strings.TrimSpace(p.CompanyName)
	c.email = strings.TrimSpace(p.Email)
	c.phone = strings.TrimSpace(p.Phone)
	c.mobile = strings.TrimSpace(p.Mobile)
	c.source = strings.TrimSpace(p.Source)
	if p.Segment != "" {
		c.segment = p.Segment
	}
	return c
}

// SetEstimatedAssets stores the assets estimate and rederives the
// high-net-worth flag.
func (c Customer) SetEstimatedAssets(v decimal.Decimal) Customer {
	c.estimatedAssets = v
	c.highNetWorth = v.GreaterThanOrEqual(highNetWorthThreshold)
	return c
}

func (c Customer) SetCreditScore(v int) Customer {
	c.creditScore = v
	return c
}

func (c Customer) SetAccountNumber(v string) Customer {
	c.accountNumber = strings.TrimSpace(v)
	return c
}

func (c Customer) SetDoNotContact(v bool) Customer {
	c.doNotContact = v
	return c
}

func (c Customer) SetKYCStatus(v string) Customer {
	c.kycStatus = v
	return c
}
