package opportunity

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/bankcrm/modules/core/access"
)

var (
	ErrNotFound           = errors.New("opportunity not found")
	ErrInvalidTransition  = errors.New("invalid opportunity stage transition")
	ErrLostReasonRequired = errors.New("lost reason is required")
)

type Stage string

const (
	StageIdentification Stage = "identification"
	StageQualification  Stage = "qualification"
	StageProposal       Stage = "proposal"
	StageNegotiation    Stage = "negotiation"
	StageClosing        Stage = "closing"
	StageWon            Stage = "won"
	StageLost           Stage = "lost"
	StagePostSale       Stage = "post_sale"
)

func (s Stage) IsValid() bool {
	switch s {
	case StageIdentification, StageQualification, StageProposal, StageNegotiation,
		StageClosing, StageWon, StageLost, StagePostSale:
		return true
	}
	return false
}

func (s Stage) IsTerminalPipeline() bool {
	return s == StageWon || s == StageLost
}

// StageProbabilities is the fixed probability table applied on every
// stage change; POST_SALE keeps the WON probability.
var StageProbabilities = map[Stage]int{
	StageIdentification: 10,
	StageQualification:  20,
	StageProposal:       40,
	StageNegotiation:    60,
	StageClosing:        80,
	StageWon:            100,
	StageLost:           0,
}

// Transitions is the adjacency table for strict mode. Permissive mode,
// the historical behavior, accepts any valid stage.
var Transitions = map[Stage][]Stage{
	StageIdentification: {StageQualification, StageLost},
	StageQualification:  {StageProposal, StageLost},
	StageProposal:       {StageNegotiation, StageLost},
	StageNegotiation:    {StageClosing, StageLost},
	StageClosing:        {StageWon, StageLost},
	StageWon:            {StagePostSale},
	StageLost:           {},
	StagePostSale:       {},
}

type LostReason string

const (
	LostPrice          LostReason = "price"
	LostCompetitor     LostReason = "competitor"
	LostNoResponse     LostReason = "no_response"
	LostTiming         LostReason = "timing"
	LostNoNeed         LostReason = "no_need"
	LostCreditRejected LostReason = "credit_rejected"
	LostOther          LostReason = "other"
)

type ProductLine string

const (
	ProductRetailLoan     ProductLine = "retail_loan"
	ProductMortgage       ProductLine = "mortgage"
	ProductCreditCard     ProductLine = "credit_card"
	ProductSavingsAccount ProductLine = "savings_account"
	ProductInvestment     ProductLine = "investment"
	ProductInsurance      ProductLine = "insurance"
	ProductSMELoan        ProductLine = "sme_loan"
)

type Opportunity struct {
	id              uint
	name            string
	customerID      uint
	productLine     ProductLine
	stage           Stage
	amount          decimal.Decimal
	probability     int
	expectedRevenue decimal.Decimal
	actualRevenue   decimal.Decimal
	expectedClose   *time.Time
	actualClose     *time.Time
	ownerID         uint
	orgUnitID       uint
	active          bool
	wonDate         *time.Time
	lostDate        *time.Time
	lostReason      LostReason
	lostNotes       string
	competitorName  string
	createdAt       time.Time
	updatedAt       time.Time
}

func New(name string, customerID uint, productLine ProductLine, amount decimal.Decimal, ownerID, orgUnitID uint) Opportunity {
	o := Opportunity{
		name:        strings.TrimSpace(name),
		customerID:  customerID,
		productLine: productLine,
		stage:       StageIdentification,
		amount:      amount,
		probability: StageProbabilities[StageIdentification],
		ownerID:     ownerID,
		orgUnitID:   orgUnitID,
		active:      true,
	}
	o.expectedRevenue = deriveExpectedRevenue(o.amount, o.probability)
	return o
}

func (o Opportunity) ID() uint                         { return o.id }
func (o Opportunity) Name() string                     { return o.name }
func (o Opportunity) CustomerID() uint                 { return o.customerID }
func (o Opportunity) ProductLine() ProductLine         { return o.productLine }
func (o Opportunity) Stage() Stage                     { return o.stage }
func (o Opportunity) Amount() decimal.Decimal          { return o.amount }
func (o Opportunity) Probability() int                 { return o.probability }
func (o Opportunity) ExpectedRevenue() decimal.Decimal { return o.expectedRevenue }
func (o Opportunity) ActualRevenue() decimal.Decimal   { return o.actualRevenue }
func (o Opportunity) ExpectedCloseDate() *time.Time    { return o.expectedClose }
func (o Opportunity) ActualCloseDate() *time.Time      { return o.actualClose }
func (o Opportunity) OwnerID() uint                    { return o.ownerID }
func (o Opportunity) OrgUnitID() uint                  { return o.orgUnitID }
func (o Opportunity) IsActive() bool                   { return o.active }
func (o Opportunity) WonDate() *time.Time              { return o.wonDate }
func (o Opportunity) LostDate() *time.Time             { return o.lostDate }
func (o Opportunity) LostReason() LostReason           { return o.lostReason }
func (o Opportunity) LostNotes() string                { return o.lostNotes }
func (o Opportunity) CompetitorName() string           { return o.competitorName }
func (o Opportunity) CreatedAt() time.Time             { return o.createdAt }
func (o Opportunity) UpdatedAt() time.Time             { return o.updatedAt }

func (o Opportunity) AccessRecord() access.Record {
	return access.Record{OwnerID: o.ownerID, OrgUnitID: o.orgUnitID}
}

func deriveExpectedRevenue(amount decimal.Decimal, probability int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(probability))).Div(decimal.NewFromInt(100))
}

// SetAmount updates the deal value and rederives expected revenue;
// expected revenue is never edited independently.
func (o Opportunity) SetAmount(amount decimal.Decimal) Opportunity {
	o.amount = amount
	o.expectedRevenue = deriveExpectedRevenue(o.amount, o.probability)
	return o
}

func (o Opportunity) Rename(name string) Opportunity {
	o.name = strings.TrimSpace(name)
	return o
}

func (o Opportunity) SetExpectedCloseDate(at *time.Time) Opportunity {
	o.expectedClose = at
	return o
}

// AdvanceStage moves the opportunity to newStage, applies the fixed
// probability for that stage and rederives expected revenue. Entering WON
// or LOST closes the pipeline; all derived fields change together or not
// at all.
func (o Opportunity) AdvanceStage(newStage Stage, now time.Time, strict bool) (Opportunity, error) {
	if !newStage.IsValid() {
		return o, ErrInvalidTransition
	}
	if strict && !allowedTransition(o.stage, newStage) {
		return o, ErrInvalidTransition
	}

	o.stage = newStage
	if p, ok := StageProbabilities[newStage]; ok {
		o.probability = p
		o.expectedRevenue = deriveExpectedRevenue(o.amount, o.probability)
	}

	switch newStage {
	case StageWon:
		closeDate := now.Truncate(24 * time.Hour)
		o.active = false
		o.wonDate = &now
		o.actualClose = &closeDate
		o.actualRevenue = o.amount
	case StageLost:
		closeDate := now.Truncate(24 * time.Hour)
		o.active = false
		o.lostDate = &now
		o.actualClose = &closeDate
	}
	return o, nil
}

func allowedTransition(from, to Stage) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Reassign hands the opportunity to a new owner in a new unit.
func (o Opportunity) Reassign(ownerID, orgUnitID uint) Opportunity {
	o.ownerID = ownerID
	o.orgUnitID = orgUnitID
	return o
}

// MarkWon closes the opportunity as won. A non-nil actualRevenue overrides
// the default of the deal amount.
func (o Opportunity) MarkWon(actualRevenue *decimal.Decimal, now time.Time, strict bool) (Opportunity, error) {
	won, err := o.AdvanceStage(StageWon, now, strict)
	if err != nil {
		return o, err
	}
	if actualRevenue != nil {
		won.actualRevenue = *actualRevenue
	}
	return won, nil
}

// MarkLost closes the opportunity as lost. The reason is mandatory; notes
// and competitor are optional color.
func (o Opportunity) MarkLost(reason LostReason, notes, competitor string, now time.Time, strict bool) (Opportunity, error) {
	if reason == "" {
		return o, ErrLostReasonRequired
	}
	lost, err := o.AdvanceStage(StageLost, now, strict)
	if err != nil {
		return o, err
	}
	lost.lostReason = reason
	lost.lostNotes = notes
	lost.competitorName = competitor
	return lost, nil
}
