package opportunity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/opportunity"
)

func newDeal(amount int64) opportunity.Opportunity {
	return opportunity.New("Mortgage refinance", 7, opportunity.ProductMortgage, decimal.NewFromInt(amount), 3, 4)
}

func TestNewStartsAtIdentification(t *testing.T) {
	o := newDeal(150000)
	assert.Equal(t, opportunity.StageIdentification, o.Stage())
	assert.Equal(t, 10, o.Probability())
	assert.True(t, o.IsActive())
	assert.True(t, decimal.NewFromInt(15000).Equal(o.ExpectedRevenue()))
}

func TestExpectedRevenueFollowsStage(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	o := newDeal(150000)

	o, err := o.AdvanceStage(opportunity.StageNegotiation, now, false)
	require.NoError(t, err)
	assert.Equal(t, 60, o.Probability())
	assert.True(t, decimal.NewFromInt(90000).Equal(o.ExpectedRevenue()))

	o, err = o.AdvanceStage(opportunity.StageClosing, now, false)
	require.NoError(t, err)
	assert.Equal(t, 80, o.Probability())
	assert.True(t, decimal.NewFromInt(120000).Equal(o.ExpectedRevenue()))
}

func TestSetAmountRederivesExpectedRevenue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	o := newDeal(100000)
	o, err := o.AdvanceStage(opportunity.StageProposal, now, false)
	require.NoError(t, err)

	o = o.SetAmount(decimal.NewFromInt(200000))
	assert.True(t, decimal.NewFromInt(80000).Equal(o.ExpectedRevenue()))
}

func TestWonClosesThePipeline(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	o := newDeal(150000)

	o, err := o.AdvanceStage(opportunity.StageWon, now, false)
	require.NoError(t, err)

	assert.False(t, o.IsActive())
	assert.Equal(t, 100, o.Probability())
	require.NotNil(t, o.WonDate())
	require.NotNil(t, o.ActualCloseDate())
	assert.True(t, o.Amount().Equal(o.ActualRevenue()))
	assert.True(t, decimal.NewFromInt(150000).Equal(o.ExpectedRevenue()))
}

func TestMarkWonWithRevenueOverride(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	override := decimal.NewFromInt(142500)
	o := newDeal(150000)

	o, err := o.MarkWon(&override, now, false)
	require.NoError(t, err)
	assert.True(t, override.Equal(o.ActualRevenue()))
	assert.False(t, o.IsActive())
}

func TestMarkLostRequiresReason(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	o := newDeal(150000)

	_, err := o.MarkLost("", "", "", now, false)
	require.ErrorIs(t, err, opportunity.ErrLostReasonRequired)

	o, err = o.MarkLost(opportunity.LostCompetitor, "undercut on rate", "Acme Bank", now, false)
	require.NoError(t, err)
	assert.False(t, o.IsActive())
	assert.Equal(t, 0, o.Probability())
	assert.True(t, o.ExpectedRevenue().IsZero())
	assert.Equal(t, opportunity.LostCompetitor, o.LostReason())
	assert.Equal(t, "Acme Bank", o.CompetitorName())
	require.NotNil(t, o.LostDate())
}

func TestStrictModeRejectsSkips(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	o := newDeal(150000)

	_, err := o.AdvanceStage(opportunity.StageClosing, now, true)
	require.ErrorIs(t, err, opportunity.ErrInvalidTransition)

	for _, next := range []opportunity.Stage{
		opportunity.StageQualification,
		opportunity.StageProposal,
		opportunity.StageNegotiation,
		opportunity.StageClosing,
		opportunity.StageWon,
		opportunity.StagePostSale,
	} {
		var err error
		o, err = o.AdvanceStage(next, now, true)
		require.NoError(t, err, "transition to %s", next)
	}
}

func TestTerminalStagesRejectFurtherMoves(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	o := newDeal(150000)
	o, err := o.MarkLost(opportunity.LostTiming, "", "", now, false)
	require.NoError(t, err)

	_, err = o.AdvanceStage(opportunity.StageProposal, now, true)
	require.ErrorIs(t, err, opportunity.ErrInvalidTransition)
}

func TestUnknownStageRejected(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	o := newDeal(150000)
	_, err := o.AdvanceStage(opportunity.Stage("renewal"), now, false)
	require.ErrorIs(t, err, opportunity.ErrInvalidTransition)
}

func TestPostSaleKeepsWonNumbers(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	o := newDeal(150000)
	o, err := o.AdvanceStage(opportunity.StageWon, now, false)
	require.NoError(t, err)

	o, err = o.AdvanceStage(opportunity.StagePostSale, now, false)
	require.NoError(t, err)
	assert.Equal(t, 100, o.Probability())
	assert.True(t, o.Amount().Equal(o.ActualRevenue()))
	assert.False(t, o.IsActive())
}
