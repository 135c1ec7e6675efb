package customer_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
)

var now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func newCustomer() customer.Customer {
	return customer.New("Amina", "Hodzic", customer.SegmentRetail, 7, 4, now)
}

func TestAdvanceStage_SetsTimestampOnce(t *testing.T) {
	c := newCustomer()
	require.Equal(t, customer.StageSuspect, c.Stage())
	require.NotNil(t, c.SuspectDate())

	c, err := c.AdvanceStage(customer.StageProspect, now, false)
	require.NoError(t, err)
	require.NotNil(t, c.ProspectDate())
	first := *c.ProspectDate()

	// Moving away and back must not clear or rewrite the stamp.
	later := now.Add(48 * time.Hour)
	c, err = c.AdvanceStage(customer.StageLead, later, false)
	require.NoError(t, err)
	c, err = c.AdvanceStage(customer.StageProspect, later.Add(time.Hour), false)
	require.NoError(t, err)

	assert.Equal(t, first, *c.ProspectDate())
	assert.NotNil(t, c.LeadDate())
}

func TestAdvanceStage_PermissiveAllowsSkipsAndBackward(t *testing.T) {
	c := newCustomer()

	c, err := c.AdvanceStage(customer.StageCustomer, now, false)
	require.NoError(t, err)
	assert.Equal(t, customer.StageCustomer, c.Stage())

	c, err = c.AdvanceStage(customer.StageSuspect, now, false)
	require.NoError(t, err)
	assert.Equal(t, customer.StageSuspect, c.Stage())
}

func TestAdvanceStage_StrictRejectsNonAdjacent(t *testing.T) {
	c := newCustomer()

	_, err := c.AdvanceStage(customer.StageCustomer, now, true)
	assert.ErrorIs(t, err, customer.ErrInvalidTransition)

	_, err = c.AdvanceStage(customer.StageLead, now, true)
	assert.ErrorIs(t, err, customer.ErrInvalidTransition)

	c, err = c.AdvanceStage(customer.StageProspect, now, true)
	require.NoError(t, err)
	c, err = c.AdvanceStage(customer.StageLead, now, true)
	require.NoError(t, err)
	c, err = c.AdvanceStage(customer.StageCustomer, now, true)
	require.NoError(t, err)
	assert.Equal(t, customer.StageCustomer, c.Stage())
}

func TestAdvanceStage_InactiveReachableFromAnywhere(t *testing.T) {
	for _, from := range []customer.Stage{
		customer.StageSuspect, customer.StageProspect, customer.StageLead, customer.StageCustomer,
	} {
		c := newCustomer()
		c, err := c.AdvanceStage(from, now, false)
		require.NoError(t, err)
		c, err = c.AdvanceStage(customer.StageInactive, now, true)
		require.NoError(t, err, "INACTIVE from %s", from)
		assert.False(t, c.IsActive())
	}
}

func TestAdvanceStage_RejectsUnknownStage(t *testing.T) {
	c := newCustomer()
	_, err := c.AdvanceStage(customer.Stage("churned"), now, false)
	assert.ErrorIs(t, err, customer.ErrInvalidTransition)
}

func TestQualificationScore_Signals(t *testing.T) {
	base := customer.HydrateParams{
		ID: 1, FirstName: "A", LastName: "B",
		Stage: customer.StageLead, Segment: customer.SegmentRetail,
		OwnerID: 7, OrgUnitID: 4, Active: true,
	}
	recent := now.Add(-2 * 24 * time.Hour)
	stale := now.Add(-20 * 24 * time.Hour)
	ancient := now.Add(-90 * 24 * time.Hour)

	cases := []struct {
		name      string
		mutate    func(*customer.HydrateParams)
		activeOpp bool
		want      int
	}{
		{"no signals", func(p *customer.HydrateParams) {}, false, 0},
		{"email only", func(p *customer.HydrateParams) { p.Email = "a@b.ba" }, false, 10},
		{"phone only", func(p *customer.HydrateParams) { p.Phone = "+38733123456" }, false, 10},
		{"mobile counts as phone", func(p *customer.HydrateParams) { p.Mobile = "+38761123456" }, false, 10},
		{"assets", func(p *customer.HydrateParams) { p.EstimatedAssets = decimal.NewFromInt(250000) }, false, 20},
		{"credit score above 600", func(p *customer.HydrateParams) { p.CreditScore = 640 }, false, 20},
		{"credit score at 600 does not count", func(p *customer.HydrateParams) { p.CreditScore = 600 }, false, 0},
		{"contact within 7 days", func(p *customer.HydrateParams) { p.LastContactDate = &recent }, false, 20},
		{"contact within 30 days", func(p *customer.HydrateParams) { p.LastContactDate = &stale }, false, 10},
		{"contact too old", func(p *customer.HydrateParams) { p.LastContactDate = &ancient }, false, 0},
		{"active opportunity", func(p *customer.HydrateParams) {}, true, 20},
		{
			"everything clamps to 100",
			func(p *customer.HydrateParams) {
				p.Email = "a@b.ba"
				p.Phone = "+38733123456"
				p.EstimatedAssets = decimal.NewFromInt(250000)
				p.CreditScore = 700
				p.LastContactDate = &recent
			},
			true,
			100,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			c := customer.Hydrate(p)
			got := c.CalculateQualificationScore(now, tc.activeOpp)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestRequalifyStoresScore(t *testing.T) {
	c := newCustomer().RecordContact(now.Add(-24 * time.Hour))
	c = c.Requalify(now, true)
	// 20 for recent contact, 20 for the active opportunity.
	assert.Equal(t, 40, c.QualificationScore())
}

func TestFullNamePrefersCompany(t *testing.T) {
	p := customer.HydrateParams{FirstName: "Amina", LastName: "Hodzic", CompanyName: "Bosna Trade d.o.o."}
	assert.Equal(t, "Bosna Trade d.o.o.", customer.Hydrate(p).FullName())
	p.CompanyName = ""
	assert.Equal(t, "Amina Hodzic", customer.Hydrate(p).FullName())
}
