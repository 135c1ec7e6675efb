package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
)

func seedCustomer(t *testing.T, f *fixture, ownerID, unitID uint) customer.Customer {
	t.Helper()
	c, err := f.customers.Create(context.Background(), customer.New("Aida", "Hodzic", customer.SegmentRetail, ownerID, unitID, time.Now()))
	require.NoError(t, err)
	return c
}

func TestCustomerService_ListIsScoped(t *testing.T) {
	f := newFixture(t, false)
	seedCustomer(t, f, 10, 4)
	seedCustomer(t, f, 11, 5)
	seedCustomer(t, f, 12, 3)

	t.Run("executive sees all", func(t *testing.T) {
		out, err := f.customerSvc.List(ctxAs(asUser(1, user.LevelExecutive, 1)), customer.FindParams{})
		require.NoError(t, err)
		assert.Len(t, out, 3)
	})

	t.Run("regional sees own subtree", func(t *testing.T) {
		out, err := f.customerSvc.List(ctxAs(asUser(2, user.LevelRegional, 2)), customer.FindParams{})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("individual sees own records", func(t *testing.T) {
		out, err := f.customerSvc.List(ctxAs(asUser(10, user.LevelIndividual, 4)), customer.FindParams{})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, uint(10), out[0].OwnerID())
	})

	t.Run("unauthenticated sees nothing", func(t *testing.T) {
		_, err := f.customerSvc.List(context.Background(), customer.FindParams{})
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestCustomerService_IndividualCannotDeleteOwnRecord(t *testing.T) {
	f := newFixture(t, false)
	c := seedCustomer(t, f, 10, 4)

	err := f.customerSvc.Delete(ctxAs(asUser(10, user.LevelIndividual, 4)), c.ID())
	require.ErrorIs(t, err, ErrForbidden)

	err = f.customerSvc.Delete(ctxAs(asUser(2, user.LevelBranch, 4)), c.ID())
	require.NoError(t, err)
}

func TestCustomerService_AdvanceStageAudited(t *testing.T) {
	f := newFixture(t, false)
	c := seedCustomer(t, f, 10, 4)
	ctx := ctxAs(asUser(10, user.LevelIndividual, 4))

	moved, err := f.customerSvc.AdvanceStage(ctx, c.ID(), customer.StageProspect)
	require.NoError(t, err)
	assert.Equal(t, customer.StageProspect, moved.Stage())
	require.NotNil(t, moved.ProspectDate())

	require.Len(t, f.auditEntries.entries, 1)
	e := f.auditEntries.entries[0]
	assert.Equal(t, "customer.stage_change", e.Action)
	assert.True(t, e.Success)
	assert.Equal(t, "suspect", e.Details["from"])
	assert.Equal(t, "prospect", e.Details["to"])
}

func TestCustomerService_StrictModeRejectionIsAuditedAndRolledBack(t *testing.T) {
	f := newFixture(t, true)
	c := seedCustomer(t, f, 10, 4)
	ctx := ctxAs(asUser(10, user.LevelIndividual, 4))

	_, err := f.customerSvc.AdvanceStage(ctx, c.ID(), customer.StageCustomer)
	require.ErrorIs(t, err, customer.ErrInvalidTransition)

	stored, err := f.customers.GetByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, customer.StageSuspect, stored.Stage())

	require.Len(t, f.auditEntries.entries, 1)
	assert.False(t, f.auditEntries.entries[0].Success)
}

func TestCustomerService_ReassignRequiresCapability(t *testing.T) {
	f := newFixture(t, false)
	c := seedCustomer(t, f, 10, 4)

	_, err := f.customerSvc.Reassign(ctxAs(asUser(10, user.LevelIndividual, 4)), c.ID(), 11, 5)
	require.ErrorIs(t, err, ErrForbidden)

	moved, err := f.customerSvc.Reassign(ctxAs(asUser(3, user.LevelRegional, 2)), c.ID(), 11, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(11), moved.OwnerID())
	assert.Equal(t, uint(5), moved.OrgUnitID())
}

func TestCustomerService_RequalifyCountsOpenDeals(t *testing.T) {
	f := newFixture(t, false)
	c := seedCustomer(t, f, 10, 4)
	ctx := ctxAs(asUser(10, user.LevelIndividual, 4))

	before, err := f.customerSvc.Requalify(ctx, c.ID())
	require.NoError(t, err)

	_, err = f.opportunities.Create(ctx, newDealFor(c.ID(), 10, 4))
	require.NoError(t, err)

	after, err := f.customerSvc.Requalify(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, before.QualificationScore()+20, after.QualificationScore())
}

func TestCustomerService_ViewSensitiveMasksForIndividuals(t *testing.T) {
	f := newFixture(t, false)
	c, err := f.customers.Create(context.Background(), customer.Hydrate(customer.HydrateParams{
		FirstName:     "Emir",
		LastName:      "Begic",
		Stage:         customer.StageCustomer,
		Segment:       customer.SegmentRetail,
		AccountNumber: "1990123456789012",
		OwnerID:       10,
		OrgUnitID:     4,
		Active:        true,
	}))
	require.NoError(t, err)

	_, account, err := f.customerSvc.ViewSensitive(ctxAs(asUser(10, user.LevelIndividual, 4)), c.ID())
	require.NoError(t, err)
	assert.Equal(t, "************9012", account)
	assert.Empty(t, f.auditEntries.entries)

	_, account, err = f.customerSvc.ViewSensitive(ctxAs(asUser(2, user.LevelBranch, 4)), c.ID())
	require.NoError(t, err)
	assert.Equal(t, "1990123456789012", account)
	require.Len(t, f.auditEntries.entries, 1)
	assert.Equal(t, "customer.view_sensitive", f.auditEntries.entries[0].Action)
}
