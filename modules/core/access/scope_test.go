package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iota-uz/bankcrm/modules/core/access"
	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
)

func TestScopeFor_Executive(t *testing.T) {
	resolver := access.NewScopeResolver(testTree())
	scope := resolver.ScopeFor(subject(1, user.LevelExecutive, 3), access.KindCustomer)

	assert.Equal(t, access.ScopeAll, scope.Kind())
	assert.True(t, scope.Matches(access.Record{OwnerID: 42, OrgUnitID: 5}))
}

func TestScopeFor_IndividualOwnership(t *testing.T) {
	resolver := access.NewScopeResolver(testTree())
	scope := resolver.ScopeFor(subject(7, user.LevelIndividual, 4), access.KindCustomer)

	assert.Equal(t, access.ScopeOwner, scope.Kind())
	assert.Equal(t, uint(7), scope.UserID())
	assert.True(t, scope.Matches(access.Record{OwnerID: 7, OrgUnitID: 4}))
	assert.False(t, scope.Matches(access.Record{OwnerID: 8, OrgUnitID: 4}))
}

func TestScopeFor_IndividualTasksUseActorScope(t *testing.T) {
	resolver := access.NewScopeResolver(testTree())
	scope := resolver.ScopeFor(subject(7, user.LevelIndividual, 4), access.KindTask)

	assert.Equal(t, access.ScopeActor, scope.Kind())
	assert.Equal(t, uint(7), scope.UserID())
}

func TestScopeFor_RegionalUnitSet(t *testing.T) {
	resolver := access.NewScopeResolver(testTree())
	scope := resolver.ScopeFor(subject(2, user.LevelRegional, 2), access.KindCustomer)

	assert.Equal(t, access.ScopeUnits, scope.Kind())
	assert.ElementsMatch(t, []uint{2, 4, 5, 6}, scope.UnitIDs())
	assert.True(t, scope.Matches(access.Record{OrgUnitID: 6}))
	assert.False(t, scope.Matches(access.Record{OrgUnitID: 3}))
}

func TestScopeFor_BranchTasksKeyedByUnitMembers(t *testing.T) {
	resolver := access.NewScopeResolver(testTree())
	scope := resolver.ScopeFor(subject(3, user.LevelBranch, 4), access.KindTask)

	assert.Equal(t, access.ScopeUnitMembers, scope.Kind())
	assert.ElementsMatch(t, []uint{4, 6}, scope.UnitIDs())
}

func TestScopeFor_UnauthenticatedMatchesNothing(t *testing.T) {
	resolver := access.NewScopeResolver(testTree())

	var nobody user.User
	scope := resolver.ScopeFor(nobody, access.KindCustomer)
	assert.Equal(t, access.ScopeNone, scope.Kind())
	assert.False(t, scope.Matches(access.Record{OwnerID: 1, OrgUnitID: 1}))
}

func TestScopeFor_UnitMissingFromSnapshotDoesNotWiden(t *testing.T) {
	resolver := access.NewScopeResolver(testTree())
	scope := resolver.ScopeFor(subject(9, user.LevelBranch, 77), access.KindCustomer)

	assert.Equal(t, access.ScopeUnits, scope.Kind())
	assert.Equal(t, []uint{77}, scope.UnitIDs())
}
