package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
)

func TestUserService_CreateHashesPassword(t *testing.T) {
	svc, _ := newUserService(t)

	created, err := svc.Create(
		context.Background(),
		user.New("Amar.Begic@bank.ba", "abegic", "Amar", "Begic", user.LevelIndividual, user.RoleSales, 4),
		"s3cret-pass",
	)
	require.NoError(t, err)
	assert.Equal(t, "amar.begic@bank.ba", created.Email())
	assert.NotEmpty(t, created.PasswordHash())
	assert.NotContains(t, created.PasswordHash(), "s3cret-pass")
	assert.True(t, created.CheckPassword("s3cret-pass"))
}

func TestUserService_CreateRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Create(
		context.Background(),
		user.New("amar@bank.ba", "abegic", "Amar", "Begic", user.LevelIndividual, user.RoleSales, 4),
		"s3cret-pass",
	)
	require.NoError(t, err)

	_, err = svc.Create(
		context.Background(),
		user.New("AMAR@bank.ba", "abegic2", "Amar", "Begic", user.LevelIndividual, user.RoleSales, 4),
		"other-pass",
	)
	require.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestUserService_Authenticate(t *testing.T) {
	svc, repo := newUserService(t)

	created, err := svc.Create(
		context.Background(),
		user.New("rm@bank.ba", "rm", "Relationship", "Manager", user.LevelIndividual, user.RoleSales, 4),
		"correct-horse",
	)
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		u, err := svc.Authenticate(context.Background(), "rm@bank.ba", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, created.ID(), u.ID())

		stored, err := repo.GetByID(context.Background(), created.ID())
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLogin())
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody@bank.ba", "correct-horse")
		require.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "rm@bank.ba", "wrong")
		require.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("inactive account", func(t *testing.T) {
		stored, err := repo.GetByID(context.Background(), created.ID())
		require.NoError(t, err)
		_, err = repo.Update(context.Background(), user.Hydrate(user.HydrateParams{
			ID:           stored.ID(),
			Email:        stored.Email(),
			Username:     stored.Username(),
			PasswordHash: stored.PasswordHash(),
			AccessLevel:  stored.AccessLevel(),
			Role:         stored.Role(),
			OrgUnitID:    stored.OrgUnitID(),
			Active:       false,
		}))
		require.NoError(t, err)

		_, err = svc.Authenticate(context.Background(), "rm@bank.ba", "correct-horse")
		require.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestUserService_GetPaginatedFilters(t *testing.T) {
	svc, _ := newUserService(t)

	for _, spec := range []struct {
		email  string
		role   user.Role
		unitID uint
	}{
		{"a@bank.ba", user.RoleSales, 4},
		{"b@bank.ba", user.RoleSales, 5},
		{"c@bank.ba", user.RoleAnalyst, 4},
	} {
		_, err := svc.Create(
			context.Background(),
			user.New(spec.email, spec.email, "First", "Last", user.LevelIndividual, spec.role, spec.unitID),
			"s3cret-pass",
		)
		require.NoError(t, err)
	}

	byRole, err := svc.GetPaginated(context.Background(), user.FindParams{Role: user.RoleSales})
	require.NoError(t, err)
	assert.Len(t, byRole, 2)

	byUnit, err := svc.GetPaginated(context.Background(), user.FindParams{OrgUnitIDs: []uint{4}})
	require.NoError(t, err)
	assert.Len(t, byUnit, 2)

	n, err := svc.Count(context.Background(), user.FindParams{Role: user.RoleAnalyst})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
