package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bankcrm/modules/audit/domain/entities/auditlog"
	"github.com/iota-uz/bankcrm/modules/audit/services"
	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/pkg/composables"
)

type memAuditRepo struct {
	entries []auditlog.Entry
	failing bool
}

func (m *memAuditRepo) GetByID(_ context.Context, id uint) (auditlog.Entry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return auditlog.Entry{}, auditlog.ErrNotFound
}

func (m *memAuditRepo) List(_ context.Context, _ auditlog.FindParams) ([]auditlog.Entry, error) {
	return m.entries, nil
}

func (m *memAuditRepo) Count(_ context.Context, _ auditlog.FindParams) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *memAuditRepo) Create(_ context.Context, e auditlog.Entry) (auditlog.Entry, error) {
	if m.failing {
		return auditlog.Entry{}, errors.New("storage down")
	}
	e.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, e)
	return e, nil
}

func subjectCtx() context.Context {
	u := user.Hydrate(user.HydrateParams{
		ID:        7,
		Username:  "b.karimov",
		FirstName: "Bekzod",
		LastName:  "Karimov",
		Active:    true,
	})
	return composables.WithSubject(context.Background(), u)
}

func TestWrappedRecordsSuccess(t *testing.T) {
	repo := &memAuditRepo{}
	svc := services.NewAuditService(repo, true)

	err := svc.Wrapped(subjectCtx(), "customer.reassign", "customer", 42, map[string]any{"to": 9}, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.True(t, e.Success)
	assert.Empty(t, e.Error)
	assert.Equal(t, uint(7), e.ActorID)
	assert.Equal(t, "Bekzod Karimov", e.ActorName)
	assert.Equal(t, "customer.reassign", e.Action)
	assert.Equal(t, uint(42), e.EntityID)
}

func TestWrappedFailureStillRecordsAndPropagates(t *testing.T) {
	repo := &memAuditRepo{}
	svc := services.NewAuditService(repo, true)
	boom := errors.New("not authorized")

	err := svc.Wrapped(subjectCtx(), "customer.delete", "customer", 42, nil, func(ctx context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.False(t, e.Success)
	assert.Equal(t, "not authorized", e.Error)
}

func TestRecordSwallowsRepositoryFailure(t *testing.T) {
	repo := &memAuditRepo{failing: true}
	svc := services.NewAuditService(repo, true)

	assert.NotPanics(t, func() {
		svc.Record(subjectCtx(), auditlog.Entry{Action: "customer.view_sensitive"})
	})
	assert.Empty(t, repo.entries)
}

func TestWrappedSurvivesAuditStorageFailure(t *testing.T) {
	repo := &memAuditRepo{failing: true}
	svc := services.NewAuditService(repo, true)

	err := svc.Wrapped(subjectCtx(), "customer.edit", "customer", 1, nil, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
}

func TestDisabledServiceWritesNothing(t *testing.T) {
	repo := &memAuditRepo{}
	svc := services.NewAuditService(repo, false)

	svc.Record(subjectCtx(), auditlog.Entry{Action: "customer.view_sensitive"})
	assert.Empty(t, repo.entries)
}
