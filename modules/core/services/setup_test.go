package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
	"github.com/iota-uz/bankcrm/pkg/eventbus"
)

type memUserRepo struct {
	seq   uint
	items map[uint]user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{items: map[uint]user.User{}}
}

func (m *memUserRepo) GetAll(_ context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(m.items))
	for _, u := range m.items {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uint) (user.User, error) {
	u, ok := m.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.items {
		if u.Email() == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memUserRepo) GetPaginated(_ context.Context, params user.FindParams) ([]user.User, error) {
	var out []user.User
	for _, u := range m.items {
		if params.Role != "" && u.Role() != params.Role {
			continue
		}
		if len(params.OrgUnitIDs) > 0 && !containsID(params.OrgUnitIDs, u.OrgUnitID()) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) Count(ctx context.Context, params user.FindParams) (int64, error) {
	out, err := m.GetPaginated(ctx, params)
	return int64(len(out)), err
}

func (m *memUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	m.seq++
	u = user.Hydrate(user.HydrateParams{
		ID:           m.seq,
		Email:        u.Email(),
		Username:     u.Username(),
		PasswordHash: u.PasswordHash(),
		FirstName:    u.FirstName(),
		LastName:     u.LastName(),
		Phone:        u.Phone(),
		AccessLevel:  u.AccessLevel(),
		Role:         u.Role(),
		OrgUnitID:    u.OrgUnitID(),
		Active:       u.IsActive(),
		Verified:     u.IsVerified(),
		LastLogin:    u.LastLogin(),
		CreatedAt:    time.Now(),
	})
	m.items[m.seq] = u
	return u, nil
}

func (m *memUserRepo) Update(_ context.Context, u user.User) (user.User, error) {
	if _, ok := m.items[u.ID()]; !ok {
		return user.User{}, user.ErrNotFound
	}
	m.items[u.ID()] = u
	return u, nil
}

func (m *memUserRepo) UpdateLastLogin(_ context.Context, id uint) error {
	u, ok := m.items[id]
	if !ok {
		return user.ErrNotFound
	}
	now := time.Now()
	m.items[id] = user.Hydrate(user.HydrateParams{
		ID:           u.ID(),
		Email:        u.Email(),
		Username:     u.Username(),
		PasswordHash: u.PasswordHash(),
		FirstName:    u.FirstName(),
		LastName:     u.LastName(),
		Phone:        u.Phone(),
		AccessLevel:  u.AccessLevel(),
		Role:         u.Role(),
		OrgUnitID:    u.OrgUnitID(),
		Active:       u.IsActive(),
		Verified:     u.IsVerified(),
		LastLogin:    &now,
		CreatedAt:    u.CreatedAt(),
	})
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type memOrgUnitRepo struct {
	seq   uint
	items map[uint]orgunit.OrgUnit
}

func newMemOrgUnitRepo() *memOrgUnitRepo {
	return &memOrgUnitRepo{items: map[uint]orgunit.OrgUnit{}}
}

func (m *memOrgUnitRepo) GetAll(_ context.Context) ([]orgunit.OrgUnit, error) {
	out := make([]orgunit.OrgUnit, 0, len(m.items))
	for _, u := range m.items {
		out = append(out, u)
	}
	return out, nil
}

func (m *memOrgUnitRepo) GetByID(_ context.Context, id uint) (orgunit.OrgUnit, error) {
	u, ok := m.items[id]
	if !ok {
		return orgunit.OrgUnit{}, orgunit.ErrNotFound
	}
	return u, nil
}

func (m *memOrgUnitRepo) Create(_ context.Context, u orgunit.OrgUnit) (orgunit.OrgUnit, error) {
	m.seq++
	u = orgunit.Hydrate(m.seq, u.Name(), u.Kind(), u.Code(), u.ParentID(), u.IsActive(), time.Now())
	m.items[m.seq] = u
	return u, nil
}

func newUserService(t *testing.T) (*UserService, *memUserRepo) {
	t.Helper()
	repo := newMemUserRepo()
	return NewUserService(repo, eventbus.NewEventPublisher(logrus.New())), repo
}

func newOrgUnitService(t *testing.T) (*OrgUnitService, *memOrgUnitRepo) {
	t.Helper()
	repo := newMemOrgUnitRepo()
	return NewOrgUnitService(repo, eventbus.NewEventPublisher(logrus.New())), repo
}
