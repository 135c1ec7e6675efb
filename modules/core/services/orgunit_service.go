package services

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
	"github.com/iota-uz/bankcrm/pkg/eventbus"
)

// OrgUnitService owns the in-memory unit tree. The tree is rebuilt from
// storage on every structural change and swapped atomically, so
// authorization checks read a consistent snapshot without locking.
type OrgUnitService struct {
	repo      orgunit.Repository
	publisher eventbus.EventBus
	tree      atomic.Pointer[orgunit.Tree]
}

func NewOrgUnitService(repo orgunit.Repository, publisher eventbus.EventBus) *OrgUnitService {
	s := &OrgUnitService{repo: repo, publisher: publisher}
	s.tree.Store(orgunit.NewTree(nil))
	return s
}

// TreeChangedEvent is published after the snapshot is swapped.
type TreeChangedEvent struct {
	Units int
}

// Reload rebuilds the tree snapshot from storage.
func (s *OrgUnitService) Reload(ctx context.Context) error {
	units, err := s.repo.GetAll(ctx)
	if err != nil {
		return errors.Wrap(err, "reload org unit tree")
	}
	s.tree.Store(orgunit.NewTree(units))
	s.publisher.Publish(TreeChangedEvent{Units: len(units)})
	return nil
}

// Tree returns the current snapshot. Callers must not hold it across
// requests; take a fresh one per operation.
func (s *OrgUnitService) Tree() *orgunit.Tree {
	return s.tree.Load()
}

func (s *OrgUnitService) GetByID(ctx context.Context, id uint) (orgunit.OrgUnit, error) {
	if u, ok := s.tree.Load().Get(id); ok {
		return u, nil
	}
	return s.repo.GetByID(ctx, id)
}

func (s *OrgUnitService) GetAll(ctx context.Context) ([]orgunit.OrgUnit, error) {
	return s.repo.GetAll(ctx)
}

// Create persists a unit and refreshes the snapshot.
func (s *OrgUnitService) Create(ctx context.Context, u orgunit.OrgUnit) (orgunit.OrgUnit, error) {
	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return orgunit.OrgUnit{}, errors.Wrap(err, "create org unit")
	}
	if err := s.Reload(ctx); err != nil {
		return orgunit.OrgUnit{}, err
	}
	return created, nil
}
