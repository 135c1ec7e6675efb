package services

import (
	"context"

	auditservices "github.com/iota-uz/bankcrm/modules/audit/services"
	"github.com/iota-uz/bankcrm/modules/core/access"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/target"
)

type TargetService struct {
	repo  target.Repository
	units TreeProvider
	audit *auditservices.AuditService
}

func NewTargetService(repo target.Repository, units TreeProvider, audit *auditservices.AuditService) *TargetService {
	return &TargetService{repo: repo, units: units, audit: audit}
}

func (s *TargetService) GetByID(ctx context.Context, id uint) (target.Target, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return target.Target{}, err
	}
	rec := access.Record{OwnerID: t.UserID(), OrgUnitID: t.OrgUnitID()}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapView, rec); err != nil {
		return target.Target{}, err
	}
	return t, nil
}

// List narrows results to the caller's scope; individuals see their own
// targets, managers see their subtree's.
func (s *TargetService) List(ctx context.Context, params target.FindParams) ([]target.Target, error) {
	scope, err := scopeFn(ctx, s.units.Tree(), access.KindTarget)
	if err != nil {
		return nil, err
	}
	switch scope.Kind() {
	case access.ScopeNone:
		return nil, nil
	case access.ScopeOwner, access.ScopeActor:
		params.UserID = scope.UserID()
	case access.ScopeUnits, access.ScopeUnitMembers:
		params.OrgUnitIDs = scope.UnitIDs()
	}
	return s.repo.List(ctx, params)
}

// SetTarget creates a quota for a user. The capability is level-gated:
// only branch level and above may assign targets.
func (s *TargetService) SetTarget(ctx context.Context, t target.Target) (target.Target, error) {
	rec := access.Record{OwnerID: t.UserID(), OrgUnitID: t.OrgUnitID()}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapSetTarget, rec); err != nil {
		return target.Target{}, err
	}
	var created target.Target
	err := s.audit.Wrapped(ctx, "target.set", "target", 0, map[string]any{
		"user":  t.UserID(),
		"type":  string(t.Type()),
		"value": t.TargetValue().String(),
	}, func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, t)
		return err
	})
	if err != nil {
		return target.Target{}, err
	}
	return created, nil
}

func (s *TargetService) Update(ctx context.Context, t target.Target) (target.Target, error) {
	rec := access.Record{OwnerID: t.UserID(), OrgUnitID: t.OrgUnitID()}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapSetTarget, rec); err != nil {
		return target.Target{}, err
	}
	return s.repo.Update(ctx, t)
}

func (s *TargetService) Deactivate(ctx context.Context, id uint) (target.Target, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return target.Target{}, err
	}
	rec := access.Record{OwnerID: t.UserID(), OrgUnitID: t.OrgUnitID()}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapSetTarget, rec); err != nil {
		return target.Target{}, err
	}
	return s.repo.Update(ctx, t.Deactivate())
}

// ApplyManualAchievement credits a target outside the automatic WON flow,
// for achievement types the pipeline cannot observe such as calls held.
func (s *TargetService) ApplyManualAchievement(ctx context.Context, targetID uint, a target.Achievement) (target.Target, error) {
	t, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return target.Target{}, err
	}
	rec := access.Record{OwnerID: t.UserID(), OrgUnitID: t.OrgUnitID()}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapSetTarget, rec); err != nil {
		return target.Target{}, err
	}
	var updated target.Target
	err = inTx(ctx, func(ctx context.Context) error {
		updated, err = s.repo.Update(ctx, t.ApplyAchievement(a.Amount))
		if err != nil {
			return err
		}
		a.TargetID = targetID
		_, err = s.repo.CreateAchievement(ctx, a)
		return err
	})
	if err != nil {
		return target.Target{}, err
	}
	return updated, nil
}

func (s *TargetService) Achievements(ctx context.Context, targetID uint) ([]target.Achievement, error) {
	if _, err := s.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	return s.repo.ListAchievements(ctx, targetID)
}
