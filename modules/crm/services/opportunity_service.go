package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	auditservices "github.com/iota-uz/bankcrm/modules/audit/services"
	"github.com/iota-uz/bankcrm/modules/core/access"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/opportunity"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/target"
	"github.com/iota-uz/bankcrm/pkg/eventbus"
)

type OpportunityService struct {
	repo         opportunity.Repository
	customers    customer.Repository
	targets      target.Repository
	units        TreeProvider
	audit        *auditservices.AuditService
	publisher    eventbus.EventBus
	strictStages bool
}

func NewOpportunityService(
	repo opportunity.Repository,
	customers customer.Repository,
	targets target.Repository,
	units TreeProvider,
	audit *auditservices.AuditService,
	publisher eventbus.EventBus,
	strictStages bool,
) *OpportunityService {
	return &OpportunityService{
		repo:         repo,
		customers:    customers,
		targets:      targets,
		units:        units,
		audit:        audit,
		publisher:    publisher,
		strictStages: strictStages,
	}
}

type OpportunityWonEvent struct {
	OpportunityID uint
	CustomerID    uint
	OwnerID       uint
	ActualRevenue decimal.Decimal
}

type OpportunityLostEvent struct {
	OpportunityID uint
	CustomerID    uint
	Reason        opportunity.LostReason
}

// customerRecord resolves the access record an opportunity is judged by;
// access always follows the customer the deal belongs to.
func (s *OpportunityService) customerRecord(ctx context.Context, o opportunity.Opportunity) (access.Record, error) {
	c, err := s.customers.GetByID(ctx, o.CustomerID())
	if err != nil {
		return access.Record{}, errors.Wrap(err, "resolve opportunity customer")
	}
	return c.AccessRecord(), nil
}

func (s *OpportunityService) GetByID(ctx context.Context, id uint) (opportunity.Opportunity, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	rec, err := s.customerRecord(ctx, o)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapView, rec); err != nil {
		return opportunity.Opportunity{}, err
	}
	return o, nil
}

func (s *OpportunityService) List(ctx context.Context, params opportunity.FindParams) ([]opportunity.Opportunity, error) {
	scope, err := scopeFn(ctx, s.units.Tree(), access.KindOpportunity)
	if err != nil {
		return nil, err
	}
	params.Scope = scope
	return s.repo.List(ctx, params)
}

func (s *OpportunityService) Count(ctx context.Context, params opportunity.FindParams) (int64, error) {
	scope, err := scopeFn(ctx, s.units.Tree(), access.KindOpportunity)
	if err != nil {
		return 0, err
	}
	params.Scope = scope
	return s.repo.Count(ctx, params)
}

func (s *OpportunityService) Create(ctx context.Context, o opportunity.Opportunity) (opportunity.Opportunity, error) {
	rec, err := s.customerRecord(ctx, o)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, rec); err != nil {
		return opportunity.Opportunity{}, err
	}
	return s.repo.Create(ctx, o)
}

func (s *OpportunityService) Update(ctx context.Context, o opportunity.Opportunity) (opportunity.Opportunity, error) {
	current, err := s.repo.GetByID(ctx, o.ID())
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	rec, err := s.customerRecord(ctx, current)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, rec); err != nil {
		return opportunity.Opportunity{}, err
	}
	return s.repo.Update(ctx, o)
}

func (s *OpportunityService) Delete(ctx context.Context, id uint) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	rec, err := s.customerRecord(ctx, o)
	if err != nil {
		return err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapDelete, rec); err != nil {
		return err
	}
	return s.audit.Wrapped(ctx, "opportunity.delete", "opportunity", id, nil, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
}

func (s *OpportunityService) AdvanceStage(ctx context.Context, id uint, newStage opportunity.Stage) (opportunity.Opportunity, error) {
	switch newStage {
	case opportunity.StageWon:
		return s.MarkWon(ctx, id, nil)
	case opportunity.StageLost:
		return opportunity.Opportunity{}, opportunity.ErrLostReasonRequired
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	rec, err := s.customerRecord(ctx, o)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, rec); err != nil {
		return opportunity.Opportunity{}, err
	}

	details := map[string]any{"from": string(o.Stage()), "to": string(newStage)}
	var updated opportunity.Opportunity
	err = s.audit.Wrapped(ctx, "opportunity.stage_change", "opportunity", id, details, func(ctx context.Context) error {
		return inTx(ctx, func(ctx context.Context) error {
			moved, err := o.AdvanceStage(newStage, time.Now(), s.strictStages)
			if err != nil {
				return err
			}
			updated, err = s.repo.Update(ctx, moved)
			return err
		})
	})
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	return updated, nil
}

// MarkWon closes the deal as won and credits every active revenue target
// of the owner whose period covers today. The opportunity update,
// achievement rows and target updates commit in the same transaction; a
// failure anywhere rolls the whole close back.
func (s *OpportunityService) MarkWon(ctx context.Context, id uint, actualRevenue *decimal.Decimal) (opportunity.Opportunity, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	rec, err := s.customerRecord(ctx, o)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, rec); err != nil {
		return opportunity.Opportunity{}, err
	}

	var updated opportunity.Opportunity
	err = s.audit.Wrapped(ctx, "opportunity.won", "opportunity", id, map[string]any{"amount": o.Amount().String()}, func(ctx context.Context) error {
		return inTx(ctx, func(ctx context.Context) error {
			now := time.Now()
			won, err := o.MarkWon(actualRevenue, now, s.strictStages)
			if err != nil {
				return err
			}
			updated, err = s.repo.Update(ctx, won)
			if err != nil {
				return err
			}
			return s.creditRevenueTargets(ctx, updated, now)
		})
	})
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	s.publisher.Publish(OpportunityWonEvent{
		OpportunityID: updated.ID(),
		CustomerID:    updated.CustomerID(),
		OwnerID:       updated.OwnerID(),
		ActualRevenue: updated.ActualRevenue(),
	})
	return updated, nil
}

func (s *OpportunityService) creditRevenueTargets(ctx context.Context, won opportunity.Opportunity, now time.Time) error {
	targets, err := s.targets.ListActiveForUser(ctx, won.OwnerID(), target.TypeRevenue, now)
	if err != nil {
		return errors.Wrap(err, "list revenue targets")
	}
	for _, tgt := range targets {
		credited := tgt.ApplyAchievement(won.ActualRevenue())
		if _, err := s.targets.Update(ctx, credited); err != nil {
			return errors.Wrap(err, "credit target")
		}
		_, err := s.targets.CreateAchievement(ctx, target.Achievement{
			TargetID:    tgt.ID(),
			Amount:      won.ActualRevenue(),
			SourceKind:  "opportunity",
			SourceID:    won.ID(),
			Description: fmt.Sprintf("won: %s", won.Name()),
			CreatedAt:   now,
		})
		if err != nil {
			return errors.Wrap(err, "record achievement")
		}
	}
	return nil
}

func (s *OpportunityService) MarkLost(ctx context.Context, id uint, reason opportunity.LostReason, notes, competitor string) (opportunity.Opportunity, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	rec, err := s.customerRecord(ctx, o)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, rec); err != nil {
		return opportunity.Opportunity{}, err
	}

	var updated opportunity.Opportunity
	err = s.audit.Wrapped(ctx, "opportunity.lost", "opportunity", id, map[string]any{"reason": string(reason)}, func(ctx context.Context) error {
		return inTx(ctx, func(ctx context.Context) error {
			lost, err := o.MarkLost(reason, notes, competitor, time.Now(), s.strictStages)
			if err != nil {
				return err
			}
			updated, err = s.repo.Update(ctx, lost)
			return err
		})
	})
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	s.publisher.Publish(OpportunityLostEvent{OpportunityID: id, CustomerID: o.CustomerID(), Reason: reason})
	return updated, nil
}

func (s *OpportunityService) Reassign(ctx context.Context, id, newOwnerID, newOrgUnitID uint) (opportunity.Opportunity, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	rec, err := s.customerRecord(ctx, o)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapReassign, rec); err != nil {
		return opportunity.Opportunity{}, err
	}
	details := map[string]any{"from_owner": o.OwnerID(), "to_owner": newOwnerID}
	var updated opportunity.Opportunity
	err = s.audit.Wrapped(ctx, "opportunity.reassign", "opportunity", id, details, func(ctx context.Context) error {
		updated, err = s.repo.Update(ctx, o.Reassign(newOwnerID, newOrgUnitID))
		return err
	})
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	return updated, nil
}
