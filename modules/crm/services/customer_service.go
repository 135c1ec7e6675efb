package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/audit/domain/entities/auditlog"
	auditservices "github.com/iota-uz/bankcrm/modules/audit/services"
	"github.com/iota-uz/bankcrm/modules/core/access"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/opportunity"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/eventbus"
)

type CustomerService struct {
	repo          customer.Repository
	opportunities opportunity.Repository
	units         TreeProvider
	audit         *auditservices.AuditService
	publisher     eventbus.EventBus
	strictStages  bool
}

func NewCustomerService(
	repo customer.Repository,
	opportunities opportunity.Repository,
	units TreeProvider,
	audit *auditservices.AuditService,
	publisher eventbus.EventBus,
	strictStages bool,
) *CustomerService {
	return &CustomerService{
		repo:          repo,
		opportunities: opportunities,
		units:         units,
		audit:         audit,
		publisher:     publisher,
		strictStages:  strictStages,
	}
}

type CustomerStageChangedEvent struct {
	CustomerID uint
	From       customer.Stage
	To         customer.Stage
}

func (s *CustomerService) GetByID(ctx context.Context, id uint) (customer.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapView, c.AccessRecord()); err != nil {
		return customer.Customer{}, err
	}
	return c, nil
}

// List returns customers inside the caller's visibility scope. The scope
// predicate is applied by the repository inside the query.
func (s *CustomerService) List(ctx context.Context, params customer.FindParams) ([]customer.Customer, error) {
	scope, err := scopeFn(ctx, s.units.Tree(), access.KindCustomer)
	if err != nil {
		return nil, err
	}
	params.Scope = scope
	return s.repo.List(ctx, params)
}

func (s *CustomerService) Count(ctx context.Context, params customer.FindParams) (int64, error) {
	scope, err := scopeFn(ctx, s.units.Tree(), access.KindCustomer)
	if err != nil {
		return 0, err
	}
	params.Scope = scope
	return s.repo.Count(ctx, params)
}

func (s *CustomerService) Create(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, c.AccessRecord()); err != nil {
		return customer.Customer{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *CustomerService) Update(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	current, err := s.repo.GetByID(ctx, c.ID())
	if err != nil {
		return customer.Customer{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, current.AccessRecord()); err != nil {
		return customer.Customer{}, err
	}
	return s.repo.Update(ctx, c)
}

func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapDelete, c.AccessRecord()); err != nil {
		return err
	}
	return s.audit.Wrapped(ctx, "customer.delete", "customer", id, nil, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
}

// AdvanceStage moves a customer through the funnel inside one transaction
// and records the change in the audit trail.
func (s *CustomerService) AdvanceStage(ctx context.Context, id uint, newStage customer.Stage) (customer.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, c.AccessRecord()); err != nil {
		return customer.Customer{}, err
	}

	from := c.Stage()
	details := map[string]any{"from": string(from), "to": string(newStage)}
	var updated customer.Customer
	err = s.audit.Wrapped(ctx, "customer.stage_change", "customer", id, details, func(ctx context.Context) error {
		return inTx(ctx, func(ctx context.Context) error {
			moved, err := c.AdvanceStage(newStage, time.Now(), s.strictStages)
			if err != nil {
				return err
			}
			updated, err = s.repo.Update(ctx, moved)
			return err
		})
	})
	if err != nil {
		return customer.Customer{}, err
	}
	s.publisher.Publish(CustomerStageChangedEvent{CustomerID: id, From: from, To: updated.Stage()})
	return updated, nil
}

// Requalify recomputes the qualification score from current signals.
func (s *CustomerService) Requalify(ctx context.Context, id uint) (customer.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, c.AccessRecord()); err != nil {
		return customer.Customer{}, err
	}
	hasActive, err := s.opportunities.HasActiveForCustomer(ctx, id)
	if err != nil {
		return customer.Customer{}, errors.Wrap(err, "check active opportunities")
	}
	return s.repo.Update(ctx, c.Requalify(time.Now(), hasActive))
}

func (s *CustomerService) RecordContact(ctx context.Context, id uint) (customer.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapEdit, c.AccessRecord()); err != nil {
		return customer.Customer{}, err
	}
	return s.repo.Update(ctx, c.RecordContact(time.Now()))
}

// Reassign hands the customer to a new owner. Requires the reassign
// capability on the current record and is always audited.
func (s *CustomerService) Reassign(ctx context.Context, id, newOwnerID, newOrgUnitID uint) (customer.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}
	if err := authorizeFn(ctx, s.units.Tree(), access.CapReassign, c.AccessRecord()); err != nil {
		return customer.Customer{}, err
	}
	details := map[string]any{"from_owner": c.OwnerID(), "to_owner": newOwnerID}
	var updated customer.Customer
	err = s.audit.Wrapped(ctx, "customer.reassign", "customer", id, details, func(ctx context.Context) error {
		updated, err = s.repo.Update(ctx, c.Reassign(newOwnerID, newOrgUnitID))
		return err
	})
	if err != nil {
		return customer.Customer{}, err
	}
	return updated, nil
}

// ViewSensitive returns the customer with the account number revealed only
// to callers holding the sensitive-data capability; everyone else gets the
// masked form. The reveal is audited.
func (s *CustomerService) ViewSensitive(ctx context.Context, id uint) (customer.Customer, string, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return customer.Customer{}, "", err
	}
	subject, err := composables.UseSubject(ctx)
	if err != nil {
		return customer.Customer{}, "", ErrForbidden
	}
	account := access.NewPolicy(s.units.Tree()).MaskAccountNumber(subject, c.AccountNumber())
	if account == c.AccountNumber() && account != "" {
		s.audit.Record(ctx, auditlog.Entry{
			Action:     "customer.view_sensitive",
			EntityKind: "customer",
			EntityID:   id,
		})
	}
	return c, account, nil
}
