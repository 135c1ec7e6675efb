package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/bankcrm/modules/audit/domain/entities/auditlog"
	auditservices "github.com/iota-uz/bankcrm/modules/audit/services"
	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/opportunity"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/target"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/task"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/eventbus"
)

// stubTx runs transactional callbacks directly; unit tests have no pool.
func stubTx(t *testing.T) {
	t.Helper()
	prev := inTx
	inTx = func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	}
	t.Cleanup(func() { inTx = prev })
}

// fixtureTree mirrors a small retail hierarchy:
//
//	1 division
//	  2 region
//	    4 branch
//	    5 branch
//	  3 region
func fixtureTree() *orgunit.Tree {
	var zero time.Time
	return orgunit.NewTree([]orgunit.OrgUnit{
		orgunit.Hydrate(1, "Retail Division", orgunit.KindDivision, "DIV-RET", 0, true, zero),
		orgunit.Hydrate(2, "North Region", orgunit.KindRegion, "REG-N", 1, true, zero),
		orgunit.Hydrate(3, "South Region", orgunit.KindRegion, "REG-S", 1, true, zero),
		orgunit.Hydrate(4, "Branch 001", orgunit.KindBranch, "BR-001", 2, true, zero),
		orgunit.Hydrate(5, "Branch 002", orgunit.KindBranch, "BR-002", 2, true, zero),
	})
}

type staticTree struct{ tree *orgunit.Tree }

func (s staticTree) Tree() *orgunit.Tree { return s.tree }

func asUser(id uint, level user.AccessLevel, unitID uint) user.User {
	return user.Hydrate(user.HydrateParams{
		ID:          id,
		Email:       "rm@bank.ba",
		Username:    "rm",
		FirstName:   "Relationship",
		LastName:    "Manager",
		AccessLevel: level,
		Role:        user.RoleSales,
		OrgUnitID:   unitID,
		Active:      true,
		Verified:    true,
	})
}

func ctxAs(u user.User) context.Context {
	return composables.WithSubject(context.Background(), u)
}

type memCustomerRepo struct {
	seq   uint
	items map[uint]customer.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{items: map[uint]customer.Customer{}}
}

func (m *memCustomerRepo) GetByID(_ context.Context, id uint) (customer.Customer, error) {
	c, ok := m.items[id]
	if !ok {
		return customer.Customer{}, customer.ErrNotFound
	}
	return c, nil
}

func (m *memCustomerRepo) List(_ context.Context, params customer.FindParams) ([]customer.Customer, error) {
	var out []customer.Customer
	for _, c := range m.items {
		if params.Scope.Matches(c.AccessRecord()) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCustomerRepo) Count(ctx context.Context, params customer.FindParams) (int64, error) {
	out, err := m.List(ctx, params)
	return int64(len(out)), err
}

func (m *memCustomerRepo) Create(_ context.Context, c customer.Customer) (customer.Customer, error) {
	m.seq++
	c = customer.Hydrate(hydrateCustomer(m.seq, c))
	m.items[m.seq] = c
	return c, nil
}

func (m *memCustomerRepo) Update(_ context.Context, c customer.Customer) (customer.Customer, error) {
	if _, ok := m.items[c.ID()]; !ok {
		return customer.Customer{}, customer.ErrNotFound
	}
	m.items[c.ID()] = c
	return c, nil
}

func (m *memCustomerRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.items[id]; !ok {
		return customer.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func hydrateCustomer(id uint, c customer.Customer) customer.HydrateParams {
	return customer.HydrateParams{
		ID:              id,
		FirstName:       c.FirstName(),
		LastName:        c.LastName(),
		CompanyName:     c.CompanyName(),
		Email:           c.Email(),
		Phone:           c.Phone(),
		Mobile:          c.Mobile(),
		Stage:           c.Stage(),
		Segment:         c.Segment(),
		Score:           c.QualificationScore(),
		EstimatedAssets: c.EstimatedAssets(),
		CreditScore:     c.CreditScore(),
		HighNetWorth:    c.IsHighNetWorth(),
		AccountNumber:   c.AccountNumber(),
		OwnerID:         c.OwnerID(),
		OrgUnitID:       c.OrgUnitID(),
		Source:          c.Source(),
		SuspectDate:     c.SuspectDate(),
		ProspectDate:    c.ProspectDate(),
		LeadDate:        c.LeadDate(),
		CustomerDate:    c.CustomerDate(),
		LastContactDate: c.LastContactDate(),
		Active:          c.IsActive(),
		DoNotContact:    c.DoNotContact(),
		KYCStatus:       c.KYCStatus(),
	}
}

type memOpportunityRepo struct {
	seq   uint
	items map[uint]opportunity.Opportunity
}

func newMemOpportunityRepo() *memOpportunityRepo {
	return &memOpportunityRepo{items: map[uint]opportunity.Opportunity{}}
}

func (m *memOpportunityRepo) GetByID(_ context.Context, id uint) (opportunity.Opportunity, error) {
	o, ok := m.items[id]
	if !ok {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	return o, nil
}

func (m *memOpportunityRepo) List(_ context.Context, params opportunity.FindParams) ([]opportunity.Opportunity, error) {
	var out []opportunity.Opportunity
	for _, o := range m.items {
		if params.Scope.Matches(o.AccessRecord()) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOpportunityRepo) Count(ctx context.Context, params opportunity.FindParams) (int64, error) {
	out, err := m.List(ctx, params)
	return int64(len(out)), err
}

func (m *memOpportunityRepo) Create(_ context.Context, o opportunity.Opportunity) (opportunity.Opportunity, error) {
	m.seq++
	o = opportunity.Hydrate(hydrateOpportunity(m.seq, o))
	m.items[m.seq] = o
	return o, nil
}

func (m *memOpportunityRepo) Update(_ context.Context, o opportunity.Opportunity) (opportunity.Opportunity, error) {
	if _, ok := m.items[o.ID()]; !ok {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	m.items[o.ID()] = o
	return o, nil
}

func (m *memOpportunityRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.items[id]; !ok {
		return opportunity.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memOpportunityRepo) HasActiveForCustomer(_ context.Context, customerID uint) (bool, error) {
	for _, o := range m.items {
		if o.CustomerID() == customerID && o.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func hydrateOpportunity(id uint, o opportunity.Opportunity) opportunity.HydrateParams {
	return opportunity.HydrateParams{
		ID:              id,
		Name:            o.Name(),
		CustomerID:      o.CustomerID(),
		ProductLine:     o.ProductLine(),
		Stage:           o.Stage(),
		Amount:          o.Amount(),
		Probability:     o.Probability(),
		ExpectedRevenue: o.ExpectedRevenue(),
		ActualRevenue:   o.ActualRevenue(),
		ExpectedClose:   o.ExpectedCloseDate(),
		ActualClose:     o.ActualCloseDate(),
		OwnerID:         o.OwnerID(),
		OrgUnitID:       o.OrgUnitID(),
		Active:          o.IsActive(),
		WonDate:         o.WonDate(),
		LostDate:        o.LostDate(),
		LostReason:      o.LostReason(),
		LostNotes:       o.LostNotes(),
		CompetitorName:  o.CompetitorName(),
	}
}

type memTargetRepo struct {
	seq          uint
	items        map[uint]target.Target
	achievements []target.Achievement
}

func newMemTargetRepo() *memTargetRepo {
	return &memTargetRepo{items: map[uint]target.Target{}}
}

func (m *memTargetRepo) GetByID(_ context.Context, id uint) (target.Target, error) {
	t, ok := m.items[id]
	if !ok {
		return target.Target{}, target.ErrNotFound
	}
	return t, nil
}

func (m *memTargetRepo) List(_ context.Context, params target.FindParams) ([]target.Target, error) {
	var out []target.Target
	for _, t := range m.items {
		if params.UserID != 0 && t.UserID() != params.UserID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memTargetRepo) Create(_ context.Context, t target.Target) (target.Target, error) {
	m.seq++
	t = target.Hydrate(hydrateTarget(m.seq, t))
	m.items[m.seq] = t
	return t, nil
}

func (m *memTargetRepo) Update(_ context.Context, t target.Target) (target.Target, error) {
	if _, ok := m.items[t.ID()]; !ok {
		return target.Target{}, target.ErrNotFound
	}
	m.items[t.ID()] = t
	return t, nil
}

func (m *memTargetRepo) Delete(_ context.Context, id uint) error {
	delete(m.items, id)
	return nil
}

func (m *memTargetRepo) ListActiveForUser(_ context.Context, userID uint, targetType target.Type, at time.Time) ([]target.Target, error) {
	var out []target.Target
	for _, t := range m.items {
		if t.UserID() == userID && t.Type() == targetType && t.IsActive() && t.Covers(at) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTargetRepo) CreateAchievement(_ context.Context, a target.Achievement) (target.Achievement, error) {
	a.ID = uint(len(m.achievements) + 1)
	m.achievements = append(m.achievements, a)
	return a, nil
}

func (m *memTargetRepo) ListAchievements(_ context.Context, targetID uint) ([]target.Achievement, error) {
	var out []target.Achievement
	for _, a := range m.achievements {
		if a.TargetID == targetID {
			out = append(out, a)
		}
	}
	return out, nil
}

func hydrateTarget(id uint, t target.Target) target.HydrateParams {
	return target.HydrateParams{
		ID:            id,
		Name:          t.Name(),
		Type:          t.Type(),
		Period:        t.Period(),
		PeriodStart:   t.PeriodStart(),
		PeriodEnd:     t.PeriodEnd(),
		TargetValue:   t.TargetValue(),
		AchievedValue: t.AchievedValue(),
		UserID:        t.UserID(),
		OrgUnitID:     t.OrgUnitID(),
		Active:        t.IsActive(),
	}
}

type memTaskRepo struct {
	seq   uint
	items map[uint]task.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{items: map[uint]task.Task{}}
}

func (m *memTaskRepo) GetByID(_ context.Context, id uint) (task.Task, error) {
	t, ok := m.items[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (m *memTaskRepo) List(_ context.Context, params task.FindParams) ([]task.Task, error) {
	var out []task.Task
	for _, t := range m.items {
		if params.Scope.Matches(t.AccessRecord()) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTaskRepo) Count(ctx context.Context, params task.FindParams) (int64, error) {
	out, err := m.List(ctx, params)
	return int64(len(out)), err
}

func (m *memTaskRepo) Create(_ context.Context, t task.Task) (task.Task, error) {
	m.seq++
	t = task.Hydrate(hydrateTask(m.seq, t))
	m.items[m.seq] = t
	return t, nil
}

func (m *memTaskRepo) Update(_ context.Context, t task.Task) (task.Task, error) {
	if _, ok := m.items[t.ID()]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	m.items[t.ID()] = t
	return t, nil
}

func (m *memTaskRepo) Delete(_ context.Context, id uint) error {
	delete(m.items, id)
	return nil
}

func (m *memTaskRepo) ListDue(_ context.Context, before time.Time, limit int) ([]task.Task, error) {
	var out []task.Task
	for _, t := range m.items {
		if len(out) >= limit {
			break
		}
		if t.Status() != task.StatusPending && t.Status() != task.StatusInProgress {
			continue
		}
		if t.DueDate() != nil && before.After(*t.DueDate()) {
			out = append(out, t)
		}
	}
	return out, nil
}

func hydrateTask(id uint, t task.Task) task.HydrateParams {
	return task.HydrateParams{
		ID:             id,
		Title:          t.Title(),
		Description:    t.Description(),
		Kind:           t.Kind(),
		Status:         t.Status(),
		Priority:       t.Priority(),
		CustomerID:     t.CustomerID(),
		OpportunityID:  t.OpportunityID(),
		AssignedToID:   t.AssignedToID(),
		AssignedByID:   t.AssignedByID(),
		OrgUnitID:      t.OrgUnitID(),
		DueDate:        t.DueDate(),
		CompletedAt:    t.CompletedAt(),
		EscalationTier: t.EscalationTier(),
		EscalatedToID:  t.EscalatedToID(),
		EscalatedAt:    t.EscalatedAt(),
	}
}

type memAuditRepo struct {
	entries []auditlog.Entry
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
	e.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, e)
	return e, nil
}

type fixture struct {
	customers     *memCustomerRepo
	opportunities *memOpportunityRepo
	targets       *memTargetRepo
	tasks         *memTaskRepo
	auditEntries  *memAuditRepo

	customerSvc    *CustomerService
	opportunitySvc *OpportunityService
	taskSvc        *TaskService
	targetSvc      *TargetService
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	stubTx(t)

	f := &fixture{
		customers:     newMemCustomerRepo(),
		opportunities: newMemOpportunityRepo(),
		targets:       newMemTargetRepo(),
		tasks:         newMemTaskRepo(),
		auditEntries:  &memAuditRepo{},
	}
	units := staticTree{tree: fixtureTree()}
	audit := auditservices.NewAuditService(f.auditEntries, true)
	bus := eventbus.NewEventPublisher(logrus.New())

	f.customerSvc = NewCustomerService(f.customers, f.opportunities, units, audit, bus, strict)
	f.opportunitySvc = NewOpportunityService(f.opportunities, f.customers, f.targets, units, audit, bus, strict)
	f.taskSvc = NewTaskService(f.tasks, units, audit, bus)
	f.targetSvc = NewTargetService(f.targets, units, audit)
	return f
}
