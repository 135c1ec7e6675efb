package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iota-uz/bankcrm/modules/core/access"
)

var (
	ErrNotFound          = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid task status transition")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusOverdue    Status = "overdue"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusOverdue:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Kind string

const (
	KindCall       Kind = "call"
	KindMeeting    Kind = "meeting"
	KindFollowUp   Kind = "follow_up"
	KindDocument   Kind = "document"
	KindKYCReview  Kind = "kyc_review"
	KindCreditDesk Kind = "credit_desk"
)

type Task struct {
	id             uint
	title          string
	description    string
	kind           Kind
	status         Status
	priority       Priority
	customerID     uint
	opportunityID  uint
	assignedToID   uint
	assignedByID   uint
	orgUnitID      uint
	dueDate        *time.Time
	completedAt    *time.Time
	escalationTier int
	escalatedToID  uint
	escalatedAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func New(title string, kind Kind, priority Priority, assignedToID, assignedByID, orgUnitID uint, dueDate *time.Time) Task {
	return Task{
		title:        strings.TrimSpace(title),
		kind:         kind,
		status:       StatusPending,
		priority:     priority,
		assignedToID: assignedToID,
		assignedByID: assignedByID,
		orgUnitID:    orgUnitID,
		dueDate:      dueDate,
	}
}

func (t Task) ID() uint                { return t.id }
func (t Task) Title() string           { return t.title }
func (t Task) Description() string     { return t.description }
func (t Task) Kind() Kind              { return t.kind }
func (t Task) Status() Status          { return t.status }
func (t Task) Priority() Priority      { return t.priority }
func (t Task) CustomerID() uint        { return t.customerID }
func (t Task) OpportunityID() uint     { return t.opportunityID }
func (t Task) AssignedToID() uint      { return t.assignedToID }
func (t Task) AssignedByID() uint      { return t.assignedByID }
func (t Task) OrgUnitID() uint         { return t.orgUnitID }
func (t Task) DueDate() *time.Time     { return t.dueDate }
func (t Task) CompletedAt() *time.Time { return t.completedAt }
func (t Task) EscalationTier() int     { return t.escalationTier }
func (t Task) EscalatedToID() uint     { return t.escalatedToID }
func (t Task) EscalatedAt() *time.Time { return t.escalatedAt }
func (t Task) CreatedAt() time.Time    { return t.createdAt }
func (t Task) UpdatedAt() time.Time    { return t.updatedAt }

// AccessRecord ties the task to its assignee for authorization; tasks are
// owned by the person they are assigned to.
func (t Task) AccessRecord() access.Record {
	return access.Record{OwnerID: t.assignedToID, OrgUnitID: t.orgUnitID}
}

func (t Task) WithDescription(d string) Task {
	t.description = d
	return t
}

func (t Task) ForCustomer(customerID uint) Task {
	t.customerID = customerID
	return t
}

func (t Task) ForOpportunity(opportunityID uint) Task {
	t.opportunityID = opportunityID
	return t
}

// Start moves a pending or overdue task into progress.
func (t Task) Start() (Task, error) {
	if t.status.IsTerminal() || t.status == StatusInProgress {
		return t, ErrInvalidTransition
	}
	t.status = StatusInProgress
	return t, nil
}

// Complete finishes the task. Completing an already completed task is a
// no-op; completing a cancelled task is an error.
func (t Task) Complete(now time.Time) (Task, error) {
	if t.status == StatusCompleted {
		return t, nil
	}
	if t.status == StatusCancelled {
		return t, ErrInvalidTransition
	}
	t.status = StatusCompleted
	t.completedAt = &now
	return t, nil
}

func (t Task) Cancel() (Task, error) {
	if t.status.IsTerminal() {
		return t, ErrInvalidTransition
	}
	t.status = StatusCancelled
	return t, nil
}

// CheckOverdue flips a pending or in-progress task to OVERDUE when its due
// date has passed. Overdue is detected on read or by the sweep, never by a
// background mutation of unrelated rows. Returns whether the status changed.
func (t Task) CheckOverdue(now time.Time) (Task, bool) {
	if t.status != StatusPending && t.status != StatusInProgress {
		return t, false
	}
	if t.dueDate == nil || !now.After(*t.dueDate) {
		return t, false
	}
	t.status = StatusOverdue
	return t, true
}

// Escalate bumps the task one tier and hands it to the named user.
// Terminal tasks cannot be escalated; the tier only moves up.
func (t Task) Escalate(toID uint, now time.Time) (Task, error) {
	if t.status.IsTerminal() {
		return t, ErrInvalidTransition
	}
	t.escalationTier++
	t.escalatedToID = toID
	t.escalatedAt = &now
	return t, nil
}

func (t Task) Reassign(assignedToID, orgUnitID uint) Task {
	t.assignedToID = assignedToID
	t.orgUnitID = orgUnitID
	return t
}

// FindParams filters task listings; Scope is pushed into the query.
type FindParams struct {
	Scope        access.Scope
	Status       Status
	Priority     Priority
	AssignedToID uint
	CustomerID   uint
	DueBefore    *time.Time
	Limit        int
	Offset       int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (Task, error)
	List(ctx context.Context, params FindParams) ([]Task, error)
	Count(ctx context.Context, params FindParams) (int64, error)
	Create(ctx context.Context, t Task) (Task, error)
	Update(ctx context.Context, t Task) (Task, error)
	Delete(ctx context.Context, id uint) error
	// ListDue returns pending and in-progress tasks whose due date has
	// passed; the overdue sweep walks this set.
	ListDue(ctx context.Context, before time.Time, limit int) ([]Task, error)
}
