package task

import "time"

type HydrateParams struct {
	ID             uint
	Title          string
	Description    string
	Kind           Kind
	Status         Status
	Priority       Priority
	CustomerID     uint
	OpportunityID  uint
	AssignedToID   uint
	AssignedByID   uint
	OrgUnitID      uint
	DueDate        *time.Time
	CompletedAt    *time.Time
	EscalationTier int
	EscalatedToID  uint
	EscalatedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func Hydrate(p HydrateParams) Task {
	return Task{
		id:             p.ID,
		title:          p.Title,
		description:    p.Description,
		kind:           p.Kind,
		status:         p.Status,
		priority:       p.Priority,
		customerID:     p.CustomerID,
		opportunityID:  p.OpportunityID,
		assignedToID:   p.AssignedToID,
		assignedByID:   p.AssignedByID,
		orgUnitID:      p.OrgUnitID,
		dueDate:        p.DueDate,
		completedAt:    p.CompletedAt,
		escalationTier: p.EscalationTier,
		escalatedToID:  p.EscalatedToID,
		escalatedAt:    p.EscalatedAt,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}
}
