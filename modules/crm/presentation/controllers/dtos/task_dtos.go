package dtos

import (
	"context"
	"strings"
	"time"

	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/task"
)

type CreateTaskDTO struct {
	Title         string     `json:"title" validate:"required"`
	Description   string     `json:"description" validate:"omitempty"`
	Kind          string     `json:"kind" validate:"required,oneof=call meeting follow_up document kyc_review credit_desk"`
	Priority      string     `json:"priority" validate:"required,oneof=low medium high urgent"`
	CustomerID    uint       `json:"customer_id" validate:"omitempty"`
	OpportunityID uint       `json:"opportunity_id" validate:"omitempty"`
	AssignedToID  uint       `json:"assigned_to_id" validate:"required,gt=0"`
	OrgUnitID     uint       `json:"org_unit_id" validate:"required,gt=0"`
	DueDate       *time.Time `json:"due_date" validate:"omitempty"`
}

func (dto *CreateTaskDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.Title = strings.TrimSpace(dto.Title)
	return validateStruct(dto)
}

func (dto *CreateTaskDTO) ToEntity(assignedByID uint) task.Task {
	t := task.New(dto.Title, task.Kind(dto.Kind), task.Priority(dto.Priority), dto.AssignedToID, assignedByID, dto.OrgUnitID, dto.DueDate)
	if dto.Description != "" {
		t = t.WithDescription(dto.Description)
	}
	if dto.CustomerID != 0 {
		t = t.ForCustomer(dto.CustomerID)
	}
	if dto.OpportunityID != 0 {
		t = t.ForOpportunity(dto.OpportunityID)
	}
	return t
}

type EscalateTaskDTO struct {
	ToID uint `json:"to_id" validate:"required,gt=0"`
}

func (dto *EscalateTaskDTO) Ok(ctx context.Context) (map[string]string, bool) {
	return validateStruct(dto)
}
