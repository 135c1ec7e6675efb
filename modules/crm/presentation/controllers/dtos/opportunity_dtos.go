package dtos

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/opportunity"
)

type CreateOpportunityDTO struct {
	Name              string          `json:"name" validate:"required"`
	CustomerID        uint            `json:"customer_id" validate:"required,gt=0"`
	ProductLine       string          `json:"product_line" validate:"required,oneof=retail_loan mortgage credit_card savings_account investment insurance sme_loan"`
	Amount            decimal.Decimal `json:"amount" validate:"required"`
	OwnerID           uint            `json:"owner_id" validate:"required,gt=0"`
	OrgUnitID         uint            `json:"org_unit_id" validate:"required,gt=0"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date" validate:"omitempty"`
}

func (dto *CreateOpportunityDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.Name = strings.TrimSpace(dto.Name)
	return validateStruct(dto)
}

func (dto *CreateOpportunityDTO) ToEntity() opportunity.Opportunity {
	o := opportunity.New(dto.Name, dto.CustomerID, opportunity.ProductLine(dto.ProductLine), dto.Amount, dto.OwnerID, dto.OrgUnitID)
	if dto.ExpectedCloseDate != nil {
		o = o.SetExpectedCloseDate(dto.ExpectedCloseDate)
	}
	return o
}

type UpdateOpportunityDTO struct {
	Name              string          `json:"name" validate:"required"`
	Amount            decimal.Decimal `json:"amount" validate:"required"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date" validate:"omitempty"`
}

func (dto *UpdateOpportunityDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.Name = strings.TrimSpace(dto.Name)
	return validateStruct(dto)
}

type MarkWonDTO struct {
	ActualRevenue *decimal.Decimal `json:"actual_revenue" validate:"omitempty"`
}

func (dto *MarkWonDTO) Ok(ctx context.Context) (map[string]string, bool) {
	return validateStruct(dto)
}

type MarkLostDTO struct {
	Reason     string `json:"reason" validate:"required,oneof=price competitor no_response timing no_need credit_rejected other"`
	Notes      string `json:"notes" validate:"omitempty"`
	Competitor string `json:"competitor" validate:"omitempty"`
}

func (dto *MarkLostDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.Reason = strings.TrimSpace(strings.ToLower(dto.Reason))
	return validateStruct(dto)
}
