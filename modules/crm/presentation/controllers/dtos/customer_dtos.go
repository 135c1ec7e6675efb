package dtos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
	"github.com/iota-uz/bankcrm/pkg/constants"
)

func validateStruct(dto any) (map[string]string, bool) {
	errorMessages := map[string]string{}
	errs := constants.Validate.Struct(dto)
	if errs == nil {
		return errorMessages, true
	}
	for _, err := range errs.(validator.ValidationErrors) {
		errorMessages[err.Field()] = fmt.Sprintf("failed on the %q rule", err.Tag())
	}
	return errorMessages, false
}

type CreateCustomerDTO struct {
	FirstName       string          `json:"first_name" validate:"required"`
	LastName        string          `json:"last_name" validate:"required"`
	CompanyName     string          `json:"company_name" validate:"omitempty"`
	Email           string          `json:"email" validate:"omitempty,email"`
	Phone           string          `json:"phone" validate:"omitempty"`
	Mobile          string          `json:"mobile" validate:"omitempty"`
	Segment         string          `json:"segment" validate:"required,oneof=retail sme corporate private_banking"`
	Source          string          `json:"source" validate:"omitempty"`
	EstimatedAssets decimal.Decimal `json:"estimated_assets" validate:"omitempty"`
	CreditScore     int             `json:"credit_score" validate:"omitempty,min=0,max=1000"`
	AccountNumber   string          `json:"account_number" validate:"omitempty"`
	OwnerID         uint            `json:"owner_id" validate:"required,gt=0"`
	OrgUnitID       uint            `json:"org_unit_id" validate:"required,gt=0"`
}

func (dto *CreateCustomerDTO) Normalize() {
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)
	dto.Email = strings.TrimSpace(dto.Email)
}

func (dto *CreateCustomerDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.Normalize()
	return validateStruct(dto)
}

func (dto *CreateCustomerDTO) ToEntity(now time.Time) customer.Customer {
	c := customer.New(dto.FirstName, dto.LastName, customer.Segment(dto.Segment), dto.OwnerID, dto.OrgUnitID, now)
	c = c.UpdateProfile(customer.ProfileParams{
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		CompanyName: dto.CompanyName,
		Email:       dto.Email,
		Phone:       dto.Phone,
		Mobile:      dto.Mobile,
		Source:      dto.Source,
		Segment:     customer.Segment(dto.Segment),
	})
	if !dto.EstimatedAssets.IsZero() {
		c = c.SetEstimatedAssets(dto.EstimatedAssets)
	}
	if dto.CreditScore > 0 {
		c = c.SetCreditScore(dto.CreditScore)
	}
	if dto.AccountNumber != "" {
		c = c.SetAccountNumber(dto.AccountNumber)
	}
	return c
}

type UpdateCustomerDTO struct {
	FirstName       string          `json:"first_name" validate:"required"`
	LastName        string          `json:"last_name" validate:"required"`
	CompanyName     string          `json:"company_name" validate:"omitempty"`
	Email           string          `json:"email" validate:"omitempty,email"`
	Phone           string          `json:"phone" validate:"omitempty"`
	Mobile          string          `json:"mobile" validate:"omitempty"`
	Segment         string          `json:"segment" validate:"omitempty,oneof=retail sme corporate private_banking"`
	Source          string          `json:"source" validate:"omitempty"`
	EstimatedAssets decimal.Decimal `json:"estimated_assets" validate:"omitempty"`
	CreditScore     int             `json:"credit_score" validate:"omitempty,min=0,max=1000"`
	AccountNumber   string          `json:"account_number" validate:"omitempty"`
	DoNotContact    bool            `json:"do_not_contact"`
	KYCStatus       string          `json:"kyc_status" validate:"omitempty,oneof=pending verified rejected"`
}

func (dto *UpdateCustomerDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)
	return validateStruct(dto)
}

// Apply folds the editable fields onto an existing customer.
func (dto *UpdateCustomerDTO) Apply(c customer.Customer) customer.Customer {
	c = c.UpdateProfile(customer.ProfileParams{
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		CompanyName: dto.CompanyName,
		Email:       dto.Email,
		Phone:       dto.Phone,
		Mobile:      dto.Mobile,
		Source:      dto.Source,
		Segment:     customer.Segment(dto.Segment),
	})
	c = c.SetEstimatedAssets(dto.EstimatedAssets)
	c = c.SetCreditScore(dto.CreditScore)
	c = c.SetDoNotContact(dto.DoNotContact)
	if dto.AccountNumber != "" {
		c = c.SetAccountNumber(dto.AccountNumber)
	}
	if dto.KYCStatus != "" {
		c = c.SetKYCStatus(dto.KYCStatus)
	}
	return c
}

type AdvanceStageDTO struct {
	Stage string `json:"stage" validate:"required"`
}

func (dto *AdvanceStageDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.Stage = strings.TrimSpace(strings.ToLower(dto.Stage))
	return validateStruct(dto)
}

type ReassignDTO struct {
	OwnerID   uint `json:"owner_id" validate:"required,gt=0"`
	OrgUnitID uint `json:"org_unit_id" validate:"required,gt=0"`
}

func (dto *ReassignDTO) Ok(ctx context.Context) (map[string]string, bool) {
	return validateStruct(dto)
}
