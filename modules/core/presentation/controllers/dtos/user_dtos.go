package dtos

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/pkg/constants"
)

type CreateUserDTO struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Phone       string `json:"phone" validate:"omitempty"`
	Password    string `json:"password" validate:"required,min=8"`
	AccessLevel int    `json:"access_level" validate:"required,min=1,max=4"`
	Role        string `json:"role" validate:"required"`
	OrgUnitID   uint   `json:"org_unit_id" validate:"required,gt=0"`
}

func (dto *CreateUserDTO) Normalize() {
	dto.Email = strings.TrimSpace(strings.ToLower(dto.Email))
	dto.Username = strings.TrimSpace(dto.Username)
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)
}

func (dto *CreateUserDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.Normalize()
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

func (dto *CreateUserDTO) ToEntity() (user.User, error) {
	level, err := user.NewAccessLevel(dto.AccessLevel)
	if err != nil {
		return user.User{}, err
	}
	role, err := user.NewRole(dto.Role)
	if err != nil {
		return user.User{}, err
	}
	u := user.New(dto.Email, dto.Username, dto.FirstName, dto.LastName, level, role, dto.OrgUnitID)
	if dto.Phone != "" {
		u = u.SetPhone(dto.Phone)
	}
	return u, nil
}

type CreateOrgUnitDTO struct {
	Name     string `json:"name" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=division region branch team"`
	Code     string `json:"code" validate:"omitempty"`
	ParentID uint   `json:"parent_id" validate:"omitempty"`
}

func (dto *CreateOrgUnitDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Code = strings.TrimSpace(dto.Code)
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
