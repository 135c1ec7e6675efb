package dtos

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/target"
)

type SetTargetDTO struct {
	Name        string          `json:"name" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=revenue new_customers opportunities_won calls meetings"`
	Period      string          `json:"period" validate:"required,oneof=monthly quarterly yearly"`
	PeriodStart time.Time       `json:"period_start" validate:"required"`
	PeriodEnd   time.Time       `json:"period_end" validate:"required"`
	TargetValue decimal.Decimal `json:"target_value" validate:"required"`
	UserID      uint            `json:"user_id" validate:"required,gt=0"`
	OrgUnitID   uint            `json:"org_unit_id" validate:"required,gt=0"`
}

func (dto *SetTargetDTO) Ok(ctx context.Context) (map[string]string, bool) {
	dto.Name = strings.TrimSpace(dto.Name)
	return validateStruct(dto)
}

func (dto *SetTargetDTO) ToEntity() (target.Target, error) {
	return target.New(dto.Name, target.Type(dto.Type), target.Period(dto.Period), dto.PeriodStart, dto.PeriodEnd, dto.TargetValue, dto.UserID, dto.OrgUnitID)
}

type ManualAchievementDTO struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"omitempty"`
}

func (dto *ManualAchievementDTO) Ok(ctx context.Context) (map[string]string, bool) {
	return validateStruct(dto)
}
