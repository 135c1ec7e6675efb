package persistence

import (
	"database/sql"
	"time"

	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/customer"
	"github.com/iota-uz/bankcrm/modules/crm/domain/aggregates/opportunity"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/target"
	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/task"
	"github.com/iota-uz/bankcrm/modules/crm/infrastructure/persistence/models"
)

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func ptrNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullID(id uint) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}

func nullIDValue(v sql.NullInt64) uint {
	if !v.Valid {
		return 0
	}
	return uint(v.Int64)
}

func toDomainCustomer(m models.Customer) customer.Customer {
	return customer.Hydrate(customer.HydrateParams{
		ID:              m.ID,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		CompanyName:     m.CompanyName.String,
		Email:           m.Email.String,
		Phone:           m.Phone.String,
		Mobile:          m.Mobile.String,
		Stage:           customer.Stage(m.Stage),
		Segment:         customer.Segment(m.Segment),
		Score:           m.Score,
		EstimatedAssets: m.EstimatedAssets,
		CreditScore:     m.CreditScore,
		HighNetWorth:    m.HighNetWorth,
		AccountNumber:   m.AccountNumber.String,
		OwnerID:         m.OwnerID,
		OrgUnitID:       m.OrgUnitID,
		Source:          m.Source.String,
		SuspectDate:     nullTimePtr(m.SuspectDate),
		ProspectDate:    nullTimePtr(m.ProspectDate),
		LeadDate:        nullTimePtr(m.LeadDate),
		CustomerDate:    nullTimePtr(m.CustomerDate),
		LastContactDate: nullTimePtr(m.LastContactDate),
		Active:          m.IsActive,
		DoNotContact:    m.DoNotContact,
		KYCStatus:       m.KYCStatus,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	})
}

func toDBCustomer(c customer.Customer) models.Customer {
	return models.Customer{
		ID:              c.ID(),
		FirstName:       c.FirstName(),
		LastName:        c.LastName(),
		CompanyName:     nullString(c.CompanyName()),
		Email:           nullString(c.Email()),
		Phone:           nullString(c.Phone()),
		Mobile:          nullString(c.Mobile()),
		Stage:           string(c.Stage()),
		Segment:         string(c.Segment()),
		Score:           c.QualificationScore(),
		EstimatedAssets: c.EstimatedAssets(),
		CreditScore:     c.CreditScore(),
		HighNetWorth:    c.IsHighNetWorth(),
		AccountNumber:   nullString(c.AccountNumber()),
		OwnerID:         c.OwnerID(),
		OrgUnitID:       c.OrgUnitID(),
		Source:          nullString(c.Source()),
		SuspectDate:     ptrNullTime(c.SuspectDate()),
		ProspectDate:    ptrNullTime(c.ProspectDate()),
		LeadDate:        ptrNullTime(c.LeadDate()),
		CustomerDate:    ptrNullTime(c.CustomerDate()),
		LastContactDate: ptrNullTime(c.LastContactDate()),
		IsActive:        c.IsActive(),
		DoNotContact:    c.DoNotContact(),
		KYCStatus:       c.KYCStatus(),
		UpdatedAt:       c.UpdatedAt(),
	}
}

func toDomainOpportunity(m models.Opportunity) opportunity.Opportunity {
	return opportunity.Hydrate(opportunity.HydrateParams{
		ID:              m.ID,
		Name:            m.Name,
		CustomerID:      m.CustomerID,
		ProductLine:     opportunity.ProductLine(m.ProductLine),
		Stage:           opportunity.Stage(m.Stage),
		Amount:          m.Amount,
		Probability:     m.Probability,
		ExpectedRevenue: m.ExpectedRevenue,
		ActualRevenue:   m.ActualRevenue,
		ExpectedClose:   nullTimePtr(m.ExpectedClose),
		ActualClose:     nullTimePtr(m.ActualClose),
		OwnerID:         m.OwnerID,
		OrgUnitID:       m.OrgUnitID,
		Active:          m.IsActive,
		WonDate:         nullTimePtr(m.WonDate),
		LostDate:        nullTimePtr(m.LostDate),
		LostReason:      opportunity.LostReason(m.LostReason.String),
		LostNotes:       m.LostNotes.String,
		CompetitorName:  m.CompetitorName.String,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	})
}

func toDBOpportunity(o opportunity.Opportunity) models.Opportunity {
	return models.Opportunity{
		ID:              o.ID(),
		Name:            o.Name(),
		CustomerID:      o.CustomerID(),
		ProductLine:     string(o.ProductLine()),
		Stage:           string(o.Stage()),
		Amount:          o.Amount(),
		Probability:     o.Probability(),
		ExpectedRevenue: o.ExpectedRevenue(),
		ActualRevenue:   o.ActualRevenue(),
		ExpectedClose:   ptrNullTime(o.ExpectedCloseDate()),
		ActualClose:     ptrNullTime(o.ActualCloseDate()),
		OwnerID:         o.OwnerID(),
		OrgUnitID:       o.OrgUnitID(),
		IsActive:        o.IsActive(),
		WonDate:         ptrNullTime(o.WonDate()),
		LostDate:        ptrNullTime(o.LostDate()),
		LostReason:      nullString(string(o.LostReason())),
		LostNotes:       nullString(o.LostNotes()),
		CompetitorName:  nullString(o.CompetitorName()),
		UpdatedAt:       o.UpdatedAt(),
	}
}

func toDomainTask(m models.Task) task.Task {
	return task.Hydrate(task.HydrateParams{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description.String,
		Kind:           task.Kind(m.Kind),
		Status:         task.Status(m.Status),
		Priority:       task.Priority(m.Priority),
		CustomerID:     nullIDValue(m.CustomerID),
		OpportunityID:  nullIDValue(m.OpportunityID),
		AssignedToID:   m.AssignedToID,
		AssignedByID:   m.AssignedByID,
		OrgUnitID:      m.OrgUnitID,
		DueDate:        nullTimePtr(m.DueDate),
		CompletedAt:    nullTimePtr(m.CompletedAt),
		EscalationTier: m.EscalationTier,
		EscalatedToID:  nullIDValue(m.EscalatedToID),
		EscalatedAt:    nullTimePtr(m.EscalatedAt),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	})
}

func toDBTask(t task.Task) models.Task {
	return models.Task{
		ID:             t.ID(),
		Title:          t.Title(),
		Description:    nullString(t.Description()),
		Kind:           string(t.Kind()),
		Status:         string(t.Status()),
		Priority:       string(t.Priority()),
		CustomerID:     nullID(t.CustomerID()),
		OpportunityID:  nullID(t.OpportunityID()),
		AssignedToID:   t.AssignedToID(),
		AssignedByID:   t.AssignedByID(),
		OrgUnitID:      t.OrgUnitID(),
		DueDate:        ptrNullTime(t.DueDate()),
		CompletedAt:    ptrNullTime(t.CompletedAt()),
		EscalationTier: t.EscalationTier(),
		EscalatedToID:  nullID(t.EscalatedToID()),
		EscalatedAt:    ptrNullTime(t.EscalatedAt()),
		UpdatedAt:      t.UpdatedAt(),
	}
}

func toDomainTarget(m models.Target) target.Target {
	return target.Hydrate(target.HydrateParams{
		ID:            m.ID,
		Name:          m.Name,
		Type:          target.Type(m.Type),
		Period:        target.Period(m.Period),
		PeriodStart:   m.PeriodStart,
		PeriodEnd:     m.PeriodEnd,
		TargetValue:   m.TargetValue,
		AchievedValue: m.AchievedValue,
		UserID:        m.UserID,
		OrgUnitID:     m.OrgUnitID,
		Active:        m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	})
}

func toDBTarget(t target.Target) models.Target {
	return models.Target{
		ID:            t.ID(),
		Name:          t.Name(),
		Type:          string(t.Type()),
		Period:        string(t.Period()),
		PeriodStart:   t.PeriodStart(),
		PeriodEnd:     t.PeriodEnd(),
		TargetValue:   t.TargetValue(),
		AchievedValue: t.AchievedValue(),
		UserID:        t.UserID(),
		OrgUnitID:     t.OrgUnitID(),
		IsActive:      t.IsActive(),
		UpdatedAt:     t.UpdatedAt(),
	}
}

func toDomainAchievement(m models.TargetAchievement) target.Achievement {
	return target.Achievement{
		ID:          m.ID,
		TargetID:    m.TargetID,
		Amount:      m.Amount,
		SourceKind:  m.SourceKind,
		SourceID:    m.SourceID,
		Description: m.Description.String,
		CreatedAt:   m.CreatedAt,
	}
}
