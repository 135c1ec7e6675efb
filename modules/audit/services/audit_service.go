package services

import (
	"context"
	"time"

	"github.com/iota-uz/bankcrm/modules/audit/domain/entities/auditlog"
	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/pkg/composables"
)

type AuditService struct {
	repo    auditlog.Repository
	enabled bool
}

func NewAuditService(repo auditlog.Repository, enabled bool) *AuditService {
	return &AuditService{repo: repo, enabled: enabled}
}

// Record writes an audit entry. A write failure is logged and swallowed;
// the audited action must never fail because the trail could not be
// written.
func (s *AuditService) Record(ctx context.Context, e auditlog.Entry) {
	if !s.enabled {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if subject, err := composables.UseSubject(ctx); err == nil {
		if e.ActorID == 0 {
			e.ActorID = subject.ID()
		}
		if e.ActorName == "" {
			e.ActorName = subject.FullName()
		}
	}
	if params, ok := composables.UseParams(ctx); ok {
		e.IP = params.IP
		e.UserAgent = params.UserAgent
		e.RequestPath = params.Endpoint
	}
	if _, err := s.repo.Create(ctx, e); err != nil {
		writeFailures.Inc()
		composables.UseLogger(ctx).WithError(err).
			WithField("action", e.Action).
			Warn("failed to write audit entry")
	}
}

// Wrapped runs fn and records exactly one entry for it. When fn fails the
// entry carries success=false and the error text, and the error still
// propagates to the caller.
func (s *AuditService) Wrapped(ctx context.Context, action, entityKind string, entityID uint, details map[string]any, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	entry := auditlog.Entry{
		Action:     action,
		EntityKind: entityKind,
		EntityID:   entityID,
		Details:    details,
		Success:    err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.Record(ctx, entry)
	return err
}

// RecordedBy pre-fills the actor fields from a known user, for paths that
// run outside a request context such as the overdue sweep.
func (s *AuditService) RecordedBy(ctx context.Context, actor user.User, e auditlog.Entry) {
	e.ActorID = actor.ID()
	e.ActorName = actor.FullName()
	s.Record(ctx, e)
}

func (s *AuditService) List(ctx context.Context, params auditlog.FindParams) ([]auditlog.Entry, error) {
	return s.repo.List(ctx, params)
}

func (s *AuditService) Count(ctx context.Context, params auditlog.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}
