package auditlog

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("audit entry not found")

// Entry is a write-once record of a sensitive action. Entries are only
// appended and listed; there is no update or delete.
type Entry struct {
	ID          uint
	ActorID     uint
	ActorName   string
	Action      string
	EntityKind  string
	EntityID    uint
	Success     bool
	Error       string
	Details     map[string]any
	IP          string
	UserAgent   string
	RequestPath string
	CreatedAt   time.Time
}

type FindParams struct {
	ActorID    uint
	Action     string
	EntityKind string
	EntityID   uint
	After      *time.Time
	Before     *time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (Entry, error)
	List(ctx context.Context, params FindParams) ([]Entry, error)
	Count(ctx context.Context, params FindParams) (int64, error)
	Create(ctx context.Context, e Entry) (Entry, error)
}
