package opportunity

import (
	"context"

	"github.com/iota-uz/bankcrm/modules/core/access"
)

// FindParams filters opportunity listings. Scope is rendered into the
// storage query so rows outside the caller's reach are never fetched.
type FindParams struct {
	Scope       access.Scope
	CustomerID  uint
	Stage       Stage
	ProductLine ProductLine
	OwnerID     uint
	ActiveOnly  bool
	Limit       int
	Offset      int
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (Opportunity, error)
	List(ctx context.Context, params FindParams) ([]Opportunity, error)
	Count(ctx context.Context, params FindParams) (int64, error)
	Create(ctx context.Context, o Opportunity) (Opportunity, error)
	Update(ctx context.Context, o Opportunity) (Opportunity, error)
	Delete(ctx context.Context, id uint) error
	// HasActiveForCustomer reports whether the customer owns at least one
	// open opportunity; feeds qualification scoring.
	HasActiveForCustomer(ctx context.Context, customerID uint) (bool, error)
}
