package customer

import (
	"context"

	"github.com/iota-uz/bankcrm/modules/core/access"
)

type FindParams struct {
	Scope   access.Scope
	Stage   Stage
	Segment Segment
	OwnerID uint
	Limit   int
	Offset  int
}

// Repository applies FindParams.Scope inside the storage query, never by
// post-filtering loaded rows.
type Repository interface {
	GetByID(ctx context.Context, id uint) (Customer, error)
	List(ctx context.Context, params FindParams) ([]Customer, error)
	Count(ctx context.Context, params FindParams) (int64, error)
	Create(ctx context.Context, data Customer) (Customer, error)
	Update(ctx context.Context, data Customer) (Customer, error)
	Delete(ctx context.Context, id uint) error
}
