package user

import "context"

type FindParams struct {
	OrgUnitIDs []uint
	Role       Role
	Limit      int
	Offset     int
}

type Repository interface {
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uint) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetPaginated(ctx context.Context, params FindParams) ([]User, error)
	Count(ctx context.Context, params FindParams) (int64, error)
	Create(ctx context.Context, data User) (User, error)
	Update(ctx context.Context, data User) (User, error)
	UpdateLastLogin(ctx context.Context, id uint) error
}
