package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/pkg/eventbus"
)

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{repo: repo, publisher: publisher}
}

type UserCreatedEvent struct {
	Result user.User
}

func (s *UserService) GetByID(ctx context.Context, id uint) (user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) GetPaginated(ctx context.Context, params user.FindParams) ([]user.User, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *UserService) Count(ctx context.Context, params user.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *UserService) Create(ctx context.Context, u user.User, password string) (user.User, error) {
	if existing, err := s.repo.GetByEmail(ctx, u.Email()); err == nil && !existing.IsZero() {
		return user.User{}, user.ErrEmailTaken
	} else if err != nil && !errors.Is(err, user.ErrNotFound) {
		return user.User{}, errors.Wrap(err, "check email uniqueness")
	}
	u, err := u.SetPassword(password)
	if err != nil {
		return user.User{}, errors.Wrap(err, "hash password")
	}
	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return user.User{}, errors.Wrap(err, "create user")
	}
	s.publisher.Publish(UserCreatedEvent{Result: created})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, u user.User) (user.User, error) {
	return s.repo.Update(ctx, u)
}

// Authenticate verifies credentials and stamps the login time. Returns
// ErrNotFound for both unknown email and bad password so callers cannot
// probe which accounts exist.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}
	if !u.IsActive() || !u.CheckPassword(password) {
		return user.User{}, user.ErrNotFound
	}
	if err := s.repo.UpdateLastLogin(ctx, u.ID()); err != nil {
		return user.User{}, errors.Wrap(err, "update last login")
	}
	return u, nil
}
