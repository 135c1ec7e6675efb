package composables

import (
	"context"
	"errors"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/pkg/constants"
)

var ErrNoSubject = errors.New("no authenticated subject in context")

// WithSubject stores the authenticated user for the request.
func WithSubject(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, constants.SubjectKey, u)
}

// UseSubject returns the authenticated user, or ErrNoSubject when the
// request carries none.
func UseSubject(ctx context.Context) (user.User, error) {
	u, ok := ctx.Value(constants.SubjectKey).(user.User)
	if !ok || u.IsZero() {
		return user.User{}, ErrNoSubject
	}
	return u, nil
}
