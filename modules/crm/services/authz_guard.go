package services

import (
	"context"
	"errors"

	"github.com/iota-uz/bankcrm/modules/core/access"
	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
	"github.com/iota-uz/bankcrm/pkg/composables"
)

var ErrForbidden = errors.New("forbidden")

// TreeProvider hands out the current org unit tree snapshot.
type TreeProvider interface {
	Tree() *orgunit.Tree
}

// authorizeFn and scopeFn are package variables so service tests can stub
// the guard without standing up a subject context.
var authorizeFn = defaultAuthorize

var scopeFn = defaultScope

// inTx is swappable for the same reason; unit tests run callbacks without
// a live pool.
var inTx = composables.InTx

func defaultAuthorize(ctx context.Context, tree *orgunit.Tree, capability access.Capability, target access.Record) error {
	subject, err := composables.UseSubject(ctx)
	if err != nil {
		return ErrForbidden
	}
	if !access.NewPolicy(tree).Authorize(subject, capability, target).Allowed() {
		return ErrForbidden
	}
	return nil
}

func defaultScope(ctx context.Context, tree *orgunit.Tree, kind access.EntityKind) (access.Scope, error) {
	subject, err := composables.UseSubject(ctx)
	if err != nil {
		return access.Scope{}, ErrForbidden
	}
	return access.NewScopeResolver(tree).ScopeFor(subject, kind), nil
}
