package persistence

import (
	"fmt"

	"github.com/iota-uz/bankcrm/modules/core/access"
)

// scopeFilter renders a visibility scope into SQL. ownerColumn is the
// column holding the row's owning user, unitColumn the row's org unit.
// The returned clause is appended to the WHERE list; args grow by at most
// one element. ScopeNone renders a contradiction so the query shape stays
// uniform.
func scopeFilter(scope access.Scope, ownerColumn, unitColumn string, args []interface{}) (string, []interface{}) {
	switch scope.Kind() {
	case access.ScopeAll:
		return "", args
	case access.ScopeOwner, access.ScopeActor:
		args = append(args, scope.UserID())
		return fmt.Sprintf("%s = $%d", ownerColumn, len(args)), args
	case access.ScopeUnits:
		args = append(args, scope.UnitIDs())
		return fmt.Sprintf("%s = ANY($%d)", unitColumn, len(args)), args
	case access.ScopeUnitMembers:
		// Rows are keyed by user; resolve membership inside the query
		// rather than materializing the user set first.
		args = append(args, scope.UnitIDs())
		return fmt.Sprintf("%s IN (SELECT id FROM users WHERE org_unit_id = ANY($%d))", ownerColumn, len(args)), args
	}
	return "FALSE", args
}
