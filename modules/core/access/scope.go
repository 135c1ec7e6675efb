package access

import (
	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
)

// ScopeKind selects the filter shape the storage layer pushes down.
type ScopeKind int

const (
	// ScopeNone matches nothing; issued for unauthenticated subjects.
	ScopeNone ScopeKind = iota
	// ScopeAll matches everything; issued for executives.
	ScopeAll
	// ScopeOwner matches rows owned by the subject.
	ScopeOwner
	// ScopeActor matches tasks the subject is assigned to or created.
	ScopeActor
	// ScopeUnits matches rows whose organizational unit is in the set.
	ScopeUnits
	// ScopeUnitMembers matches rows keyed by users belonging to the units
	// in the set (tasks and other user-keyed entities).
	ScopeUnitMembers
)

// Scope is a declarative predicate over a record set. It is rendered into
// a storage-level filter (for example an in-set WHERE clause) so that rows
// outside the subject's reach are never materialized; it is never applied
// by loading rows into memory first.
type Scope struct {
	kind    ScopeKind
	userID  uint
	unitIDs []uint
}

func (s Scope) Kind() ScopeKind { return s.kind }
func (s Scope) UserID() uint    { return s.userID }
func (s Scope) UnitIDs() []uint { return s.unitIDs }

// Matches evaluates the predicate in memory. The storage layer pushes the
// same predicate down in SQL; this form exists for already loaded records
// and for tests.
func (s Scope) Matches(r Record) bool {
	switch s.kind {
	case ScopeAll:
		return true
	case ScopeOwner, ScopeActor:
		return r.OwnerID != 0 && r.OwnerID == s.userID
	case ScopeUnits, ScopeUnitMembers:
		for _, id := range s.unitIDs {
			if id == r.OrgUnitID {
				return true
			}
		}
		return false
	}
	return false
}

// ScopeResolver derives bulk-listing predicates from a subject's access
// level and unit. Like Policy it is a pure function of its inputs plus an
// immutable tree snapshot.
type ScopeResolver struct {
	tree *orgunit.Tree
}

func NewScopeResolver(tree *orgunit.Tree) *ScopeResolver {
	return &ScopeResolver{tree: tree}
}

// ScopeFor returns the predicate restricting what subject may list for the
// given entity kind.
func (r *ScopeResolver) ScopeFor(subject user.User, kind EntityKind) Scope {
	if subject.IsZero() || !subject.IsActive() {
		return Scope{kind: ScopeNone}
	}
	if subject.AccessLevel() == user.LevelExecutive {
		return Scope{kind: ScopeAll}
	}

	if subject.AccessLevel() == user.LevelIndividual {
		if kind == KindTask {
			// Individuals see tasks assigned to them plus tasks they
			// handed to others.
			return Scope{kind: ScopeActor, userID: subject.ID()}
		}
		return Scope{kind: ScopeOwner, userID: subject.ID()}
	}

	units := r.tree.AccessibleFrom(subject.OrgUnitID())
	if len(units) == 0 {
		// Subject's unit is missing from the snapshot: fall back to the
		// unit id itself rather than widening.
		units = []uint{subject.OrgUnitID()}
	}
	if kind == KindTask || kind == KindUser {
		return Scope{kind: ScopeUnitMembers, unitIDs: units}
	}
	return Scope{kind: ScopeUnits, unitIDs: units}
}
