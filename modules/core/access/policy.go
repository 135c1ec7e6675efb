package access

import (
	"strings"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
)

// Policy is the pure hierarchical access decision engine. It holds only an
// immutable org tree snapshot and is safe for concurrent use.
type Policy struct {
	tree *orgunit.Tree
}

func NewPolicy(tree *orgunit.Tree) *Policy {
	return &Policy{tree: tree}
}

// Authorize evaluates whether subject may exercise capability on target.
//
// Precedence: executives are allowed everything; individuals may view and
// edit only records they own and may never delete, reassign or approve;
// regional and branch subjects reach any record whose unit sits in their
// own subtree. SetTarget, ViewAnalytics and ViewSensitiveData are
// level-gated rather than record-gated.
func (p *Policy) Authorize(subject user.User, capability Capability, target Record) Verdict {
	verdict := p.authorize(subject, capability, target)
	observeVerdict(capability, verdict)
	return verdict
}

func (p *Policy) authorize(subject user.User, capability Capability, target Record) Verdict {
	if subject.IsZero() || !subject.IsActive() {
		return Deny
	}
	if subject.AccessLevel() == user.LevelExecutive {
		return Allow
	}

	switch capability {
	case CapViewSensitiveData, CapSetTarget, CapViewAnalytics:
		if subject.AccessLevel().AtLeast(user.LevelBranch) {
			return Allow
		}
		return Deny
	}

	if subject.AccessLevel() == user.LevelIndividual {
		switch capability {
		case CapView, CapEdit:
			if target.OwnerID != 0 && target.OwnerID == subject.ID() {
				return Allow
			}
		}
		// Delete, reassign and approve are closed to individuals even on
		// records they own.
		return Deny
	}

	// Regional and branch: the record's unit must sit in the subject's
	// subtree. Approve requires branch level or above, which both satisfy.
	if target.OrgUnitID == 0 {
		return Deny
	}
	if p.tree.Contains(subject.OrgUnitID(), target.OrgUnitID) {
		return Allow
	}
	return Deny
}

// AuthorizeOpportunity resolves opportunity access through its customer:
// whoever can reach the customer record can reach its opportunities.
func (p *Policy) AuthorizeOpportunity(subject user.User, capability Capability, customer Record) Verdict {
	return p.Authorize(subject, capability, customer)
}

// MaskAccountNumber hides all but the last four digits from subjects
// without the sensitive-data capability.
func (p *Policy) MaskAccountNumber(subject user.User, accountNumber string) string {
	if accountNumber == "" {
		return ""
	}
	if p.Authorize(subject, CapViewSensitiveData, Record{}).Allowed() {
		return accountNumber
	}
	if len(accountNumber) > 4 {
		return strings.Repeat("*", len(accountNumber)-4) + accountNumber[len(accountNumber)-4:]
	}
	return "****"
}
