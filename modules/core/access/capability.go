package access

// Capability names a privileged operation a subject may request on a
// record or on the system at large.
type Capability string

const (
	CapView              Capability = "view"
	CapEdit              Capability = "edit"
	CapDelete            Capability = "delete"
	CapReassign          Capability = "reassign"
	CapApprove           Capability = "approve"
	CapSetTarget         Capability = "set_target"
	CapViewAnalytics     Capability = "view_analytics"
	CapViewSensitiveData Capability = "view_sensitive_data"
)

// Verdict is the outcome of an authorization check. Denials are ordinary
// control flow, not errors; callers decide how to surface them.
type Verdict int

const (
	Deny Verdict = iota
	Allow
)

func (v Verdict) Allowed() bool { return v == Allow }

func (v Verdict) String() string {
	if v == Allow {
		return "allow"
	}
	return "deny"
}

// Record carries the ownership edges of a target the policy compares
// against the subject. For tasks the assignee stands in as the owner.
type Record struct {
	OwnerID   uint
	OrgUnitID uint
}

// EntityKind selects which scoping shape a bulk listing needs.
type EntityKind string

const (
	KindCustomer    EntityKind = "customer"
	KindOpportunity EntityKind = "opportunity"
	KindTask        EntityKind = "task"
	KindTarget      EntityKind = "target"
	KindUser        EntityKind = "user"
)
