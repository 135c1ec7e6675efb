package user

import "errors"

// AccessLevel is the breadth-of-visibility tier. Lower numeric value means
// broader access: an executive sees everything, an individual only their
// own records.
type AccessLevel int

const (
	LevelExecutive AccessLevel = iota + 1
	LevelRegional
	LevelBranch
	LevelIndividual
)

func NewAccessLevel(v int) (AccessLevel, error) {
	level := AccessLevel(v)
	if !level.IsValid() {
		return 0, errors.New("invalid access level")
	}
	return level, nil
}

func (l AccessLevel) IsValid() bool {
	return l >= LevelExecutive && l <= LevelIndividual
}

// AtLeast reports whether the level grants at minimum the breadth of the
// given level (lower value = broader).
func (l AccessLevel) AtLeast(other AccessLevel) bool {
	return l <= other
}

func (l AccessLevel) String() string {
	switch l {
	case LevelExecutive:
		return "executive"
	case LevelRegional:
		return "regional"
	case LevelBranch:
		return "branch"
	case LevelIndividual:
		return "individual"
	}
	return "unknown"
}

// Role is the functional tag, orthogonal to AccessLevel: the level decides
// how far a user sees, the role decides what kind of action they may take.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSales   Role = "sales"
	RoleService Role = "service"
	RoleSupport Role = "support"
	RoleAnalyst Role = "analyst"
	RoleManager Role = "manager"
)

func NewRole(v string) (Role, error) {
	role := Role(v)
	if !role.IsValid() {
		return "", errors.New("invalid role")
	}
	return role, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleService, RoleSupport, RoleAnalyst, RoleManager:
		return true
	}
	return false
}
