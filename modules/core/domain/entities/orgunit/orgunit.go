package orgunit

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("organizational unit not found")

type Kind string

const (
	KindDivision Kind = "division"
	KindRegion   Kind = "region"
	KindBranch   Kind = "branch"
	KindTeam     Kind = "team"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindDivision, KindRegion, KindBranch, KindTeam:
		return true
	}
	return false
}

// OrgUnit is a node in the bank's organizational hierarchy. ParentID of zero
// means the unit is a root.
type OrgUnit struct {
	id        uint
	name      string
	kind      Kind
	code      string
	parentID  uint
	active    bool
	createdAt time.Time
}

func New(name string, kind Kind, code string, parentID uint) OrgUnit {
	return OrgUnit{
		name:     strings.TrimSpace(name),
		kind:     kind,
		code:     strings.TrimSpace(code),
		parentID: parentID,
		active:   true,
	}
}

func Hydrate(
	id uint,
	name string,
	kind Kind,
	code string,
	parentID uint,
	active bool,
	createdAt time.Time,
) OrgUnit {
	return OrgUnit{
		id:        id,
		name:      strings.TrimSpace(name),
		kind:      kind,
		code:      strings.TrimSpace(code),
		parentID:  parentID,
		active:    active,
		createdAt: createdAt,
	}
}

func (u OrgUnit) ID() uint             { return u.id }
func (u OrgUnit) Name() string         { return u.name }
func (u OrgUnit) Kind() Kind           { return u.kind }
func (u OrgUnit) Code() string         { return u.code }
func (u OrgUnit) ParentID() uint       { return u.parentID }
func (u OrgUnit) IsRoot() bool         { return u.parentID == 0 }
func (u OrgUnit) IsActive() bool       { return u.active }
func (u OrgUnit) CreatedAt() time.Time { return u.createdAt }
func (u OrgUnit) IsZero() bool         { return u.id == 0 && u.code == "" }

type Repository interface {
	GetAll(ctx context.Context) ([]OrgUnit, error)
	GetByID(ctx context.Context, id uint) (OrgUnit, error)
	Create(ctx context.Context, unit OrgUnit) (OrgUnit, error)
}
