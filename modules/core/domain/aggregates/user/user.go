package user

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// User belongs to exactly one organizational unit. AccessLevel and Role are
// independent axes and are both required.
type User struct {
	id           uint
	email        string
	username     string
	passwordHash string
	firstName    string
	lastName     string
	phone        string
	accessLevel  AccessLevel
	role         Role
	orgUnitID    uint
	active       bool
	verified     bool
	lastLogin    *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func New(email, username, firstName, lastName string, level AccessLevel, role Role, orgUnitID uint) User {
	return User{
		email:       strings.ToLower(strings.TrimSpace(email)),
		username:    strings.TrimSpace(username),
		firstName:   strings.TrimSpace(firstName),
		lastName:    strings.TrimSpace(lastName),
		accessLevel: level,
		role:        role,
		orgUnitID:   orgUnitID,
		active:      true,
	}
}

// HydrateParams carries every persisted field; used by the storage layer
// and tests only.
type HydrateParams struct {
	ID           uint
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	AccessLevel  AccessLevel
	Role         Role
	OrgUnitID    uint
	Active       bool
	Verified     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func Hydrate(p HydrateParams) User {
	return User{
		id:           p.ID,
		email:        strings.ToLower(strings.TrimSpace(p.Email)),
		username:     strings.TrimSpace(p.Username),
		passwordHash: p.PasswordHash,
		firstName:    strings.TrimSpace(p.FirstName),
		lastName:     strings.TrimSpace(p.LastName),
		phone:        strings.TrimSpace(p.Phone),
		accessLevel:  p.AccessLevel,
		role:         p.Role,
		orgUnitID:    p.OrgUnitID,
		active:       p.Active,
		verified:     p.Verified,
		lastLogin:    p.LastLogin,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}
}

func (u User) ID() uint                 { return u.id }
func (u User) Email() string            { return u.email }
func (u User) Username() string         { return u.username }
func (u User) PasswordHash() string     { return u.passwordHash }
func (u User) FirstName() string        { return u.firstName }
func (u User) LastName() string         { return u.lastName }
func (u User) Phone() string            { return u.phone }
func (u User) AccessLevel() AccessLevel { return u.accessLevel }
func (u User) Role() Role               { return u.role }
func (u User) OrgUnitID() uint          { return u.orgUnitID }
func (u User) IsActive() bool           { return u.active }
func (u User) IsVerified() bool         { return u.verified }
func (u User) LastLogin() *time.Time    { return u.lastLogin }
func (u User) CreatedAt() time.Time     { return u.createdAt }
func (u User) UpdatedAt() time.Time     { return u.updatedAt }
func (u User) IsZero() bool             { return u.id == 0 && u.username == "" }

func (u User) FullName() string {
	return strings.TrimSpace(u.firstName + " " + u.lastName)
}

func (u User) SetPhone(phone string) User {
	u.phone = strings.TrimSpace(phone)
	return u
}

func (u User) SetPassword(password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return u, err
	}
	u.passwordHash = string(hash)
	return u, nil
}

func (u User) CheckPassword(password string) bool {
	if u.passwordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}

func (u User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.role == r {
			return true
		}
	}
	return false
}
