package authstate

import (
	"time"

	"github.com/google/uuid"
)

// Role is the principal's role
type Role = string

const (
	// RoleUser is a standard account
	RoleUser Role = "user"
	// RoleAdmin is an elevated account
	RoleAdmin Role = "admin"
	// RoleSuperadmin is the highest elevated account
	RoleSuperadmin Role = "superadmin"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

// IsElevatedRole checks if the role grants access to the admin surface
func IsElevatedRole(r Role) bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// ElevatedRoles returns the set of roles the admin surface accepts
func ElevatedRoles() []Role {
	return []Role{RoleAdmin, RoleSuperadmin}
}

// SessionDomain selects one of the two credential namespaces. Admin and
// standard sessions never share a token slot or an API namespace.
type SessionDomain string

const (
	// DomainAdmin is the elevated session domain
	DomainAdmin SessionDomain = "admin"
	// DomainStandard is the standard user session domain
	DomainStandard SessionDomain = "standard"
)

// Slot returns the persisted storage key for the domain's credential.
// The keys match the storage layout the identity API contract assumes.
func (d SessionDomain) Slot() string {
	if d == DomainAdmin {
		return "adminToken"
	}
	return "token"
}

// Valid checks the domain is one of the two known namespaces
func (d SessionDomain) Valid() bool {
	return d == DomainAdmin || d == DomainStandard
}

// Credential is an opaque bearer token plus the slot it occupies
type Credential struct {
	Token  string        `json:"token"`
	Domain SessionDomain `json:"domain"`
}

// IsZero reports whether the credential carries no token
func (c Credential) IsZero() bool {
	return c.Token == ""
}

// Principal holds the attributes of an authenticated identity. It is an
// immutable snapshot: state changes replace the whole value, never patch it.
type Principal struct {
	ID          string     `json:"id,omitempty"`
	DisplayName string     `json:"name,omitempty"`
	Email       string     `json:"email,omitempty"`
	Role        Role       `json:"role,omitempty"`
	Verified    bool       `json:"is_verified,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Mobile      string     `json:"mobile,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
}

// UUID parses the principal identifier as a UUID
func (p *Principal) UUID() (uuid.UUID, error) {
	return uuid.Parse(p.ID)
}

// HasRole checks if the principal carries the given role
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	return p.Role == role
}

// IsElevated checks if the principal can access the admin surface
func (p *Principal) IsElevated() bool {
	return p != nil && IsElevatedRole(p.Role)
}
