// internal/domain/profile/entity.go
package profile

import (
	"errors"
	"strings"
)

var ErrInvalidProfile = errors.New("profile: invalid")

// Role is the privilege level stored on a profile.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// DefaultRole is assigned to principals that have no stored profile yet.
const DefaultRole = RoleUser

// ParseRole returns the Role for s, or DefaultRole if s is not a known
// role (unknown stored values degrade to the lowest privilege).
func ParseRole(s string) Role {
	switch Role(strings.TrimSpace(s)) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleUser
	}
}

// AtLeastAdmin reports whether the role satisfies "admin-or-above".
// super_admin implies admin privilege.
func (r Role) AtLeastAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsSuperAdmin reports whether the role is super_admin.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// Profile is the per-principal record, one per principal id.
type Profile struct {
	PrincipalID string `json:"principalId" firestore:"-"`
	Role        Role   `json:"role" firestore:"role"`
	Email       string `json:"email,omitempty" firestore:"email"`
}

// New builds a profile with the default role.
func New(principalID, email string) (*Profile, error) {
	pid := strings.TrimSpace(principalID)
	if pid == "" {
		return nil, ErrInvalidProfile
	}
	return &Profile{
		PrincipalID: pid,
		Role:        DefaultRole,
		Email:       strings.TrimSpace(email),
	}, nil
}
