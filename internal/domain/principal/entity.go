// internal/domain/principal/entity.go
package principal

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("principal: invalid credentials")
	ErrDuplicateAccount   = errors.New("principal: account already exists")
	ErrUnavailable        = errors.New("principal: auth provider unavailable")
)

// Principal is the active session identity: anonymous or authenticated.
// The zero value means "no principal".
type Principal struct {
	ID          string `json:"id"`
	IsAnonymous bool   `json:"isAnonymous"`
	Email       string `json:"email,omitempty"`
}

// Session is a confirmed principal plus the tokens the auth provider
// issued for it. Tokens stay inside the session layer; only the
// Principal is published to the rest of the app.
type Session struct {
	Principal    Principal
	IDToken      string
	RefreshToken string
}

// None reports whether p represents "no principal".
func (p Principal) None() bool {
	return strings.TrimSpace(p.ID) == ""
}

// Same reports whether two principals refer to the same identity.
func (p Principal) Same(other Principal) bool {
	return !p.None() && p.ID == other.ID
}
