// internal/application/session/ports.go
package session

import (
	"context"

	"littleshop/internal/domain/principal"
)

// AuthGateway is the outbound port to the authentication provider.
//
// Every call that confirms an identity returns the full Session (principal
// plus issued tokens). Failures map to the principal package sentinels
// (ErrInvalidCredentials, ErrDuplicateAccount, ErrUnavailable).
type AuthGateway interface {
	SignIn(ctx context.Context, email, password string) (principal.Session, error)
	SignUp(ctx context.Context, email, password string) (principal.Session, error)
	SignInAnonymously(ctx context.Context) (principal.Session, error)
	ResumeSession(ctx context.Context, token string) (principal.Session, error)
}
