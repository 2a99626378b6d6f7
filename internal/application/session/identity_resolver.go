// internal/application/session/identity_resolver.go
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"littleshop/internal/domain/principal"
	"littleshop/internal/state"
)

var ErrInvalidArgument = errors.New("session: invalid argument")

// IdentityResolver tracks the active session principal and exposes it as
// an observable store. Exactly one principal is active at a time; every
// confirmed transition is published to subscribers.
//
// Startup rule: if a continuation token is configured it is resumed,
// otherwise a fresh anonymous principal is created. The same rule
// re-applies after sign-out. A failed sign-in/sign-up leaves the prior
// principal active.
type IdentityResolver struct {
	gateway     AuthGateway
	resumeToken string

	mu      sync.Mutex
	session principal.Session

	principals *state.Store[principal.Principal]
}

func NewIdentityResolver(gateway AuthGateway, resumeToken string) *IdentityResolver {
	return &IdentityResolver{
		gateway:     gateway,
		resumeToken: strings.TrimSpace(resumeToken),
		principals:  state.New(principal.Principal{}),
	}
}

// Principals is the observable principal state. The zero Principal means
// "no principal".
func (r *IdentityResolver) Principals() *state.Store[principal.Principal] {
	return r.principals
}

// Current returns the active principal (zero value if none).
func (r *IdentityResolver) Current() principal.Principal {
	return r.principals.Get()
}

// Token returns the ID token of the active session ("" if none).
func (r *IdentityResolver) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.IDToken
}

// Start establishes the initial principal: resume the configured token if
// present, otherwise sign in anonymously. Resume failure is reported and
// falls back to anonymous.
func (r *IdentityResolver) Start(ctx context.Context) error {
	if r == nil || r.gateway == nil {
		return errors.New("session: identity resolver not initialized")
	}
	if !r.Current().None() {
		return nil
	}

	if r.resumeToken != "" {
		sess, err := r.gateway.ResumeSession(ctx, r.resumeToken)
		if err == nil {
			r.adopt(sess)
			return nil
		}
		log.Printf("[session.identity] resume failed, falling back to anonymous: %v", err)
	}

	sess, err := r.gateway.SignInAnonymously(ctx)
	if err != nil {
		return err
	}
	r.adopt(sess)
	return nil
}

// SignIn authenticates with email/password. On failure the prior
// principal stays active and the error is returned for the UI layer.
func (r *IdentityResolver) SignIn(ctx context.Context, email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	sess, err := r.gateway.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	r.adopt(sess)
	return nil
}

// SignUp creates an account and immediately authenticates it.
func (r *IdentityResolver) SignUp(ctx context.Context, email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	sess, err := r.gateway.SignUp(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	r.adopt(sess)
	return nil
}

// SignOut clears the principal, then re-applies the automatic-anonymous
// rule so the process always ends up with some (fresh) principal. The
// anonymous principal has its own, distinct per-principal state.
func (r *IdentityResolver) SignOut(ctx context.Context) error {
	r.mu.Lock()
	r.session = principal.Session{}
	r.mu.Unlock()
	r.principals.Set(principal.Principal{})

	sess, err := r.gateway.SignInAnonymously(ctx)
	if err != nil {
		log.Printf("[session.identity] anonymous re-sign-in after sign-out failed: %v", err)
		return err
	}
	r.adopt(sess)
	return nil
}

func (r *IdentityResolver) adopt(sess principal.Session) {
	r.mu.Lock()
	r.session = sess
	r.mu.Unlock()
	r.principals.Set(sess.Principal)
}

func validateCredentials(email, password string) error {
	e := strings.TrimSpace(email)
	if e == "" || !strings.Contains(e, "@") || password == "" {
		return ErrInvalidArgument
	}
	return nil
}
