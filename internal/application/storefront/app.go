// internal/application/storefront/app.go

// Package storefront composes the client core: identity resolver, role
// resolver, cart synchronizer and catalog reader, wired so that every
// principal transition re-resolves the role and re-binds the cart.
package storefront

import (
	"context"
	"errors"

	"littleshop/internal/application/cartsync"
	"littleshop/internal/application/catalog"
	"littleshop/internal/application/session"
	cartdom "littleshop/internal/domain/cart"
	"littleshop/internal/domain/principal"
	"littleshop/internal/domain/product"
	"littleshop/internal/domain/profile"
)

// Deps are the injected collaborators (no hidden globals; tests pass
// fakes).
type Deps struct {
	Auth     session.AuthGateway
	Profiles profile.Repository
	Carts    cartdom.Repository
	Products product.Repository

	// ResumeToken optionally resumes a prior session at startup.
	ResumeToken string
}

// Storefront is one client session's state machine.
type Storefront struct {
	Identity *session.IdentityResolver
	Roles    *session.RoleResolver
	Cart     *cartsync.Synchronizer
	Catalog  *catalog.Reader

	unsub func()
}

func New(deps Deps) (*Storefront, error) {
	if deps.Auth == nil || deps.Profiles == nil || deps.Carts == nil || deps.Products == nil {
		return nil, errors.New("storefront: missing dependency")
	}
	return &Storefront{
		Identity: session.NewIdentityResolver(deps.Auth, deps.ResumeToken),
		Roles:    session.NewRoleResolver(deps.Profiles),
		Cart:     cartsync.New(deps.Carts),
		Catalog:  catalog.NewReader(deps.Products),
	}, nil
}

// Start subscribes the role resolver and cart synchronizer to principal
// transitions, starts the catalog subscription, then establishes the
// initial principal (resume or anonymous).
func (s *Storefront) Start(ctx context.Context) error {
	if err := s.Catalog.Start(ctx); err != nil {
		return err
	}

	// Principal change tears down per-principal subscriptions before the
	// new ones are established: Bind/Resolve cancel their predecessors.
	s.unsub = s.Identity.Principals().Subscribe(func(p principal.Principal) {
		s.Cart.Bind(ctx, p)
		s.Roles.Resolve(ctx, p)
	})

	return s.Identity.Start(ctx)
}

// Close tears down every subscription.
func (s *Storefront) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.Cart.Unbind()
	s.Roles.Stop()
	s.Catalog.Stop()
}
