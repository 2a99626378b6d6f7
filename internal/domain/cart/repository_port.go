// internal/domain/cart/repository_port.go
package cart

import "context"

// Snapshot is one delivery from a cart watch.
// Cart == nil means the document does not exist.
type Snapshot struct {
	Cart *Cart
	Err  error
}

// Repository is the outbound port for per-principal cart records.
//
// Nil policy: GetByPrincipalID returns (nil, nil) when no cart document
// exists for the principal.
type Repository interface {
	GetByPrincipalID(ctx context.Context, principalID string) (*Cart, error)

	// SetItems persists the full item sequence with merge semantics:
	// only the cart fields are touched on the document.
	SetItems(ctx context.Context, principalID string, items []Item) error

	// Watch delivers a snapshot for every change to the principal's cart
	// document until ctx is cancelled. Cancelling ctx is the unsubscribe
	// handle; after cancellation no further snapshots are delivered.
	Watch(ctx context.Context, principalID string, fn func(Snapshot)) error
}
