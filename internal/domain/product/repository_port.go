// internal/domain/product/repository_port.go
package product

import "context"

// CollectionSnapshot is one delivery from a catalog watch: the full
// product collection as currently stored.
type CollectionSnapshot struct {
	Products []Product
	Err      error
}

// Repository is the outbound port for the shared product collection.
//
// Nil policy: GetByID returns (nil, nil) when the product does not exist.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	Upsert(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Product, error)

	// WatchAll delivers the whole collection on every change until ctx
	// is cancelled.
	WatchAll(ctx context.Context, fn func(CollectionSnapshot)) error
}
