// internal/application/catalog/reader.go

// Package catalog republishes the shared product collection to the UI as
// observable snapshots. Pure pass-through: no transformation beyond an
// optional category filter on read.
package catalog

import (
	"context"
	"log"
	"sync"

	"littleshop/internal/domain/product"
	"littleshop/internal/state"
)

// Reader subscribes to the product collection and mirrors its snapshots.
type Reader struct {
	repo product.Repository

	products *state.Store[[]product.Product]
	errors   *state.Store[string]

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewReader(repo product.Repository) *Reader {
	return &Reader{
		repo:     repo,
		products: state.New([]product.Product{}),
		errors:   state.New(""),
	}
}

// Products is the observable catalog snapshot.
func (r *Reader) Products() *state.Store[[]product.Product] {
	return r.products
}

// Errors publishes user-visible catalog failure messages.
func (r *Reader) Errors() *state.Store[string] {
	return r.errors
}

// Start subscribes to the shared collection; restartable.
func (r *Reader) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	watchCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	return r.repo.WatchAll(watchCtx, func(snap product.CollectionSnapshot) {
		if snap.Err != nil {
			// Keep the last snapshot on read failure.
			log.Printf("[catalog.reader] watch error: %v", snap.Err)
			r.errors.Set("failed to load products")
			return
		}
		r.products.Set(snap.Products)
	})
}

// Stop cancels the subscription; the last snapshot stays published.
func (r *Reader) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// ByCategory filters the current snapshot ("" or "All" returns all).
func (r *Reader) ByCategory(category string) []product.Product {
	return product.FilterByCategory(r.products.Get(), category)
}
