// internal/application/cartsync/synchronizer.go

// Package cartsync keeps the in-memory cart mirrored to the remote
// per-principal cart record: optimistic local mutations, asynchronous
// full-sequence persists, wholesale replacement on remote notifications.
package cartsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	cartdom "littleshop/internal/domain/cart"
	"littleshop/internal/domain/principal"
	"littleshop/internal/domain/product"
	"littleshop/internal/state"
)

var ErrNoPrincipal = errors.New("cartsync: no active principal")

// persistQueueSize bounds in-flight persists per binding. The remote
// record converges to the last persist, so when the queue is full the
// oldest pending sequence is dropped in favor of the newest.
const persistQueueSize = 64

// Synchronizer owns the local cart state for the active principal.
//
// Rules:
//  1. Only a remote notification (or a principal switch) replaces the
//     local item sequence wholesale. A notification carrying state older
//     than an unpersisted local mutation overwrites it: last writer wins,
//     whole-record replace. This is the documented conflict policy, not
//     a bug.
//  2. Each local mutation computes the next sequence from the current
//     in-memory one, publishes it optimistically, then enqueues a persist
//     of the full sequence. Persist failures are reported; local state is
//     not rolled back.
//  3. Mutations with no bound principal are rejected and leave local
//     state untouched.
type Synchronizer struct {
	repo cartdom.Repository

	items  *state.Store[[]cartdom.Item]
	errors *state.Store[string]

	mu sync.Mutex
	b  *binding
}

// binding is one principal's subscription lifecycle. Rebinding cancels
// ctx, which tears down the watch and aborts in-flight persists, so a
// write issued just before a principal switch cannot land on the new
// principal's view.
type binding struct {
	principal principal.Principal
	ctx       context.Context
	cancel    context.CancelFunc
	queue     chan []cartdom.Item
}

func New(repo cartdom.Repository) *Synchronizer {
	return &Synchronizer{
		repo:   repo,
		items:  state.New([]cartdom.Item{}),
		errors: state.New(""),
	}
}

// Items is the observable local cart state.
//
// Subscribers must not call mutation methods from inside the callback.
func (s *Synchronizer) Items() *state.Store[[]cartdom.Item] {
	return s.items
}

// Errors publishes user-visible sync failure messages ("" means none).
func (s *Synchronizer) Errors() *state.Store[string] {
	return s.errors
}

// Bind subscribes to p's remote cart record, tearing down any previous
// binding first. The local cart is reset to empty until the new record's
// first notification arrives; a zero principal just unbinds.
func (s *Synchronizer) Bind(ctx context.Context, p principal.Principal) {
	s.mu.Lock()
	s.dropBindingLocked()

	if p.None() {
		s.items.Set([]cartdom.Item{})
		s.mu.Unlock()
		return
	}

	bctx, cancel := context.WithCancel(ctx)
	b := &binding{
		principal: p,
		ctx:       bctx,
		cancel:    cancel,
		queue:     make(chan []cartdom.Item, persistQueueSize),
	}
	s.b = b

	// Swap in the new principal's (not yet delivered) cart: never merge
	// across principals.
	s.items.Set([]cartdom.Item{})
	s.mu.Unlock()

	go s.persistLoop(b)

	if err := s.repo.Watch(bctx, p.ID, func(snap cartdom.Snapshot) {
		s.onRemote(b, snap)
	}); err != nil {
		s.report(fmt.Errorf("cart subscription failed: %w", err))
	}
}

// Unbind cancels the active subscription and clears local state.
func (s *Synchronizer) Unbind() {
	s.mu.Lock()
	s.dropBindingLocked()
	s.items.Set([]cartdom.Item{})
	s.mu.Unlock()
}

func (s *Synchronizer) dropBindingLocked() {
	if s.b != nil {
		s.b.cancel()
		s.b = nil
	}
}

// onRemote applies a remote notification as the new baseline. This is
// the only path that overwrites localCart wholesale.
func (s *Synchronizer) onRemote(b *binding, snap cartdom.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A notification from a torn-down binding must not touch current
	// state (another principal's data).
	if s.b != b {
		return
	}

	if snap.Err != nil {
		// Read failure: keep the last-known local state.
		log.Printf("[cart.sync] watch error principal=%s: %v", b.principal.ID, snap.Err)
		s.errors.Set("failed to load cart")
		return
	}
	if snap.Cart == nil {
		s.items.Set([]cartdom.Item{})
		return
	}
	s.items.Set(append([]cartdom.Item{}, snap.Cart.Items...))
}

// Add puts one unit of p in the cart (merging with an existing line).
func (s *Synchronizer) Add(p product.Product) error {
	return s.mutate(func(items []cartdom.Item) []cartdom.Item {
		return cartdom.Add(items, p)
	})
}

// ChangeQuantity adds delta to the line for productID; reaching zero or
// less removes the line.
func (s *Synchronizer) ChangeQuantity(productID string, delta int) error {
	return s.mutate(func(items []cartdom.Item) []cartdom.Item {
		return cartdom.ChangeQuantity(items, productID, delta)
	})
}

// Remove deletes the line for productID.
func (s *Synchronizer) Remove(productID string) error {
	return s.mutate(func(items []cartdom.Item) []cartdom.Item {
		return cartdom.Remove(items, productID)
	})
}

// TotalItems is the sum of quantities in the local cart.
func (s *Synchronizer) TotalItems() int {
	return cartdom.TotalItems(s.items.Get())
}

// TotalPrice is the local cart total, rounded to 2 decimals for display.
func (s *Synchronizer) TotalPrice() float64 {
	return cartdom.TotalPrice(s.items.Get())
}

// mutate applies next = f(current) under the synchronizer lock, so two
// rapid mutations are applied in call order, each computed from the
// immediately preceding in-memory state. Each mutation independently
// enqueues a full-sequence persist.
func (s *Synchronizer) mutate(f func([]cartdom.Item) []cartdom.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.b
	if b == nil {
		log.Printf("[cart.sync] mutation rejected: no active principal")
		s.errors.Set("sign-in state not ready; cart unchanged")
		return ErrNoPrincipal
	}

	next := f(s.items.Get())
	s.items.Set(next)
	s.enqueuePersist(b, next)
	return nil
}

func (s *Synchronizer) enqueuePersist(b *binding, items []cartdom.Item) {
	for {
		select {
		case b.queue <- items:
			return
		default:
			// Queue full: the newest sequence supersedes the oldest
			// pending one anyway.
			select {
			case <-b.queue:
			default:
			}
		}
	}
}

// persistLoop writes queued sequences for one binding, in order. The
// binding context aborts it on principal switch, discarding persists
// whose target principal is no longer active.
func (s *Synchronizer) persistLoop(b *binding) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case items := <-b.queue:
			if err := s.repo.SetItems(b.ctx, b.principal.ID, items); err != nil {
				if b.ctx.Err() != nil {
					return
				}
				// Optimistic local state is kept; the next successful
				// notification corrects the view.
				log.Printf("[cart.sync] persist failed principal=%s: %v", b.principal.ID, err)
				s.errors.Set("failed to save cart")
			}
		}
	}
}

func (s *Synchronizer) report(err error) {
	log.Printf("[cart.sync] %v", err)
	s.errors.Set(err.Error())
}
