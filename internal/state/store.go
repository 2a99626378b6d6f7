// internal/state/store.go

// Package state provides the typed observable container used for every
// piece of client-visible state (principal, role, cart items, catalog
// snapshot): get the current value, replace it, subscribe to changes.
package state

import "sync"

// Store holds one value of type T and notifies subscribers on every Set.
//
// Delivery contract:
//   - Subscribe replays the current value to the new subscriber, then
//     delivers every subsequent Set (the snapshot-listener convention of
//     the backing document store).
//   - Notifications for a single Store are delivered in Set order.
//   - The returned unsubscribe func is idempotent; after it returns the
//     callback is never invoked again.
type Store[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[int]func(T)
	next  int
}

func New[T any](initial T) *Store[T] {
	return &Store[T]{
		value: initial,
		subs:  map[int]func(T){},
	}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value and notifies all subscribers.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	fns := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may read the store.
	for _, fn := range fns {
		fn(v)
	}
}

// Subscribe registers fn and returns its unsubscribe handle.
func (s *Store[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	current := s.value
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
