package cartsync

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	cartdom "littleshop/internal/domain/cart"
	"littleshop/internal/domain/principal"
	"littleshop/internal/domain/product"
)

type setCall struct {
	principalID string
	items       []cartdom.Item
}

// fakeCartRepo implements cartdom.Repository; tests drive remote
// notifications by hand via emit.
type fakeCartRepo struct {
	mu       sync.Mutex
	watchCtx map[string]context.Context
	watchFn  map[string]func(cartdom.Snapshot)
	sets     []setCall
	setErr   error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{
		watchCtx: map[string]context.Context{},
		watchFn:  map[string]func(cartdom.Snapshot){},
	}
}

func (f *fakeCartRepo) GetByPrincipalID(context.Context, string) (*cartdom.Cart, error) {
	return nil, nil
}

func (f *fakeCartRepo) SetItems(ctx context.Context, principalID string, items []cartdom.Item) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, setCall{principalID: principalID, items: append([]cartdom.Item{}, items...)})
	return nil
}

func (f *fakeCartRepo) Watch(ctx context.Context, principalID string, fn func(cartdom.Snapshot)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchCtx[principalID] = ctx
	f.watchFn[principalID] = fn
	return nil
}

func (f *fakeCartRepo) emit(principalID string, snap cartdom.Snapshot) {
	f.mu.Lock()
	ctx := f.watchCtx[principalID]
	fn := f.watchFn[principalID]
	f.mu.Unlock()
	if fn == nil || (ctx != nil && ctx.Err() != nil) {
		return
	}
	fn(snap)
}

func (f *fakeCartRepo) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets)
}

func (f *fakeCartRepo) lastSet() setCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets[len(f.sets)-1]
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func anon(id string) principal.Principal {
	return principal.Principal{ID: id, IsAnonymous: true}
}

func prod(id string, price float64) product.Product {
	return product.Product{ID: id, Name: "p-" + id, Price: price, Category: "Snacks"}
}

func ids(items []cartdom.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ProductID)
	}
	return out
}

func TestRemoteNotificationReplacesWholesale(t *testing.T) {
	repo := newFakeCartRepo()
	s := New(repo)
	s.Bind(context.Background(), anon("a"))

	repo.emit("a", cartdom.Snapshot{Cart: &cartdom.Cart{
		PrincipalID: "a",
		Items:       []cartdom.Item{{ProductID: "1", Price: 2, Quantity: 3}},
	}})
	if got := ids(s.Items().Get()); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("items = %v, want [1]", got)
	}

	// Record deleted remotely -> local cart empties.
	repo.emit("a", cartdom.Snapshot{Cart: nil})
	if got := s.Items().Get(); len(got) != 0 {
		t.Fatalf("expected empty cart after absent notification, got %v", got)
	}
}

func TestMutationWithoutPrincipalIsRejected(t *testing.T) {
	repo := newFakeCartRepo()
	s := New(repo)

	if err := s.Add(prod("1", 5)); !errors.Is(err, ErrNoPrincipal) {
		t.Fatalf("expected ErrNoPrincipal, got %v", err)
	}
	if got := s.Items().Get(); len(got) != 0 {
		t.Fatalf("local state must be unchanged, got %v", got)
	}
	if repo.setCount() != 0 {
		t.Fatalf("no persist may be attempted without a principal")
	}
}

func TestAddTwicePersistsMergedLine(t *testing.T) {
	repo := newFakeCartRepo()
	s := New(repo)
	s.Bind(context.Background(), anon("a"))

	if err := s.Add(prod("1", 25.99)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(prod("1", 25.99)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	items := s.Items().Get()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected one line with qty 2, got %v", items)
	}

	waitFor(t, func() bool { return repo.setCount() == 2 }, "both persists")
	last := repo.lastSet()
	if last.principalID != "a" || len(last.items) != 1 || last.items[0].Quantity != 2 {
		t.Fatalf("unexpected final persist: %+v", last)
	}
}

func TestRapidMutationsPersistInCallOrder(t *testing.T) {
	repo := newFakeCartRepo()
	s := New(repo)
	s.Bind(context.Background(), anon("a"))

	_ = s.Add(prod("1", 1))
	_ = s.Add(prod("2", 2))
	_ = s.ChangeQuantity("1", 4)
	_ = s.Remove("2")

	waitFor(t, func() bool { return repo.setCount() == 4 }, "all persists")

	last := repo.lastSet()
	if !reflect.DeepEqual(ids(last.items), []string{"1"}) || last.items[0].Quantity != 5 {
		t.Fatalf("final persisted state wrong: %+v", last.items)
	}
	// Each persist carries the full sequence as of its mutation.
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.sets[0].items) != 1 || len(repo.sets[1].items) != 2 {
		t.Fatalf("persists out of call order: %+v", repo.sets)
	}
}

func TestStaleRemoteNotificationOverwritesLocalAdd(t *testing.T) {
	// Documented last-writer-wins behavior: a notification reflecting
	// a state from before a local add overwrites the added item.
	repo := newFakeCartRepo()
	s := New(repo)
	s.Bind(context.Background(), anon("a"))

	baseline := &cartdom.Cart{PrincipalID: "a", Items: []cartdom.Item{{ProductID: "1", Price: 1, Quantity: 1}}}
	repo.emit("a", cartdom.Snapshot{Cart: baseline})

	_ = s.Add(prod("2", 2))
	if got := ids(s.Items().Get()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("optimistic add missing: %v", got)
	}

	// Stale snapshot (no product 2) arrives and becomes the baseline.
	repo.emit("a", cartdom.Snapshot{Cart: baseline})
	if got := ids(s.Items().Get()); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("expected stale notification to win, got %v", got)
	}
}

func TestPrincipalSwitchSwapsCartsWithoutMerging(t *testing.T) {
	repo := newFakeCartRepo()
	s := New(repo)

	s.Bind(context.Background(), anon("a"))
	repo.emit("a", cartdom.Snapshot{Cart: &cartdom.Cart{
		PrincipalID: "a",
		Items:       []cartdom.Item{{ProductID: "1", Price: 1, Quantity: 2}},
	}})

	// Switch to authenticated user b: local cart resets immediately.
	s.Bind(context.Background(), principal.Principal{ID: "b", Email: "b@example.com"})
	if got := s.Items().Get(); len(got) != 0 {
		t.Fatalf("cart must reset on principal switch, got %v", got)
	}

	// A late notification from a's torn-down watch is ignored.
	repo.emit("a", cartdom.Snapshot{Cart: &cartdom.Cart{
		PrincipalID: "a",
		Items:       []cartdom.Item{{ProductID: "1", Price: 1, Quantity: 2}},
	}})
	if got := s.Items().Get(); len(got) != 0 {
		t.Fatalf("stale subscription leaked another principal's cart: %v", got)
	}

	repo.emit("b", cartdom.Snapshot{Cart: &cartdom.Cart{
		PrincipalID: "b",
		Items:       []cartdom.Item{{ProductID: "9", Price: 9, Quantity: 1}},
	}})
	if got := ids(s.Items().Get()); !reflect.DeepEqual(got, []string{"9"}) {
		t.Fatalf("expected b's own cart, got %v", got)
	}
}

func TestSignOutThenAnonymousResumeYieldsEmptyCart(t *testing.T) {
	repo := newFakeCartRepo()
	s := New(repo)

	s.Bind(context.Background(), principal.Principal{ID: "user1", Email: "u@example.com"})
	repo.emit("user1", cartdom.Snapshot{Cart: &cartdom.Cart{
		PrincipalID: "user1",
		Items:       []cartdom.Item{{ProductID: "1", Price: 1, Quantity: 1}},
	}})

	s.Unbind() // sign-out
	if got := s.Items().Get(); len(got) != 0 {
		t.Fatalf("cart must clear on sign-out, got %v", got)
	}

	s.Bind(context.Background(), anon("anon-2"))
	repo.emit("anon-2", cartdom.Snapshot{Cart: nil}) // fresh principal, no record
	if got := s.Items().Get(); len(got) != 0 {
		t.Fatalf("fresh anonymous principal must start with an empty cart, got %v", got)
	}
}

func TestPersistFailureKeepsOptimisticState(t *testing.T) {
	repo := newFakeCartRepo()
	repo.setErr = errors.New("write quota exceeded")
	s := New(repo)
	s.Bind(context.Background(), anon("a"))

	if err := s.Add(prod("1", 5)); err != nil {
		t.Fatalf("Add must succeed locally even if persist fails: %v", err)
	}
	waitFor(t, func() bool { return s.Errors().Get() != "" }, "error report")

	items := s.Items().Get()
	if len(items) != 1 || items[0].ProductID != "1" {
		t.Fatalf("optimistic state must not be rolled back, got %v", items)
	}
}

func TestRebindCancelsOldPersistContext(t *testing.T) {
	repo := newFakeCartRepo()
	s := New(repo)
	s.Bind(context.Background(), anon("a"))

	repo.mu.Lock()
	oldCtx := repo.watchCtx["a"]
	repo.mu.Unlock()

	s.Bind(context.Background(), anon("b"))
	if oldCtx.Err() == nil {
		t.Fatalf("rebinding must cancel the previous binding's context")
	}
}

func TestTotals(t *testing.T) {
	repo := newFakeCartRepo()
	s := New(repo)
	s.Bind(context.Background(), anon("a"))

	repo.emit("a", cartdom.Snapshot{Cart: &cartdom.Cart{
		PrincipalID: "a",
		Items: []cartdom.Item{
			{ProductID: "1", Price: 25.99, Quantity: 1},
			{ProductID: "2", Price: 3.50, Quantity: 2},
		},
	}})

	if got := s.TotalItems(); got != 3 {
		t.Fatalf("TotalItems = %d, want 3", got)
	}
	if got := s.TotalPrice(); got != 32.99 {
		t.Fatalf("TotalPrice = %v, want 32.99", got)
	}
}
