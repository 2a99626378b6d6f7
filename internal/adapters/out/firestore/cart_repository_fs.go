// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "littleshop/internal/domain/cart"
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Document design:
// - path: artifacts/{appId}/users/{principalId}/cart/myCart
// - the principal id in the path is the source of truth
// - fields: items(array), updatedAt
type CartRepositoryFS struct {
	Client *firestore.Client
	AppID  string

	clock Clock
}

func NewCartRepositoryFS(client *firestore.Client, appID string) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client, AppID: appID, clock: systemClock{}}
}

// NewCartRepositoryFSWithClock is useful for tests.
func NewCartRepositoryFSWithClock(client *firestore.Client, appID string, clock Clock) *CartRepositoryFS {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartRepositoryFS{Client: client, AppID: appID, clock: clock}
}

func (r *CartRepositoryFS) doc(principalID string) *firestore.DocumentRef {
	return r.Client.
		Collection("artifacts").Doc(r.AppID).
		Collection("users").Doc(principalID).
		Collection("cart").Doc("myCart")
}

// GetByPrincipalID returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) GetByPrincipalID(ctx context.Context, principalID string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(principalID)
	if pid == "" {
		return nil, errors.New("cart_repository_fs: principalID is empty")
	}

	snap, err := r.doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	return cartFromSnapshot(pid, snap)
}

// SetItems writes the full item sequence with merge semantics: only
// items and updatedAt are touched, unrelated fields on the document
// survive.
func (r *CartRepositoryFS) SetItems(ctx context.Context, principalID string, items []cartdom.Item) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(principalID)
	if pid == "" {
		return errors.New("cart_repository_fs: principalID is empty")
	}

	_, err := r.doc(pid).Set(ctx, setItemsPayload(items, r.now()), firestore.MergeAll)
	return err
}

func (r *CartRepositoryFS) now() time.Time {
	if r.clock == nil {
		return time.Now()
	}
	return r.clock.Now()
}

// setItemsPayload builds the merge document for a full-items write.
func setItemsPayload(items []cartdom.Item, now time.Time) map[string]any {
	docs := make([]map[string]any, 0, len(items))
	for _, it := range items {
		docs = append(docs, map[string]any{
			"id":          it.ProductID,
			"name":        it.Name,
			"description": it.Description,
			"price":       it.Price,
			"imageUrl":    it.ImageURL,
			"category":    it.Category,
			"quantity":    it.Quantity,
		})
	}
	return map[string]any{
		"items":     docs,
		"updatedAt": now.UTC(),
	}
}

// Watch streams the cart document until ctx is cancelled. Each change
// (including deletion, delivered as Cart==nil) invokes fn from a
// dedicated goroutine.
func (r *CartRepositoryFS) Watch(ctx context.Context, principalID string, fn func(cartdom.Snapshot)) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(principalID)
	if pid == "" {
		return errors.New("cart_repository_fs: principalID is empty")
	}
	if fn == nil {
		return errors.New("cart_repository_fs: watch callback is nil")
	}

	it := r.doc(pid).Snapshots(ctx)
	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				fn(cartdom.Snapshot{Err: err})
				return
			}
			if !snap.Exists() {
				fn(cartdom.Snapshot{Cart: nil})
				continue
			}
			c, derr := cartFromSnapshot(pid, snap)
			if derr != nil {
				fn(cartdom.Snapshot{Err: derr})
				continue
			}
			fn(cartdom.Snapshot{Cart: c})
		}
	}()
	return nil
}

// cartFromSnapshot parses document data without DataTo, tolerating
// schema drift in the items array (lines with missing or non-positive
// quantities are skipped rather than failing the whole cart).
func cartFromSnapshot(principalID string, snap *firestore.DocumentSnapshot) (*cartdom.Cart, error) {
	if snap == nil {
		return nil, errors.New("cart_repository_fs: snapshot is nil")
	}

	out := &cartdom.Cart{PrincipalID: principalID, Items: []cartdom.Item{}}

	raw := snap.Data()
	if raw == nil {
		return out, nil
	}

	if t, ok := raw["updatedAt"]; ok {
		if tt, ok2 := asTime(t); ok2 {
			out.UpdatedAt = tt
		}
	}

	itemsAny, _ := raw["items"]
	arr, ok := itemsAny.([]any)
	if !ok || arr == nil {
		return out, nil
	}

	for _, v := range arr {
		mv, ok := v.(map[string]any)
		if !ok {
			continue
		}
		id := strings.TrimSpace(asString(mv["id"]))
		qty := asInt(mv["quantity"])
		if id == "" || qty <= 0 {
			continue
		}
		out.Items = append(out.Items, cartdom.Item{
			ProductID:   id,
			Name:        asString(mv["name"]),
			Description: asString(mv["description"]),
			Price:       asFloat(mv["price"]),
			ImageURL:    asString(mv["imageUrl"]),
			Category:    asString(mv["category"]),
			Quantity:    qty,
		})
	}

	return out, nil
}
