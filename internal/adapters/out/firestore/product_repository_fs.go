// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"littleshop/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
// Collection design:
// - path: artifacts/{appId}/public/data/products
// - docId: product id  (docId is the source of truth)
// - fields: name, description, price, imageUrl, category
type ProductRepositoryFS struct {
	Client *firestore.Client
	AppID  string
}

func NewProductRepositoryFS(client *firestore.Client, appID string) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client, AppID: appID}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.
		Collection("artifacts").Doc(r.AppID).
		Collection("public").Doc("data").
		Collection("products")
}

// GetByID returns (nil, nil) if not found (nil policy).
func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (*product.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return nil, errors.New("product_repository_fs: id is empty")
	}

	snap, err := r.col().Doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	return productFromSnapshot(snap), nil
}

// Upsert saves the product by docId=p.ID, overwriting the full doc.
func (r *ProductRepositoryFS) Upsert(ctx context.Context, p *product.Product) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	if p == nil {
		return errors.New("product_repository_fs: product is nil")
	}

	pid := strings.TrimSpace(p.ID)
	if pid == "" {
		return errors.New("product_repository_fs: Upsert requires product.ID as docId")
	}

	_, err := r.col().Doc(pid).Set(ctx, map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"imageUrl":    p.ImageURL,
		"category":    p.Category,
	})
	return err
}

func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return errors.New("product_repository_fs: id is empty")
	}

	_, err := r.col().Doc(pid).Delete(ctx)
	return err
}

// List returns the whole collection.
func (r *ProductRepositoryFS) List(ctx context.Context) ([]product.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}

	out := []product.Product{}
	it := r.col().Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		if p := productFromSnapshot(snap); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

// WatchAll streams the whole collection on every change until ctx is
// cancelled.
func (r *ProductRepositoryFS) WatchAll(ctx context.Context, fn func(product.CollectionSnapshot)) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	if fn == nil {
		return errors.New("product_repository_fs: watch callback is nil")
	}

	it := r.col().Query.Snapshots(ctx)
	go func() {
		defer it.Stop()
		for {
			qsnap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				fn(product.CollectionSnapshot{Err: err})
				return
			}

			products := []product.Product{}
			for {
				snap, derr := qsnap.Documents.Next()
				if errors.Is(derr, iterator.Done) {
					break
				}
				if derr != nil {
					fn(product.CollectionSnapshot{Err: derr})
					products = nil
					break
				}
				if p := productFromSnapshot(snap); p != nil {
					products = append(products, *p)
				}
			}
			if products != nil {
				fn(product.CollectionSnapshot{Products: products})
			}
		}
	}()
	return nil
}

// productFromSnapshot parses document data tolerantly; the docId always
// wins over any stored id field.
func productFromSnapshot(snap *firestore.DocumentSnapshot) *product.Product {
	if snap == nil {
		return nil
	}

	out := &product.Product{ID: snap.Ref.ID}

	raw := snap.Data()
	if raw == nil {
		return out
	}

	out.Name = asString(raw["name"])
	out.Description = asString(raw["description"])
	out.Price = asFloat(raw["price"])
	out.ImageURL = asString(raw["imageUrl"])
	out.Category = asString(raw["category"])
	return out
}
