// internal/application/admin/catalog_usecase.go

// Package admin holds the role-gated management operations: catalog
// create/update/delete and profile role changes. Privilege checks are
// pure functions of the caller's resolved role.
package admin

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"littleshop/internal/domain/product"
	"littleshop/internal/domain/profile"
)

var (
	ErrPermissionDenied     = errors.New("admin: permission denied")
	ErrConfirmationRequired = errors.New("admin: delete requires confirmation")
	ErrInvalidArgument      = errors.New("admin: invalid argument")
)

// ImageUploader is the outbound port for product image storage.
type ImageUploader interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// CatalogUsecase manages the shared product collection.
// All operations require admin-or-above.
type CatalogUsecase struct {
	products product.Repository
	images   ImageUploader
}

func NewCatalogUsecase(products product.Repository, images ImageUploader) *CatalogUsecase {
	return &CatalogUsecase{products: products, images: images}
}

// CreateProductInput carries the admin form fields for a new product.
type CreateProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Category    string  `json:"category"`
}

// Create validates and stores a new product under a fresh id.
func (uc *CatalogUsecase) Create(ctx context.Context, actor profile.Role, in CreateProductInput) (*product.Product, error) {
	if !actor.AtLeastAdmin() {
		return nil, ErrPermissionDenied
	}

	p := &product.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := uc.products.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update validates and overwrites an existing product.
func (uc *CatalogUsecase) Update(ctx context.Context, actor profile.Role, p product.Product) error {
	if !actor.AtLeastAdmin() {
		return ErrPermissionDenied
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	return uc.products.Upsert(ctx, &p)
}

// Delete removes a product. The caller must confirm explicitly.
func (uc *CatalogUsecase) Delete(ctx context.Context, actor profile.Role, productID string, confirmed bool) error {
	if !actor.AtLeastAdmin() {
		return ErrPermissionDenied
	}
	id := strings.TrimSpace(productID)
	if id == "" {
		return ErrInvalidArgument
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	return uc.products.Delete(ctx, id)
}

// UploadImage stores a product image and returns its public URL.
func (uc *CatalogUsecase) UploadImage(ctx context.Context, actor profile.Role, objectName, contentType string, r io.Reader) (string, error) {
	if !actor.AtLeastAdmin() {
		return "", ErrPermissionDenied
	}
	if uc.images == nil {
		return "", errors.New("admin: image storage not configured")
	}
	name := strings.TrimSpace(objectName)
	if name == "" || r == nil {
		return "", ErrInvalidArgument
	}
	return uc.images.Upload(ctx, name, contentType, r)
}
