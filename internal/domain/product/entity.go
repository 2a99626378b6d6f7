// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
)

var ErrInvalidProduct = errors.New("product: invalid")

// PlaceholderImageURL is used when a product is created without an image.
const PlaceholderImageURL = "https://placehold.co/300x300/cccccc/333333?text=New+Product"

// Product is a shared catalog record, keyed by ID.
type Product struct {
	ID          string  `json:"id" firestore:"id"`
	Name        string  `json:"name" firestore:"name"`
	Description string  `json:"description" firestore:"description"`
	Price       float64 `json:"price" firestore:"price"`
	ImageURL    string  `json:"imageUrl" firestore:"imageUrl"`
	Category    string  `json:"category" firestore:"category"`
}

// Validate enforces the write-side rules: non-empty id/name/category and
// a non-negative price. Description and image are optional.
func (p *Product) Validate() error {
	if p == nil {
		return ErrInvalidProduct
	}
	if strings.TrimSpace(p.ID) == "" ||
		strings.TrimSpace(p.Name) == "" ||
		strings.TrimSpace(p.Category) == "" {
		return ErrInvalidProduct
	}
	if p.Price < 0 {
		return ErrInvalidProduct
	}
	return nil
}

// Normalize trims text fields and fills the placeholder image.
func (p *Product) Normalize() {
	if p == nil {
		return
	}
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	if p.ImageURL == "" {
		p.ImageURL = PlaceholderImageURL
	}
}

// FilterByCategory returns the products matching category.
// An empty category (or "All") returns the input unchanged.
func FilterByCategory(products []Product, category string) []Product {
	c := strings.TrimSpace(category)
	if c == "" || strings.EqualFold(c, "All") {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}
