// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"math"
	"time"

	"littleshop/internal/domain/product"
)

var ErrInvalidCart = errors.New("cart: invalid")

// Item is one line item: the product fields plus a positive quantity.
// A cart holds at most one Item per product id.
type Item struct {
	ProductID   string  `json:"id" firestore:"id"`
	Name        string  `json:"name" firestore:"name"`
	Description string  `json:"description" firestore:"description"`
	Price       float64 `json:"price" firestore:"price"`
	ImageURL    string  `json:"imageUrl" firestore:"imageUrl"`
	Category    string  `json:"category" firestore:"category"`
	Quantity    int     `json:"quantity" firestore:"quantity"`
}

// Cart is the per-principal cart document.
// docId = principal id; Items keeps insertion order.
type Cart struct {
	PrincipalID string    `json:"principalId" firestore:"-"`
	Items       []Item    `json:"items" firestore:"items"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// itemFromProduct builds a quantity-1 line item from a catalog product.
func itemFromProduct(p product.Product) Item {
	return Item{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Quantity:    1,
	}
}

// The mutation algebra below is pure: each function computes a new item
// sequence from the given one and never mutates its input. Callers apply
// the result as the new local state and persist the full sequence.

// Add increments the quantity of an existing line for p's id, or appends
// a new quantity-1 line. Appending preserves insertion order;
// incrementing preserves the existing position.
func Add(items []Item, p product.Product) []Item {
	if p.ID == "" {
		return cloneItems(items)
	}
	next := cloneItems(items)
	if idx := findItemIndex(next, p.ID); idx >= 0 {
		next[idx].Quantity++
		return next
	}
	return append(next, itemFromProduct(p))
}

// ChangeQuantity adds delta to the matching line's quantity; a result
// of zero or less removes the line. Lines for other products are
// unchanged. No-op if productID is absent.
func ChangeQuantity(items []Item, productID string, delta int) []Item {
	idx := findItemIndex(items, productID)
	if idx < 0 {
		return cloneItems(items)
	}
	next := cloneItems(items)
	next[idx].Quantity += delta
	if next[idx].Quantity <= 0 {
		return removeIndex(next, idx)
	}
	return next
}

// Remove deletes the matching line. No-op if productID is absent.
func Remove(items []Item, productID string) []Item {
	idx := findItemIndex(items, productID)
	if idx < 0 {
		return cloneItems(items)
	}
	return removeIndex(cloneItems(items), idx)
}

// TotalItems is the sum of quantities.
func TotalItems(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// TotalPrice is the sum of price*quantity, rounded to 2 decimal places
// for display.
func TotalPrice(items []Item) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return math.Round(total*100) / 100
}

// Validate checks the cart invariants: at most one line per product id
// and strictly positive quantities.
func Validate(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return ErrInvalidCart
		}
		if _, dup := seen[it.ProductID]; dup {
			return ErrInvalidCart
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

func findItemIndex(items []Item, productID string) int {
	if productID == "" {
		return -1
	}
	for i, it := range items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return []Item{}
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func removeIndex(items []Item, idx int) []Item {
	return append(items[:idx], items[idx+1:]...)
}
