// internal/adapters/in/http/handlers/cart_handler.go
package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"littleshop/internal/adapters/in/http/middleware"
	cartdom "littleshop/internal/domain/cart"
	"littleshop/internal/domain/product"
)

// CartHandler serves the authenticated principal's cart. Every write is
// a read-modify-write of the full item sequence, the same algebra the
// client core applies locally.
type CartHandler struct {
	carts    cartdom.Repository
	products product.Repository
}

func NewCartHandler(carts cartdom.Repository, products product.Repository) *CartHandler {
	return &CartHandler{carts: carts, products: products}
}

// Mount registers the cart routes on r (auth middleware applied by the
// router).
func (h *CartHandler) Mount(r chi.Router) {
	r.Get("/cart", h.get)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{productID}", h.changeQuantity)
	r.Delete("/cart/items/{productID}", h.removeItem)
}

func (h *CartHandler) currentItems(w http.ResponseWriter, r *http.Request) (string, []cartdom.Item, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", nil, false
	}

	c, err := h.carts.GetByPrincipalID(r.Context(), p.ID)
	if err != nil {
		log.Printf("[CartHandler] load principal=%s failed: %v", p.ID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return "", nil, false
	}

	items := []cartdom.Item{}
	if c != nil {
		items = c.Items
	}
	return p.ID, items, true
}

func (h *CartHandler) persist(w http.ResponseWriter, r *http.Request, principalID string, items []cartdom.Item) {
	if err := h.carts.SetItems(r.Context(), principalID, items); err != nil {
		log.Printf("[CartHandler] save principal=%s failed: %v", principalID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, cartPayload(items))
}

func cartPayload(items []cartdom.Item) map[string]any {
	return map[string]any{
		"items":      items,
		"totalItems": cartdom.TotalItems(items),
		"totalPrice": cartdom.TotalPrice(items),
	}
}

// GET /cart
func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	_, items, ok := h.currentItems(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cartPayload(items))
}

// POST /cart/items  body: { "productId": "xxx" }
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		log.Printf("[CartHandler] product lookup id=%s failed: %v", req.ProductID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "product_not_found")
		return
	}

	pid, items, ok := h.currentItems(w, r)
	if !ok {
		return
	}
	h.persist(w, r, pid, cartdom.Add(items, *p))
}

// PATCH /cart/items/{productID}  body: { "delta": -1 }
func (h *CartHandler) changeQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta_must_be_nonzero")
		return
	}

	pid, items, ok := h.currentItems(w, r)
	if !ok {
		return
	}
	next := cartdom.ChangeQuantity(items, chi.URLParam(r, "productID"), req.Delta)
	h.persist(w, r, pid, next)
}

// DELETE /cart/items/{productID}
func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	pid, items, ok := h.currentItems(w, r)
	if !ok {
		return
	}
	h.persist(w, r, pid, cartdom.Remove(items, chi.URLParam(r, "productID")))
}
