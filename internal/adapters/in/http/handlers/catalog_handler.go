// internal/adapters/in/http/handlers/catalog_handler.go
package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"littleshop/internal/domain/product"
)

// CatalogHandler serves the public product catalog. No auth required.
type CatalogHandler struct {
	products product.Repository
}

func NewCatalogHandler(products product.Repository) *CatalogHandler {
	return &CatalogHandler{products: products}
}

// Mount registers the catalog routes on r.
func (h *CatalogHandler) Mount(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{productID}", h.get)
}

// GET /products?category=Snacks
func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		log.Printf("[CatalogHandler] list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, map[string]any{
		"products": product.FilterByCategory(products, category),
	})
}

// GET /products/{productID}
func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("[CatalogHandler] get id=%s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "product_not_found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
