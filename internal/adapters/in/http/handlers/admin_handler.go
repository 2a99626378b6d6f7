// internal/adapters/in/http/handlers/admin_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"littleshop/internal/adapters/in/http/middleware"
	"littleshop/internal/application/admin"
	"littleshop/internal/domain/product"
	"littleshop/internal/domain/profile"
)

const maxImageUploadBytes = 10 << 20

// AdminHandler serves the management endpoints. Role checks live in the
// usecases; the handler only carries the caller's resolved role along.
type AdminHandler struct {
	catalogUC *admin.CatalogUsecase
	profileUC *admin.ProfileAdminUsecase
}

func NewAdminHandler(catalogUC *admin.CatalogUsecase, profileUC *admin.ProfileAdminUsecase) *AdminHandler {
	return &AdminHandler{catalogUC: catalogUC, profileUC: profileUC}
}

// Mount registers the admin routes on r (auth middleware applied by the
// router).
func (h *AdminHandler) Mount(r chi.Router) {
	r.Post("/admin/products", h.createProduct)
	r.Put("/admin/products/{productID}", h.updateProduct)
	r.Delete("/admin/products/{productID}", h.deleteProduct)
	r.Post("/admin/products/images", h.uploadImage)
	r.Get("/admin/profiles", h.listProfiles)
	r.Patch("/admin/profiles/{principalID}/role", h.updateRole)
}

// POST /admin/products
func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in admin.CreateProductInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.catalogUC.Create(r.Context(), middleware.RoleFrom(r.Context()), in)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// PUT /admin/products/{productID}
func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	// The path segment wins over any id in the body.
	p.ID = chi.URLParam(r, "productID")

	if err := h.catalogUC.Update(r.Context(), middleware.RoleFrom(r.Context()), p); err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DELETE /admin/products/{productID}?confirm=true
func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	err := h.catalogUC.Delete(r.Context(), middleware.RoleFrom(r.Context()), chi.URLParam(r, "productID"), confirmed)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /admin/products/images (multipart, field "image")
func (h *AdminHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_multipart_body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_field_required")
		return
	}
	defer file.Close()

	url, err := h.catalogUC.UploadImage(
		r.Context(),
		middleware.RoleFrom(r.Context()),
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"imageUrl": url})
}

// GET /admin/profiles
func (h *AdminHandler) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profileUC.ListProfiles(r.Context(), middleware.RoleFrom(r.Context()))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// PATCH /admin/profiles/{principalID}/role  body: { "role": "admin" }
func (h *AdminHandler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.profileUC.UpdateRole(
		r.Context(),
		middleware.RoleFrom(r.Context()),
		chi.URLParam(r, "principalID"),
		profile.Role(req.Role),
	)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
