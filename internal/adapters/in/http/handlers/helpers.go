// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"littleshop/internal/application/admin"
	cartdom "littleshop/internal/domain/cart"
	"littleshop/internal/domain/product"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeUsecaseError maps application and domain sentinels to statuses.
func writeUsecaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, admin.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "permission_denied")
	case errors.Is(err, admin.ErrConfirmationRequired):
		writeError(w, http.StatusConflict, "confirmation_required")
	case errors.Is(err, admin.ErrInvalidArgument),
		errors.Is(err, product.ErrInvalidProduct),
		errors.Is(err, cartdom.ErrInvalidCart):
		writeError(w, http.StatusBadRequest, "invalid_argument")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}
