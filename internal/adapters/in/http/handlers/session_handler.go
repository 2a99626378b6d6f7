// internal/adapters/in/http/handlers/session_handler.go
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"littleshop/internal/application/session"
	"littleshop/internal/domain/principal"
)

// SessionHandler exposes sign-in, sign-up and anonymous sign-in to web
// clients that cannot reach the identity provider directly. It forwards
// to the auth gateway and returns the session tokens; no state is kept
// server side.
type SessionHandler struct {
	gateway session.AuthGateway
}

func NewSessionHandler(gateway session.AuthGateway) *SessionHandler {
	return &SessionHandler{gateway: gateway}
}

// Mount registers the session routes on r. These are public routes.
func (h *SessionHandler) Mount(r chi.Router) {
	r.Post("/session/signin", h.signIn)
	r.Post("/session/signup", h.signUp)
	r.Post("/session/anonymous", h.anonymous)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func sessionPayload(sess principal.Session) map[string]any {
	return map[string]any{
		"principal":    sess.Principal,
		"idToken":      sess.IDToken,
		"refreshToken": sess.RefreshToken,
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, principal.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, principal.ErrDuplicateAccount):
		writeError(w, http.StatusConflict, "email_already_in_use")
	case errors.Is(err, principal.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "auth_unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

// POST /session/signin
func (h *SessionHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.gateway.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(sess))
}

// POST /session/signup
func (h *SessionHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.gateway.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionPayload(sess))
}

// POST /session/anonymous
func (h *SessionHandler) anonymous(w http.ResponseWriter, r *http.Request) {
	sess, err := h.gateway.SignInAnonymously(r.Context())
	if err != nil {
		log.Printf("[SessionHandler] anonymous sign-in failed: %v", err)
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionPayload(sess))
}
