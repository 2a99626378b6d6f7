// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"littleshop/internal/domain/principal"
	"littleshop/internal/domain/profile"
)

// FirebaseAuthClient is an alias so router deps can name the type
// without importing the firebase package.
type FirebaseAuthClient = fbauth.Client

// Dedicated context key type to avoid collisions (SA1029).
type ctxKey struct{ name string }

var (
	ctxKeyPrincipal = ctxKey{name: "principal"}
	ctxKeyRole      = ctxKey{name: "role"}
)

// AuthMiddleware verifies
//
//   - Authorization: Bearer <ID_TOKEN>
//
// and puts the principal and its stored role into the request context.
// Principals without a profile document get the default role.
type AuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
	Profiles     profile.Repository
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.FirebaseAuth == nil || m.Profiles == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		p := principal.Principal{ID: uid}
		if emailRaw, ok := token.Claims["email"]; ok {
			if e, ok2 := emailRaw.(string); ok2 {
				p.Email = strings.TrimSpace(e)
			}
		}
		if fbRaw, ok := token.Claims["firebase"]; ok {
			if fb, ok2 := fbRaw.(map[string]any); ok2 {
				if sp, _ := fb["sign_in_provider"].(string); sp == "anonymous" {
					p.IsAnonymous = true
				}
			}
		}

		// Stored role; absence or a read failure degrades to "user"
		// rather than failing the request.
		role := profile.DefaultRole
		prof, err := m.Profiles.GetByPrincipalID(r.Context(), uid)
		if err != nil {
			log.Printf("[AuthMiddleware] path=%s uid=%s profile read failed: %v", r.URL.Path, uid, err)
		} else if prof != nil {
			role = prof.Role
		}

		ctx := context.WithValue(r.Context(), ctxKeyPrincipal, p)
		ctx = context.WithValue(ctx, ctxKeyRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (principal.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(principal.Principal)
	return p, ok
}

// RoleFrom returns the authenticated principal's role, defaulting to
// "user" when the middleware did not run.
func RoleFrom(ctx context.Context) profile.Role {
	if r, ok := ctx.Value(ctxKeyRole).(profile.Role); ok {
		return r
	}
	return profile.DefaultRole
}
