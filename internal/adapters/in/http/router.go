// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"littleshop/internal/adapters/in/http/handlers"
	"littleshop/internal/adapters/in/http/middleware"
	"littleshop/internal/application/admin"
	"littleshop/internal/application/session"
	cartdom "littleshop/internal/domain/cart"
	"littleshop/internal/domain/product"
	"littleshop/internal/domain/profile"
)

// RouterDeps collects everything the gateway routes need, injected
// from the DI container.
type RouterDeps struct {
	FirebaseAuth *middleware.FirebaseAuthClient
	Auth         session.AuthGateway
	Profiles     profile.Repository
	Products     product.Repository
	Carts        cartdom.Repository

	CatalogUC *admin.CatalogUsecase
	ProfileUC *admin.ProfileAdminUsecase

	AllowedOrigin string
}

// NewRouter sets up the HTTP gateway: a public catalog surface plus
// bearer-token protected cart and admin routes.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(deps.AllowedOrigin))

	// Health check (always on)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Public catalog
	if deps.Products != nil {
		handlers.NewCatalogHandler(deps.Products).Mount(r)
	}

	// Public session endpoints (token issuance for web clients)
	if deps.Auth != nil {
		handlers.NewSessionHandler(deps.Auth).Mount(r)
	}

	// Authenticated surface
	auth := &middleware.AuthMiddleware{
		FirebaseAuth: deps.FirebaseAuth,
		Profiles:     deps.Profiles,
	}
	r.Group(func(r chi.Router) {
		r.Use(auth.Handler)

		if deps.Carts != nil && deps.Products != nil {
			handlers.NewCartHandler(deps.Carts, deps.Products).Mount(r)
		}
		if deps.CatalogUC != nil && deps.ProfileUC != nil {
			handlers.NewAdminHandler(deps.CatalogUC, deps.ProfileUC).Mount(r)
		}
	})

	return r
}
