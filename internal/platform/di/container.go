// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"log"
	"net/http"

	httpin "littleshop/internal/adapters/in/http"
	fs "littleshop/internal/adapters/out/firestore"
	"littleshop/internal/adapters/out/gcs"
	"littleshop/internal/adapters/out/identitytoolkit"
	"littleshop/internal/adapters/out/mail"
	"littleshop/internal/application/admin"
	"littleshop/internal/application/session"
	"littleshop/internal/application/storefront"
	cartdom "littleshop/internal/domain/cart"
	"littleshop/internal/domain/product"
	"littleshop/internal/domain/profile"
)

// Container is the dependency bundle main.go uses. The goal is to keep
// main.go as thin as possible.
type Container struct {
	Infra *Infra

	// Repositories (shared by gateway and client core)
	CartRepo    cartdom.Repository
	ProfileRepo profile.Repository
	ProductRepo product.Repository

	// Usecases
	CatalogUC *admin.CatalogUsecase
	ProfileUC *admin.ProfileAdminUsecase

	// HTTP gateway
	Router http.Handler
}

// Close releases owned resources. Safe on a nil container.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Infra != nil {
		_ = c.Infra.Close()
	}
}

// Build initializes infra, repositories, usecases and the router.
func Build(ctx context.Context) (*Container, func(), error) {
	inf, err := NewInfra(ctx)
	if err != nil {
		return nil, nil, err
	}

	c := &Container{Infra: inf}

	// Repositories
	c.CartRepo = fs.NewCartRepositoryFS(inf.Firestore, inf.AppID)
	c.ProfileRepo = fs.NewProfileRepositoryFS(inf.Firestore, inf.AppID)
	c.ProductRepo = fs.NewProductRepositoryFS(inf.Firestore, inf.AppID)

	// Image uploads (only when GCS and a bucket are available)
	var uploader admin.ImageUploader
	if inf.GCS != nil && inf.ProductImageBucket != "" {
		uploader = gcs.NewProductImageRepositoryGCS(inf.GCS, inf.ProductImageBucket)
	} else {
		log.Printf("[di] image uploads disabled (GCS client or bucket missing)")
	}

	// Role-change mail (only when SendGrid is configured)
	var notifier admin.RoleChangeNotifier
	if inf.Config.SendGridAPIKey != "" {
		sg := mail.NewSendGridClient(inf.Config.SendGridAPIKey)
		notifier = mail.NewRoleChangeMailer(sg, inf.Config.MailFrom)
	} else {
		log.Printf("[di] role-change mail disabled (SENDGRID_API_KEY empty)")
	}

	// Usecases
	c.CatalogUC = admin.NewCatalogUsecase(c.ProductRepo, uploader)
	c.ProfileUC = admin.NewProfileAdminUsecase(c.ProfileRepo, notifier)

	// Token issuance for web clients (only when an API key is present)
	var authGateway session.AuthGateway
	if inf.WebAPIKey != "" {
		authGateway = identitytoolkit.NewClient(inf.WebAPIKey, "")
	} else {
		log.Printf("[di] session endpoints disabled (web api key empty)")
	}

	// HTTP gateway
	c.Router = httpin.NewRouter(httpin.RouterDeps{
		FirebaseAuth:  inf.FirebaseAuth,
		Auth:          authGateway,
		Profiles:      c.ProfileRepo,
		Products:      c.ProductRepo,
		Carts:         c.CartRepo,
		CatalogUC:     c.CatalogUC,
		ProfileUC:     c.ProfileUC,
		AllowedOrigin: inf.Config.AllowedOrigin,
	})

	cleanup := func() { c.Close() }
	return c, cleanup, nil
}

// NewStorefront builds the client-side session core on top of the
// container's repositories. Each call is one independent client
// session; callers own Start/Close.
func (c *Container) NewStorefront() (*storefront.Storefront, error) {
	if c == nil || c.Infra == nil {
		return nil, errors.New("di: container is not built")
	}
	if c.Infra.WebAPIKey == "" {
		return nil, errors.New("di: web api key is empty (set FIREBASE_WEB_API_KEY or FIREBASE_WEB_API_KEY_SECRET)")
	}

	gateway := identitytoolkit.NewClient(c.Infra.WebAPIKey, "")

	return storefront.New(storefront.Deps{
		Auth:        gateway,
		Profiles:    c.ProfileRepo,
		Carts:       c.CartRepo,
		Products:    c.ProductRepo,
		ResumeToken: c.Infra.Config.InitialAuthToken,
	})
}
