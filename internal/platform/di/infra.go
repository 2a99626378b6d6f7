// internal/platform/di/infra.go
package di

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "littleshop/internal/infra/config"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager)
// - owns env/config-resolved runtime settings (app id, buckets, api key)
//
// Firestore is strict (init failure is fatal). GCS, Firebase Auth,
// Secret Manager and the web API key are best-effort (warn + continue);
// components that need a missing client stay disabled.
type Infra struct {
	// Config
	Config    *appcfg.Config
	ProjectID string
	AppID     string

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client

	// Runtime settings (resolved once)
	WebAPIKey          string
	ProductImageBucket string
}

// NewInfra initializes shared infra.
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di.infra: config is nil")
	}

	projectID := resolveProjectID(cfg)
	if projectID == "" {
		return nil, errors.New("di.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GOOGLE_CLOUD_PROJECT)")
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,
		AppID:     cfg.AppID,
	}
	if inf.AppID == "" {
		inf.AppID = projectID
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	} else {
		log.Printf("[di.infra] Using Application Default Credentials (no credentials file configured)")
	}

	// 1) Firestore (strict)
	{
		var fsClient *firestore.Client
		var err error
		if len(clientOpts) > 0 {
			fsClient, err = firestore.NewClient(ctx, inf.ProjectID, clientOpts...)
		} else {
			fsClient, err = firestore.NewClient(ctx, inf.ProjectID)
		}
		if err != nil {
			return nil, fmt.Errorf("di.infra: firestore.NewClient failed (project=%s): %w", inf.ProjectID, err)
		}
		inf.Firestore = fsClient
		log.Printf("[di.infra] Firestore connected project=%s appId=%s", inf.ProjectID, inf.AppID)
	}

	// 2) GCS (best-effort; only product image uploads need it)
	{
		var gcsClient *storage.Client
		var err error
		if len(clientOpts) > 0 {
			gcsClient, err = storage.NewClient(ctx, clientOpts...)
		} else {
			gcsClient, err = storage.NewClient(ctx)
		}
		if err != nil {
			log.Printf("[di.infra] WARN: storage.NewClient failed: %v (image uploads disabled)", err)
		} else {
			inf.GCS = gcsClient
			log.Printf("[di.infra] GCS storage client initialized")
		}
	}

	// 3) Firebase App/Auth (best-effort; the gateway needs it, the
	// client core does not)
	{
		var fbApp *firebase.App
		var err error

		fbCfg := &firebase.Config{ProjectID: inf.ProjectID}
		if len(clientOpts) > 0 {
			fbApp, err = firebase.NewApp(ctx, fbCfg, clientOpts...)
		} else {
			fbApp, err = firebase.NewApp(ctx, fbCfg)
		}

		if err != nil {
			log.Printf("[di.infra] WARN: firebase app init failed: %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[di.infra] WARN: firebase auth init failed: %v", err)
			} else {
				inf.FirebaseAuth = authClient
				log.Printf("[di.infra] Firebase Auth initialized")
			}
		}
	}

	// 4) Secret Manager (best-effort; web API key fallback only)
	{
		var sm *secretmanager.Client
		var err error
		if len(clientOpts) > 0 {
			sm, err = secretmanager.NewClient(ctx, clientOpts...)
		} else {
			sm, err = secretmanager.NewClient(ctx)
		}
		if err != nil {
			log.Printf("[di.infra] WARN: secretmanager.NewClient failed: %v (secret-backed config disabled)", err)
			sm = nil
		}
		inf.SecretManager = sm
	}

	// 5) Web API key: env first, Secret Manager fallback
	inf.WebAPIKey = strings.TrimSpace(cfg.WebAPIKey)
	if inf.WebAPIKey == "" && strings.TrimSpace(cfg.WebAPIKeySecretName) != "" {
		key, err := inf.accessSecret(ctx, cfg.WebAPIKeySecretName)
		if err != nil {
			log.Printf("[di.infra] WARN: web api key secret load failed: %v (sign-in disabled)", err)
		} else {
			inf.WebAPIKey = key
			log.Printf("[di.infra] Web API key loaded from Secret Manager")
		}
	}
	if inf.WebAPIKey == "" {
		log.Printf("[di.infra] WARN: FIREBASE_WEB_API_KEY is empty (sign-in features may fail)")
	}

	// 6) Buckets (resolve once)
	inf.ProductImageBucket = strings.TrimSpace(cfg.ProductImageBucket)
	if inf.ProductImageBucket == "" {
		log.Printf("[di.infra] WARN: PRODUCT_IMAGE_BUCKET is empty (image uploads disabled)")
	}

	if inf.Firestore == nil {
		_ = inf.Close()
		return nil, errors.New("di.infra: firestore client is nil after initialization (unexpected)")
	}

	return inf, nil
}

// accessSecret reads the latest version of a secret. name may be a
// short secret id (resolved under the project) or a full resource name.
func (i *Infra) accessSecret(ctx context.Context, name string) (string, error) {
	if i.SecretManager == nil {
		return "", errors.New("secret manager client is not available")
	}

	n := strings.TrimSpace(name)
	if !strings.Contains(n, "/") {
		n = fmt.Sprintf("projects/%s/secrets/%s/versions/latest", i.ProjectID, n)
	}

	resp, err := i.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: n,
	})
	if err != nil {
		return "", err
	}

	data := resp.GetPayload().GetData()
	if crc := resp.GetPayload().GetDataCrc32C(); crc != 0 {
		sum := crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli))
		if int64(sum) != crc {
			return "", errors.New("secret payload checksum mismatch")
		}
	}
	return strings.TrimSpace(string(data)), nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	return nil
}

func resolveProjectID(cfg *appcfg.Config) string {
	// Priority:
	// 1) cfg.FirestoreProjectID (resolved by config.Load)
	// 2) FIRESTORE_PROJECT_ID
	// 3) GCP_PROJECT_ID
	// 4) GOOGLE_CLOUD_PROJECT (often set in Cloud Run)
	// 5) FIREBASE_PROJECT_ID (fallback)
	if cfg != nil {
		if v := strings.TrimSpace(cfg.FirestoreProjectID); v != "" {
			return v
		}
	}

	for _, k := range []string{
		"FIRESTORE_PROJECT_ID",
		"GCP_PROJECT_ID",
		"GOOGLE_CLOUD_PROJECT",
		"FIREBASE_PROJECT_ID",
	} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}

	return ""
}

func redactPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***/" + last
}
