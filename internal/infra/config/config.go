// internal/infra/config/config.go
package config

import "os"

// Config holds environment-variable configuration for the whole app.
type Config struct {
	Port     string
	GCPCreds string

	// Firestore / Firebase
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// AppID namespaces every Firestore path (artifacts/<appID>/...).
	// Defaults to the project id, same convention as the web client.
	AppID string

	// Identity Toolkit (email/password + anonymous sign-in REST API).
	// If WebAPIKey is empty and WebAPIKeySecretName is set, the key is
	// loaded from Secret Manager at startup.
	WebAPIKey           string
	WebAPIKeySecretName string

	// InitialAuthToken is an optional custom token used to resume a
	// session at startup instead of creating an anonymous principal.
	InitialAuthToken string

	// GCS bucket for product images (admin uploads).
	ProductImageBucket string

	// SendGrid (role-change notification mail; empty disables mail).
	SendGridAPIKey string
	MailFrom       string

	// CORS origin allowed on the HTTP gateway.
	AllowedOrigin string
}

// Load reads the environment and returns a Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	cfg := &Config{
		Port:     getenvDefault("PORT", "8080"),
		GCPCreds: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		WebAPIKey:           os.Getenv("FIREBASE_WEB_API_KEY"),
		WebAPIKeySecretName: os.Getenv("FIREBASE_WEB_API_KEY_SECRET"),

		InitialAuthToken: os.Getenv("INITIAL_AUTH_TOKEN"),

		ProductImageBucket: os.Getenv("PRODUCT_IMAGE_BUCKET"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenvDefault("MAIL_FROM", "noreply@littleshop.example"),

		AllowedOrigin: getenvDefault("ALLOWED_ORIGIN", "*"),
	}

	cfg.AppID = getenvDefault("APP_ID", cfg.FirebaseProjectID)

	return cfg
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
