package config

import (
	"fmt"
	"os"
	"strconv"
)

// Auth modes. Local mode issues and verifies HS256 tokens itself; JWKS mode
// delegates identity to an external issuer and verifies RS256/ES256 tokens
// against its published key set.
const (
	AuthModeLocal = "local"
	AuthModeJWKS  = "jwks"
)

// Storage backends for uploaded file content.
const (
	StorageBackendLocal  = "local"
	StorageBackendObject = "object"
)

// ProviderCredentials is one external storage provider's OAuth client
// registration. The rest of the provider descriptor (endpoints, scopes)
// lives in the embedded registry.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	CORSOrigins string

	// Auth
	AuthMode        string
	JWTSecret       string
	JWTIssuer       string
	TokenTTLMinutes int
	JWKSURL         string

	// Storage
	StorageBackend  string
	LocalStorageDir string
	ObjectBucket    string

	// External storage connect flow
	OAuthRedirectURL string
	Providers        map[string]ProviderCredentials

	// Optional file logging (empty = stdout only)
	LogDir      string
	LogMaxFiles int

	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		AuthMode:        getEnv("AUTH_MODE", AuthModeLocal),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "docvault"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 60),
		JWKSURL:         getEnv("JWKS_URL", ""),

		StorageBackend:  getEnv("STORAGE_BACKEND", StorageBackendLocal),
		LocalStorageDir: getEnv("LOCAL_STORAGE_DIR", "./data/files"),
		ObjectBucket:    getEnv("OBJECT_BUCKET", ""),

		OAuthRedirectURL: getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/api/external-storage/callback"),
		Providers: map[string]ProviderCredentials{
			"googledrive": {
				ClientID:     getEnv("GOOGLEDRIVE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLEDRIVE_CLIENT_SECRET", ""),
			},
			"onedrive": {
				ClientID:     getEnv("ONEDRIVE_CLIENT_ID", ""),
				ClientSecret: getEnv("ONEDRIVE_CLIENT_SECRET", ""),
			},
		},

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate checks that the configuration is complete enough to start the
// server. Called once from main, before anything connects anywhere.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.AuthMode {
	case AuthModeLocal:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in local auth mode")
		}
	case AuthModeJWKS:
		if c.JWKSURL == "" {
			return fmt.Errorf("JWKS_URL is required in jwks auth mode")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q (expected %q or %q)", c.AuthMode, AuthModeLocal, AuthModeJWKS)
	}

	switch c.StorageBackend {
	case StorageBackendLocal:
		// LocalStorageDir has a default; the adapter creates it on start.
	case StorageBackendObject:
		if c.ObjectBucket == "" {
			return fmt.Errorf("OBJECT_BUCKET is required with the object storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected %q or %q)", c.StorageBackend, StorageBackendLocal, StorageBackendObject)
	}

	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
