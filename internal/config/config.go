package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName      string
	AppEnv       string
	AppURL       string
	Port         string
	SupportEmail string

	// Database (optional driver switch via ENV, default: sqlite).
	// An empty DB_CONNECTION runs the service without persistence: usage
	// aggregation returns zero and quota checks fail open.
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region               string
	S3Bucket               string
	S3AccessKey            string
	S3SecretKey            string
	S3Endpoint             string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PresignExpiryPublic  time.Duration // Expiry for published memorial media - default: 7 days
	S3PresignExpiryPrivate time.Duration // Expiry for draft memorial media - default: 1 hour
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:      envString("APP_NAME", "Sandalwood Memories"),
		AppEnv:       envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:       envString("APP_URL", "http://localhost:8090"),
		Port:         envString("PORT", "8090"),
		SupportEmail: envString("SUPPORT_EMAIL", "hello@example.com"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/memories.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required for media uploads)
		S3Region:               envString("S3_REGION", ""),
		S3Bucket:               envString("S3_BUCKET", ""),
		S3AccessKey:            envString("S3_ACCESS_KEY", ""),
		S3SecretKey:            envString("S3_SECRET_KEY", ""),
		S3Endpoint:             envString("S3_ENDPOINT", ""),                           // Optional: for non-AWS providers
		S3PresignExpiryPublic:  envDuration("S3_PRESIGN_EXPIRY_PUBLIC", 168*time.Hour), // Default: 7 days for published media
		S3PresignExpiryPrivate: envDuration("S3_PRESIGN_EXPIRY_PRIVATE", 1*time.Hour),  // Default: 1 hour for draft media
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures required services are configured for production
// deployments. Development allows running without a database or object store
// for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.DBConnection == "" {
		slog.Error("production deployment requires DB_CONNECTION",
			"hint", "set APP_ENV=development to run without persistence (quota checks fail open)")
		os.Exit(1)
	}
	if cfg.S3Bucket == "" || cfg.S3Region == "" {
		slog.Error("production deployment requires S3_BUCKET and S3_REGION")
		os.Exit(1)
	}
}

// HasDatastore reports whether a persistence backend is configured. Without
// one the quota engine runs in fail-open mode.
func (c *Config) HasDatastore() bool {
	return c.DBConnection != ""
}

// HasStorage reports whether an object store is configured. Media routes are
// only mounted when it is.
func (c *Config) HasStorage() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
