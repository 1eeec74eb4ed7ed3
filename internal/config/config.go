package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string // Base URL of the web client, used for public link URLs
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret        string
	JWTExpiry        time.Duration
	LinkPasswordCost int // bcrypt cost for link-share passwords
	CORSOrigins      []string

	// Rate limiting for unauthenticated endpoints
	RateLimitPublic int
	RateLimitWindow time.Duration

	// Uploads
	UploadMaxBytes     int64
	UploadAllowedTypes []string // MIME type prefixes, e.g. "image/", "application/pdf"

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region            string
	S3Bucket            string
	S3AccessKey         string
	S3SecretKey         string
	S3Endpoint          string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3DownloadURLExpiry time.Duration // Signed GET URLs
	S3UploadURLExpiry   time.Duration // Signed PUT URLs
	S3Timeout           time.Duration // Per-call timeout for object store requests
}

// DefaultUploadAllowedTypes mirrors the types the web client lets users pick.
var DefaultUploadAllowedTypes = []string{
	"image/",
	"video/",
	"audio/",
	"text/",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument",
	"application/zip",
	"application/x-zip-compressed",
}

func Load() *Config {
	loadDotEnv()

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Drive"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", defaultDBDriver),
		DBConnection: envString("DB_CONNECTION", defaultDBConnection),

		// Security
		JWTSecret:        envRequired("JWT_SECRET"),
		JWTExpiry:        envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		LinkPasswordCost: envInt("LINK_PASSWORD_COST", 12),
		CORSOrigins:      envList("CORS_ALLOWED_ORIGINS", nil),

		RateLimitPublic: envInt("RATE_LIMIT_PUBLIC", 30),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", time.Minute),

		// Uploads
		UploadMaxBytes:     int64(envInt("UPLOAD_MAX_BYTES", 100<<20)), // 100MB
		UploadAllowedTypes: envList("UPLOAD_ALLOWED_TYPES", DefaultUploadAllowedTypes),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:            envRequired("S3_REGION"),
		S3Bucket:            envRequired("S3_BUCKET"),
		S3AccessKey:         envRequired("S3_ACCESS_KEY"),
		S3SecretKey:         envRequired("S3_SECRET_KEY"),
		S3Endpoint:          envString("S3_ENDPOINT", ""),
		S3DownloadURLExpiry: envDuration("S3_DOWNLOAD_URL_EXPIRY", 1*time.Hour),
		S3UploadURLExpiry:   envDuration("S3_UPLOAD_URL_EXPIRY", 2*time.Hour),
		S3Timeout:           envDuration("S3_TIMEOUT", 30*time.Second),
	}

	// bcrypt below cost 10 is too cheap for link passwords
	if cfg.LinkPasswordCost < 10 {
		slog.Warn("config LINK_PASSWORD_COST below minimum, using 10", "value", cfg.LinkPasswordCost)
		cfg.LinkPasswordCost = 10
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// LoadDatabase reads only the database settings. Admin commands use it so
// they run without storage or token secrets configured.
func LoadDatabase() *Config {
	loadDotEnv()

	return &Config{
		AppName:      envString("APP_NAME", "Drive"),
		AppEnv:       envString("APP_ENV", "development"),
		DBDriver:     envString("DB_DRIVER", defaultDBDriver),
		DBConnection: envString("DB_CONNECTION", defaultDBConnection),
	}
}

const (
	defaultDBDriver     = "sqlite"
	defaultDBConnection = "./data/drive.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
)

func loadDotEnv() {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email to run in log mode for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires JWT_SECRET of at least 32 characters")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
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

// envList reads a comma separated list, dropping empty items
func envList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
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

// PublicLinkURL builds the web client URL for a link-share token.
func (c *Config) PublicLinkURL(token string) string {
	return strings.TrimSuffix(c.AppURL, "/") + "/link/" + token
}
