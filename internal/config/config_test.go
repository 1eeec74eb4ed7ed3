package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "https://drive.example.com/")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_BUCKET", "drive")
	t.Setenv("S3_ACCESS_KEY", "key")
	t.Setenv("S3_SECRET_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(100<<20), cfg.UploadMaxBytes)
	assert.Equal(t, DefaultUploadAllowedTypes, cfg.UploadAllowedTypes)
	assert.Equal(t, time.Hour, cfg.S3DownloadURLExpiry)
	assert.Equal(t, 12, cfg.LinkPasswordCost)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("S3_TIMEOUT", "not-a-duration")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("UPLOAD_ALLOWED_TYPES", " image/ , ,application/pdf")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("LINK_PASSWORD_COST", "4")
	t.Setenv("RATE_LIMIT_PUBLIC", "many")

	cfg := Load()

	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 30*time.Second, cfg.S3Timeout, "invalid values fall back to the default")
	assert.Equal(t, int64(1024), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"image/", "application/pdf"}, cfg.UploadAllowedTypes)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 10, cfg.LinkPasswordCost, "bcrypt cost is clamped")
	assert.Equal(t, 30, cfg.RateLimitPublic)
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("DB_CONNECTION", "postgres://localhost/drive")
	t.Setenv("APP_ENV", "")

	cfg := LoadDatabase()

	assert.Equal(t, "postgres://localhost/drive", cfg.DBConnection)
	assert.True(t, cfg.IsDevelopment())
}

func TestPublicLinkURL(t *testing.T) {
	cfg := &Config{AppURL: "https://drive.example.com/"}
	assert.Equal(t, "https://drive.example.com/link/abc", cfg.PublicLinkURL("abc"))
}
