package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"eventease/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "JWT_SECRET", "JWT_EXPIRY", "CONTEXT_TIMEOUT",
		"BOOKING_CONFLICT_POLICY", "CORS_ALLOWED_ORIGINS", "IMAGE_STORE_PROVIDER", "EMAIL_PROVIDER",
		"RUN_MIGRATIONS", "ALLOW_ADMIN_SIGNUP", "DB_MAX_OPEN_CONNS", "S3_REGION", "AWS_REGION"} {
		t.Setenv(k, "")
	}

	cfg, err := fromEnv("development")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, domain.PolicyAuto, cfg.ConflictPolicy)
	assert.Equal(t, 10*time.Second, cfg.ContextTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.RunMigrations)
	assert.False(t, cfg.AllowAdminSignUp)
	assert.Equal(t, "local", cfg.ImageStoreProvider)
	assert.Equal(t, "noop", cfg.EmailProvider)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("CONTEXT_TIMEOUT", "3s")
	t.Setenv("BOOKING_CONFLICT_POLICY", "Event_Timestamp")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "true")
	t.Setenv("IMAGE_STORE_PROVIDER", "S3")
	t.Setenv("S3_BUCKET", "eventease-images")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")

	cfg, err := fromEnv("production")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 3*time.Second, cfg.ContextTimeout)
	assert.Equal(t, domain.PolicyEventTimestamp, cfg.ConflictPolicy)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.AllowAdminSignUp)
	assert.Equal(t, "s3", cfg.ImageStoreProvider)
	assert.Equal(t, 50, cfg.DBMaxOpenConns)
	assert.True(t, cfg.IsProduction())
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		vars    map[string]string
		wantMsg string
	}{
		{"missing secret in production", "production", map[string]string{"JWT_SECRET": ""}, "JWT_SECRET is required"},
		{"bad policy", "development", map[string]string{"BOOKING_CONFLICT_POLICY": "first_come"}, "BOOKING_CONFLICT_POLICY"},
		{"bad duration", "development", map[string]string{"CONTEXT_TIMEOUT": "soon"}, "CONTEXT_TIMEOUT"},
		{"negative timeout", "development", map[string]string{"CONTEXT_TIMEOUT": "-1s"}, "CONTEXT_TIMEOUT must be positive"},
		{"bad bool", "development", map[string]string{"RUN_MIGRATIONS": "maybe"}, "RUN_MIGRATIONS"},
		{"s3 without bucket", "development", map[string]string{"IMAGE_STORE_PROVIDER": "s3", "S3_BUCKET": ""}, "S3_BUCKET is required"},
		{"ses without sender", "development", map[string]string{"EMAIL_PROVIDER": "ses", "EMAIL_FROM_ADDRESS": ""}, "EMAIL_FROM_ADDRESS is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.vars {
				t.Setenv(k, v)
			}
			_, err := fromEnv(tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "eventease", rec["service"])
	assert.Equal(t, "v", rec["k"])

	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
