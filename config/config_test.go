package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/checkmate?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	for _, key := range []string{
		"SERVER_PORT", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "RUN_MIGRATIONS", "ADMIN_KEY_HASH",
		"BOOTSTRAP_ADMIN_USER_ID", "LLM_API_KEY", "LLM_GATEWAY_URL", "LLM_MODEL",
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, defaultLLMGatewayURL, cfg.LLMGatewayURL)
	assert.Equal(t, defaultLLMModel, cfg.LLMModel)
	assert.False(t, cfg.R2.Enabled())
	assert.Nil(t, cfg.BootstrapAdminUserID)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "x")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET_KEY")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port not a number", "SERVER_PORT", "http"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"log level", "LOG_LEVEL", "loud"},
		{"bootstrap admin", "BOOTSTRAP_ADMIN_USER_ID", "not-a-uuid"},
		{"admin key hash", "ADMIN_KEY_HASH", "plaintext"},
		{"partial r2", "R2_ACCOUNT_ID", "acc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://cup.example.com, http://localhost:5173")
	t.Setenv("BOOTSTRAP_ADMIN_USER_ID", "6f1c2a9e-4b7d-4e8a-9c1f-2d3b4a5c6e7f")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://cup.example.com", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	require.NotNil(t, cfg.BootstrapAdminUserID)
	assert.Equal(t, "6f1c2a9e-4b7d-4e8a-9c1f-2d3b4a5c6e7f", cfg.BootstrapAdminUserID.String())
}
