package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	defaultLLMGatewayURL = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultLLMModel      = "google/gemini-2.5-flash"
)

// R2Config - параметры Cloudflare R2 для архива партий. Пустой - архив выключен.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (c R2Config) Enabled() bool {
	return c.AccountID != ""
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL        string
	JWTSecretKey       string
	ServerPort         int
	LogLevel           slog.Level
	CORSAllowedOrigins []string
	RunMigrations      bool

	// AdminKeyHash is a bcrypt hash of the legacy shared admin key. Empty disables the key.
	AdminKeyHash         string
	BootstrapAdminUserID *uuid.UUID

	LLMAPIKey     string
	LLMGatewayURL string
	LLMModel      string

	R2 R2Config
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := strconv.Atoi(getEnvOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	runMigrations, err := strconv.ParseBool(getEnvOrDefault("RUN_MIGRATIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_MIGRATIONS environment variable: %w", err)
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		LogLevel:           level,
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		RunMigrations:      runMigrations,
		AdminKeyHash:       os.Getenv("ADMIN_KEY_HASH"),
		LLMAPIKey:          os.Getenv("LLM_API_KEY"),
		LLMGatewayURL:      getEnvOrDefault("LLM_GATEWAY_URL", defaultLLMGatewayURL),
		LLMModel:           getEnvOrDefault("LLM_MODEL", defaultLLMModel),
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	if raw := os.Getenv("BOOTSTRAP_ADMIN_USER_ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BOOTSTRAP_ADMIN_USER_ID environment variable: %w", err)
		}
		cfg.BootstrapAdminUserID = &id
	}

	if cfg.AdminKeyHash != "" && !strings.HasPrefix(cfg.AdminKeyHash, "$2") {
		return nil, fmt.Errorf("ADMIN_KEY_HASH must be a bcrypt hash")
	}

	if err := validateR2(cfg.R2); err != nil {
		return nil, err
	}

	return cfg, nil
}

// R2 настраивается целиком или не настраивается вовсе.
func validateR2(c R2Config) error {
	fields := map[string]string{
		"R2_ACCOUNT_ID":        c.AccountID,
		"R2_ACCESS_KEY_ID":     c.AccessKeyID,
		"R2_SECRET_ACCESS_KEY": c.SecretAccessKey,
		"R2_BUCKET_NAME":       c.BucketName,
		"R2_PUBLIC_BASE_URL":   c.PublicBaseURL,
	}
	var missing []string
	set := 0
	for name, value := range fields {
		if value == "" {
			missing = append(missing, name)
		} else {
			set++
		}
	}
	if set > 0 && len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("incomplete Cloudflare R2 configuration, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
