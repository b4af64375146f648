// Package config loads the server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI providers. A provider without an API key is not registered.
	AIProvider     string // "openai", "claude", "gemini", "mistral"
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	ClaudeAPIKey   string
	ClaudeModel    string
	ClaudeBaseURL  string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	MistralAPIKey  string
	MistralModel   string
	MistralBaseURL string
	AIRateLimit    int // requests per minute per user

	// S3-compatible export storage
	S3Endpoint   string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	ExportURLTTL time.Duration

	// Telegram
	TelegramBotToken string
	TelegramAPIURL   string
	InitDataMaxAge   time.Duration

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Catalog file; empty uses the embedded catalog.
	CatalogPath string

	// Allowed CORS origins for the Mini App.
	CORSOrigins []string
}

const defaultDBPassword = "changeme"

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "contentwizard"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:     envOrDefault("POSTGRES_DB", "contentwizard"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider:     envOrDefault("AI_PROVIDER", "openai"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		ClaudeAPIKey:   os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:    os.Getenv("CLAUDE_MODEL"),
		ClaudeBaseURL:  os.Getenv("CLAUDE_BASE_URL"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),
		GeminiBaseURL:  os.Getenv("GEMINI_BASE_URL"),
		MistralAPIKey:  os.Getenv("MISTRAL_API_KEY"),
		MistralModel:   os.Getenv("MISTRAL_MODEL"),
		MistralBaseURL: os.Getenv("MISTRAL_BASE_URL"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "contentwizard-exports"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIURL:   envOrDefault("TELEGRAM_API_URL", "https://api.telegram.org"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		CatalogPath:   os.Getenv("CATALOG_PATH"),
		CORSOrigins:   splitList(envOrDefault("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.AIRateLimit, err = intOrDefault("AI_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.ExportURLTTL, err = durationOrDefault("EXPORT_URL_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.InitDataMaxAge, err = durationOrDefault("INIT_DATA_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationOrDefault("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		var errs []error
		if cfg.DBPassword == defaultDBPassword {
			errs = append(errs, errors.New("POSTGRES_PASSWORD must be set in production"))
		}
		if cfg.SessionSecret == "" {
			errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
		}
		if cfg.TelegramBotToken == "" {
			errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN must be set in production"))
		}
		if err := errors.Join(errs...); err != nil {
			return nil, err
		}
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-session-secret"
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return n, nil
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
