// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingRequired is returned by Validate when a mandatory setting is absent.
var ErrMissingRequired = errors.New("missing required configuration")

// Config holds application configuration
type Config struct {
	ProjectName string
	APIPrefix   string // Mount point of the versioned API (API_V1_STR)
	DataDir     string // Directory for the default SQLite database (always absolute)
	DatabaseURL string // sqlite file path or postgres:// URL
	LogLevel    string
	Port        int
	DevMode     bool

	SecretKey          string
	AccessTokenExpiry  time.Duration
	CORSAllowedOrigins []string

	GeminiAPIKey      string
	GeminiModels      []string // Candidate models, tried in order
	DefaultLanguage   string   // "pt" or "en"
	ReportingCurrency string

	PriceCacheTTL        time.Duration
	PriceRefreshSchedule string

	Email   EmailConfig
	Archive ArchiveConfig
}

// EmailConfig holds outbound SMTP settings. Notifications are disabled when
// Sender or Password is empty.
type EmailConfig struct {
	Sender   string
	Password string
	Host     string
	Port     int
}

// Enabled reports whether both credentials are present.
func (e EmailConfig) Enabled() bool {
	return e.Sender != "" && e.Password != ""
}

// ArchiveConfig holds S3-compatible storage settings for analysis archival.
// Archival is disabled when Bucket is empty.
type ArchiveConfig struct {
	Bucket          string
	Endpoint        string // e.g. https://<account>.r2.cloudflarestorage.com
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether a bucket has been configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		ProjectName:          getEnv("PROJECT_NAME", "Invest-AI 2.0"),
		APIPrefix:            getEnv("API_V1_STR", "/api/v1"),
		DataDir:              absDataDir,
		DatabaseURL:          getEnv("DATABASE_URL", filepath.Join(absDataDir, "investai.db")),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnvAsInt("PORT", 8000),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		SecretKey:            getEnv("SECRET_KEY", ""),
		AccessTokenExpiry:    time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		CORSAllowedOrigins:   getEnvAsList("BACKEND_CORS_ORIGINS", []string{"*"}),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModels:         getEnvAsList("GEMINI_MODELS", []string{"gemini-2.5-pro", "gemini-2.0-flash"}),
		DefaultLanguage:      getEnv("ANALYSIS_LANGUAGE", "pt"),
		ReportingCurrency:    getEnv("REPORTING_CURRENCY", "BRL"),
		PriceCacheTTL:        getEnvAsDuration("PRICE_CACHE_TTL", 10*time.Minute),
		PriceRefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", "@every 15m"),
		Email: EmailConfig{
			Sender:   getEnv("EMAIL_SENDER", ""),
			Password: getEnv("EMAIL_PASSWORD", ""),
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
		},
		Archive: ArchiveConfig{
			Bucket:          getEnv("ARCHIVE_BUCKET", ""),
			Endpoint:        getEnv("ARCHIVE_ENDPOINT", ""),
			Region:          getEnv("ARCHIVE_REGION", "auto"),
			AccessKeyID:     getEnv("ARCHIVE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	if c.AccessTokenExpiry <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if len(c.GeminiModels) == 0 {
		return fmt.Errorf("GEMINI_MODELS must list at least one model")
	}
	switch c.DefaultLanguage {
	case "pt", "en":
	default:
		return fmt.Errorf("ANALYSIS_LANGUAGE must be \"pt\" or \"en\", got %q", c.DefaultLanguage)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
