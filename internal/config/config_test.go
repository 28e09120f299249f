package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("SECRET_KEY", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.0-flash"}, cfg.GeminiModels)
	assert.Equal(t, "pt", cfg.DefaultLanguage)
	assert.Equal(t, 10*time.Minute, cfg.PriceCacheTTL)
	assert.Equal(t, "smtp.gmail.com", cfg.Email.Host)
	assert.Equal(t, 587, cfg.Email.Port)
	assert.False(t, cfg.Email.Enabled())
	assert.False(t, cfg.Archive.Enabled())
	assert.Contains(t, cfg.DatabaseURL, "investai.db")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9100")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("GEMINI_MODELS", "gemini-2.0-flash, ,gemini-1.5-pro")
	t.Setenv("ANALYSIS_LANGUAGE", "en")
	t.Setenv("EMAIL_SENDER", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
	t.Setenv("PRICE_CACHE_TTL", "90s")
	t.Setenv("ARCHIVE_BUCKET", "analyses")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-pro"}, cfg.GeminiModels)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.True(t, cfg.Email.Enabled())
	assert.Equal(t, 90*time.Second, cfg.PriceCacheTTL)
	assert.True(t, cfg.Archive.Enabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequired))
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Contains(t, err.Error(), "SECRET_KEY")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SecretKey:         "s",
			GeminiAPIKey:      "k",
			AccessTokenExpiry: time.Minute,
			GeminiModels:      []string{"m"},
			DefaultLanguage:   "pt",
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("unsupported language", func(t *testing.T) {
		cfg := valid()
		cfg.DefaultLanguage = "fr"
		assert.Error(t, cfg.Validate())
	})

	t.Run("no models", func(t *testing.T) {
		cfg := valid()
		cfg.GeminiModels = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive expiry", func(t *testing.T) {
		cfg := valid()
		cfg.AccessTokenExpiry = 0
		assert.Error(t, cfg.Validate())
	})
}
