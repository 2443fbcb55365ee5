package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("APP_BASE_URL", "https://example.dev/")
	t.Setenv("SUBMIT_TIMEOUT", "not-a-duration")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.GetAppAddr())
	assert.Equal(t, "https://example.dev", cfg.GetAppBaseURL(), "trailing slash is trimmed")
	assert.Equal(t, "/", cfg.GetAuthCallbackURL())
	assert.Equal(t, "/books", cfg.GetVerifyRedirectURL())
	assert.Equal(t, 10*time.Second, cfg.GetSubmitTimeout(), "invalid durations fall back")
	assert.Equal(t, "sqlite", cfg.GetDBDriver())
	assert.Equal(t, "log", cfg.GetEmailProvider())
	assert.False(t, cfg.IsDebug())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("missing session secret", func(t *testing.T) {
		cfg := &Config{DBDriver: "sqlite"}
		assert.ErrorIs(t, cfg.Validate(), ErrMissingSessionSecret)
	})

	t.Run("surreal requires connection settings", func(t *testing.T) {
		cfg := &Config{SessionSecret: "s", DBDriver: "surreal", SurrealURL: "ws://localhost:8000"}
		assert.Error(t, cfg.Validate())
	})
}
