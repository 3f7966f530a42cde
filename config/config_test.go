package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points dotenv at a missing file and clears the variables the
// tests assert on.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{"PORT", "APP_ENV", "NODE_ENV", "JWT_SECRET", "JWT_SECRET_KEY", "CLIENT_URL", "DATABASE_DRIVER", "STREAM_API_KEY", "STREAM_API_SECRET", "RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 168*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Security.ResetTokenTTL)
	assert.Equal(t, 30*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, "@every 1h", cfg.Jobs.ReconcileSchedule)
	assert.Equal(t, DevJWTSecret, cfg.Security.JWTSecret)
	assert.False(t, cfg.Chat.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CLIENT_URL", "https://app.example.com/, https://admin.example.com")
	t.Setenv("STREAM_API_KEY", "key")
	t.Setenv("STREAM_API_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Security.JWTSecret)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins())
	assert.True(t, cfg.Chat.Enabled())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	isolateEnv(t)
	t.Setenv("NODE_ENV", "production")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolateEnv(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("HF_TOKEN=abc\nGEMINI_API_KEY=def\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)

	// dotenv never overrides variables that are already set, even empty ones
	for _, key := range []string{"HF_TOKEN", "GEMINI_API_KEY"} {
		prev, had := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if had {
				os.Setenv(key, prev)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.AI.HFToken)
	assert.Equal(t, "def", cfg.AI.GeminiAPIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 6001\ndatabase:\n  driver: postgres\n  url: postgres://localhost/zync\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6001, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoad_UnknownDriver(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_RateLimit(t *testing.T) {
	isolateEnv(t)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("RATE_LIMIT_BURST", "5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Security.RateLimitPerMinute)
	assert.Equal(t, 5, cfg.Security.RateLimitBurst)

	for _, tc := range []struct{ key, value string }{
		{"RATE_LIMIT_PER_MINUTE", "0"},
		{"RATE_LIMIT_PER_MINUTE", "-1"},
		{"RATE_LIMIT_BURST", "0"},
	} {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load("")
			assert.ErrorContains(t, err, "must be positive")
		})
	}
}
