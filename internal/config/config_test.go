package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults in development", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("JWT_SECRET", "")
		t.Setenv("DB_DRIVER", "")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, DriverPgx, cfg.DB.Driver)
		assert.Equal(t, "haircarelog", cfg.Auth.JWTIssuer)
		assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL)
		assert.Equal(t, time.Hour, cfg.ReminderSweepInterval)
		assert.Equal(t, "UTC", cfg.ReportLocation.String())
		assert.NotEmpty(t, cfg.Auth.JWTSecret)
		assert.False(t, cfg.Auth.CookieSecure)
		assert.Equal(t, "HairCareLog", cfg.SendGrid.FromName)
	})

	t.Run("Production requires a JWT secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")

		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})

	t.Run("Production secures cookies by default", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("COOKIE_SECURE", "")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.True(t, cfg.Auth.CookieSecure)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("Reads values from a .env file", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		envFile := filepath.Join(t.TempDir(), ".env")
		content := "REPORT_TIMEZONE=Europe/Rome\nCORS_ALLOWED_ORIGINS=https://a.example, https://b.example\nREMINDER_SWEEP_INTERVAL=15m\n"
		require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
		t.Cleanup(func() {
			os.Unsetenv("REPORT_TIMEZONE")
			os.Unsetenv("CORS_ALLOWED_ORIGINS")
			os.Unsetenv("REMINDER_SWEEP_INTERVAL")
		})

		cfg, err := Load(envFile)
		require.NoError(t, err)
		assert.Equal(t, "Europe/Rome", cfg.ReportLocation.String())
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
		assert.Equal(t, 15*time.Minute, cfg.ReminderSweepInterval)
	})

	t.Run("Rejects unknown driver", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("DB_DRIVER", "mongo")

		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})

	t.Run("Rejects malformed numbers", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("DB_DRIVER", "")
		t.Setenv("REDIS_DB", "one")

		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{User: "u", Password: "p", Host: "db", Port: "5432", Name: "hcl", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/hcl?sslmode=disable", c.DSN())
}
