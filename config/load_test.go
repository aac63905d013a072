package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	for _, k := range []string{
		"LIBZONE_CONFIG", "APP_PORT", "PORT", "APP_ENV", "LOG_LEVEL", "STORE_DRIVER",
		"DATABASE_URL", "MONGO_URI", "MONGO_DATABASE", "JWT_SECRET",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_SECURE", "MAIL_FROM",
		"STORAGE_ENDPOINT", "STORAGE_ACCESS_KEY", "STORAGE_SECRET_KEY", "STORAGE_USE_SSL",
		"STORAGE_REGION", "STORAGE_PUBLIC_BUCKET", "STORAGE_PRIVATE_BUCKET", "STORAGE_PUBLIC_BASE_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_DevDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, devSecret, cfg.JWTSecret)
	require.Equal(t, 587, cfg.Mail.Port)
	require.Equal(t, "libzone-private", cfg.Storage.PrivateBucket)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "libzone.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
env: production
store_driver: mongo
mongo_uri: mongodb://file:27017
jwt_secret: from-file
write_timeout: 2m
mail:
  host: smtp.file
  port: 2525
storage:
  endpoint: s3.file:9000
`), 0o600))

	t.Setenv("PORT", "7000")
	t.Setenv("SMTP_SECURE", "true")
	t.Setenv("MONGO_URI", "mongodb://env:27017")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "7000", cfg.Port)
	require.Equal(t, "production", cfg.Env)
	require.Equal(t, "mongodb://env:27017", cfg.MongoURI)
	require.Equal(t, "from-file", cfg.JWTSecret)
	require.Equal(t, 2*time.Minute, cfg.WriteTimeout)
	require.Equal(t, "smtp.file", cfg.Mail.Host)
	require.Equal(t, 2525, cfg.Mail.Port)
	require.True(t, cfg.Mail.Secure)
	require.Equal(t, "s3.file:9000", cfg.Storage.Endpoint)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load("")
	require.ErrorContains(t, err, "DATABASE_URL is required")
	require.ErrorContains(t, err, "JWT_SECRET is required")

	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "s")
	_, err = Load("")
	require.ErrorContains(t, err, `unknown STORE_DRIVER "sqlite"`)

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SMTP_PORT", "abc")
	_, err = Load("")
	require.ErrorContains(t, err, "SMTP_PORT")

	t.Setenv("SMTP_PORT", "")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load("")
	require.ErrorContains(t, err, `invalid LOG_LEVEL "loud"`)
}
