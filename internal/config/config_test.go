package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/aeolus/internal/config"

	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("AEOLUS_ENV", "local")
	t.Setenv("AEOLUS_POSTGRES_HOST", "testHost")
	t.Setenv("AEOLUS_POSTGRES_PORT", "12345")
	t.Setenv("AEOLUS_POSTGRES_USER", "admin")
	t.Setenv("AEOLUS_POSTGRES_PASSWORD", "adminpass")
	t.Setenv("AEOLUS_POSTGRES_DB_NAME", "testName")
	t.Setenv("AEOLUS_AUTH_JWT_SECRET", "secret")
	t.Setenv("AEOLUS_STORAGE_SIGNING_SECRET", "files-secret")
	t.Setenv("AEOLUS_FEATURES_WORKER_UPLOADS", "true")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "testHost", cfg.Postgres.Host)
	assert.Equal(t, "12345", cfg.Postgres.Port)
	assert.Equal(t, "admin", cfg.Postgres.User)
	assert.Equal(t, "adminpass", cfg.Postgres.Password)
	assert.Equal(t, "testName", cfg.Postgres.Dbname)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Storage.URLTTL)
	assert.Equal(t, int64(20<<20), cfg.Storage.MaxUploadSize)
	assert.Equal(t, "files-secret", cfg.Storage.SigningSecret)
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Report.DefaultTimezone)
	assert.True(t, cfg.Features.WorkerUploads)
	assert.False(t, cfg.Features.PlaceholderEmails)
}

func Test_MustLoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "config.yaml")
	filet.File(t, path, `
env: production
postgres:
  host: db
  db_name: aeolus
http:
  addr: ":8000"
  shutdown_timeout: 5s
auth:
  jwt_secret: from-file
storage:
  signing_secret: files
  url_ttl: 1h
report:
  default_timezone: UTC
features:
  placeholder_emails: true
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("AEOLUS_POSTGRES_HOST", "override")

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "override", cfg.Postgres.Host, "environment wins over the file")
	assert.Equal(t, "aeolus", cfg.Postgres.Dbname)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "files", cfg.Storage.SigningSecret)
	assert.Equal(t, time.Hour, cfg.Storage.URLTTL)
	assert.Equal(t, "UTC", cfg.Report.DefaultTimezone)
	assert.True(t, cfg.Features.PlaceholderEmails)
}

func TestMustLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/definitely/not/here.yaml")

	assert.PanicsWithValue(t, "config file does not exist: /definitely/not/here.yaml", func() {
		config.MustLoad()
	})
}

func TestMustLoad_MissingSecret(t *testing.T) {
	t.Setenv("AEOLUS_AUTH_JWT_SECRET", "")

	assert.PanicsWithValue(t, "auth.jwt_secret is required", func() {
		config.MustLoad()
	})
}

func TestMustLoad_DurationError(t *testing.T) {
	t.Setenv("AEOLUS_AUTH_JWT_SECRET", "secret")
	t.Setenv("AEOLUS_HTTP_SHUTDOWN_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse http.shutdown_timeout from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_TimezoneError(t *testing.T) {
	t.Setenv("AEOLUS_AUTH_JWT_SECRET", "secret")
	t.Setenv("AEOLUS_STORAGE_SIGNING_SECRET", "files-secret")
	t.Setenv("AEOLUS_REPORT_DEFAULT_TIMEZONE", "Mars/Olympus")

	assert.PanicsWithValue(t, "invalid report.default_timezone: Mars/Olympus", func() {
		config.MustLoad()
	})
}

func TestMustLoad_MissingSigningSecret(t *testing.T) {
	t.Setenv("AEOLUS_AUTH_JWT_SECRET", "secret")
	t.Setenv("AEOLUS_STORAGE_SIGNING_SECRET", "")

	assert.PanicsWithValue(t, "storage.signing_secret is required", func() {
		config.MustLoad()
	})
}

func TestMustLoad_SharedSigningSecret(t *testing.T) {
	t.Setenv("AEOLUS_AUTH_JWT_SECRET", "secret")
	t.Setenv("AEOLUS_STORAGE_SIGNING_SECRET", "secret")

	assert.PanicsWithValue(t, "storage.signing_secret must differ from auth.jwt_secret", func() {
		config.MustLoad()
	})
}
