package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the loader at an empty config dir and clears every
// variable the loader reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FLASKY_CONFIG_PATH", dir)
	for _, key := range []string{
		"FLASKY_ENV", "SECRET_KEY", "FLASK_SECRET_KEY", "ADMIN_EMAIL", "FLASKY_ADMIN",
		"DATABASE_URL", "AUDIT_DATABASE_URL", "DEV_DATABASE_URL", "TEST_DATABASE_URL", "BIND_ADDRESS", "PORT",
		"FLASKY_LOG_LEVEL", "FLASKY_TEMPLATES_DIR", "FLASKY_STORE_TIMEOUT_SECONDS",
		"MAIL_SERVER", "MAIL_PORT", "MAIL_USE_TLS", "MAIL_USERNAME", "MAIL_PASSWORD",
		"MAIL_SUBJECT_PREFIX", "MAIL_SENDER", "MAIL_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DefaultSecretKey, cfg.SecretKey)
	assert.Equal(t, "sqlite:///data-dev.sqlite", cfg.DatabaseURL)
	assert.Equal(t, "[Flasky]", cfg.Mail.SubjectPrefix)
	assert.Equal(t, "Flasky Admin <flasky@example.com>", cfg.Mail.Sender)
	assert.Equal(t, "smtp.googlemail.com", cfg.Mail.Server)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.True(t, cfg.Mail.TLS())
	assert.False(t, cfg.NotificationsEnabled())
	assert.Equal(t, "default", cfg.Source("admin_email"))
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvironmentDatabaseDefaults(t *testing.T) {
	t.Run("testing uses in-memory sqlite", func(t *testing.T) {
		isolate(t)
		t.Setenv("FLASKY_ENV", EnvTesting)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "sqlite://", cfg.DatabaseURL)
	})

	t.Run("testing honours TEST_DATABASE_URL", func(t *testing.T) {
		isolate(t)
		t.Setenv("FLASKY_ENV", EnvTesting)
		t.Setenv("TEST_DATABASE_URL", "postgres://localhost/flasky_test")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/flasky_test", cfg.DatabaseURL)
	})

	t.Run("production file database", func(t *testing.T) {
		isolate(t)
		t.Setenv("FLASKY_ENV", EnvProduction)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "sqlite:///data.sqlite", cfg.DatabaseURL)
	})

	t.Run("DATABASE_URL wins", func(t *testing.T) {
		isolate(t)
		t.Setenv("FLASKY_ENV", EnvTesting)
		t.Setenv("DATABASE_URL", "postgres://db/flasky")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "postgres://db/flasky", cfg.DatabaseURL)
		assert.Equal(t, "environment", cfg.Source("database_url"))
	})
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("FLASKY_ADMIN", "ops@example.com")
	t.Setenv("FLASK_SECRET_KEY", "legacy-secret")
	t.Setenv("MAIL_USE_TLS", "off")
	t.Setenv("MAIL_PORT", "2525")
	t.Setenv("MAIL_USERNAME", "mailer")
	t.Setenv("MAIL_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ops@example.com", cfg.AdminEmail)
	assert.True(t, cfg.NotificationsEnabled())
	assert.Equal(t, "legacy-secret", cfg.SecretKey)
	assert.False(t, cfg.Mail.TLS())
	assert.Equal(t, 2525, cfg.Mail.Port)
	assert.Equal(t, "environment", cfg.Source("mail_use_tls"))

	// Primary names win over the legacy aliases
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("SECRET_KEY", "primary-secret")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, "primary-secret", cfg.SecretKey)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	content := `env: production
admin_email: file@example.com
database_url: postgres://file/flasky
mail:
  server: mail.internal
  use_tls: false
  sender: Ops <ops@example.com>
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "file@example.com", cfg.AdminEmail)
	assert.Equal(t, "postgres://file/flasky", cfg.DatabaseURL)
	assert.Equal(t, "mail.internal", cfg.Mail.Server)
	assert.False(t, cfg.Mail.TLS())
	assert.Equal(t, "Ops <ops@example.com>", cfg.Mail.Sender)
	assert.Equal(t, "file", cfg.Source("mail_server"))
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())

	t.Setenv("ADMIN_EMAIL", "env@example.com")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.AdminEmail)
	assert.Equal(t, "environment", cfg.Source("admin_email"))
}

func TestLoadMalformedConfigFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("mail: [unclosed"), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad env", mutate: func(c *Config) { c.Env = "staging" }, wantErr: ErrInvalidEnvironment},
		{name: "empty secret", mutate: func(c *Config) { c.SecretKey = "" }, wantErr: ErrMissingSecretKey},
		{name: "bad admin email", mutate: func(c *Config) { c.AdminEmail = "not an address" }, wantErr: ErrInvalidAdminEmail},
		{name: "named admin email", mutate: func(c *Config) { c.AdminEmail = "Ops <ops@example.com>" }},
		{name: "bad port", mutate: func(c *Config) { c.Mail.Port = 0 }, wantErr: ErrInvalidMailPort},
		{name: "mysql url", mutate: func(c *Config) { c.DatabaseURL = "mysql://localhost/db" }, wantErr: ErrInvalidDatabaseURL},
		{name: "no scheme", mutate: func(c *Config) { c.DatabaseURL = "data.sqlite" }, wantErr: ErrInvalidDatabaseURL},
		{name: "postgres url", mutate: func(c *Config) { c.DatabaseURL = "postgresql://localhost/db" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			cfg.DatabaseURL = "sqlite://"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestFormatMasksSecrets(t *testing.T) {
	isolate(t)
	t.Setenv("SECRET_KEY", "super-secret-value")
	t.Setenv("MAIL_PASSWORD", "mail-password-value")

	cfg, err := Load()
	require.NoError(t, err)

	text := cfg.FormatText()
	assert.NotContains(t, text, "super-secret-value")
	assert.NotContains(t, text, "mail-password-value")
	assert.Contains(t, text, "secret_key")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.NotContains(t, out, "super-secret-value")

	var decoded struct {
		ConfigFile string      `json:"config_file"`
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Attributes, len(attributeNames()))
}

func TestLoadAuditDatabaseURL(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.AuditDatabaseURL)
	assert.Equal(t, "default", cfg.Source("audit_database_url"))

	fileURL := "postgres://audit:file-pass@db/audit"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("audit_database_url: "+fileURL+"\n"), 0o600))
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, fileURL, cfg.AuditDatabaseURL)
	assert.Equal(t, "file", cfg.Source("audit_database_url"))

	envURL := "postgres://audit:env-pass@db/audit"
	t.Setenv("AUDIT_DATABASE_URL", envURL)
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, envURL, cfg.AuditDatabaseURL)
	assert.Equal(t, "environment", cfg.Source("audit_database_url"))

	// Credentials never leak through configuration show
	assert.NotContains(t, cfg.FormatText(), "env-pass")
	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.NotContains(t, out, "env-pass")
	assert.Contains(t, out, "audit_database_url")
}
