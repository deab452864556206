package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/flasky/config"
	ConfigFileName    = "flasky.yml"

	// DefaultSecretKey matches the development fallback of the tutorial app.
	// Production deployments must override it.
	DefaultSecretKey = "hard to guess string"
)

// Application environments. Each one picks its own default database.
const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

// ValidEnvironments is the list of recognized FLASKY_ENV values
var ValidEnvironments = []string{EnvDevelopment, EnvTesting, EnvProduction}

// SupportedDatabaseSchemes lists the URL schemes db.Connect understands
var SupportedDatabaseSchemes = []string{"postgres", "postgresql", "sqlite"}

var (
	ErrInvalidEnvironment = errors.New("invalid environment")
	ErrMissingSecretKey   = errors.New("secret key is required")
	ErrInvalidAdminEmail  = errors.New("invalid admin email")
	ErrInvalidDatabaseURL = errors.New("unsupported database url")
	ErrInvalidMailPort    = errors.New("invalid mail port")
)

// MailConfig holds the outbound mail transport and message identity
type MailConfig struct {
	// Server is the SMTP host
	Server string `yaml:"server" json:"server"`

	// Port is the SMTP port
	Port int `yaml:"port" json:"port"`

	// UseTLS requires STARTTLS on the connection
	UseTLS *bool `yaml:"use_tls" json:"use_tls"`

	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`

	// SubjectPrefix is prepended to every notification subject
	SubjectPrefix string `yaml:"subject_prefix" json:"subject_prefix"`

	// Sender is the From address, e.g. "Flasky Admin <flasky@example.com>"
	Sender string `yaml:"sender" json:"sender"`

	// TimeoutSeconds bounds dialing and sending a single message
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// TLS reports whether STARTTLS is required
func (m MailConfig) TLS() bool {
	return m.UseTLS != nil && *m.UseTLS
}

// Timeout returns the mail timeout as a duration
func (m MailConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Config holds all application settings. It is built once by Load and
// treated as read-only afterwards.
type Config struct {
	// Env selects development, testing or production defaults
	Env string `yaml:"env" json:"env"`

	// SecretKey signs the session cookie
	SecretKey string `yaml:"secret_key" json:"-"`

	// AdminEmail receives new visitor notifications. Empty disables them.
	AdminEmail string `yaml:"admin_email" json:"admin_email"`

	// DatabaseURL selects the store backend and location
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// AuditDatabaseURL is an optional PostgreSQL database for audit messages
	AuditDatabaseURL string `yaml:"audit_database_url" json:"-"`

	BindAddress string `yaml:"bind_address" json:"bind_address"`
	Port        string `yaml:"port" json:"port"`

	// LogLevel is "debug" to enable SQL logging
	LogLevel string `yaml:"log_level" json:"log_level"`

	// TemplatesDir overrides the embedded templates and enables hot reload
	TemplatesDir string `yaml:"templates_dir" json:"templates_dir"`

	// StoreTimeoutSeconds bounds every store call made by a request
	StoreTimeoutSeconds int `yaml:"store_timeout_seconds" json:"store_timeout_seconds"`

	Mail MailConfig `yaml:"mail" json:"mail"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func newDefault() *Config {
	useTLS := true
	return &Config{
		Env:                 EnvDevelopment,
		SecretKey:           DefaultSecretKey,
		BindAddress:         "0.0.0.0",
		Port:                "5000",
		StoreTimeoutSeconds: 3,
		Mail: MailConfig{
			Server:         "smtp.googlemail.com",
			Port:           587,
			UseTLS:         &useTLS,
			SubjectPrefix:  "[Flasky]",
			Sender:         "Flasky Admin <flasky@example.com>",
			TimeoutSeconds: 10,
		},
		sources: make(map[string]string),
	}
}

// Load builds the configuration from defaults, the optional config file and
// environment variables. Environment variables take precedence over file
// values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("FLASKY_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	// The database default depends on the final environment
	if config.DatabaseURL == "" {
		config.DatabaseURL = defaultDatabaseURL(config.Env)
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"env", "secret_key", "admin_email", "database_url", "audit_database_url",
		"bind_address", "port", "log_level", "templates_dir",
		"store_timeout_seconds",
		"mail_server", "mail_port", "mail_use_tls", "mail_username",
		"mail_password", "mail_subject_prefix", "mail_sender",
		"mail_timeout_seconds",
	}
}

func defaultDatabaseURL(env string) string {
	switch env {
	case EnvTesting:
		if v := os.Getenv("TEST_DATABASE_URL"); v != "" {
			return v
		}
		return "sqlite://"
	case EnvProduction:
		return "sqlite:///data.sqlite"
	default:
		if v := os.Getenv("DEV_DATABASE_URL"); v != "" {
			return v
		}
		return "sqlite:///data-dev.sqlite"
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.Env != "" {
		c.Env = file.Env
		c.sources["env"] = "file"
	}
	if file.SecretKey != "" {
		c.SecretKey = file.SecretKey
		c.sources["secret_key"] = "file"
	}
	if file.AdminEmail != "" {
		c.AdminEmail = file.AdminEmail
		c.sources["admin_email"] = "file"
	}
	if file.DatabaseURL != "" {
		c.DatabaseURL = file.DatabaseURL
		c.sources["database_url"] = "file"
	}
	if file.AuditDatabaseURL != "" {
		c.AuditDatabaseURL = file.AuditDatabaseURL
		c.sources["audit_database_url"] = "file"
	}
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.Port != "" {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.TemplatesDir != "" {
		c.TemplatesDir = file.TemplatesDir
		c.sources["templates_dir"] = "file"
	}
	if file.StoreTimeoutSeconds != 0 {
		c.StoreTimeoutSeconds = file.StoreTimeoutSeconds
		c.sources["store_timeout_seconds"] = "file"
	}
	if file.Mail.Server != "" {
		c.Mail.Server = file.Mail.Server
		c.sources["mail_server"] = "file"
	}
	if file.Mail.Port != 0 {
		c.Mail.Port = file.Mail.Port
		c.sources["mail_port"] = "file"
	}
	if file.Mail.UseTLS != nil {
		useTLS := *file.Mail.UseTLS
		c.Mail.UseTLS = &useTLS
		c.sources["mail_use_tls"] = "file"
	}
	if file.Mail.Username != "" {
		c.Mail.Username = file.Mail.Username
		c.sources["mail_username"] = "file"
	}
	if file.Mail.Password != "" {
		c.Mail.Password = file.Mail.Password
		c.sources["mail_password"] = "file"
	}
	if file.Mail.SubjectPrefix != "" {
		c.Mail.SubjectPrefix = file.Mail.SubjectPrefix
		c.sources["mail_subject_prefix"] = "file"
	}
	if file.Mail.Sender != "" {
		c.Mail.Sender = file.Mail.Sender
		c.sources["mail_sender"] = "file"
	}
	if file.Mail.TimeoutSeconds != 0 {
		c.Mail.TimeoutSeconds = file.Mail.TimeoutSeconds
		c.sources["mail_timeout_seconds"] = "file"
	}
}

// firstEnv returns the value of the first non-empty variable in keys
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("FLASKY_ENV"); val != "" {
		c.Env = val
		c.sources["env"] = "environment"
	}
	if val := firstEnv("SECRET_KEY", "FLASK_SECRET_KEY"); val != "" {
		c.SecretKey = val
		c.sources["secret_key"] = "environment"
	}
	if val := firstEnv("ADMIN_EMAIL", "FLASKY_ADMIN"); val != "" {
		c.AdminEmail = val
		c.sources["admin_email"] = "environment"
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = "environment"
	}
	if val := os.Getenv("AUDIT_DATABASE_URL"); val != "" {
		c.AuditDatabaseURL = val
		c.sources["audit_database_url"] = "environment"
	}
	if val := os.Getenv("BIND_ADDRESS"); val != "" {
		c.BindAddress = val
		c.sources["bind_address"] = "environment"
	}
	if val := os.Getenv("PORT"); val != "" {
		c.Port = val
		c.sources["port"] = "environment"
	}
	if val := os.Getenv("FLASKY_LOG_LEVEL"); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("FLASKY_TEMPLATES_DIR"); val != "" {
		c.TemplatesDir = val
		c.sources["templates_dir"] = "environment"
	}
	if val := os.Getenv("FLASKY_STORE_TIMEOUT_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.StoreTimeoutSeconds = i
			c.sources["store_timeout_seconds"] = "environment"
		}
	}
	if val := os.Getenv("MAIL_SERVER"); val != "" {
		c.Mail.Server = val
		c.sources["mail_server"] = "environment"
	}
	if val := os.Getenv("MAIL_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Mail.Port = i
			c.sources["mail_port"] = "environment"
		}
	}
	if val := os.Getenv("MAIL_USE_TLS"); val != "" {
		useTLS := parseBool(val)
		c.Mail.UseTLS = &useTLS
		c.sources["mail_use_tls"] = "environment"
	}
	if val := os.Getenv("MAIL_USERNAME"); val != "" {
		c.Mail.Username = val
		c.sources["mail_username"] = "environment"
	}
	if val := os.Getenv("MAIL_PASSWORD"); val != "" {
		c.Mail.Password = val
		c.sources["mail_password"] = "environment"
	}
	if val := os.Getenv("MAIL_SUBJECT_PREFIX"); val != "" {
		c.Mail.SubjectPrefix = val
		c.sources["mail_subject_prefix"] = "environment"
	}
	if val := os.Getenv("MAIL_SENDER"); val != "" {
		c.Mail.Sender = val
		c.sources["mail_sender"] = "environment"
	}
	if val := os.Getenv("MAIL_TIMEOUT_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Mail.TimeoutSeconds = i
			c.sources["mail_timeout_seconds"] = "environment"
		}
	}
}

func parseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// NotificationsEnabled reports whether an admin recipient is configured
func (c *Config) NotificationsEnabled() bool {
	return c.AdminEmail != ""
}

// StoreTimeout returns the per-call store timeout
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.BindAddress + ":" + c.Port
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validEnv := false
	for _, env := range ValidEnvironments {
		if c.Env == env {
			validEnv = true
			break
		}
	}
	if !validEnv {
		return fmt.Errorf("%w: %q", ErrInvalidEnvironment, c.Env)
	}

	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}

	if c.AdminEmail != "" {
		if _, err := mail.ParseAddress(c.AdminEmail); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAdminEmail, c.AdminEmail)
		}
	}

	if c.Mail.Port < 1 || c.Mail.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidMailPort, c.Mail.Port)
	}

	scheme, _, found := strings.Cut(c.DatabaseURL, "://")
	if !found {
		return fmt.Errorf("%w: %s", ErrInvalidDatabaseURL, c.DatabaseURL)
	}
	supported := false
	for _, s := range SupportedDatabaseSchemes {
		if scheme == s {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: scheme %q", ErrInvalidDatabaseURL, scheme)
	}

	return nil
}

func mask(value string) string {
	if value == "" {
		return ""
	}
	return "********"
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "env", Value: c.Env, Source: c.Source("env")},
		{Name: "secret_key", Value: mask(c.SecretKey), Source: c.Source("secret_key")},
		{Name: "admin_email", Value: c.AdminEmail, Source: c.Source("admin_email")},
		{Name: "database_url", Value: c.DatabaseURL, Source: c.Source("database_url")},
		{Name: "audit_database_url", Value: mask(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: c.Port, Source: c.Source("port")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "templates_dir", Value: c.TemplatesDir, Source: c.Source("templates_dir")},
		{Name: "store_timeout_seconds", Value: strconv.Itoa(c.StoreTimeoutSeconds), Source: c.Source("store_timeout_seconds")},
		{Name: "mail_server", Value: c.Mail.Server, Source: c.Source("mail_server")},
		{Name: "mail_port", Value: strconv.Itoa(c.Mail.Port), Source: c.Source("mail_port")},
		{Name: "mail_use_tls", Value: strconv.FormatBool(c.Mail.TLS()), Source: c.Source("mail_use_tls")},
		{Name: "mail_username", Value: c.Mail.Username, Source: c.Source("mail_username")},
		{Name: "mail_password", Value: mask(c.Mail.Password), Source: c.Source("mail_password")},
		{Name: "mail_subject_prefix", Value: c.Mail.SubjectPrefix, Source: c.Source("mail_subject_prefix")},
		{Name: "mail_sender", Value: c.Mail.Sender, Source: c.Source("mail_sender")},
		{Name: "mail_timeout_seconds", Value: strconv.Itoa(c.Mail.TimeoutSeconds), Source: c.Source("mail_timeout_seconds")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
