// Package config provides configuration management for Flasky.
//
// This package loads the application settings once at process start from
// defaults, an optional YAML file and environment variables. The resulting
// Config is passed by pointer to the components that need it and is never
// mutated afterwards.
//
// # Configuration Sources
//
// Configuration is loaded from (later wins):
//
//   - Built-in defaults
//   - $FLASKY_CONFIG_PATH/flasky.yml (default /etc/flasky/config/flasky.yml)
//   - Environment variables
//
// # Key Configuration Options
//
//   - FLASKY_ENV: development, testing or production
//   - SECRET_KEY (or FLASK_SECRET_KEY): session cookie signing key
//   - ADMIN_EMAIL (or FLASKY_ADMIN): new visitor notification recipient
//   - DATABASE_URL: postgres://... or sqlite:///path (sqlite:// for memory)
//   - MAIL_SERVER, MAIL_PORT, MAIL_USE_TLS, MAIL_USERNAME, MAIL_PASSWORD
//   - PORT, BIND_ADDRESS: HTTP listen address
//   - FLASKY_LOG_LEVEL: set to "debug" for SQL logging
package config
