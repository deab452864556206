// Command flaskyctl runs the Flasky visitor application.
//
// Flasky greets visitors by name. A submitted name is stored the first time
// it is seen, at which point the administrator receives an email, and the
// visitor's state is kept in a signed session cookie.
//
// # Quick Start
//
//	# Create the schema (also done by "server" unless --no-migrate)
//	flaskyctl db migrate
//
//	# Seed roles
//	flaskyctl role create Admin
//	flaskyctl role create User
//
//	# Start the server
//	ADMIN_EMAIL=ops@example.com flaskyctl server
//
// # Environment Variables
//
//   - FLASKY_ENV: development (default), testing or production
//   - DATABASE_URL: postgres://... or sqlite:///path (default per environment)
//   - SECRET_KEY: key signing the session cookie
//   - ADMIN_EMAIL: recipient of new visitor notifications; empty disables them
//   - MAIL_SERVER, MAIL_PORT, MAIL_USE_TLS, MAIL_USERNAME, MAIL_PASSWORD: SMTP
//   - AUDIT_DATABASE_URL: optional PostgreSQL database for audit messages
//   - PORT: Server port (default: 5000)
package main
