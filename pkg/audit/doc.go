// Package audit records visitor and notification events.
//
// Events are written as RFC5424 syslog lines to the configured writer and,
// when AUDIT_DATABASE_URL is set, persisted to the messages table of a
// PostgreSQL database.
//
// # Event Types
//
//   - visitor-create: a name was stored for the first time
//   - visitor-recognize: a submitted name was already known
//   - notify: a notification email was sent or failed
//
// # Usage
//
//	logger := audit.NewLogger(os.Stdout, store)
//	logger.Log(ctx, audit.VisitorCreateEvent{VisitorID: v.ID, Username: v.Username})
package audit
