package gorm

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// isUniqueViolation reports whether err is a duplicate key error. gorm's
// TranslateError covers the postgres and sqlite dialectors; the message
// checks catch connections opened without translation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// withTimeout bounds a single store call. A zero timeout leaves ctx as is.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
