package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// HealthStore provides health check operations using GORM
type HealthStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewHealthStore creates a new HealthStore
func NewHealthStore(db *gorm.DB, timeout time.Duration) *HealthStore {
	return &HealthStore{db: db, timeout: timeout}
}

// CheckConnectivity verifies database connectivity
func (s *HealthStore) CheckConnectivity(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.WithContext(ctx).Exec("SELECT 1").Error
}
