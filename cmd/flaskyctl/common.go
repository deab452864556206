package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/db"
)

// loadConfig loads and validates the configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// connect opens the configured database
func connect(cfg *config.Config) (*gorm.DB, error) {
	return db.Connect(db.Config{
		URL:   cfg.DatabaseURL,
		Debug: cfg.LogLevel == "debug",
	})
}

// withDatabase loads configuration, connects and runs fn. Management
// commands migrate first so they also work against a fresh database.
func withDatabase(fn func(ctx context.Context, cfg *config.Config, database *gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := connect(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	ctx := context.Background()
	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	return fn(ctx, cfg, database)
}
