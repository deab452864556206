package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	migrations "github.com/doodlesbykumbi/flasky-in-go/db"
)

// MigrationsTable is the golang-migrate bookkeeping table
const MigrationsTable = "flasky_schema_migrations"

// Migrator runs the embedded migrations over an open connection
type Migrator struct {
	m       *migrate.Migrate
	closeFn func() error
}

// NewMigrator builds a Migrator for the dialect of db. It reuses the
// connection pool of db rather than opening its own, so in-memory SQLite
// databases are migrated in place.
func NewMigrator(ctx context.Context, db *gorm.DB) (*Migrator, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	var (
		dir    string
		driver database.Driver
		// the sqlite driver closes the shared pool on Close, so only the
		// source is released for it
		ownsDriver bool
	)

	switch db.Dialector.Name() {
	case DialectPostgres:
		dir = "migrations/postgres"
		conn, err := sqlDB.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get migration connection: %w", err)
		}
		driver, err = pgmigrate.WithConnection(ctx, conn, &pgmigrate.Config{MigrationsTable: MigrationsTable})
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to create postgres migration driver: %w", err)
		}
		ownsDriver = true
	case DialectSQLite:
		dir = "migrations/sqlite3"
		driver, err = sqlitemigrate.WithInstance(sqlDB, &sqlitemigrate.Config{MigrationsTable: MigrationsTable})
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite migration driver: %w", err)
		}
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", db.Dialector.Name())
	}

	src, err := iofs.New(migrations.Migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.Dialector.Name(), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	closeFn := func() error { return closeSource(src) }
	if ownsDriver {
		closeFn = func() error {
			srcErr, dbErr := m.Close()
			return errors.Join(srcErr, dbErr)
		}
	}

	return &Migrator{m: m, closeFn: closeFn}, nil
}

func closeSource(src source.Driver) error {
	return src.Close()
}

// Up applies all pending migrations. An up-to-date schema is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Down rolls back the given number of migrations
func (m *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	if err := m.m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// Version returns the current schema version. applied is false when no
// migration has run yet.
func (m *Migrator) Version() (version uint, dirty bool, applied bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}

// Close releases the migration source and, for postgres, the dedicated
// migration connection.
func (m *Migrator) Close() error {
	return m.closeFn()
}

// Migrate applies all pending migrations to db
func Migrate(ctx context.Context, db *gorm.DB) error {
	m, err := NewMigrator(ctx, db)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}
