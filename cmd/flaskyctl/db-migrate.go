package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations to bring the schema
up to date. Migrations are embedded in the binary.

Example:
  flaskyctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := withMigrator(runMigrations); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  flaskyctl db down      # Rollback 1 migration
  flaskyctl db down 2    # Rollback 2 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid number of steps %q\n", args[0])
				os.Exit(1)
			}
			steps = n
		}

		err := withMigrator(func(m *db.Migrator) error {
			return runMigrationsDown(m, steps)
		})
		if err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := withMigrator(showMigrationStatus); err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func withMigrator(fn func(m *db.Migrator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := connect(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	m, err := db.NewMigrator(context.Background(), database)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	return fn(m)
}

func runMigrations(m *db.Migrator) error {
	version, dirty, _, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	if err := m.Up(); err != nil {
		return err
	}

	newVersion, _, _, err := m.Version()
	if err != nil {
		return err
	}
	if newVersion == version {
		fmt.Println("No migrations to run - database is up to date")
		return nil
	}

	fmt.Printf("Migrated to version: %d\n", newVersion)
	fmt.Println("Migrations complete")
	return nil
}

func runMigrationsDown(m *db.Migrator, steps int) error {
	fmt.Printf("Rolling back %d migration(s)...\n", steps)

	if err := m.Down(steps); err != nil {
		return err
	}

	version, _, applied, err := m.Version()
	if err != nil {
		return err
	}
	if !applied {
		fmt.Println("Rolled back all migrations")
		return nil
	}
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus(m *db.Migrator) error {
	version, dirty, applied, err := m.Version()
	if err != nil {
		return err
	}
	if !applied {
		fmt.Println("No migrations have been applied yet")
		return nil
	}

	fmt.Printf("Current version: %d\n", version)
	if dirty {
		fmt.Println("Warning: Database is in a dirty state")
	}
	return nil
}
