package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/audit"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/db"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/notify"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/endpoints"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/templates"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the Flasky application server",
	Long: `Run the Flasky application server.

By default, database migrations are run on startup. Use --no-migrate to skip.
With --templates-dir the HTML pages are read from that directory and
reloaded whenever they change.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}
		if cmd.Flags().Changed("templates-dir") {
			cfg.TemplatesDir, _ = cmd.Flags().GetString("templates-dir")
		}

		// Validate before touching the database (fail fast)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		if cfg.Env == config.EnvProduction && cfg.SecretKey == config.DefaultSecretKey {
			log.Println("Warning: SECRET_KEY is not set, sessions are signed with the default key")
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if err := runServer(cfg, !noMigrate); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", "5000", "server listen port (overrides PORT)")
	serverCmd.Flags().StringP("bind-address", "b", "0.0.0.0", "server bind address (overrides BIND_ADDRESS)")
	serverCmd.Flags().String("templates-dir", "", "serve HTML pages from this directory and reload them on change")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(cfg *config.Config, migrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := connect(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	if migrate {
		log.Println("Running database migrations...")
		if err := db.Migrate(ctx, database); err != nil {
			return err
		}
	}

	mailer, err := notify.NewMailer(cfg.Mail)
	if err != nil {
		return err
	}
	if !cfg.NotificationsEnabled() {
		log.Println("ADMIN_EMAIL is not set, new visitor notifications are disabled")
	}

	renderer, err := newRenderer(ctx, cfg.TemplatesDir)
	if err != nil {
		return err
	}

	auditStore, err := audit.NewStore(cfg.AuditDatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open audit database: %w", err)
	}
	if auditStore != nil {
		defer func() { _ = auditStore.Close() }()
		if err := auditStore.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare audit database: %w", err)
		}
	}

	s, err := server.NewServer(cfg, database, mailer, renderer, audit.NewLogger(os.Stdout, auditStore))
	if err != nil {
		return err
	}
	endpoints.RegisterAll(s)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Running server at http://%s (%s)...\n", cfg.Addr(), cfg.Env)
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

func newRenderer(ctx context.Context, dir string) (*templates.Renderer, error) {
	if dir == "" {
		return templates.NewEmbedded()
	}

	renderer, err := templates.NewFromDir(dir)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := renderer.Watch(ctx, dir); err != nil {
			log.Printf("Template watcher stopped: %v", err)
		}
	}()
	log.Printf("Serving templates from %s with reload", dir)
	return renderer, nil
}
