package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/audit"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/db"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/notify"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/endpoints"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/templates"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

// ServerConfig holds configuration for a test Flasky server instance
type ServerConfig struct {
	AdminEmail string
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{AdminEmail: adminRecipient}
}

// ServerInstance represents a running Flasky server for a single scenario
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Port          int
	Config        ServerConfig
	cancel        context.CancelFunc
	serverProcess *exec.Cmd // For binary mode
}

// environment is shared by both modes so the inline server reads the same
// settings the binary would
func (tc *TestContext) environment(cfg ServerConfig, port int) map[string]string {
	return map[string]string{
		"FLASKY_ENV":   config.EnvTesting,
		"DATABASE_URL": tc.DatabaseURL,
		"SECRET_KEY":   "integration-secret",
		"ADMIN_EMAIL":  cfg.AdminEmail,
		"MAIL_SERVER":  tc.MailHost,
		"MAIL_PORT":    strconv.Itoa(tc.MailPort),
		"MAIL_USE_TLS": "false",
		"BIND_ADDRESS": "127.0.0.1",
		"PORT":         strconv.Itoa(port),
	}
}

// StartServer creates and starts a new Flasky server instance. This
// supports both inline and binary modes based on how the test suite was
// started.
func StartServer(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))
	env := tc.environment(cfg, port)

	var (
		instance *ServerInstance
		err      error
	)
	if tc.InlineMode {
		instance, err = startInlineServerInstance(env)
	} else {
		instance, err = startBinaryServerInstance(tc.BinaryPath, env)
	}
	if err != nil {
		return nil, err
	}
	instance.Port = port
	instance.Config = cfg
	instance.ServerURL = fmt.Sprintf("http://127.0.0.1:%d", port)

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// startInlineServerInstance starts an in-process server
func startInlineServerInstance(env map[string]string) (*ServerInstance, error) {
	for k, v := range env {
		old, had := os.LookupEnv(k)
		_ = os.Setenv(k, v)
		defer func(k, old string, had bool) {
			if had {
				_ = os.Setenv(k, old)
			} else {
				_ = os.Unsetenv(k)
			}
		}(k, old, had)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, err
	}
	mailer, err := notify.NewMailer(cfg.Mail)
	if err != nil {
		return nil, err
	}
	renderer, err := templates.NewEmbedded()
	if err != nil {
		return nil, err
	}

	s, err := server.NewServer(cfg, database, mailer, renderer, audit.NewLogger(io.Discard, nil))
	if err != nil {
		return nil, err
	}
	s.SetAccessLog(io.Discard)
	endpoints.RegisterAll(s)

	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "inline server stopped: %v\n", err)
		}
	}()

	instance := &ServerInstance{Server: s}
	instance.cancel = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		_ = db.Close(database)
	}
	return instance, nil
}

// startBinaryServerInstance starts a server using the flaskyctl binary
func startBinaryServerInstance(binaryPath string, env map[string]string) (*ServerInstance, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// Use --no-migrate since the schema was migrated in the test setup
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate")
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	return &ServerInstance{cancel: cancel, serverProcess: cmd}, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}
