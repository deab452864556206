package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/db"
)

const (
	mailpitImage   = "axllent/mailpit:v1.21"
	adminRecipient = "admin@flasky.test"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Postgres    testcontainers.Container
	Mailpit     testcontainers.Container
	DatabaseURL string // Connection string for the test database
	MailHost    string
	MailPort    int
	MailAPIURL  string
	HTTPClient  *http.Client
	InlineMode  bool
	BinaryPath  string
}

// NewTestContext starts PostgreSQL and a Mailpit SMTP sink.
// Modes:
//   - Binary mode (default): Set FLASKY_BINARY to the path of the flaskyctl binary
//   - Inline mode: Set FLASKY_INLINE=1 to run the server in-process (no binary needed)
func NewTestContext(ctx context.Context) (*TestContext, error) {
	inlineMode := os.Getenv("FLASKY_INLINE") == "1"
	binaryPath := os.Getenv("FLASKY_BINARY")

	if !inlineMode && binaryPath == "" {
		return nil, fmt.Errorf("Either FLASKY_BINARY or FLASKY_INLINE=1 is required.\n\nBinary mode:\n  go build -o flaskyctl ./cmd/flaskyctl\n  INTEGRATION_TEST=1 FLASKY_BINARY=$(pwd)/flaskyctl go test -v ./test/integration/...\n\nInline mode:\n  INTEGRATION_TEST=1 FLASKY_INLINE=1 go test -v ./test/integration/...")
	}

	if !inlineMode {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("FLASKY_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	tc := &TestContext{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		InlineMode: inlineMode,
		BinaryPath: binaryPath,
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("flasky_test"),
		tcpostgres.WithUsername("flasky"),
		tcpostgres.WithPassword("flasky"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.Postgres = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}
	tc.DatabaseURL = connStr

	tc.DB, err = db.Connect(db.Config{URL: connStr})
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx, tc.DB); err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := tc.startMailpit(ctx); err != nil {
		tc.Close(ctx)
		return nil, err
	}

	return tc, nil
}

func (tc *TestContext) startMailpit(ctx context.Context) error {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        mailpitImage,
			ExposedPorts: []string{"1025/tcp", "8025/tcp"},
			WaitingFor:   wait.ForHTTP("/api/v1/messages").WithPort("8025/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start mailpit container: %w", err)
	}
	tc.Mailpit = container

	host, err := container.Host(ctx)
	if err != nil {
		return fmt.Errorf("failed to get mailpit host: %w", err)
	}
	smtpPort, err := container.MappedPort(ctx, "1025")
	if err != nil {
		return fmt.Errorf("failed to get mailpit smtp port: %w", err)
	}
	apiPort, err := container.MappedPort(ctx, "8025")
	if err != nil {
		return fmt.Errorf("failed to get mailpit api port: %w", err)
	}

	tc.MailHost = host
	tc.MailPort = smtpPort.Int()
	tc.MailAPIURL = fmt.Sprintf("http://%s:%s", host, apiPort.Port())
	return nil
}

// ResetDatabase removes every visitor and role between scenarios
func (tc *TestContext) ResetDatabase() error {
	return tc.DB.Exec("TRUNCATE users, roles RESTART IDENTITY CASCADE").Error
}

// MailMessage is the subset of the Mailpit message summary the steps use
type MailMessage struct {
	Subject string `json:"Subject"`
	To      []struct {
		Address string `json:"Address"`
	} `json:"To"`
}

// Messages lists the messages captured by Mailpit
func (tc *TestContext) Messages() ([]MailMessage, error) {
	resp, err := tc.HTTPClient.Get(tc.MailAPIURL + "/api/v1/messages")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mailpit returned %d", resp.StatusCode)
	}

	var body struct {
		Messages []MailMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Messages, nil
}

// ClearMessages deletes every message captured by Mailpit
func (tc *TestContext) ClearMessages() error {
	req, err := http.NewRequest(http.MethodDelete, tc.MailAPIURL+"/api/v1/messages", nil)
	if err != nil {
		return err
	}
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailpit returned %d", resp.StatusCode)
	}
	return nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.DB != nil {
		_ = db.Close(tc.DB)
	}
	if tc.Mailpit != nil {
		_ = tc.Mailpit.Terminate(ctx)
	}
	if tc.Postgres != nil {
		_ = tc.Postgres.Terminate(ctx)
	}
}

// waitForServer polls /status until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/status")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}
