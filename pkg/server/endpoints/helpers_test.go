package endpoints

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/audit"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/db"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/notify"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/templates"
)

const testSecretKey = "test secret key"

// recordingSender captures outgoing mail instead of dialing SMTP
type recordingSender struct {
	mu   sync.Mutex
	sent []*mail.Msg
	err  error
}

func (s *recordingSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, messages...)
	return nil
}

func (s *recordingSender) Sent() []*mail.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*mail.Msg(nil), s.sent...)
}

func testConfig(admin string) *config.Config {
	return &config.Config{
		Env:                 config.EnvTesting,
		SecretKey:           testSecretKey,
		AdminEmail:          admin,
		DatabaseURL:         "sqlite://",
		BindAddress:         "127.0.0.1",
		Port:                "0",
		StoreTimeoutSeconds: 3,
		Mail: config.MailConfig{
			SubjectPrefix: "[Flasky]",
			Sender:        "Flasky Admin <flasky@example.com>",
		},
	}
}

// newTestServer builds a fully wired server over a migrated in-memory
// SQLite database, delivering mail to the returned sender
func newTestServer(t *testing.T, admin string) (*server.Server, *recordingSender) {
	t.Helper()

	cfg := testConfig(admin)

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })
	require.NoError(t, db.Migrate(context.Background(), database))

	sender := &recordingSender{}
	mailer := notify.NewMailerWithSender(sender, cfg.Mail.Sender, cfg.Mail.SubjectPrefix,
		notify.NewRenderer(notify.DefaultTemplates()))

	renderer, err := templates.NewEmbedded()
	require.NoError(t, err)

	srv, err := server.NewServer(cfg, database, mailer, renderer, audit.Discard())
	require.NoError(t, err)
	srv.SetAccessLog(io.Discard)

	RegisterAll(srv)
	return srv, sender
}

// browser is an HTTP client with a cookie jar that does not follow redirects
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, ts *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: ts.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) submit(name string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+"/", url.Values{"name": {name}, "submit": {"Submit"}})
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var sb strings.Builder
	_, err := io.Copy(&sb, resp.Body)
	require.NoError(t, err)
	return sb.String()
}
