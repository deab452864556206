package endpoints

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/session"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/templates"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/visitor"
)

func countVisitors(t *testing.T, srv interface {
	CountVisitors(ctx context.Context) (int64, error)
}) int64 {
	t.Helper()
	n, err := srv.CountVisitors(context.Background())
	require.NoError(t, err)
	return n
}

func TestIndex_FreshSession(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := newBrowser(t, ts).get("/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Hello, Stranger!")
	assert.Contains(t, body, "Pleased to meet you!")
	assert.Contains(t, body, "What is your name?")
	assert.Empty(t, resp.Cookies())
}

func TestIndex_AdaScenario(t *testing.T) {
	srv, sender := newTestServer(t, "ops@example.com")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	b := newBrowser(t, ts)

	// First submission: new visitor
	resp, _ := b.submit("Ada")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, int64(1), countVisitors(t, srv.VisitorsStore))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"[Flasky] New User"}, sent[0].GetGenHeader(mail.HeaderSubject))
	rcpts, err := sent[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com"}, rcpts)

	_, body := b.get("/")
	assert.Contains(t, body, "Hello, Ada!")
	assert.Contains(t, body, "Pleased to meet you!")

	// Second submission: known visitor
	resp, _ = b.submit("Ada")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, int64(1), countVisitors(t, srv.VisitorsStore))
	assert.Len(t, sender.Sent(), 1)

	_, body = b.get("/")
	assert.Contains(t, body, "Hello, Ada!")
	assert.Contains(t, body, "Happy to see you again!")
	assert.NotContains(t, body, ChangedNameMessage)
}

func TestIndex_KnownFromAnotherBrowser(t *testing.T) {
	srv, sender := newTestServer(t, "ops@example.com")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	first := newBrowser(t, ts)
	first.submit("Ada")

	second := newBrowser(t, ts)
	resp, _ := second.submit("Ada")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := second.get("/")
	assert.Contains(t, body, "Happy to see you again!")
	assert.Len(t, sender.Sent(), 1)
	assert.Equal(t, int64(1), countVisitors(t, srv.VisitorsStore))
}

func TestIndex_NoAdminSendsNothing(t *testing.T) {
	srv, sender := newTestServer(t, "")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := newBrowser(t, ts).submit("Ada")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, int64(1), countVisitors(t, srv.VisitorsStore))
	assert.Empty(t, sender.Sent())
}

func TestIndex_InvalidNames(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "This field is required."},
		{"whitespace", "   ", "This field is required."},
		{"too long", strings.Repeat("x", 65), "Field cannot be longer than 64 characters."},
		{"nul byte", "Ada\x00", "Field contains invalid characters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, sender := newTestServer(t, "ops@example.com")
			ts := httptest.NewServer(srv.Handler())
			defer ts.Close()

			resp, body := newBrowser(t, ts).submit(tt.input)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, tt.wantErr)
			assert.Contains(t, body, "Hello, Stranger!")
			assert.Empty(t, resp.Cookies(), "session must not change")
			assert.Equal(t, int64(0), countVisitors(t, srv.VisitorsStore))
			assert.Empty(t, sender.Sent())
		})
	}
}

func TestIndex_InvalidNameKeepsSession(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	b := newBrowser(t, ts)

	b.submit("Ada")
	resp, body := b.submit("")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello, Ada!")
	assert.Empty(t, resp.Cookies())
}

func TestIndex_GetIsIdempotent(t *testing.T) {
	srv, sender := newTestServer(t, "ops@example.com")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	b := newBrowser(t, ts)

	b.submit("Ada")

	_, first := b.get("/")
	_, second := b.get("/")

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), countVisitors(t, srv.VisitorsStore))
	assert.Len(t, sender.Sent(), 1)
}

func TestIndex_ChangedNameFlash(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	b := newBrowser(t, ts)

	b.submit("Ada")
	_, body := b.get("/")
	assert.NotContains(t, body, ChangedNameMessage)

	b.submit("Grace")
	_, body = b.get("/")
	assert.Contains(t, body, ChangedNameMessage)
	assert.Contains(t, body, "Hello, Grace!")

	// shown once
	_, body = b.get("/")
	assert.NotContains(t, body, ChangedNameMessage)
	assert.Contains(t, body, "Hello, Grace!")
}

func TestIndex_ConcurrentFirstSubmissions(t *testing.T) {
	srv, sender := newTestServer(t, "ops@example.com")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	const browsers = 8
	var wg sync.WaitGroup
	codes := make([]int, browsers)
	for i := 0; i < browsers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			}}
			resp, err := client.PostForm(ts.URL+"/", url.Values{"name": {"Ada"}})
			if err != nil {
				return
			}
			_ = resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusSeeOther, code)
	}
	assert.Equal(t, int64(1), countVisitors(t, srv.VisitorsStore))
	assert.Len(t, sender.Sent(), 1)
}

func TestIndex_NotificationFailureStillRedirects(t *testing.T) {
	srv, sender := newTestServer(t, "ops@example.com")
	sender.err = errors.New("dial tcp: connection refused")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	b := newBrowser(t, ts)

	resp, _ := b.submit("Ada")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, int64(1), countVisitors(t, srv.VisitorsStore))

	_, body := b.get("/")
	assert.Contains(t, body, "Hello, Ada!")
}

func TestIndex_TamperedCookieIsIgnored(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	forged, err := session.NewCodec("not the server key")
	require.NoError(t, err)
	token, err := forged.Encode(session.State{Known: true, Name: "Mallory"})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello, Stranger!")
	assert.NotContains(t, body, "Mallory")
}

func TestSubmitName_RegistrationError(t *testing.T) {
	sessions, err := session.NewCodec(testSecretKey)
	require.NoError(t, err)
	renderer, err := templates.NewEmbedded()
	require.NoError(t, err)

	registrar := NewMockRegisterer()
	registrar.On("Register", mock.Anything, "Ada").
		Return(visitor.OutcomeNew, nil, errors.New("pq: relation \"users\" does not exist"))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Ada"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	handleSubmitName(sessions, registrar, renderer)(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Empty(t, w.Result().Cookies())
	registrar.AssertExpectations(t)
}

func TestSubmitName_UsesExactName(t *testing.T) {
	sessions, err := session.NewCodec(testSecretKey)
	require.NoError(t, err)
	renderer, err := templates.NewEmbedded()
	require.NoError(t, err)

	registrar := NewMockRegisterer()
	registrar.On("Register", mock.Anything, " Ada ").Return(visitor.OutcomeKnown, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=+Ada+"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	handleSubmitName(sessions, registrar, renderer)(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	registrar.AssertExpectations(t)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	state, err := sessions.Decode(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, session.State{Known: true, Name: " Ada "}, state)
}

func TestErrorPages(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	b := newBrowser(t, ts)

	resp, body := b.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Not Found")

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/", nil)
	require.NoError(t, err)
	resp, err = b.client.Do(req)
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, body = b.get("/static/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ".navbar")
}

func TestPanicRendersInternalError(t *testing.T) {
	srv, _ := newTestServer(t, "")
	srv.Router.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := newBrowser(t, ts).get("/boom")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "Internal Server Error")
}
