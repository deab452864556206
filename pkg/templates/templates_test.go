package templates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedIndex(t *testing.T) {
	r, err := NewEmbedded()
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     IndexPage
		contains []string
		excludes []string
	}{
		{
			name:     "stranger",
			data:     IndexPage{MaxLength: 64},
			contains: []string{"Hello, Stranger!", "Pleased to meet you!", "What is your name?", `maxlength="64"`},
			excludes: []string{"Happy to see you again!", "help-block"},
		},
		{
			name:     "known visitor",
			data:     IndexPage{Name: "Ada", Known: true},
			contains: []string{"Hello, Ada!", "Happy to see you again!"},
			excludes: []string{"Pleased to meet you!"},
		},
		{
			name: "validation error and flash",
			data: IndexPage{
				Page:   Page{Flashes: []string{"Looks like you have changed your name!"}},
				Errors: []string{"This field is required."},
			},
			contains: []string{"has-error", "This field is required.", "Looks like you have changed your name!"},
		},
		{
			name:     "escapes names",
			data:     IndexPage{Name: "<script>alert(1)</script>"},
			contains: []string{"Hello, &lt;script&gt;alert(1)&lt;/script&gt;!"},
			excludes: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := r.Execute(PageIndex, tt.data)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, string(body), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, string(body), s)
			}
		})
	}
}

func TestRender_StatusAndErrorPages(t *testing.T) {
	r, err := NewEmbedded()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusNotFound, PageNotFound, Page{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Not Found")

	rec = httptest.NewRecorder()
	r.Render(rec, http.StatusInternalServerError, PageInternalError, Page{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")

	rec = httptest.NewRecorder()
	r.Render(rec, http.StatusOK, "missing.html", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNew_MissingPage(t *testing.T) {
	_, err := New(fstest.MapFS{
		"base.html": {Data: []byte(`{{ define "base" }}{{ end }}`)},
	})
	assert.Error(t, err)
}

func copyEmbedded(t *testing.T, dir string) {
	t.Helper()
	for _, name := range append([]string{layout}, pageNames...) {
		data, err := embedded.ReadFile("html/" + name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	copyEmbedded(t, dir)

	r, err := NewFromDir(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, dir) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	page404 := `{{ define "title" }}{{ end }}{{ define "content" }}<h1>Gone fishing</h1>{{ end }}`

	// the watcher is registered asynchronously; keep rewriting until it sees a change
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, PageNotFound), []byte(page404), 0o644)
		body, err := r.Execute(PageNotFound, Page{})
		return err == nil && strings.Contains(string(body), "Gone fishing")
	}, 5*time.Second, 50*time.Millisecond)
}

func TestReload_KeepsPreviousPagesOnError(t *testing.T) {
	dir := t.TempDir()
	copyEmbedded(t, dir)

	r, err := NewFromDir(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, PageIndex), []byte(`{{ define "content" }}{{ .Broken `), 0o644))
	assert.Error(t, r.Reload())

	body, err := r.Execute(PageIndex, IndexPage{})
	require.NoError(t, err)
	assert.Contains(t, string(body), "Hello, Stranger!")
}
