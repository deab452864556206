// Package templates renders the HTML pages of the application.
//
// Pages are html/template files sharing the base.html layout. The set
// compiled into the binary is used unless a directory is given, in which
// case the pages are re-parsed whenever a file in it changes.
package templates

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Page names
const (
	PageIndex         = "index.html"
	PageNotFound      = "404.html"
	PageInternalError = "500.html"

	layout = "base.html"
)

var pageNames = []string{PageIndex, PageNotFound, PageInternalError}

//go:embed html
var embedded embed.FS

// EmbeddedFS returns the pages compiled into the binary
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embedded, "html")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page carries what every page needs from the session
type Page struct {
	Flashes []string
}

// IndexPage is the data of the index page
type IndexPage struct {
	Page
	Name      string
	Known     bool
	Input     string
	Errors    []string
	MaxLength int
}

// Renderer executes parsed pages
type Renderer struct {
	mu    sync.RWMutex
	fsys  fs.FS
	pages map[string]*template.Template
}

// New parses every page from fsys
func New(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{fsys: fsys}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewEmbedded parses the pages compiled into the binary
func NewEmbedded() (*Renderer, error) {
	return New(EmbeddedFS())
}

// NewFromDir parses the pages in dir
func NewFromDir(dir string) (*Renderer, error) {
	return New(os.DirFS(dir))
}

// Reload re-parses all pages. On failure the previous pages stay in use.
func (r *Renderer) Reload() error {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).ParseFS(r.fsys, layout, name)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	return nil
}

// Execute renders page into a byte slice
func (r *Renderer) Execute(page string, data any) ([]byte, error) {
	r.mu.RLock()
	tmpl, ok := r.pages[page]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

// Render writes page with the given status. A rendering failure falls back
// to a plain 500 response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	body, err := r.Execute(page, data)
	if err != nil {
		log.Printf("Failed to render page: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Watch reloads the pages whenever a file in dir is written, created,
// renamed or removed. It blocks until ctx is done.
func (r *Renderer) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&reloadOps == 0 || filepath.Ext(event.Name) != ".html" {
				continue
			}
			if err := r.Reload(); err != nil {
				log.Printf("Template reload failed: %v", err)
				continue
			}
			log.Printf("Templates reloaded after change to %s", filepath.Base(event.Name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Template watcher error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}
