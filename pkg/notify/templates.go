package notify

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"unicode"

	"github.com/yuin/goldmark"
)

//go:embed templates
var embedded embed.FS

// DefaultTemplates returns the templates compiled into the binary
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer renders a template family into its text and HTML bodies
type Renderer struct {
	fsys     fs.FS
	markdown goldmark.Markdown
}

// NewRenderer creates a Renderer reading "<name>.md" files from fsys
func NewRenderer(fsys fs.FS) *Renderer {
	return &Renderer{fsys: fsys, markdown: goldmark.New()}
}

// Render executes the template family name (e.g. "mail/new_user") with data.
// Values piped through "md" appear verbatim in the text body and are
// backslash-escaped before goldmark builds the HTML body, so user input
// never becomes markup.
func (r *Renderer) Render(name string, data any) (text, html string, err error) {
	path := strings.TrimSuffix(name, ".md") + ".md"
	source, err := fs.ReadFile(r.fsys, path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read template %s: %w", name, err)
	}

	textBody, err := execute(path, string(source), func(s string) string { return s }, data)
	if err != nil {
		return "", "", fmt.Errorf("failed to render template %s: %w", name, err)
	}

	markdown, err := execute(path, string(source), EscapeMarkdown, data)
	if err != nil {
		return "", "", fmt.Errorf("failed to render template %s: %w", name, err)
	}

	var htmlBuf bytes.Buffer
	if err := r.markdown.Convert([]byte(markdown), &htmlBuf); err != nil {
		return "", "", fmt.Errorf("failed to convert template %s: %w", name, err)
	}

	return textBody, htmlBuf.String(), nil
}

func execute(path, source string, md func(string) string, data any) (string, error) {
	tmpl, err := template.New(path).
		Option("missingkey=error").
		Funcs(template.FuncMap{"md": md}).
		Parse(source)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EscapeMarkdown backslash-escapes every ASCII punctuation character so s
// renders as literal text. Line breaks become spaces.
func EscapeMarkdown(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			sb.WriteByte(' ')
		case r <= unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r)):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
