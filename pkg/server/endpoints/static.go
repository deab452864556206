package endpoints

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/server"
)

//go:embed static/css
var staticFiles embed.FS

// RegisterStaticFiles registers static file serving for the stylesheet.
// Static files are embedded in the binary.
func RegisterStaticFiles(srv *server.Server) {
	staticFS, _ := fs.Sub(staticFiles, "static/css")

	// Serve /static/* from embedded static/css/
	srv.Router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))),
	).Methods("GET", "HEAD")

	// No favicon; answer with the plain 404 rather than the error page
	srv.Router.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
}
