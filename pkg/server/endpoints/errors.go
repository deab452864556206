package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/server"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/templates"
)

// RegisterErrorPages renders the 404 page for unknown paths and for
// methods a known path does not accept
func RegisterErrorPages(s *server.Server) {
	notFound := handleNotFound(s.Templates)
	s.Router.NotFoundHandler = notFound
	s.Router.MethodNotAllowedHandler = handleMethodNotAllowed(s.Templates)
}

func handleNotFound(renderer *templates.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderer.Render(w, http.StatusNotFound, templates.PageNotFound, templates.Page{})
	}
}

func handleMethodNotAllowed(renderer *templates.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", "GET, POST")
		renderer.Render(w, http.StatusMethodNotAllowed, templates.PageNotFound, templates.Page{})
	}
}

func renderInternalError(renderer *templates.Renderer, w http.ResponseWriter) {
	renderer.Render(w, http.StatusInternalServerError, templates.PageInternalError, templates.Page{})
}
