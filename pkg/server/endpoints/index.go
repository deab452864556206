package endpoints

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/form"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/session"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/templates"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/visitor"
)

// ChangedNameMessage is flashed when a session submits a different name
const ChangedNameMessage = "Looks like you have changed your name!"

// Registerer resolves a submitted name to a visitor
type Registerer interface {
	Register(ctx context.Context, name string) (visitor.Outcome, *model.Visitor, error)
}

// RegisterIndexEndpoints registers the name form
func RegisterIndexEndpoints(s *server.Server) {
	// GET / - greeting and form
	s.Router.HandleFunc("/", handleIndex(s.Sessions, s.Templates)).Methods("GET", "HEAD")

	// POST / - form submission, redirects back to GET /
	s.Router.HandleFunc("/", handleSubmitName(s.Sessions, s.Registrar, s.Templates)).Methods("POST")
}

func handleIndex(sessions *session.Codec, renderer *templates.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := sessions.Load(r)

		flashes := state.PopFlashes()
		if len(flashes) > 0 {
			// Flashes are shown once
			if err := sessions.Save(w, state); err != nil {
				log.Printf("Failed to save session: %v", err)
				renderInternalError(renderer, w)
				return
			}
		}

		renderer.Render(w, http.StatusOK, templates.PageIndex, templates.IndexPage{
			Page:      templates.Page{Flashes: flashes},
			Name:      state.Name,
			Known:     state.Known,
			MaxLength: form.MaxNameLength,
		})
	}
}

func handleSubmitName(sessions *session.Codec, registrar Registerer, renderer *templates.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := sessions.Load(r)

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Malformed form data", http.StatusBadRequest)
			return
		}
		raw := r.PostForm.Get("name")

		name, err := form.ValidateName(raw)
		if err != nil {
			var fieldErrs form.FieldErrors
			if !errors.As(err, &fieldErrs) {
				log.Printf("Failed to validate name: %v", err)
				renderInternalError(renderer, w)
				return
			}
			// Re-render in place; the session is left untouched
			renderer.Render(w, http.StatusOK, templates.PageIndex, templates.IndexPage{
				Name:      state.Name,
				Known:     state.Known,
				Input:     raw,
				Errors:    fieldErrs.Get("name"),
				MaxLength: form.MaxNameLength,
			})
			return
		}

		outcome, _, err := registrar.Register(r.Context(), name)
		if err != nil {
			log.Printf("Failed to register visitor: %v", err)
			renderInternalError(renderer, w)
			return
		}

		if state.Name != "" && state.Name != name {
			state.Flash(ChangedNameMessage)
		}
		state.Known = outcome.Known()
		state.Name = name

		if err := sessions.Save(w, state); err != nil {
			log.Printf("Failed to save session: %v", err)
			renderInternalError(renderer, w)
			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
