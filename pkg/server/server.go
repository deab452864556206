package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/audit"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/notify"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/flasky-in-go/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/session"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/templates"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/visitor"
)

type Server struct {
	Config    *config.Config
	Router    *mux.Router
	DB        *gorm.DB
	Sessions  *session.Codec
	Templates *templates.Renderer
	Registrar *visitor.Registrar
	Audit     *audit.Logger

	// Stores
	VisitorsStore store.VisitorsStore
	RolesStore    store.RolesStore
	HealthStore   store.HealthStore

	accessLog io.Writer
	srv       *http.Server
}

func NewServer(
	cfg *config.Config,
	db *gorm.DB,
	notifier notify.Notifier,
	renderer *templates.Renderer,
	auditLogger *audit.Logger,
) (*Server, error) {
	sessions, err := session.NewCodec(cfg.SecretKey, session.WithSecure(cfg.Env == config.EnvProduction))
	if err != nil {
		return nil, err
	}

	timeout := cfg.StoreTimeout()
	visitorsStore := gormstore.NewVisitorsStore(db, timeout)

	s := &Server{
		Config:        cfg,
		Router:        mux.NewRouter(),
		DB:            db,
		Sessions:      sessions,
		Templates:     renderer,
		Registrar:     visitor.NewRegistrar(visitorsStore, notifier, cfg.AdminEmail, auditLogger),
		Audit:         auditLogger,
		VisitorsStore: visitorsStore,
		RolesStore:    gormstore.NewRolesStore(db, timeout),
		HealthStore:   gormstore.NewHealthStore(db, timeout),
		accessLog:     os.Stdout,
	}
	s.srv = &http.Server{
		Addr: cfg.Addr(),
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// SetAccessLog redirects the access log, which defaults to stdout
func (s *Server) SetAccessLog(w io.Writer) {
	s.accessLog = w
}

// Handler returns the router wrapped in the server-wide middleware
func (s *Server) Handler() http.Handler {
	internalError := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Templates.Render(w, http.StatusInternalServerError, templates.PageInternalError, templates.Page{})
	})

	var h http.Handler = s.Router
	h = middleware.ClientIP(h)
	h = middleware.Recover(internalError)(h)
	h = handlers.ProxyHeaders(h)
	return handlers.LoggingHandler(s.accessLog, h)
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *Server) Start() error {
	s.srv.Handler = s.Handler()
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
