// Package server provides the HTTP server of the visitor application.
//
// The Server struct wires configuration, the database, the session codec,
// page templates and the visitor registrar together. Routes are registered
// on its gorilla/mux router by the endpoints subpackage.
//
// # Server Setup
//
//	srv, err := server.NewServer(cfg, db, mailer, renderer, auditLogger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
//	    log.Fatal(err)
//	}
//
// # Middleware
//
// Every request passes through, outermost first:
//
//   - access logging (Apache common log format)
//   - proxy header handling (X-Forwarded-For, X-Real-IP)
//   - panic recovery rendering the 500 page
//   - client address capture for audit events
package server
