package endpoints

import (
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server"
)

// RegisterAll registers all endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterIndexEndpoints(srv)
	RegisterStatusEndpoints(srv)

	// Static files
	RegisterStaticFiles(srv)

	// 404 and 405 pages
	RegisterErrorPages(srv)
}
