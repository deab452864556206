package middleware

import (
	"net"
	"net/http"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/audit"
)

// ClientIP attaches the remote address of the request to its context for
// audit events. Run it after handlers.ProxyHeaders so forwarded addresses
// are honoured.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		next.ServeHTTP(w, r.WithContext(audit.WithClientIP(r.Context(), host)))
	})
}
