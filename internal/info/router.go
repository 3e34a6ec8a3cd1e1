package info

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter returns the service's HTTP handler with its middleware chain:
// request id, metrics (when enabled), then panic recovery.
func NewRouter(s *Service) http.Handler {
	r := mux.NewRouter()
	for _, rt := range s.routes() {
		r.Handle(rt.path, s.handle(rt.handler)).Methods(rt.method).Name(rt.name)
	}
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	// gorilla/mux only runs Router.Use middleware on matched routes, so the
	// chain wraps the router itself.
	var h http.Handler = s.recoverer(r)
	if s.metrics != nil {
		h = s.metrics.middleware(r, h)
	}
	return requestID(h)
}
