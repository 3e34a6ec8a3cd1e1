package info

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// handlerFunc is an http handler that reports faults instead of writing
// them. A returned error becomes a 500 error document.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type route struct {
	name        string
	method      string
	path        string
	description string
	handler     handlerFunc
}

// routes is the route table, in registration and catalogue order.
func (s *Service) routes() []route {
	return []route{
		{name: "index", method: http.MethodGet, path: "/", description: "Service information", handler: s.index},
		{name: "health", method: http.MethodGet, path: "/health", description: "Health check", handler: s.health},
	}
}

func (s *Service) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.internalError(w, r, err)
		}
	}
}

func (s *Service) index(w http.ResponseWriter, r *http.Request) error {
	remote := clientIP(r)
	s.log.Info("Request to /", "remote", remote, "request_id", RequestID(r.Context()))

	system, err := s.systemInfo()
	if err != nil {
		return fmt.Errorf("failed to collect system info: %w", err)
	}

	doc := Document{
		Service: s.serviceInfo(),
		System:  system,
		Runtime: s.runtimeInfo(s.now()),
		Request: RequestInfo{
			ClientIP:  remote,
			UserAgent: userAgent(r),
			Method:    r.Method,
			Path:      r.URL.Path,
		},
		Endpoints: s.Endpoints(),
	}
	return writeJSON(w, http.StatusOK, doc)
}

func (s *Service) health(w http.ResponseWriter, r *http.Request) error {
	s.log.Info("Health check", "remote", clientIP(r), "request_id", RequestID(r.Context()))

	now := s.now()
	return writeJSON(w, http.StatusOK, HealthDocument{
		Status:        statusHealthy,
		Timestamp:     now.UTC().Format(time.RFC3339Nano),
		UptimeSeconds: Uptime(s.start, now),
	})
}

func (s *Service) notFound(w http.ResponseWriter, r *http.Request) {
	s.log.V(1).Info("Route not found", "method", r.Method, "path", r.URL.Path, "remote", clientIP(r))
	s.writeError(w, r, http.StatusNotFound, errNotFound)
}

func (s *Service) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	var allowed []string
	for _, rt := range s.routes() {
		if rt.path == r.URL.Path {
			allowed = append(allowed, rt.method)
		}
	}
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	s.log.V(1).Info("Method not allowed", "method", r.Method, "path", r.URL.Path, "remote", clientIP(r))
	s.writeError(w, r, http.StatusMethodNotAllowed, errMethodNotAllowed)
}

// internalError logs err and answers with the generic 500 document.
func (s *Service) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(err, "Internal Server Error",
		"method", r.Method, "path", r.URL.Path, "request_id", RequestID(r.Context()))
	s.writeError(w, r, http.StatusInternalServerError, errInternal)
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, status int, doc ErrorDocument) {
	if err := writeJSON(w, status, doc); err != nil {
		s.log.Error(err, "failed to write error response", "path", r.URL.Path)
	}
}

// writeJSON encodes v fully before touching w, so an encoding failure can
// still be answered with a 500.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
	return nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return unknownUserAgent
}
