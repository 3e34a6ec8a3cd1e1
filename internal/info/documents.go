package info

// Static service identity.
const (
	ServiceName        = "devops-info-service"
	ServiceDescription = "DevOps course info service"
	ServiceFramework   = "gorilla/mux"
	DefaultVersion     = "1.0.0"

	unknownUserAgent = "unknown"
	statusHealthy    = "healthy"
)

// Document is the response body of GET /.
type Document struct {
	Service   ServiceInfo `json:"service"`
	System    SystemInfo  `json:"system"`
	Runtime   RuntimeInfo `json:"runtime"`
	Request   RequestInfo `json:"request"`
	Endpoints []Endpoint  `json:"endpoints"`
}

// ServiceInfo identifies the service.
type ServiceInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Framework   string `json:"framework"`
}

// SystemInfo describes the host.
type SystemInfo struct {
	Hostname        string `json:"hostname"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	Architecture    string `json:"architecture"`
	CPUCount        int    `json:"cpu_count"`
	RuntimeVersion  string `json:"runtime_version"`
}

// RuntimeInfo describes the process at request time.
type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	UptimeHuman   string `json:"uptime_human"`
	CurrentTime   string `json:"current_time"`
	Timezone      string `json:"timezone"`
}

// RequestInfo echoes the caller's request.
type RequestInfo struct {
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent"`
	Method    string `json:"method"`
	Path      string `json:"path"`
}

// Endpoint is one entry of the route catalogue.
type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// HealthDocument is the response body of GET /health.
type HealthDocument struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ErrorDocument is the body of every error response.
type ErrorDocument struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var (
	errNotFound = ErrorDocument{
		Error:   "Not Found",
		Message: "Endpoint does not exist",
	}
	errMethodNotAllowed = ErrorDocument{
		Error:   "Method Not Allowed",
		Message: "Method is not allowed for this endpoint",
	}
	errInternal = ErrorDocument{
		Error:   "Internal Server Error",
		Message: "An unexpected error occurred",
	}
)
