package info

import (
	"os"
	"time"

	"github.com/go-logr/logr"
)

// Service builds info and health documents. All of its state is fixed at
// construction, so one Service serves concurrent requests without locking.
type Service struct {
	start    time.Time
	version  string
	now      func() time.Time
	hostname func() (string, error)
	host     hostFacts
	log      logr.Logger
	metrics  *Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithVersion sets the reported service version.
func WithVersion(v string) Option {
	return func(s *Service) {
		if v != "" {
			s.version = v
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logr.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHostname replaces os.Hostname.
func WithHostname(fn func() (string, error)) Option {
	return func(s *Service) { s.hostname = fn }
}

// WithMetrics enables request metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService returns a Service reporting uptime relative to start.
func NewService(start time.Time, opts ...Option) *Service {
	s := &Service{
		start:    start,
		version:  DefaultVersion,
		now:      time.Now,
		hostname: os.Hostname,
		host:     collectHostFacts(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Endpoints returns the route catalogue in registration order.
func (s *Service) Endpoints() []Endpoint {
	routes := s.routes()
	out := make([]Endpoint, 0, len(routes))
	for _, r := range routes {
		out = append(out, Endpoint{Path: r.path, Method: r.method, Description: r.description})
	}
	return out
}

func (s *Service) serviceInfo() ServiceInfo {
	return ServiceInfo{
		Name:        ServiceName,
		Version:     s.version,
		Description: ServiceDescription,
		Framework:   ServiceFramework,
	}
}

func (s *Service) systemInfo() (SystemInfo, error) {
	hostname, err := s.hostname()
	if err != nil {
		return SystemInfo{}, err
	}
	return SystemInfo{
		Hostname:        hostname,
		Platform:        s.host.platform,
		PlatformVersion: s.host.platformVersion,
		Architecture:    s.host.architecture,
		CPUCount:        cpuCount(),
		RuntimeVersion:  s.host.runtimeVersion,
	}, nil
}

// runtimeInfo measures uptime on now before converting it to UTC, which
// drops the monotonic clock reading.
func (s *Service) runtimeInfo(now time.Time) RuntimeInfo {
	uptime := Uptime(s.start, now)
	utc := now.UTC()
	return RuntimeInfo{
		UptimeSeconds: uptime,
		UptimeHuman:   FormatUptime(uptime),
		CurrentTime:   utc.Format(time.RFC3339Nano),
		Timezone:      utc.Location().String(),
	}
}
