package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Server defaults.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 5000
	DefaultShutdownTimeout = 10 * time.Second
)

// Server holds the info service settings.
type Server struct {
	Host  string
	Port  int
	Debug bool

	// MetricsAddr is the listen address of the /metrics endpoint.
	// Empty disables it.
	MetricsAddr string

	ShutdownTimeout time.Duration
}

// Addr returns the host:port listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoadServer reads the info service settings from the environment.
//
// Environment Variables:
//   - HOST (default: 0.0.0.0)
//   - PORT (default: 5000)
//   - DEBUG (default: false; "true", "1", "t" enable it)
//   - METRICS_ADDR (default: disabled)
//   - SHUTDOWN_TIMEOUT (default: 10s)
func LoadServer() (*Server, error) {
	v := viper.New()
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", strconv.Itoa(DefaultPort))
	v.SetDefault("debug", "false")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout.String())
	v.AutomaticEnv()

	port, err := strconv.Atoi(v.GetString("port"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", v.GetString("port"), err)
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d: out of range", port)
	}

	host := v.GetString("host")
	if host == "" {
		host = DefaultHost
	}

	return &Server{
		Host:            host,
		Port:            port,
		Debug:           v.GetBool("debug"),
		MetricsAddr:     v.GetString("metrics_addr"),
		ShutdownTimeout: durationOr(v, "shutdown_timeout", DefaultShutdownTimeout),
	}, nil
}

// durationOr returns the duration stored under key, or def when the value
// is missing, unparsable or not positive.
func durationOr(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// intOr returns the integer stored under key, or def when the value is
// missing or unparsable.
func intOr(v *viper.Viper, key string, def int) int {
	raw := v.GetString(key)
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return i
}
