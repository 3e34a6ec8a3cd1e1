// Package logging builds the logr.Logger shared by both binaries.
//
// Loggers are backed by zap through zapr. Debug mode switches to zap's
// development config: console encoding, debug level and caller info.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures logger construction.
type Options struct {
	// Debug selects the development config.
	Debug bool

	// Name is attached to every line as the logger name.
	Name string

	// OutputPaths overrides zap's default of stderr.
	OutputPaths []string
}

// New returns a logger and a flush function to call before exit.
func New(opts Options) (logr.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("failed to build logger: %w", err)
	}

	log := zapr.NewLogger(zl)
	if opts.Name != "" {
		log = log.WithName(opts.Name)
	}
	return log, func() { _ = zl.Sync() }, nil
}
