// Package main is the entrypoint for the devops info service.
//
// Configuration comes from the environment: HOST, PORT, DEBUG,
// METRICS_ADDR and SHUTDOWN_TIMEOUT. The process runs until SIGINT or
// SIGTERM and then shuts down gracefully.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/imamik/devinfo/internal/config"
	"github.com/imamik/devinfo/internal/info"
	"github.com/imamik/devinfo/internal/logging"
)

// Version is set at build time.
var Version = info.DefaultVersion

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	start := time.Now()

	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	log, flush, err := logging.New(logging.Options{Debug: cfg.Debug, Name: "info-service"})
	if err != nil {
		return err
	}
	defer flush()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := info.NewService(start,
		info.WithVersion(Version),
		info.WithLogger(log),
		info.WithMetrics(info.NewMetrics(reg)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := info.NewServer(cfg, svc, reg, log).Run(ctx); err != nil {
		log.Error(err, "server exited")
		return err
	}
	log.Info("Server stopped")
	return nil
}
