// Package main serves the J-curve API:
// - POST /api/v1/schedule, /api/v1/simulate, /api/v1/metrics
// - GET /api/v1/simulate/stream (websocket progress)
// - GET /health and /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"jcurve-lab/internal/api"
	"jcurve-lab/internal/config"
	"jcurve-lab/internal/logger"
	"jcurve-lab/internal/montecarlo"
	"jcurve-lab/internal/observability"
	"jcurve-lab/internal/orchestrator"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags
	configPath := flag.String("config", os.Getenv("JCURVE_CONFIG"), "Path to config file (yaml, json or toml)")
	listenAddr := flag.String("listen-addr", "", "HTTP listen address (overrides config)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	// Setup logger
	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	metrics := observability.NewMetrics("", nil)

	orch := orchestrator.New(orchestrator.Options{
		Engine: montecarlo.NewEngine(montecarlo.Options{
			Workers: cfg.Runtime.Workers,
			Logger:  log,
			Metrics: metrics,
		}),
		Solver:      cfg.IRRSolver(),
		Logger:      log,
		Metrics:     metrics,
		Mode:        cfg.Mode(),
		Percentiles: cfg.Percentiles(),
	})

	srv := api.NewServer(api.Options{
		Orchestrator:   orch,
		Logger:         log,
		Metrics:        metrics,
		MetricsHandler: observability.Handler(),
		MaxSimulations: cfg.Server.MaxSimulations,
		MaxCells:       cfg.Server.MaxCells,
		Timeout:        cfg.Runtime.Timeout,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to signal completion
	done := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", zap.String("addr", cfg.Server.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- err
			return
		}
		done <- nil
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
	case err := <-done:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Second signal forces exit
	go func() {
		sig := <-sigCh
		log.Warn("received second signal, forcing immediate shutdown", zap.String("signal", sig.String()))
		os.Exit(1)
	}()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}

// loadEnvFile loads KEY=VALUE pairs from .env without overriding the
// existing environment.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
