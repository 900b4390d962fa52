// Package main implements the entry point for sclsub, the Siemens
// subscription inference service. It mirrors an SCL substation configuration
// file, listens for edit events from the host editor, and publishes the
// companion subscribe/unsubscribe requests the edits imply.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danyill/oscd-subscriber-lb-siemens/config"
	"github.com/danyill/oscd-subscriber-lb-siemens/gateway"
	"github.com/danyill/oscd-subscriber-lb-siemens/metric"
	"github.com/danyill/oscd-subscriber-lb-siemens/natsclient"
	"github.com/danyill/oscd-subscriber-lb-siemens/scl"
	"github.com/danyill/oscd-subscriber-lb-siemens/subscriber"
)

const (
	// Version is the build version (overridden at link time).
	Version = "0.1.0"

	appName         = "sclsub"
	shutdownTimeout = 10 * time.Second
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (JSON)")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}

	logger := setupLogger(*logLevel, *logFormat)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DocumentPath == "" {
		return fmt.Errorf("no document configured: set documentPath or SCLSUB_DOCUMENT")
	}

	logger.Info("starting sclsub",
		"version", Version,
		"document", cfg.DocumentPath,
		"enabled", cfg.Enabled)

	doc, err := loadDocument(cfg.DocumentPath)
	if err != nil {
		return err
	}
	logger.Info("document mirror loaded", "path", cfg.DocumentPath, "elements", doc.Len())

	registry := metric.NewRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus, err := natsclient.NewClient(cfg.NATS.URL,
		natsclient.WithLogger(logger),
		natsclient.WithName(cfg.NATS.Name),
	)
	if err != nil {
		return fmt.Errorf("create bus client: %w", err)
	}
	if err := bus.Connect(ctx); err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}
	defer bus.Close()

	adapter, err := subscriber.New(doc, bus, subscriber.Config{
		Name:               appName,
		Enabled:            cfg.Enabled,
		EventsSubject:      cfg.Subjects.Events,
		SubscribeSubject:   cfg.Subjects.Subscribe,
		UnsubscribeSubject: cfg.Subjects.Unsubscribe,
	}, logger, registry)
	if err != nil {
		return fmt.Errorf("create subscriber adapter: %w", err)
	}
	if err := adapter.Start(ctx); err != nil {
		return fmt.Errorf("start subscriber adapter: %w", err)
	}
	defer func() { _ = adapter.Stop(shutdownTimeout) }()

	gw, err := gateway.New(bus, gateway.Config{
		Listen:        cfg.Gateway.Listen,
		Path:          cfg.Gateway.Path,
		EventsSubject: cfg.Subjects.Events,
		EventRate:     cfg.Gateway.EventRate,
		EventBurst:    cfg.Gateway.EventBurst,
	}, logger, registry)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}
	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}
	defer func() { _ = gw.Stop(shutdownTimeout) }()

	metricsServer := &http.Server{
		Addr:              cfg.Metrics.Listen,
		Handler:           metricsMux(registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("metrics endpoint listening", "listen", cfg.Metrics.Listen)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	logger.Info("sclsub running",
		"events_subject", cfg.Subjects.Events,
		"gateway", cfg.Gateway.Listen)

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}

	logger.Info("shutting down")
	return nil
}

// loadDocument parses the SCL file the service mirrors.
func loadDocument(path string) (*scl.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", path, err)
	}
	defer f.Close()

	doc, err := scl.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	return doc, nil
}

// metricsMux serves the Prometheus endpoint plus a trivial liveness check.
func metricsMux(registry *metric.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// setupLogger builds the process logger from the CLI flags.
func setupLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
