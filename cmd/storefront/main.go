// Command storefront serves the cached catalog over HTTP.
//
// Configuration comes from STOREFRONT_* environment variables; see
// internal/config. With no configuration it serves an empty in-memory
// catalog on :8080. Point STOREFRONT_DSN at a JSON seed file to fill it.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-storefront-cache/connectivity"
	"github.com/goliatone/go-storefront-cache/internal/api"
	"github.com/goliatone/go-storefront-cache/internal/config"
	"github.com/goliatone/go-storefront-cache/internal/telemetry"
	"github.com/goliatone/go-storefront-cache/pkg/di"
	"github.com/goliatone/go-storefront-cache/repositorycache"
)

func main() {
	if err := run(); err != nil {
		slog.Error("storefront exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.ParseEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTel.Enabled,
		Endpoint:    cfg.OTel.Endpoint,
		ServiceName: cfg.OTel.ServiceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	opts := []di.Option{
		di.WithLogger(logger),
		di.WithRegistry(di.DefaultRegistry(cfg.HTTPOptions()...)),
		di.WithRepositoryOptions(repositorycache.WithDedupe(cfg.Dedupe)),
	}
	if cfg.Probe.URL != "" {
		probe := connectivity.NewHTTPProbe(cfg.Probe.URL,
			connectivity.WithInterval(cfg.Probe.Interval),
			connectivity.WithTimeout(cfg.Probe.Timeout),
			connectivity.WithLogger(logger),
		)
		probe.Start(ctx)
		defer probe.Stop()
		opts = append(opts, di.WithProbe(probe))
	}

	container, err := di.NewContainer(ctx, cfg.ContainerConfig(), opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("container close failed", "error", err)
		}
	}()

	server := api.New(container, api.WithAddress(cfg.Addr))
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
