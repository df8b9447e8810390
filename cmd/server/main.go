package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nulzo/zone-analytics-proxy/internal/analytics"
	"github.com/nulzo/zone-analytics-proxy/internal/config"
	"github.com/nulzo/zone-analytics-proxy/internal/platform/logger"
	"github.com/nulzo/zone-analytics-proxy/internal/platform/otel"
	"github.com/nulzo/zone-analytics-proxy/internal/server"
	"github.com/nulzo/zone-analytics-proxy/internal/version"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Initialize(logger.FromSettings(cfg.Log.Level, cfg.Log.Format))
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := otel.InitTracer(cfg.Tracing.ServiceName, log, os.Stderr)
		if err != nil {
			log.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Error("Failed to flush traces", zap.Error(err))
			}
		}()
	}

	fetcher := analytics.NewFetcher(
		cfg.Upstream.Endpoint,
		cfg.Upstream.Timeout,
		analytics.WithMaxDays(cfg.Analytics.MaxDays),
		analytics.WithLogger(log.Named("analytics")),
	)

	log.Info("Starting zone analytics proxy",
		zap.String("version", version.Current()),
		zap.String("env", cfg.Server.Env),
		zap.String("upstream", cfg.Upstream.Endpoint),
	)

	srv := server.New(cfg, log, fetcher)
	if err := srv.Run(ctx); err != nil {
		log.Error("Server failed", zap.Error(err))
		stop()
		logger.Sync()
		os.Exit(1)
	}
}
