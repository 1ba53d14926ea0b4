package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mapfin/internal/backend"
	"mapfin/internal/cache"
	"mapfin/internal/cli"
	apphttp "mapfin/internal/http"
	"mapfin/internal/log"
)

func main() {
	// Load .env file for local development (ignore a missing file)
	if err := cli.LoadEnvFile(); err != nil {
		log.WithComponent(log.ComponentApp).Error("Failed to load .env file", log.FieldError, err.Error())
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(log.WithComponent(log.ComponentApp), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	opts := apphttp.Options{
		RateLimit:     cfg.RateLimit,
		RateWindow:    cfg.RateWindow,
		AllowedOrigin: cfg.AllowedOrigin,
		Ready:         res.Ready,
	}

	// Sweep expired collections in the background while the cache is on
	if res.Cache != nil {
		manager := cache.NewManager()
		manager.Register(res.Cache.Cache())
		manager.StartCleanup(context.Background(), cfg.CacheTTL)
		opts.OnShutdown = append(opts.OnShutdown, manager.Stop)
	}

	srv := apphttp.NewServer(":"+cfg.Port, res.Store, opts)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err.Error())
		}
	})

	logger.Info("Starting mapfin server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
