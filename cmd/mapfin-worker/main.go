package main

import (
	"context"
	"errors"
	"time"

	"mapfin/internal/amqp"
	"mapfin/internal/cli"
	"mapfin/internal/log"
	"mapfin/internal/services"
	gsheet "mapfin/internal/sheets/google"
	"mapfin/internal/storage"
	"mapfin/internal/worker"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		log.WithComponent(log.ComponentWorker).Error("Failed to load .env file", log.FieldError, err.Error())
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(log.WithComponent(log.ComponentWorker), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting mapfin-worker", log.FieldOperation, log.OpStartup)

	if cfg.GoogleSpreadsheetID == "" {
		cli.Fatal(logger, "Google Sheets is required", errors.New("GOOGLE_SHEET_ID is not set"))
	}

	// Local records are the source of truth; Sheets is the mirror
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer repo.Close()

	target, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	mirror := services.NewMirror(repo, target)
	processor := services.NewSyncProcessor(repo, mirror, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
		MinAge:       cfg.SyncMinAge,
	})
	syncWorker := worker.NewSyncWorker(mirror, repo, cfg.SyncBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Warn("Sync processor did not stop cleanly", log.FieldError, err.Error())
		}
	})

	// Polling covers messages that were never published or got lost
	if err := processor.Start(ctx); err != nil {
		cli.Fatal(logger, "Failed to start sync processor", err)
	}

	if err := syncWorker.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = processor.Stop(stopCtx)
		cancel()
		cli.Fatal(logger, "Message consumption failed", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
