package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet/internal/amqp"
	"wallet/internal/cli"
	applog "wallet/internal/log"
	gsheet "wallet/internal/sheets/google"
	"wallet/internal/storage"
	"wallet/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting wallet-worker")

	if cfg.StorageBackend != "sqlite" {
		logger.Error("The worker reads the shared SQLite database; set STORAGE_BACKEND=sqlite",
			"backend", cfg.StorageBackend)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" || cfg.GoogleSpreadsheetID == "" {
		logger.Error("AMQP_URL and GOOGLE_SPREADSHEET_ID are required for the worker")
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	sheetsClient, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(storage.NewGateway(store), sheetsClient, logger)

	if err := mirror.Resync(ctx); err != nil {
		// keep going, the periodic resync retries
		logger.Error("Startup resync failed", applog.FieldOperation, applog.OpStartup, applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeWithRetry(gctx, mirror.HandleLedgerEvent)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ResyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := mirror.Resync(gctx); err != nil {
					logger.Error("Periodic resync failed", applog.FieldError, err)
				}
			}
		}
	})

	logger.Info("Worker started",
		"queue", cfg.AMQPQueue,
		"resync_interval", cfg.ResyncInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err, "last_version", mirror.LastVersion())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", "last_version", mirror.LastVersion())
}
