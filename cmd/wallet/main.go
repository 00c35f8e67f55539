package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"wallet/internal/amqp"
	"wallet/internal/backend"
	"wallet/internal/cli"
	apphttp "wallet/internal/http"
	"wallet/internal/ledger"
	applog "wallet/internal/log"
	"wallet/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)

	store, err := backend.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage backend", applog.FieldError, err, "backend", cfg.StorageBackend)
		os.Exit(1)
	}

	checks := map[string]apphttp.ReadinessCheck{"storage": store.Ping}
	closers := []func() error{store.Cleanup}

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change feed", applog.FieldError, err)
		} else {
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			publisher = client
			checks["amqp"] = client.Ping
			// closed before storage
			closers = append([]func() error{client.Close}, closers...)
		}
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	l := ledger.New(startCtx, store.Gateway,
		ledger.WithDefaultBalance(cfg.DefaultBalanceMoney()),
		ledger.WithLogger(logger.WithComponent(applog.ComponentLedger).Slog()))
	cancelStart()

	svc := services.NewWalletService(l, publisher, logger, closers...)

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SummaryCacheTTL:    cfg.SummaryCacheTTL,
		Logger:             logger,
		Checks:             checks,
	})

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting wallet server",
		"port", cfg.Port,
		"backend", cfg.StorageBackend,
		"amqp_enabled", publisher != nil,
		applog.FieldBalance, l.Balance().String())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		_ = svc.Close()
		os.Exit(1)
	}

	if err := svc.Close(); err != nil {
		logger.Error("Cleanup failed", applog.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
