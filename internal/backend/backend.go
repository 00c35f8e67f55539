// Package backend builds the snapshot gateway for the configured storage.
package backend

import (
	"context"
	"fmt"

	"wallet/internal/config"
	applog "wallet/internal/log"
	"wallet/internal/storage"
)

// Type names a storage backend.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}

// Result is a ready gateway plus the resources it holds.
type Result struct {
	Gateway *storage.Gateway
	// Ping reports storage health for readiness probes.
	Ping    func(ctx context.Context) error
	Cleanup func() error
}

// New opens the backend named by cfg.StorageBackend.
func New(cfg *config.Config, logger *applog.Logger) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentBackend)

	switch t := Type(cfg.StorageBackend); t {
	case SQLite:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{
			Gateway: storage.NewGateway(store),
			Ping:    store.Ping,
			Cleanup: store.Close,
		}, nil

	case Memory:
		logger.Warn("Using in-memory backend, the wallet resets on restart")
		return &Result{
			Gateway: storage.NewGateway(storage.NewMemoryStore(nil)),
			Ping:    func(context.Context) error { return nil },
			Cleanup: func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}
