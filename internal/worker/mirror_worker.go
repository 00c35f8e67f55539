package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wallet/internal/amqp"
	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/sheets"
)

// SnapshotSource is the read half of ledger.Gateway.
type SnapshotSource interface {
	Load(ctx context.Context) (snap core.Snapshot, found bool, err error)
}

// MirrorWorker copies the stored ledger snapshot to a sheet whenever the
// wallet service announces a change.
type MirrorWorker struct {
	source   SnapshotSource
	exporter sheets.SnapshotExporter
	logger   *applog.Logger
	now      func() time.Time

	mu          sync.Mutex
	loadedAt    time.Time
	lastVersion uint64
}

func NewMirrorWorker(source SnapshotSource, exporter sheets.SnapshotExporter, logger *applog.Logger) *MirrorWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &MirrorWorker{
		source:   source,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
		now:      time.Now,
	}
}

// HandleLedgerEvent exports the current snapshot unless an export that
// started after the event was emitted already covered it.
func (w *MirrorWorker) HandleLedgerEvent(ctx context.Context, evt *amqp.LedgerEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.loadedAt.IsZero() && evt.Timestamp.Before(w.loadedAt) {
		w.logger.DebugContext(ctx, "Skipping stale ledger event",
			applog.FieldOperation, evt.Op,
			applog.FieldVersion, evt.Version,
			"last_version", w.lastVersion)
		return nil
	}

	if err := w.export(ctx); err != nil {
		return fmt.Errorf("mirror after %s: %w", evt.Op, err)
	}
	w.lastVersion = evt.Version

	w.logger.InfoContext(ctx, "Mirrored ledger event",
		applog.FieldOperation, evt.Op,
		applog.FieldExpenseID, evt.ExpenseID,
		applog.FieldVersion, evt.Version)
	return nil
}

// Resync exports the current snapshot unconditionally.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.export(ctx); err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	w.logger.InfoContext(ctx, "Resync completed", applog.FieldOperation, applog.OpResync)
	return nil
}

// LastVersion is the version of the last event that triggered an export.
func (w *MirrorWorker) LastVersion() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastVersion
}

// export runs with w.mu held.
func (w *MirrorWorker) export(ctx context.Context) error {
	started := w.now()

	snap, found, err := w.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		w.logger.InfoContext(ctx, "No stored snapshot yet, nothing to mirror")
		w.loadedAt = started
		return nil
	}

	if err := w.exporter.Export(ctx, snap); err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	w.loadedAt = started

	w.logger.DebugContext(ctx, "Snapshot exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldBalance, snap.Balance.String(),
		"expenses", len(snap.Expenses),
		applog.FieldDuration, w.now().Sub(started).Milliseconds())
	return nil
}
