package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"wallet/internal/core"
	"wallet/internal/ledger"
)

// Blob keys of the persisted snapshot.
const (
	KeyBalance  = "walletBalance"
	KeyExpenses = "expenses"
)

// ErrCorruptSnapshot reports stored blobs that cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

var _ ledger.Gateway = (*Gateway)(nil)

// Gateway stores ledger snapshots as two blobs in a BlobStore.
type Gateway struct {
	blobs BlobStore
}

func NewGateway(blobs BlobStore) *Gateway {
	return &Gateway{blobs: blobs}
}

// Load decodes the stored snapshot. A missing balance blob means no snapshot
// was ever saved. Records stored without an id are given one, and the
// expenses blob is rewritten so the ids survive the next load.
func (g *Gateway) Load(ctx context.Context) (core.Snapshot, bool, error) {
	rawBalance, ok, err := g.blobs.Get(ctx, KeyBalance)
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("load balance: %w", err)
	}
	if !ok {
		return core.Snapshot{}, false, nil
	}

	var snap core.Snapshot
	if err := json.Unmarshal([]byte(rawBalance), &snap.Balance); err != nil {
		return core.Snapshot{}, false, fmt.Errorf("%w: balance %q: %v", ErrCorruptSnapshot, rawBalance, err)
	}

	rawExpenses, ok, err := g.blobs.Get(ctx, KeyExpenses)
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("load expenses: %w", err)
	}
	snap.Expenses = []core.Expense{}
	if ok && rawExpenses != "" {
		if err := json.Unmarshal([]byte(rawExpenses), &snap.Expenses); err != nil {
			return core.Snapshot{}, false, fmt.Errorf("%w: expenses: %v", ErrCorruptSnapshot, err)
		}
		if snap.Expenses == nil {
			snap.Expenses = []core.Expense{}
		}
	}

	backfilled := false
	for i := range snap.Expenses {
		if snap.Expenses[i].ID == "" {
			snap.Expenses[i].ID = uuid.NewString()
			backfilled = true
		}
		if err := snap.Expenses[i].Validate(); err != nil {
			return core.Snapshot{}, false, fmt.Errorf("%w: expense %d: %v", ErrCorruptSnapshot, i, err)
		}
	}
	if backfilled {
		// on failure the snapshot is still usable; ids are assigned again next load
		_ = g.storeExpenses(ctx, snap.Expenses)
	}
	return snap, true, nil
}

func encodeExpenses(expenses []core.Expense) (string, error) {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	body, err := json.Marshal(expenses)
	if err != nil {
		return "", fmt.Errorf("encode expenses: %w", err)
	}
	return string(body), nil
}

func (g *Gateway) storeExpenses(ctx context.Context, expenses []core.Expense) error {
	body, err := encodeExpenses(expenses)
	if err != nil {
		return err
	}
	if err := g.blobs.Set(ctx, KeyExpenses, body); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	return nil
}

// Save overwrites both blobs in one write.
func (g *Gateway) Save(ctx context.Context, snap core.Snapshot) error {
	body, err := encodeExpenses(snap.Expenses)
	if err != nil {
		return err
	}

	if err := g.blobs.SetMany(ctx, map[string]string{
		KeyBalance:  snap.Balance.String(),
		KeyExpenses: body,
	}); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
