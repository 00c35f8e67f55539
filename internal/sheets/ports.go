package sheets

import (
	"context"

	"wallet/internal/core"
)

// Ports for outbound adapters.
type (
	// SnapshotExporter mirrors the whole ledger to an external sheet.
	SnapshotExporter interface {
		Export(ctx context.Context, snap core.Snapshot) error
	}
)

// Header is the first row written by exporters.
var Header = []any{"Date", "Title", "Category", "Amount"}

// BuildRows lays out a snapshot as sheet rows: a header, one row per expense
// in insertion order, a blank spacer and the total and balance footer.
// Amounts are decimal strings so the sheet sees exact values.
func BuildRows(snap core.Snapshot) [][]any {
	rows := make([][]any, 0, len(snap.Expenses)+4)
	rows = append(rows, Header)

	var total core.Money
	for _, e := range snap.Expenses {
		rows = append(rows, []any{e.Date.String(), e.Title, string(e.Category), e.Amount.String()})
		total = total.Add(e.Amount)
	}

	rows = append(rows,
		[]any{"", "", "", ""},
		[]any{"", "Total spent", "", total.String()},
		[]any{"", "Wallet balance", "", snap.Balance.String()},
	)
	return rows
}
