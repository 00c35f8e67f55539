package sheets

import (
	"testing"

	"wallet/internal/core"
)

func TestBuildRows(t *testing.T) {
	snap := core.Snapshot{
		Balance: core.Units(4650),
		Expenses: []core.Expense{
			{ID: "a", Title: "Lunch", Amount: core.Units(200), Category: core.Food, Date: core.NewDate(2024, 1, 1)},
			{ID: "b", Title: "Bus", Amount: core.Money{Cents: 15050}, Category: core.Travel, Date: core.NewDate(2024, 1, 2)},
		},
	}

	rows := BuildRows(snap)
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" {
		t.Fatalf("expected header first, got %v", rows[0])
	}
	if rows[1][1] != "Lunch" || rows[1][0] != "2024-01-01" || rows[1][3] != "200" {
		t.Fatalf("unexpected first expense row %v", rows[1])
	}
	if rows[2][2] != "Travel" || rows[2][3] != "150.50" {
		t.Fatalf("unexpected second expense row %v", rows[2])
	}
	if rows[4][3] != "350.50" {
		t.Fatalf("unexpected total %v", rows[4])
	}
	if rows[5][3] != "4650" {
		t.Fatalf("unexpected balance %v", rows[5])
	}
}

func TestBuildRowsEmpty(t *testing.T) {
	rows := BuildRows(core.Snapshot{Balance: core.Units(5000)})
	if len(rows) != 4 {
		t.Fatalf("expected header and footer only, got %d rows", len(rows))
	}
	if rows[2][3] != "0" {
		t.Fatalf("expected zero total, got %v", rows[2])
	}
}
