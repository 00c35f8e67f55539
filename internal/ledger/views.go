package ledger

import (
	"sort"

	"wallet/internal/core"
)

// TotalSpent sums the amounts of all expenses.
func (l *Ledger) TotalSpent() core.Money {
	var total core.Money
	for _, e := range l.expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// ByCategory sums amounts per category, in order of first appearance.
func (l *Ledger) ByCategory() []core.CategoryAmount {
	out := []core.CategoryAmount{}
	pos := make(map[core.Category]int)
	for _, e := range l.expenses {
		i, ok := pos[e.Category]
		if !ok {
			i = len(out)
			pos[e.Category] = i
			out = append(out, core.CategoryAmount{Category: e.Category})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}

// TopExpenses returns up to n expenses, largest first. Equal amounts keep
// insertion order.
func (l *Ledger) TopExpenses(n int) []core.Expense {
	if n <= 0 {
		return []core.Expense{}
	}
	ranked := l.RecentTransactions()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.Cents > ranked[j].Amount.Cents
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RecentTransactions returns a copy of the expenses in insertion order.
func (l *Ledger) RecentTransactions() []core.Expense {
	out := make([]core.Expense, len(l.expenses))
	copy(out, l.expenses)
	return out
}

// Summary computes every derived view in one pass over the current state.
func (l *Ledger) Summary(topN int) core.Summary {
	return core.Summary{
		Balance:    l.balance,
		TotalSpent: l.TotalSpent(),
		ByCategory: l.ByCategory(),
		Top:        l.TopExpenses(topN),
		Recent:     l.RecentTransactions(),
	}
}
