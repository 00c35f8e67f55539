// Package ledger keeps the wallet balance and the expense list consistent.
//
// A Ledger is owned by a single control flow: it performs no locking. Every
// operation validates its input completely before touching state, so a failed
// call leaves the ledger exactly as it was and skips the persistence write.
package ledger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"wallet/internal/core"
)

// DefaultBalance seeds a wallet with no stored snapshot.
var DefaultBalance = core.Units(5000)

// Gateway loads the last stored snapshot and stores new ones.
type Gateway interface {
	// Load returns found=false when no snapshot was ever saved.
	Load(ctx context.Context) (snap core.Snapshot, found bool, err error)
	Save(ctx context.Context, snap core.Snapshot) error
}

type Ledger struct {
	gw       Gateway
	logger   *slog.Logger
	newID    func() string
	balance  core.Money
	expenses []core.Expense
}

type Option func(*options)

type options struct {
	defaultBalance core.Money
	logger         *slog.Logger
	newID          func() string
}

// WithDefaultBalance overrides DefaultBalance for wallets without a snapshot.
func WithDefaultBalance(m core.Money) Option {
	return func(o *options) { o.defaultBalance = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIDGenerator replaces the UUID generator used for new expenses.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// New loads the stored snapshot through gw. A missing or unreadable snapshot
// starts a fresh wallet holding the default balance.
func New(ctx context.Context, gw Gateway, opts ...Option) *Ledger {
	o := options{
		defaultBalance: DefaultBalance,
		logger:         slog.Default().With("component", "ledger"),
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Ledger{
		gw:      gw,
		logger:  o.logger,
		newID:   o.newID,
		balance: o.defaultBalance,
	}

	snap, found, err := gw.Load(ctx)
	switch {
	case err != nil:
		l.logger.WarnContext(ctx, "Stored snapshot unreadable, starting fresh wallet",
			"error", err,
			"balance", l.balance.String())
	case !found:
		l.logger.InfoContext(ctx, "No stored snapshot, starting fresh wallet",
			"balance", l.balance.String())
	default:
		l.balance = snap.Balance
		l.expenses = snap.Clone().Expenses
		l.logger.InfoContext(ctx, "Wallet restored",
			"balance", l.balance.String(),
			"expenses", len(l.expenses))
	}
	return l
}

// AddIncome credits the wallet and returns the new balance.
func (l *Ledger) AddIncome(ctx context.Context, amount string) (core.Money, error) {
	m, err := core.ParseAmount(amount)
	if err != nil {
		return l.balance, &core.ValidationError{Field: "amount", Err: err}
	}

	// balance plus everything spent must stay representable, or crediting
	// back a deleted expense could overflow later
	held, ok := l.balance.CheckedAdd(l.TotalSpent())
	if ok {
		_, ok = held.CheckedAdd(m)
	}
	if !ok {
		return l.balance, &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}

	l.balance = l.balance.Add(m)
	l.persist(ctx, "add_income")
	return l.balance, nil
}

// AddExpense records a new expense and debits its amount.
func (l *Ledger) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := in.Validate()
	if err != nil {
		return core.Expense{}, err
	}
	if e.Amount.Cents > l.balance.Cents {
		return core.Expense{}, core.ErrInsufficientBalance
	}

	e.ID = l.newID()
	l.expenses = append(l.expenses, e)
	l.balance = l.balance.Sub(e.Amount)
	l.persist(ctx, "add_expense")
	return e, nil
}

// EditExpense replaces the fields of an existing expense in place. Only the
// increase over the old amount has to be covered by the balance.
func (l *Ledger) EditExpense(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, error) {
	e, err := in.Validate()
	if err != nil {
		return core.Expense{}, err
	}
	i := l.indexOf(id)
	if i < 0 {
		return core.Expense{}, core.ErrNotFound
	}

	delta := e.Amount.Sub(l.expenses[i].Amount)
	if delta.Cents > l.balance.Cents {
		return core.Expense{}, core.ErrInsufficientBalance
	}

	e.ID = l.expenses[i].ID
	l.expenses[i] = e
	l.balance = l.balance.Sub(delta)
	l.persist(ctx, "edit_expense")
	return e, nil
}

// DeleteExpense removes the expense and credits its amount back. Unknown ids
// are ignored; the result reports whether anything was removed.
func (l *Ledger) DeleteExpense(ctx context.Context, id string) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}

	removed := l.expenses[i]
	l.expenses = append(l.expenses[:i:i], l.expenses[i+1:]...)
	l.balance = l.balance.Add(removed.Amount)
	l.persist(ctx, "delete_expense")
	return true
}

func (l *Ledger) Balance() core.Money {
	return l.balance
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() core.Snapshot {
	return core.Snapshot{Balance: l.balance, Expenses: l.RecentTransactions()}
}

func (l *Ledger) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range l.expenses {
		if l.expenses[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the snapshot. The write is fire-and-forget: a failure is
// logged and the in-memory state stays authoritative.
func (l *Ledger) persist(ctx context.Context, op string) {
	if err := l.gw.Save(ctx, l.Snapshot()); err != nil {
		l.logger.ErrorContext(ctx, "Failed to save snapshot",
			"operation", op,
			"error", err)
	}
}
