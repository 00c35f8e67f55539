package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wallet/internal/amqp"
	"wallet/internal/core"
	"wallet/internal/ledger"
	applog "wallet/internal/log"
)

// EventPublisher announces ledger mutations to other processes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, evt *amqp.LedgerEvent) error
}

// WalletService is the process-wide owner of the ledger. It serializes
// callers, counts mutations and publishes a change event after each one.
type WalletService struct {
	mu        sync.Mutex
	ledger    *ledger.Ledger
	publisher EventPublisher
	version   uint64
	logger    *applog.Logger
	closers   []func() error
}

// NewWalletService wraps l. publisher may be nil to disable the change feed.
// closers run on Close, in order.
func NewWalletService(l *ledger.Ledger, publisher EventPublisher, logger *applog.Logger, closers ...func() error) *WalletService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &WalletService{
		ledger:    l,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentWallet),
		closers:   closers,
	}
}

func (s *WalletService) AddIncome(ctx context.Context, amount string) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, err := s.ledger.AddIncome(ctx, amount)
	if err != nil {
		return bal, err
	}
	s.committed(ctx, applog.OpAddIncome, "")
	return bal, nil
}

// AddExpense returns the stored expense and the balance right after it.
func (s *WalletService) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.ledger.AddExpense(ctx, in)
	if err != nil {
		return e, s.ledger.Balance(), err
	}
	s.committed(ctx, applog.OpAddExpense, e.ID)
	s.logExpense(ctx, e)
	return e, s.ledger.Balance(), nil
}

func (s *WalletService) EditExpense(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.ledger.EditExpense(ctx, id, in)
	if err != nil {
		return e, s.ledger.Balance(), err
	}
	s.committed(ctx, applog.OpEditExpense, e.ID)
	s.logExpense(ctx, e)
	return e, s.ledger.Balance(), nil
}

// DeleteExpense reports whether a record was removed. Unknown ids are not an error.
func (s *WalletService) DeleteExpense(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.DeleteExpense(ctx, id) {
		return false
	}
	s.committed(ctx, applog.OpDeleteExpense, id)
	return true
}

// Summary returns the derived views together with the version they reflect.
func (s *WalletService) Summary(topN int) (core.Summary, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Summary(topN), s.version
}

func (s *WalletService) ByCategory() []core.CategoryAmount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ByCategory()
}

func (s *WalletService) TopExpenses(n int) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.TopExpenses(n)
}

func (s *WalletService) RecentTransactions() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.RecentTransactions()
}

func (s *WalletService) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}

// Version counts successful mutations since start.
func (s *WalletService) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// committed runs with s.mu held.
func (s *WalletService) committed(ctx context.Context, op, expenseID string) {
	s.version++
	bal := s.ledger.Balance()

	s.logger.InfoContext(ctx, "Ledger updated",
		applog.FieldOperation, op,
		applog.FieldExpenseID, expenseID,
		applog.FieldBalance, bal.String(),
		applog.FieldVersion, s.version)

	if s.publisher == nil {
		return
	}
	evt := amqp.NewLedgerEvent(op, expenseID, bal.Cents, s.version)
	if err := s.publisher.PublishLedgerEvent(ctx, evt); err != nil {
		// the snapshot is already saved; the worker's periodic resync catches up
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			applog.FieldOperation, op,
			applog.FieldVersion, s.version,
			applog.FieldError, err)
	}
}

func (s *WalletService) logExpense(ctx context.Context, e core.Expense) {
	s.logger.DebugContext(ctx, "Expense stored",
		applog.FieldExpenseID, e.ID,
		applog.FieldExpenseTitle, e.Title,
		applog.FieldAmount, e.Amount.String(),
		applog.FieldCategory, string(e.Category))
}

// Close runs the registered closers and joins their errors.
func (s *WalletService) Close() error {
	var errs []error
	for _, c := range s.closers {
		if c == nil {
			continue
		}
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close wallet service: %w", errors.Join(errs...))
	}
	return nil
}
