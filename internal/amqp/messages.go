package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEvent announces one successful ledger mutation. It carries only
// identifiers; consumers read the full snapshot from storage.
type LedgerEvent struct {
	Op           string    `json:"op"`
	ExpenseID    string    `json:"expense_id,omitempty"`
	BalanceCents int64     `json:"balance_cents"`
	Version      uint64    `json:"version"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time
func NewLedgerEvent(op, expenseID string, balanceCents int64, version uint64) *LedgerEvent {
	return &LedgerEvent{
		Op:           op,
		ExpenseID:    expenseID,
		BalanceCents: balanceCents,
		Version:      version,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes a message body
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
