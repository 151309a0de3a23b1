package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"kakeibo/internal/core"
)

// ActionSyncExpenses is the only action carried on the ledger queue.
const ActionSyncExpenses = "syncExpenses"

// LedgerSyncMessage carries a full ledger snapshot. Consumers replace their
// copy wholesale; there is no per-record delta.
type LedgerSyncMessage struct {
	Action    string         `json:"action"`
	Expenses  []core.Expense `json:"expenses"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewLedgerSyncMessage wraps a snapshot for publishing.
func NewLedgerSyncMessage(expenses []core.Expense) *LedgerSyncMessage {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return &LedgerSyncMessage{
		Action:    ActionSyncExpenses,
		Expenses:  expenses,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerSyncMessageFromJSON decodes a message and checks its action.
func LedgerSyncMessageFromJSON(data []byte) (*LedgerSyncMessage, error) {
	var msg LedgerSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Action != ActionSyncExpenses {
		return nil, fmt.Errorf("unexpected action %q", msg.Action)
	}
	return &msg, nil
}
