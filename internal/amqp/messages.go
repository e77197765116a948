package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Operation is the change a sync message announces.
type Operation string

const (
	OpCreate Operation = "create"
	OpDelete Operation = "delete"
)

// TransactionSyncMessage announces a change to a transaction so that the
// worker can mirror it. Create messages carry a snapshot of the record, so
// the worker never needs access to the primary store.
type TransactionSyncMessage struct {
	ID          string            `json:"id"`
	Kind        core.Kind         `json:"kind"`
	Op          Operation         `json:"op"`
	Owner       string            `json:"owner"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewCreateMessage builds the message published after a transaction is stored.
func NewCreateMessage(tx core.Transaction) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:          tx.ID,
		Kind:        tx.Kind,
		Op:          OpCreate,
		Owner:       tx.Owner,
		Transaction: &tx,
		Timestamp:   time.Now(),
	}
}

// NewDeleteMessage builds the message published after a transaction is removed.
func NewDeleteMessage(kind core.Kind, id, owner string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Kind:      kind,
		Op:        OpDelete,
		Owner:     owner,
		Timestamp: time.Now(),
	}
}

var errMalformedMessage = errors.New("malformed sync message")

// Validate checks that a decoded message can be acted upon.
func (m *TransactionSyncMessage) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", errMalformedMessage)
	}
	if !m.Kind.IsValid() {
		return fmt.Errorf("%w: kind %q", errMalformedMessage, m.Kind)
	}
	switch m.Op {
	case OpCreate:
		if m.Transaction == nil {
			return fmt.Errorf("%w: create without transaction", errMalformedMessage)
		}
	case OpDelete:
	default:
		return fmt.Errorf("%w: op %q", errMalformedMessage, m.Op)
	}
	return nil
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON decodes and validates a message body.
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
