package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

type EventKind string

const (
	EventCreated EventKind = "created"
	EventDeleted EventKind = "deleted"
	EventCleared EventKind = "cleared"
)

// TransactionEvent announces a change to the transaction list. Created
// events carry the full transaction so consumers need no store access.
type TransactionEvent struct {
	Kind        EventKind         `json:"kind"`
	ID          string            `json:"id,omitempty"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewCreatedEvent(tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{Kind: EventCreated, ID: tx.ID, Transaction: &tx, Timestamp: time.Now()}
}

func NewDeletedEvent(id string) *TransactionEvent {
	return &TransactionEvent{Kind: EventDeleted, ID: id, Timestamp: time.Now()}
}

func NewClearedEvent() *TransactionEvent {
	return &TransactionEvent{Kind: EventCleared, Timestamp: time.Now()}
}

func (e *TransactionEvent) Validate() error {
	switch e.Kind {
	case EventCreated:
		if e.Transaction == nil {
			return fmt.Errorf("created event %q without transaction", e.ID)
		}
	case EventDeleted:
		if e.ID == "" {
			return fmt.Errorf("deleted event without id")
		}
	case EventCleared:
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and validates an event body.
func EventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
