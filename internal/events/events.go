// Package events announces ledger changes to interested consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names a ledger change. It doubles as the AMQP routing key.
type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
)

// Event is a lightweight notice; consumers fetch the record itself if they need it.
type Event struct {
	Type          Type      `json:"type"`
	TransactionID uuid.UUID `json:"transactionId"`
	UserID        uuid.UUID `json:"userId"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ Type, transactionID, userID uuid.UUID) Event {
	return Event{
		Type:          typ,
		TransactionID: transactionID,
		UserID:        userID,
		OccurredAt:    time.Now().UTC(),
	}
}

// ToJSON encodes the event body.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
