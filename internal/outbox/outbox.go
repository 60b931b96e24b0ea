// Package outbox records order events in the same transaction as the change
// that caused them and relays them to Kafka afterwards.
package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

type Event struct {
	ID          int64
	AggregateID string
	Type        string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// NewEvent marshals payload into an event for aggregateID.
func NewEvent(aggregateID, eventType string, payload any, now time.Time) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{AggregateID: aggregateID, Type: eventType, Payload: raw, CreatedAt: now}, nil
}

// Execer is satisfied by *sql.Tx and *sql.DB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertEventQuery = `
	INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
	VALUES ($1, $2, $3, $4)`

// Enqueue writes e through ex, normally the transaction of the change.
func Enqueue(ctx context.Context, ex Execer, e Event) error {
	_, err := ex.ExecContext(ctx, insertEventQuery, e.AggregateID, e.Type, []byte(e.Payload), e.CreatedAt)
	return apperr.Persistence("enqueue outbox event", err)
}

// Repository is the relay's view of pending events.
type Repository interface {
	FetchUnprocessed(ctx context.Context, limit int) ([]Event, error)
	MarkProcessed(ctx context.Context, id int64, at time.Time) error
}
