package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

const (
	fetchUnprocessedQuery = `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1`
	markProcessedQuery = `UPDATE outbox_events SET processed_at = $2 WHERE id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FetchUnprocessed(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, fetchUnprocessedQuery, limit)
	if err != nil {
		return nil, apperr.Persistence("fetch outbox events", err)
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var e Event
		var payload []byte
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.Type, &payload, &e.CreatedAt); err != nil {
			return nil, apperr.Persistence("scan outbox event", err)
		}
		e.Payload = payload
		out = append(out, e)
	}
	return out, apperr.Persistence("iterate outbox events", rows.Err())
}

func (r *PostgresRepository) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, markProcessedQuery, id, at)
	return apperr.Persistence("mark outbox event", err)
}
