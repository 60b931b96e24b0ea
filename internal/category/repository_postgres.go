package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

var ErrNotFound = fmt.Errorf("%w: category not found", apperr.ErrNotFound)

// Repository provides access to category rows.
type Repository interface {
	List(ctx context.Context, limit int) ([]Category, error)
	GetByID(ctx context.Context, id int64) (Category, error)
}

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns category rows ordered by name then id.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name, id LIMIT $1`, limit)
	if err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var item Category
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, apperr.Persistence("scan category", err)
		}
		out = append(out, item)
	}
	return out, apperr.Persistence("iterate categories", rows.Err())
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Category, error) {
	var item Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&item.ID, &item.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, apperr.Persistence("get category", err)
	}
	return item, nil
}

// InMemoryRepository keeps categories in insertion order.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items []Category
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	return &InMemoryRepository{items: append([]Category(nil), seed...)}
}

func (r *InMemoryRepository) List(ctx context.Context, limit int) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.items)
	if limit < n {
		n = limit
	}
	return append([]Category(nil), r.items[:n]...), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.items {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}
