package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
	"github.com/wichananm65/chat-shop-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/chat-shop-backend/internal/user"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	lineColumns = `id, chat_id, product_id, quantity, total_price`

	getLineQuery   = `SELECT ` + lineColumns + ` FROM cart_items WHERE id = $1 AND chat_id = $2`
	listLinesQuery = `SELECT ` + lineColumns + ` FROM cart_items WHERE chat_id = $1 ORDER BY id`

	lineQuantityQuery = `SELECT quantity FROM cart_items WHERE chat_id = $1 AND product_id = $2`

	// Runs under the user lock, so the merged quantity read before it is current.
	upsertLineQuery = `
		INSERT INTO cart_items (chat_id, product_id, quantity, total_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id, product_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
			total_price = EXCLUDED.total_price
		RETURNING ` + lineColumns
	setQuantityQuery = `
		UPDATE cart_items
		SET quantity = $3, total_price = $4
		WHERE id = $1 AND chat_id = $2
		RETURNING ` + lineColumns
	deleteLineQuery = `DELETE FROM cart_items WHERE id = $1 AND chat_id = $2`
	clearCartQuery  = `DELETE FROM cart_items WHERE chat_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetLine(ctx context.Context, chatID, lineID int64) (Line, error) {
	l, err := scanLine(r.db.QueryRowContext(ctx, getLineQuery, lineID, chatID))
	if errors.Is(err, sql.ErrNoRows) {
		return Line{}, ErrItemNotFound
	}
	if err != nil {
		return Line{}, apperr.Persistence("get cart item", err)
	}
	return l, nil
}

func (r *PostgresRepository) AddItem(ctx context.Context, chatID, productID int64, qty int, unitPrice int64) (Line, error) {
	var out Line
	err := postgres.InTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := postgres.LockUser(ctx, tx, chatID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return user.ErrNotFound
			}
			return apperr.Persistence("lock user", err)
		}
		var existing int64
		err := tx.QueryRowContext(ctx, lineQuantityQuery, chatID, productID).Scan(&existing)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return apperr.Persistence("read cart item", err)
		}
		merged := existing + int64(qty)
		total, err := LineTotal(merged, unitPrice)
		if err != nil {
			return err
		}
		l, err := scanLine(tx.QueryRowContext(ctx, upsertLineQuery, chatID, productID, merged, total))
		if err != nil {
			return apperr.Persistence("upsert cart item", err)
		}
		out = l
		return nil
	})
	return out, err
}

func (r *PostgresRepository) SetQuantity(ctx context.Context, chatID, lineID int64, qty int, unitPrice int64) (Line, error) {
	var out Line
	err := postgres.InTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := postgres.LockUser(ctx, tx, chatID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrItemNotFound
			}
			return apperr.Persistence("lock user", err)
		}
		total, err := LineTotal(int64(qty), unitPrice)
		if err != nil {
			return err
		}
		l, err := scanLine(tx.QueryRowContext(ctx, setQuantityQuery, lineID, chatID, qty, total))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrItemNotFound
		}
		if err != nil {
			return apperr.Persistence("update cart item", err)
		}
		out = l
		return nil
	})
	return out, err
}

func (r *PostgresRepository) RemoveItem(ctx context.Context, chatID, lineID int64) error {
	return postgres.InTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := postgres.LockUser(ctx, tx, chatID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrItemNotFound
			}
			return apperr.Persistence("lock user", err)
		}
		res, err := tx.ExecContext(ctx, deleteLineQuery, lineID, chatID)
		if err != nil {
			return apperr.Persistence("delete cart item", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperr.Persistence("delete cart item", err)
		}
		if n == 0 {
			return ErrItemNotFound
		}
		return nil
	})
}

func (r *PostgresRepository) ListLines(ctx context.Context, chatID int64) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, listLinesQuery, chatID)
	if err != nil {
		return nil, apperr.Persistence("list cart items", err)
	}
	defer rows.Close()

	out := make([]Line, 0)
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, apperr.Persistence("scan cart item", err)
		}
		out = append(out, l)
	}
	return out, apperr.Persistence("iterate cart items", rows.Err())
}

func (r *PostgresRepository) Clear(ctx context.Context, chatID int64) error {
	return postgres.InTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := postgres.LockUser(ctx, tx, chatID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return apperr.Persistence("lock user", err)
		}
		if _, err := tx.ExecContext(ctx, clearCartQuery, chatID); err != nil {
			return apperr.Persistence("clear cart", err)
		}
		return nil
	})
}

func scanLine(row rowScanner) (Line, error) {
	var l Line
	err := row.Scan(&l.ID, &l.ChatID, &l.ProductID, &l.Quantity, &l.TotalPrice)
	return l, err
}
