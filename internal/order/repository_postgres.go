package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/wichananm65/chat-shop-backend/internal/apperr"
	"github.com/wichananm65/chat-shop-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/chat-shop-backend/internal/outbox"
	"github.com/wichananm65/chat-shop-backend/internal/user"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	orderColumns = `o.id, o.user_id, u.chat_id, o.number, o.status, o.created_at, o.updated_at`
	orderFrom    = ` FROM orders o JOIN users u ON u.id = o.user_id`

	getOrderQuery          = `SELECT ` + orderColumns + orderFrom + ` WHERE o.id = $1`
	listOrdersByChatQuery  = `SELECT ` + orderColumns + orderFrom + ` WHERE u.chat_id = $1 ORDER BY o.id`
	listAllOrdersQuery     = `SELECT ` + orderColumns + orderFrom + ` ORDER BY o.id`
	lockOrderStatusQuery   = `SELECT status FROM orders WHERE id = $1 FOR UPDATE`
	updateOrderStatusQuery = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	orderProductsQuery = `
		SELECT op.order_id, op.product_id, p.name, p.price, op.quantity
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = ANY($1::bigint[])
		ORDER BY op.order_id, op.product_id`

	cartForOrderQuery = `
		SELECT ci.product_id, ci.quantity, p.id IS NOT NULL
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.chat_id = $1
		ORDER BY ci.id`
	insertOrderQuery = `
		INSERT INTO orders (user_id, number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id`
	insertOrderProductQuery = `INSERT INTO order_products (order_id, product_id, quantity) VALUES ($1, $2, $3)`
	clearCartQuery          = `DELETE FROM cart_items WHERE chat_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateFromCart(ctx context.Context, chatID int64, numbers NumberGenerator, now time.Time) (Order, error) {
	var out Order
	err := postgres.InTx(ctx, r.db, func(tx *sql.Tx) error {
		userID, err := postgres.LockUser(ctx, tx, chatID)
		if errors.Is(err, sql.ErrNoRows) {
			return user.ErrNotFound
		}
		if err != nil {
			return apperr.Persistence("lock user", err)
		}

		items, err := cartItems(ctx, tx, chatID)
		if err != nil {
			return err
		}

		id, number, err := insertOrder(ctx, tx, userID, numbers, now)
		if err != nil {
			return err
		}
		for _, it := range items {
			if _, err := tx.ExecContext(ctx, insertOrderProductQuery, id, it.ProductID, it.Quantity); err != nil {
				return apperr.Persistence("insert order product", err)
			}
		}

		out = Order{ID: id, UserID: userID, ChatID: chatID, Number: number, Status: StatusNew, CreatedAt: now, UpdatedAt: now}
		event, err := CreatedEvent(out, items, now)
		if err != nil {
			return err
		}
		if err := outbox.Enqueue(ctx, tx, event); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, clearCartQuery, chatID); err != nil {
			return apperr.Persistence("clear cart", err)
		}

		products, err := loadProducts(ctx, tx, []int64{id})
		if err != nil {
			return err
		}
		out.Products = products[id]
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

func cartItems(ctx context.Context, tx *sql.Tx, chatID int64) ([]Item, error) {
	rows, err := tx.QueryContext(ctx, cartForOrderQuery, chatID)
	if err != nil {
		return nil, apperr.Persistence("read cart", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		var exists bool
		if err := rows.Scan(&it.ProductID, &it.Quantity, &exists); err != nil {
			return nil, apperr.Persistence("scan cart item", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, it.ProductID)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterate cart", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	return items, nil
}

// insertOrder inserts the order row, retrying with a fresh number inside a
// savepoint when the number is already taken.
func insertOrder(ctx context.Context, tx *sql.Tx, userID int64, numbers NumberGenerator, now time.Time) (int64, string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := numbers()
		if _, err := tx.ExecContext(ctx, `SAVEPOINT order_number`); err != nil {
			return 0, "", apperr.Persistence("savepoint", err)
		}

		var id int64
		err := tx.QueryRowContext(ctx, insertOrderQuery, userID, number, string(StatusNew), now).Scan(&id)
		if err == nil {
			if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT order_number`); err != nil {
				return 0, "", apperr.Persistence("release savepoint", err)
			}
			return id, number, nil
		}
		if !postgres.IsUniqueViolation(err) {
			return 0, "", apperr.Persistence("insert order", err)
		}
		if _, err := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT order_number`); err != nil {
			return 0, "", apperr.Persistence("rollback savepoint", err)
		}
	}
	return 0, "", ErrNumberExhausted
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Order, error) {
	return getOrder(ctx, r.db, id)
}

func (r *PostgresRepository) ListByChatID(ctx context.Context, chatID int64) ([]Order, error) {
	return listOrders(ctx, r.db, listOrdersByChatQuery, chatID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	return listOrders(ctx, r.db, listAllOrdersQuery)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, to Status, check func(from Status) error, now time.Time) (Order, bool, error) {
	var out Order
	var changed bool
	err := postgres.InTx(ctx, r.db, func(tx *sql.Tx) error {
		var from Status
		err := tx.QueryRowContext(ctx, lockOrderStatusQuery, id).Scan(&from)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return apperr.Persistence("lock order", err)
		}
		if err := check(from); err != nil {
			return err
		}

		if from != to {
			if _, err := tx.ExecContext(ctx, updateOrderStatusQuery, id, string(to), now); err != nil {
				return apperr.Persistence("update order status", err)
			}
			changed = true
		}

		o, err := getOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if changed {
			event, err := StatusChangedEvent(o, from, now)
			if err != nil {
				return err
			}
			if err := outbox.Enqueue(ctx, tx, event); err != nil {
				return err
			}
		}
		out = o
		return nil
	})
	if err != nil {
		return Order{}, false, err
	}
	return out, changed, nil
}

func getOrder(ctx context.Context, q querier, id int64) (Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, getOrderQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, apperr.Persistence("get order", err)
	}
	products, err := loadProducts(ctx, q, []int64{id})
	if err != nil {
		return Order{}, err
	}
	o.Products = products[id]
	return o, nil
}

func listOrders(ctx context.Context, q querier, query string, args ...any) ([]Order, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("list orders", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Persistence("scan order", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterate orders", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	products, err := loadProducts(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Products = products[orders[i].ID]
	}
	return orders, nil
}

// loadProducts returns the ordered products of each order id, joined with
// the current catalog.
func loadProducts(ctx context.Context, q querier, orderIDs []int64) (map[int64][]OrderedProduct, error) {
	rows, err := q.QueryContext(ctx, orderProductsQuery, pq.Array(orderIDs))
	if err != nil {
		return nil, apperr.Persistence("list order products", err)
	}
	defer rows.Close()

	out := make(map[int64][]OrderedProduct, len(orderIDs))
	for rows.Next() {
		var orderID int64
		var p OrderedProduct
		if err := rows.Scan(&orderID, &p.ProductID, &p.Name, &p.Price, &p.Quantity); err != nil {
			return nil, apperr.Persistence("scan order product", err)
		}
		out[orderID] = append(out[orderID], p)
	}
	return out, apperr.Persistence("iterate order products", rows.Err())
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.ChatID, &o.Number, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
