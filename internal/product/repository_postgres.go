package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	productColumns = `id, name, description, price, photo_url, COALESCE(category_id, 0)`

	listProductsQuery           = `SELECT ` + productColumns + ` FROM products ORDER BY id`
	getProductByIDQuery         = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	listProductsByIDsQuery      = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::bigint[])`
	listProductsByCategoryQuery = `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, apperr.Persistence("get product", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.query(ctx, listProductsByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	return r.query(ctx, listProductsQuery)
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	return r.query(ctx, listProductsByCategoryQuery, categoryID)
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Persistence("list products", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Persistence("scan product", err)
		}
		out = append(out, p)
	}
	return out, apperr.Persistence("iterate products", rows.Err())
}

func scanProduct(s rowScanner) (Product, error) {
	var (
		p     Product
		photo sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &photo, &p.CategoryID); err != nil {
		return Product{}, err
	}
	if photo.Valid {
		p.PhotoURL = &photo.String
	}
	return p, nil
}
