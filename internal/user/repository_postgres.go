package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
	"github.com/wichananm65/chat-shop-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `id, chat_id, first_name, address, phone, created_at, updated_at`

	listUsersQuery       = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	getUserByChatIDQuery = `SELECT ` + userColumns + ` FROM users WHERE chat_id = $1`

	// ON CONFLICT DO NOTHING returns no row when the user already exists.
	insertPlaceholderQuery = `
		INSERT INTO users (chat_id, first_name, address, phone, created_at, updated_at)
		VALUES ($1, '', '', '', $2, $2)
		ON CONFLICT (chat_id) DO NOTHING
		RETURNING ` + userColumns
	insertUserQuery = `
		INSERT INTO users (chat_id, first_name, address, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	updateUserQuery = `
		UPDATE users
		SET first_name = $1,
			address = $2,
			phone = $3,
			updated_at = $4
		WHERE chat_id = $5
		RETURNING ` + userColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, apperr.Persistence("list users", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Persistence("scan user", err)
		}
		users = append(users, u)
	}
	return users, apperr.Persistence("iterate users", rows.Err())
}

func (r *PostgresRepository) GetByChatID(ctx context.Context, chatID int64) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByChatIDQuery, chatID))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, apperr.Persistence("get user", err)
	}
	return u, nil
}

// GetOrCreate reads first so existing users do not consume id sequence
// values; the insert only runs for a new chat id.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, chatID int64, now time.Time) (User, bool, error) {
	u, err := r.GetByChatID(ctx, chatID)
	if !errors.Is(err, ErrNotFound) {
		return u, false, err
	}

	u, err = scanUser(r.db.QueryRowContext(ctx, insertPlaceholderQuery, chatID, now))
	if err == nil {
		return u, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, false, apperr.Persistence("insert user", err)
	}

	// Lost a race with a concurrent insert.
	u, err = r.GetByChatID(ctx, chatID)
	return u, false, err
}

func (r *PostgresRepository) Create(ctx context.Context, in User) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, insertUserQuery,
		in.ChatID, in.FirstName, in.Address, in.Phone, in.CreatedAt, in.UpdatedAt))
	if postgres.IsUniqueViolation(err) {
		return User{}, ErrAlreadyExists
	}
	if err != nil {
		return User{}, apperr.Persistence("create user", err)
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, in User) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, updateUserQuery,
		in.FirstName, in.Address, in.Phone, in.UpdatedAt, in.ChatID))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, apperr.Persistence("update user", err)
	}
	return u, nil
}

func scanUser(s rowScanner) (User, error) {
	var u User
	err := s.Scan(&u.ID, &u.ChatID, &u.FirstName, &u.Address, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
