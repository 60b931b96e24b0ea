package user

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

var (
	ErrNotFound      = fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("%w: user already registered", apperr.ErrConflict)
	ErrInvalidChatID = fmt.Errorf("%w: chat id must be positive", apperr.ErrValidation)
)

type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByChatID(ctx context.Context, chatID int64) (User, error)
	// GetOrCreate returns the user for chatID, inserting one with an empty
	// profile when absent. created reports whether the row was inserted.
	GetOrCreate(ctx context.Context, chatID int64, now time.Time) (u User, created bool, err error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
}

// InMemoryRepository is used for tests and local runs without a database.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	r := &InMemoryRepository{users: make(map[int64]User, len(seed)), nextID: 1}
	for _, u := range seed {
		r.users[u.ChatID] = u
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByChatID(ctx context.Context, chatID int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[chatID]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *InMemoryRepository) GetOrCreate(ctx context.Context, chatID int64, now time.Time) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[chatID]; ok {
		return u, false, nil
	}
	u := r.insertLocked(User{ChatID: chatID, CreatedAt: now, UpdatedAt: now})
	return u, true, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ChatID]; ok {
		return User{}, ErrAlreadyExists
	}
	return r.insertLocked(u), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[u.ChatID]
	if !ok {
		return User{}, ErrNotFound
	}
	existing.FirstName = u.FirstName
	existing.Address = u.Address
	existing.Phone = u.Phone
	existing.UpdatedAt = u.UpdatedAt
	r.users[u.ChatID] = existing
	return existing, nil
}

func (r *InMemoryRepository) insertLocked(u User) User {
	u.ID = r.nextID
	r.nextID++
	r.users[u.ChatID] = u
	return u
}
