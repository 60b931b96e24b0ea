package product

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

var (
	ErrNotFound = fmt.Errorf("%w: product not found", apperr.ErrNotFound)
)

// Catalog is the read-only view of products consumed by the cart and order
// engine.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (Product, error)
	// ListByIDs returns the products that exist among ids, in no particular
	// order. Missing ids are skipped.
	ListByIDs(ctx context.Context, ids []int64) ([]Product, error)
}

type Repository interface {
	Catalog
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]Product, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// local runs. Put and Delete stand in for the admin tooling that owns the
// catalog.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[int64]Product
	nextID  int64
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make(map[int64]Product, len(seed)), nextID: 1}
	for _, p := range seed {
		r.Put(p)
	}
	return r
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.storage[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) ListByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.storage[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Product, error) {
	return r.filter(func(Product) bool { return true }), nil
}

func (r *InMemoryRepository) ListByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	return r.filter(func(p Product) bool { return p.CategoryID == categoryID }), nil
}

// Put inserts or replaces a product. A zero ID gets the next free one.
func (r *InMemoryRepository) Put(p Product) Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		p.ID = r.nextID
	}
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	r.storage[p.ID] = p
	return p
}

func (r *InMemoryRepository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.storage[id]; !ok {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}

func (r *InMemoryRepository) filter(keep func(Product) bool) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
