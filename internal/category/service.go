package category

import (
	"context"

	"github.com/wichananm65/chat-shop-backend/internal/product"
)

const maxLimit = 100

// Service provides business logic for categories.
type Service struct {
	repo     Repository
	products *product.Service
}

func NewService(r Repository, products *product.Service) *Service {
	return &Service{repo: r, products: products}
}

// List returns up to `limit` categories; out of range limits use the maximum.
func (s *Service) List(ctx context.Context, limit int) ([]Category, error) {
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	return s.repo.List(ctx, limit)
}

// Products returns the products of an existing category.
func (s *Service) Products(ctx context.Context, categoryID int64) ([]product.Product, error) {
	if _, err := s.repo.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.products.ListByCategory(ctx, categoryID)
}
