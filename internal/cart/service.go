package cart

import (
	"context"
	"errors"

	"github.com/wichananm65/chat-shop-backend/internal/metrics"
	"github.com/wichananm65/chat-shop-backend/internal/product"
	"github.com/wichananm65/chat-shop-backend/internal/user"
)

// UserResolver registers a user on first contact.
type UserResolver interface {
	GetOrCreate(ctx context.Context, chatID int64) (user.User, error)
}

// Service orchestrates cart operations. Line prices always come from the
// pricing catalog; the listing catalog only decorates ViewCart.
type Service struct {
	repo    Repository
	users   UserResolver
	pricing product.Catalog
	listing product.Catalog
	metrics *metrics.Registry
}

func NewService(repo Repository, users UserResolver, pricing product.Catalog, m *metrics.Registry) *Service {
	return &Service{repo: repo, users: users, pricing: pricing, listing: pricing, metrics: m}
}

// WithListingCatalog makes ViewCart attach product details from c, usually a
// cached catalog.
func (s *Service) WithListingCatalog(c product.Catalog) *Service {
	s.listing = c
	return s
}

// AddItem puts qty units of productID into the cart, registering the user
// if this is the first time the chat id is seen.
func (s *Service) AddItem(ctx context.Context, chatID, productID int64, qty int) (Line, error) {
	if err := checkQuantity(qty); err != nil {
		return Line{}, err
	}
	if _, err := s.users.GetOrCreate(ctx, chatID); err != nil {
		return Line{}, err
	}
	p, err := s.lookup(ctx, productID)
	if err != nil {
		return Line{}, err
	}

	l, err := s.repo.AddItem(ctx, chatID, productID, qty, p.Price)
	if err != nil {
		return Line{}, err
	}
	s.metrics.CartItemAdded()
	l.Product = &p
	return l, nil
}

// SetQuantity replaces a line's quantity and reprices it from the catalog.
func (s *Service) SetQuantity(ctx context.Context, chatID, lineID int64, qty int) (Line, error) {
	if err := checkQuantity(qty); err != nil {
		return Line{}, err
	}
	current, err := s.repo.GetLine(ctx, chatID, lineID)
	if err != nil {
		return Line{}, err
	}
	p, err := s.lookup(ctx, current.ProductID)
	if err != nil {
		return Line{}, err
	}
	if _, err := LineTotal(int64(qty), p.Price); err != nil {
		return Line{}, err
	}

	l, err := s.repo.SetQuantity(ctx, chatID, lineID, qty, p.Price)
	if err != nil {
		return Line{}, err
	}
	l.Product = &p
	return l, nil
}

func (s *Service) RemoveItem(ctx context.Context, chatID, lineID int64) error {
	return s.repo.RemoveItem(ctx, chatID, lineID)
}

// ViewCart returns the lines with product details attached. Lines whose
// product left the catalog are still listed, without details.
func (s *Service) ViewCart(ctx context.Context, chatID int64) (View, error) {
	lines, err := s.repo.ListLines(ctx, chatID)
	if err != nil {
		return View{}, err
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.listing.ListByIDs(ctx, ids)
	if err != nil {
		return View{}, err
	}
	byID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := View{Lines: lines}
	for i := range view.Lines {
		if p, ok := byID[view.Lines[i].ProductID]; ok {
			view.Lines[i].Product = &p
		}
		view.GrandTotal += view.Lines[i].TotalPrice
	}
	return view, nil
}

func (s *Service) Clear(ctx context.Context, chatID int64) error {
	return s.repo.Clear(ctx, chatID)
}

func checkQuantity(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > MaxQuantity {
		return ErrQuantityTooLarge
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, productID int64) (product.Product, error) {
	p, err := s.pricing.GetByID(ctx, productID)
	if errors.Is(err, product.ErrNotFound) {
		return product.Product{}, ErrProductNotFound
	}
	return p, err
}
