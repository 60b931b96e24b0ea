package order

import (
	"context"
	"time"

	"github.com/wichananm65/chat-shop-backend/internal/metrics"
)

// Options configures the order converter and ledger.
type Options struct {
	// AutoRegisterUsers lets Convert register an unknown chat id instead of
	// failing with user.ErrNotFound.
	AutoRegisterUsers bool
	Total             TotalPolicy
	Numbers           NumberGenerator
	Transitions       StatusMachine
	Metrics           *metrics.Registry
}

func (o Options) withDefaults() Options {
	if o.Total == nil {
		o.Total = DistinctProductTotal
	}
	if o.Numbers == nil {
		o.Numbers = UUIDNumber
	}
	return o
}

// Service is the order ledger and status machine.
type Service struct {
	repo Repository
	opts Options
	now  func() time.Time
}

func NewService(repo Repository, opts Options) *Service {
	return &Service{repo: repo, opts: opts.withDefaults(), now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) GetOrder(ctx context.Context, id int64) (Order, error) {
	if id <= 0 {
		return Order{}, ErrOrderNotFound
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	return s.opts.finish(o), nil
}

func (s *Service) ListOrdersByUser(ctx context.Context, chatID int64) ([]Order, error) {
	orders, err := s.repo.ListByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.opts.finishAll(orders), nil
}

func (s *Service) ListAllOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.opts.finishAll(orders), nil
}

// SetStatus moves order id to the named status. An unknown name or a
// rejected transition leaves the order untouched.
func (s *Service) SetStatus(ctx context.Context, id int64, raw string) (Order, error) {
	to, err := ParseStatus(raw)
	if err != nil {
		return Order{}, err
	}
	check := func(from Status) error { return s.opts.Transitions.Check(from, to) }

	o, changed, err := s.repo.UpdateStatus(ctx, id, to, check, s.now())
	if err != nil {
		return Order{}, err
	}
	if changed {
		s.opts.Metrics.StatusChanged(string(to))
	}
	return s.opts.finish(o), nil
}

func (o Options) finish(ord Order) Order {
	if ord.Products == nil {
		ord.Products = []OrderedProduct{}
	}
	ord.TotalAmount = o.Total(ord.Products)
	ord.StatusLabel = ord.Status.Label()
	return ord
}

func (o Options) finishAll(orders []Order) []Order {
	for i := range orders {
		orders[i] = o.finish(orders[i])
	}
	return orders
}
