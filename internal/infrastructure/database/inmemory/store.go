// Package inmemory provides a process-local store for carts, orders and the
// order outbox, used for local runs and tests. One mutex guards all three so
// conversion is atomic with respect to cart changes.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/chat-shop-backend/internal/cart"
	"github.com/wichananm65/chat-shop-backend/internal/order"
	"github.com/wichananm65/chat-shop-backend/internal/outbox"
	"github.com/wichananm65/chat-shop-backend/internal/product"
	"github.com/wichananm65/chat-shop-backend/internal/user"
)

// UserDirectory looks users up by chat id.
type UserDirectory interface {
	GetByChatID(ctx context.Context, chatID int64) (user.User, error)
}

type orderRecord struct {
	id        int64
	userID    int64
	chatID    int64
	number    string
	status    order.Status
	items     []order.Item
	createdAt time.Time
	updatedAt time.Time
}

type Store struct {
	mu      sync.Mutex
	catalog product.Catalog
	users   UserDirectory

	lines      map[int64]cart.Line
	nextLineID int64

	orders      map[int64]*orderRecord
	numbers     map[string]struct{}
	nextOrderID int64

	events      []outbox.Event
	processed   map[int64]time.Time
	nextEventID int64
}

var (
	_ cart.Repository   = (*Store)(nil)
	_ order.Repository  = (*Store)(nil)
	_ outbox.Repository = (*Store)(nil)
)

func NewStore(catalog product.Catalog, users UserDirectory) *Store {
	return &Store{
		catalog:     catalog,
		users:       users,
		lines:       make(map[int64]cart.Line),
		nextLineID:  1,
		orders:      make(map[int64]*orderRecord),
		numbers:     make(map[string]struct{}),
		nextOrderID: 1,
		processed:   make(map[int64]time.Time),
		nextEventID: 1,
	}
}

func (s *Store) GetLine(ctx context.Context, chatID, lineID int64) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[lineID]
	if !ok || l.ChatID != chatID {
		return cart.Line{}, cart.ErrItemNotFound
	}
	return l, nil
}

func (s *Store) AddItem(ctx context.Context, chatID, productID int64, qty int, unitPrice int64) (cart.Line, error) {
	if _, err := s.users.GetByChatID(ctx, chatID); err != nil {
		return cart.Line{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, l := range s.lines {
		if l.ChatID == chatID && l.ProductID == productID {
			merged := int64(l.Quantity) + int64(qty)
			total, err := cart.LineTotal(merged, unitPrice)
			if err != nil {
				return cart.Line{}, err
			}
			l.Quantity = int(merged)
			l.TotalPrice = total
			s.lines[id] = l
			return l, nil
		}
	}

	total, err := cart.LineTotal(int64(qty), unitPrice)
	if err != nil {
		return cart.Line{}, err
	}
	l := cart.Line{
		ID:         s.nextLineID,
		ChatID:     chatID,
		ProductID:  productID,
		Quantity:   qty,
		TotalPrice: total,
	}
	s.nextLineID++
	s.lines[l.ID] = l
	return l, nil
}

func (s *Store) SetQuantity(ctx context.Context, chatID, lineID int64, qty int, unitPrice int64) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[lineID]
	if !ok || l.ChatID != chatID {
		return cart.Line{}, cart.ErrItemNotFound
	}
	total, err := cart.LineTotal(int64(qty), unitPrice)
	if err != nil {
		return cart.Line{}, err
	}
	l.Quantity = qty
	l.TotalPrice = total
	s.lines[lineID] = l
	return l, nil
}

func (s *Store) RemoveItem(ctx context.Context, chatID, lineID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[lineID]
	if !ok || l.ChatID != chatID {
		return cart.ErrItemNotFound
	}
	delete(s.lines, lineID)
	return nil
}

func (s *Store) ListLines(ctx context.Context, chatID int64) ([]cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.linesOf(chatID), nil
}

func (s *Store) Clear(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLines(chatID)
	return nil
}

func (s *Store) linesOf(chatID int64) []cart.Line {
	out := make([]cart.Line, 0)
	for _, l := range s.lines {
		if l.ChatID == chatID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) clearLines(chatID int64) {
	for id, l := range s.lines {
		if l.ChatID == chatID {
			delete(s.lines, id)
		}
	}
}

func (s *Store) CreateFromCart(ctx context.Context, chatID int64, numbers order.NumberGenerator, now time.Time) (order.Order, error) {
	u, err := s.users.GetByChatID(ctx, chatID)
	if err != nil {
		return order.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.linesOf(chatID)
	if len(lines) == 0 {
		return order.Order{}, order.ErrEmptyCart
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	known, err := s.productsByID(ctx, ids)
	if err != nil {
		return order.Order{}, err
	}

	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		if _, ok := known[l.ProductID]; !ok {
			return order.Order{}, fmt.Errorf("%w: product %d", order.ErrProductNotFound, l.ProductID)
		}
		items = append(items, order.Item{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	number, err := s.allocateNumber(numbers)
	if err != nil {
		return order.Order{}, err
	}

	rec := &orderRecord{
		id:        s.nextOrderID,
		userID:    u.ID,
		chatID:    chatID,
		number:    number,
		status:    order.StatusNew,
		items:     items,
		createdAt: now,
		updatedAt: now,
	}
	o := s.view(rec, known)
	event, err := order.CreatedEvent(o, items, now)
	if err != nil {
		return order.Order{}, err
	}

	s.nextOrderID++
	s.orders[rec.id] = rec
	s.numbers[number] = struct{}{}
	s.appendEvent(event)
	s.clearLines(chatID)
	return o, nil
}

func (s *Store) allocateNumber(numbers order.NumberGenerator) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		n := numbers()
		if _, taken := s.numbers[n]; !taken {
			return n, nil
		}
	}
	return "", order.ErrNumberExhausted
}

func (s *Store) Get(ctx context.Context, id int64) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	return s.load(ctx, rec)
}

func (s *Store) ListByChatID(ctx context.Context, chatID int64) ([]order.Order, error) {
	return s.list(ctx, func(rec *orderRecord) bool { return rec.chatID == chatID })
}

func (s *Store) ListAll(ctx context.Context) ([]order.Order, error) {
	return s.list(ctx, func(*orderRecord) bool { return true })
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, to order.Status, check func(from order.Status) error, now time.Time) (order.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[id]
	if !ok {
		return order.Order{}, false, order.ErrOrderNotFound
	}
	from := rec.status
	if err := check(from); err != nil {
		return order.Order{}, false, err
	}
	if from == to {
		o, err := s.load(ctx, rec)
		return o, false, err
	}

	next := *rec
	next.status = to
	next.updatedAt = now
	o, err := s.load(ctx, &next)
	if err != nil {
		return order.Order{}, false, err
	}
	event, err := order.StatusChangedEvent(o, from, now)
	if err != nil {
		return order.Order{}, false, err
	}
	*rec = next
	s.appendEvent(event)
	return o, true, nil
}

func (s *Store) list(ctx context.Context, keep func(*orderRecord) bool) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]*orderRecord, 0)
	for _, rec := range s.orders {
		if keep(rec) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].id < recs[j].id })

	out := make([]order.Order, 0, len(recs))
	for _, rec := range recs {
		o, err := s.load(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Store) load(ctx context.Context, rec *orderRecord) (order.Order, error) {
	ids := make([]int64, 0, len(rec.items))
	for _, it := range rec.items {
		ids = append(ids, it.ProductID)
	}
	known, err := s.productsByID(ctx, ids)
	if err != nil {
		return order.Order{}, err
	}
	return s.view(rec, known), nil
}

// view joins rec with the current catalog. Products that left the catalog
// drop out of the order, as they do in Postgres.
func (s *Store) view(rec *orderRecord, known map[int64]product.Product) order.Order {
	o := order.Order{
		ID:        rec.id,
		UserID:    rec.userID,
		ChatID:    rec.chatID,
		Number:    rec.number,
		Status:    rec.status,
		Products:  make([]order.OrderedProduct, 0, len(rec.items)),
		CreatedAt: rec.createdAt,
		UpdatedAt: rec.updatedAt,
	}
	for _, it := range rec.items {
		p, ok := known[it.ProductID]
		if !ok {
			continue
		}
		o.Products = append(o.Products, order.OrderedProduct{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
		})
	}
	sort.Slice(o.Products, func(i, j int) bool { return o.Products[i].ProductID < o.Products[j].ProductID })
	return o
}

func (s *Store) productsByID(ctx context.Context, ids []int64) (map[int64]product.Product, error) {
	products, err := s.catalog.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]product.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *Store) appendEvent(e outbox.Event) {
	e.ID = s.nextEventID
	s.nextEventID++
	s.events = append(s.events, e)
}

func (s *Store) FetchUnprocessed(ctx context.Context, limit int) ([]outbox.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]outbox.Event, 0)
	for _, e := range s.events {
		if len(out) == limit {
			break
		}
		if _, done := s.processed[e.ID]; !done {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id <= 0 || id >= s.nextEventID {
		return errors.New("unknown outbox event")
	}
	s.processed[id] = at
	return nil
}
