package order

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
	"github.com/wichananm65/chat-shop-backend/internal/outbox"
)

// maxNumberAttempts bounds order number generation on collisions.
const maxNumberAttempts = 5

var (
	ErrOrderNotFound   = fmt.Errorf("%w: order not found", apperr.ErrNotFound)
	ErrEmptyCart       = fmt.Errorf("%w: cart is empty", apperr.ErrConflict)
	ErrProductNotFound = fmt.Errorf("%w: product in cart no longer exists", apperr.ErrNotFound)
	ErrNumberExhausted = fmt.Errorf("%w: could not allocate a unique order number", apperr.ErrPersistence)
)

// Repository stores orders.
type Repository interface {
	// CreateFromCart turns the cart of chatID into a NEW order, atomically:
	// either the order exists and the cart is empty, or nothing changed.
	CreateFromCart(ctx context.Context, chatID int64, numbers NumberGenerator, now time.Time) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	ListByChatID(ctx context.Context, chatID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	// UpdateStatus sets the status of order id after check accepts its
	// current status. It reports whether the status actually changed.
	UpdateStatus(ctx context.Context, id int64, to Status, check func(from Status) error, now time.Time) (Order, bool, error)
}

// CreatedEvent builds the outbox event recorded with a new order.
func CreatedEvent(o Order, items []Item, now time.Time) (outbox.Event, error) {
	return outbox.NewEvent(strconv.FormatInt(o.ID, 10), outbox.TypeOrderCreated, createdEvent{
		OrderID: o.ID,
		Number:  o.Number,
		ChatID:  o.ChatID,
		Status:  o.Status,
		Items:   items,
	}, now)
}

// StatusChangedEvent builds the outbox event recorded with a status change.
func StatusChangedEvent(o Order, from Status, now time.Time) (outbox.Event, error) {
	return outbox.NewEvent(strconv.FormatInt(o.ID, 10), outbox.TypeOrderStatusChanged, statusChangedEvent{
		OrderID: o.ID,
		Number:  o.Number,
		ChatID:  o.ChatID,
		From:    from,
		To:      o.Status,
	}, now)
}
