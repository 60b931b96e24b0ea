package order

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/wichananm65/chat-shop-backend/internal/user"
)

// UserLookup resolves the user placing an order.
type UserLookup interface {
	GetByChatID(ctx context.Context, chatID int64) (user.User, error)
	GetOrCreate(ctx context.Context, chatID int64) (user.User, error)
}

// Converter turns a user's cart into an order.
type Converter struct {
	repo  Repository
	users UserLookup
	opts  Options
	now   func() time.Time
}

func NewConverter(repo Repository, users UserLookup, opts Options) *Converter {
	return &Converter{repo: repo, users: users, opts: opts.withDefaults(), now: func() time.Time { return time.Now().UTC() }}
}

// Convert creates a NEW order holding every distinct product of the cart and
// empties the cart, as one atomic step. On any error the cart is unchanged
// and no order exists.
func (c *Converter) Convert(ctx context.Context, chatID int64) (Order, error) {
	if err := c.resolveUser(ctx, chatID); err != nil {
		c.failed(err)
		return Order{}, err
	}

	o, err := c.repo.CreateFromCart(ctx, chatID, c.opts.Numbers, c.now())
	if err != nil {
		c.failed(err)
		return Order{}, err
	}
	c.opts.Metrics.OrderCreated()
	log.Printf("[order] created order %s (id=%d) for chat %d", o.Number, o.ID, chatID)
	return c.opts.finish(o), nil
}

func (c *Converter) resolveUser(ctx context.Context, chatID int64) error {
	if c.opts.AutoRegisterUsers {
		_, err := c.users.GetOrCreate(ctx, chatID)
		return err
	}
	_, err := c.users.GetByChatID(ctx, chatID)
	return err
}

func (c *Converter) failed(err error) {
	reason := "storage"
	switch {
	case errors.Is(err, ErrEmptyCart):
		reason = "empty_cart"
	case errors.Is(err, ErrProductNotFound):
		reason = "product_not_found"
	case errors.Is(err, user.ErrNotFound), errors.Is(err, user.ErrInvalidChatID):
		reason = "user"
	case errors.Is(err, ErrNumberExhausted):
		reason = "number_exhausted"
	}
	c.opts.Metrics.ConversionFailed(reason)
}
