package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/chat-shop-backend/internal/cart"
	"github.com/wichananm65/chat-shop-backend/internal/infrastructure/database/inmemory"
	"github.com/wichananm65/chat-shop-backend/internal/metrics"
	"github.com/wichananm65/chat-shop-backend/internal/order"
	"github.com/wichananm65/chat-shop-backend/internal/product"
	"github.com/wichananm65/chat-shop-backend/internal/user"
	"golang.org/x/sync/errgroup"
)

type shop struct {
	carts     *cart.Service
	users     *user.Service
	catalog   *product.InMemoryRepository
	store     *inmemory.Store
	converter *order.Converter
	ledger    *order.Service
	metrics   *metrics.Registry
}

func newShop(t *testing.T, opts order.Options) shop {
	t.Helper()
	catalog := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "A", Price: 100},
		{ID: 2, Name: "B", Price: 50},
	})
	userRepo := user.NewInMemoryRepository(nil)
	users := user.NewService(userRepo)
	store := inmemory.NewStore(catalog, userRepo)
	m := metrics.NewRegistry()
	opts.Metrics = m
	return shop{
		carts:     cart.NewService(store, users, catalog, m),
		users:     users,
		catalog:   catalog,
		store:     store,
		converter: order.NewConverter(store, users, opts),
		ledger:    order.NewService(store, opts),
		metrics:   m,
	}
}

// fill builds the cart of user 42 from the worked example: A(100) x2, B(50) x1.
func (s shop) fill(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := s.carts.AddItem(ctx, 42, 1, 1)
	require.NoError(t, err)
	_, err = s.carts.AddItem(ctx, 42, 1, 1)
	require.NoError(t, err)
	_, err = s.carts.AddItem(ctx, 42, 2, 1)
	require.NoError(t, err)
}

func TestConvert_WorkedExampleDistinctTotal(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	s.fill(t)
	ctx := context.Background()

	view, err := s.carts.ViewCart(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(250), view.GrandTotal)

	o, err := s.converter.Convert(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, order.StatusNew, o.Status)
	assert.Equal(t, "НОВЫЙ", o.StatusLabel)
	assert.Regexp(t, `^[0-9A-F]{8}$`, o.Number)
	assert.Equal(t, int64(150), o.TotalAmount)
	require.Len(t, o.Products, 2)
	assert.Equal(t, int64(1), o.Products[0].ProductID)
	assert.Equal(t, 2, o.Products[0].Quantity)
	assert.Equal(t, int64(2), o.Products[1].ProductID)

	view, err = s.carts.ViewCart(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	orders, err := s.ledger.ListOrdersByUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.OrdersCreated))
}

func TestConvert_WeightedTotal(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true, Total: order.QuantityWeightedTotal})
	s.fill(t)

	o, err := s.converter.Convert(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(250), o.TotalAmount)
}

func TestConvert_TotalFollowsCurrentPrices(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	s.fill(t)
	ctx := context.Background()

	o, err := s.converter.Convert(ctx, 42)
	require.NoError(t, err)

	s.catalog.Put(product.Product{ID: 2, Name: "B", Price: 70})
	got, err := s.ledger.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(170), got.TotalAmount)
}

func TestConvert_EmptyCart(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	ctx := context.Background()

	_, err := s.converter.Convert(ctx, 42)
	assert.ErrorIs(t, err, order.ErrEmptyCart)

	all, err := s.ledger.ListAllOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ConversionFailures.WithLabelValues("empty_cart")))

	_, err = s.users.GetByChatID(ctx, 42)
	assert.NoError(t, err, "auto registration creates the user even when the cart is empty")
}

func TestConvert_UnknownUserWithoutAutoRegistration(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: false})

	_, err := s.converter.Convert(context.Background(), 42)
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ConversionFailures.WithLabelValues("user")))
}

func TestConvert_DeletedProductAbortsAndKeepsCart(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	s.fill(t)
	ctx := context.Background()
	require.NoError(t, s.catalog.Delete(2))

	_, err := s.converter.Convert(ctx, 42)
	assert.ErrorIs(t, err, order.ErrProductNotFound)

	view, err := s.carts.ViewCart(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
	all, err := s.ledger.ListAllOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConvert_ConcurrentDoubleSubmitCreatesOneOrder(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	s.fill(t)
	ctx := context.Background()

	const attempts = 8
	results := make([]error, attempts)
	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			_, err := s.converter.Convert(ctx, 42)
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, order.ErrEmptyCart):
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	orders, err := s.ledger.ListOrdersByUser(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestConvert_RecordsOutboxEvent(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	s.fill(t)

	_, err := s.converter.Convert(context.Background(), 42)
	require.NoError(t, err)

	events, err := s.store.FetchUnprocessed(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "order.created", events[0].Type)
}
