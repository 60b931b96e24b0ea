package order_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/chat-shop-backend/internal/order"
)

func placeOrder(t *testing.T, s shop) order.Order {
	t.Helper()
	s.fill(t)
	o, err := s.converter.Convert(context.Background(), 42)
	require.NoError(t, err)
	return o
}

func TestSetStatus_InvalidLeavesOrderUnchanged(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	o := placeOrder(t, s)
	ctx := context.Background()

	_, err := s.ledger.SetStatus(ctx, o.ID, "DELIVERED")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	got, err := s.ledger.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusNew, got.Status)
	assert.Equal(t, o.UpdatedAt, got.UpdatedAt)
}

func TestSetStatus_Permissive(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	o := placeOrder(t, s)
	ctx := context.Background()

	sent, err := s.ledger.SetStatus(ctx, o.ID, "sent")
	require.NoError(t, err)
	assert.Equal(t, order.StatusSent, sent.Status)
	assert.Equal(t, "ОТПРАВЛЕН", sent.StatusLabel)

	back, err := s.ledger.SetStatus(ctx, o.ID, "NEW")
	require.NoError(t, err)
	assert.Equal(t, order.StatusNew, back.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.StatusChanges.WithLabelValues("SENT")))
}

func TestSetStatus_ForwardOnly(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true, Transitions: order.ForwardOnlyTransitions()})
	o := placeOrder(t, s)
	ctx := context.Background()

	_, err := s.ledger.SetStatus(ctx, o.ID, "IN_PROGRESS")
	require.NoError(t, err)
	_, err = s.ledger.SetStatus(ctx, o.ID, "IN_PROGRESS")
	require.NoError(t, err, "same status is a no-op")

	_, err = s.ledger.SetStatus(ctx, o.ID, "NEW")
	assert.ErrorIs(t, err, order.ErrIllegalTransition)

	got, err := s.ledger.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusInProgress, got.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.StatusChanges.WithLabelValues("IN_PROGRESS")))
}

func TestSetStatus_UnknownOrder(t *testing.T) {
	s := newShop(t, order.Options{})
	_, err := s.ledger.SetStatus(context.Background(), 404, "SENT")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestLedgerQueries(t *testing.T) {
	s := newShop(t, order.Options{AutoRegisterUsers: true})
	ctx := context.Background()
	first := placeOrder(t, s)
	second := placeOrder(t, s)

	_, err := s.carts.AddItem(ctx, 77, 2, 1)
	require.NoError(t, err)
	other, err := s.converter.Convert(ctx, 77)
	require.NoError(t, err)

	mine, err := s.ledger.ListOrdersByUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.ID, mine[0].ID)
	assert.Equal(t, second.ID, mine[1].ID)
	assert.NotEqual(t, first.Number, second.Number)

	all, err := s.ledger.ListAllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, other.ID, all[2].ID)
	assert.Equal(t, int64(50), all[2].TotalAmount)

	none, err := s.ledger.ListOrdersByUser(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.ledger.GetOrder(ctx, 0)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
