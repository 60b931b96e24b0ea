package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegistryCounters(t *testing.T) {
	r := NewRegistry()
	r.CartItemAdded()
	r.CartItemAdded()
	r.OrderCreated()
	r.ConversionFailed("empty_cart")
	r.StatusChanged("SENT")
	r.Published(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.CartItemsAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.OrdersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ConversionFailures.WithLabelValues("empty_cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.StatusChanges.WithLabelValues("SENT")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.OutboxPublished))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.CartItemAdded()
		r.OrderCreated()
		r.ConversionFailed("x")
		r.StatusChanged("NEW")
		r.Published(1)
		r.PublishFailed()
		r.CacheHit()
		r.CacheMiss()
	})
}

func TestHandlerExposesCounters(t *testing.T) {
	r := NewRegistry()
	r.OrderCreated()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "shop_orders_created_total 1"))
}
