package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the shop counters on a private prometheus registry.
// A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	CartItemsAdded     prometheus.Counter
	OrdersCreated      prometheus.Counter
	ConversionFailures *prometheus.CounterVec
	StatusChanges      *prometheus.CounterVec
	OutboxPublished    prometheus.Counter
	OutboxFailures     prometheus.Counter
	CatalogCacheHits   prometheus.Counter
	CatalogCacheMisses prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	added := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_cart_items_added_total"})
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_orders_created_total"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "shop_order_conversion_failures_total"}, []string{"reason"})
	statuses := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "shop_order_status_changes_total"}, []string{"status"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_outbox_published_total"})
	outboxFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_outbox_failures_total"})
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_catalog_cache_hits_total"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_catalog_cache_misses_total"})

	r.MustRegister(added, created, failures, statuses, published, outboxFailed, hits, misses)
	return &Registry{
		reg:                r,
		CartItemsAdded:     added,
		OrdersCreated:      created,
		ConversionFailures: failures,
		StatusChanges:      statuses,
		OutboxPublished:    published,
		OutboxFailures:     outboxFailed,
		CatalogCacheHits:   hits,
		CatalogCacheMisses: misses,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) CartItemAdded() {
	if r != nil {
		r.CartItemsAdded.Inc()
	}
}

func (r *Registry) OrderCreated() {
	if r != nil {
		r.OrdersCreated.Inc()
	}
}

func (r *Registry) ConversionFailed(reason string) {
	if r != nil {
		r.ConversionFailures.WithLabelValues(reason).Inc()
	}
}

func (r *Registry) StatusChanged(status string) {
	if r != nil {
		r.StatusChanges.WithLabelValues(status).Inc()
	}
}

func (r *Registry) Published(n int) {
	if r != nil {
		r.OutboxPublished.Add(float64(n))
	}
}

func (r *Registry) PublishFailed() {
	if r != nil {
		r.OutboxFailures.Inc()
	}
}

func (r *Registry) CacheHit() {
	if r != nil {
		r.CatalogCacheHits.Inc()
	}
}

func (r *Registry) CacheMiss() {
	if r != nil {
		r.CatalogCacheMisses.Inc()
	}
}
