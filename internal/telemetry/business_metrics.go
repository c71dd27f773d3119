package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for storefront funnels.
type BusinessMetrics struct {
	// Catalog
	CatalogViews      *prometheus.CounterVec
	CatalogLoadFailed prometheus.Counter

	// Cart
	ProductAddToCart *prometheus.CounterVec
	CartUpdated      *prometheus.CounterVec

	// Checkout funnel
	CheckoutStarted *prometheus.CounterVec
	OrdersCreated   prometheus.Counter
	OrdersFailed    *prometheus.CounterVec
	OrderValue      prometheus.Histogram
	OrderItemCount  prometheus.Histogram

	// Auth & accounts
	Signups         prometheus.Counter
	Logins          *prometheus.CounterVec
	LoginFailed     *prometheus.CounterVec
	Logouts         prometheus.Counter
	SessionsExpired prometheus.Counter
	ProfileSaves    *prometheus.CounterVec

	// Marketplace API performance
	BackendLatency *prometheus.HistogramVec
}

// NewBusinessMetrics creates the business metrics and registers them with reg.
// A nil reg uses the default Prometheus registry.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "artesania"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	subsystem := "business"

	m := &BusinessMetrics{
		// =======================================================================
		// Catalog
		// =======================================================================
		CatalogViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catalog_views_total",
				Help:      "Total catalog result renders",
			},
			[]string{"filter_type"}, // filter_type: category, search, both, none
		),
		CatalogLoadFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catalog_load_failed_total",
				Help:      "Total catalog loads that failed",
			},
		),

		// =======================================================================
		// Cart
		// =======================================================================
		ProductAddToCart: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "product_add_to_cart_total",
				Help:      "Total add to cart actions",
			},
			[]string{"product_id"},
		),
		CartUpdated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_updated_total",
				Help:      "Total cart update operations",
			},
			[]string{"action"}, // action: add, update_quantity, remove
		),

		// =======================================================================
		// Checkout Funnel
		// =======================================================================
		CheckoutStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_started_total",
				Help:      "Total checkout page loads",
			},
			[]string{"signed_in"},
		),
		OrdersCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created through the marketplace API",
			},
		),
		OrdersFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_failed_total",
				Help:      "Total order creation failures",
			},
			[]string{"reason"}, // reason: domain error code
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Cart total at order creation, in store currency",
				Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
		),
		OrderItemCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Number of units per order",
				Buckets:   []float64{1, 2, 3, 5, 10, 15, 20},
			},
		),

		// =======================================================================
		// Auth & Accounts
		// =======================================================================
		Signups: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "signups_total",
				Help:      "Total successful sign-ups",
			},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "logins_total",
				Help:      "Total successful logins",
			},
			[]string{"user_type"}, // user_type: customer, admin
		),
		LoginFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "login_failed_total",
				Help:      "Total failed login attempts",
			},
			[]string{"user_type", "reason"},
		),
		Logouts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "logouts_total",
				Help:      "Total logouts",
			},
		),
		SessionsExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sessions_expired_total",
				Help:      "Sessions signed out because the token expired",
			},
		),
		ProfileSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "profile_saves_total",
				Help:      "Profile edits saved",
			},
			[]string{"outcome"}, // outcome: saved, invalid, persist_failed
		),

		// =======================================================================
		// Marketplace API Performance
		// =======================================================================
		BackendLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "backend_request_duration_seconds",
				Help:      "Marketplace API call duration",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "outcome"},
		),
	}

	return m
}

// The recording helpers below are safe on a nil *BusinessMetrics so
// handlers and tests can run without metrics.

func (m *BusinessMetrics) CatalogViewed(filterType string) {
	if m == nil {
		return
	}
	m.CatalogViews.WithLabelValues(filterType).Inc()
}

func (m *BusinessMetrics) CatalogFailed() {
	if m == nil {
		return
	}
	m.CatalogLoadFailed.Inc()
}

func (m *BusinessMetrics) AddedToCart(productID string) {
	if m == nil {
		return
	}
	m.ProductAddToCart.WithLabelValues(productID).Inc()
	m.CartUpdated.WithLabelValues("add").Inc()
}

func (m *BusinessMetrics) CartChanged(action string) {
	if m == nil {
		return
	}
	m.CartUpdated.WithLabelValues(action).Inc()
}

func (m *BusinessMetrics) CheckoutViewed(signedIn bool) {
	if m == nil {
		return
	}
	m.CheckoutStarted.WithLabelValues(strconv.FormatBool(signedIn)).Inc()
}

// OrderCreated records a created order with its cart total and unit count.
func (m *BusinessMetrics) OrderCreated(total float64, units int) {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
	m.OrderValue.Observe(total)
	m.OrderItemCount.Observe(float64(units))
}

func (m *BusinessMetrics) OrderFailed(reason string) {
	if m == nil {
		return
	}
	m.OrdersFailed.WithLabelValues(reason).Inc()
}

func (m *BusinessMetrics) SignedUp() {
	if m == nil {
		return
	}
	m.Signups.Inc()
}

func (m *BusinessMetrics) LoggedIn(userType string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(userType).Inc()
}

func (m *BusinessMetrics) LoginRejected(userType, reason string) {
	if m == nil {
		return
	}
	m.LoginFailed.WithLabelValues(userType, reason).Inc()
}

func (m *BusinessMetrics) LoggedOut() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}

func (m *BusinessMetrics) SessionExpired() {
	if m == nil {
		return
	}
	m.SessionsExpired.Inc()
}

func (m *BusinessMetrics) ProfileSaved(outcome string) {
	if m == nil {
		return
	}
	m.ProfileSaves.WithLabelValues(outcome).Inc()
}
