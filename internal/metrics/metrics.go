package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "petshop"

// Cart counts cart store mutations by operation, mode and outcome.
type Cart struct {
	ops *prometheus.CounterVec
}

// NewCart registers cart collectors on reg. A nil registerer yields a no-op recorder.
func NewCart(reg prometheus.Registerer) *Cart {
	if reg == nil {
		return &Cart{}
	}
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Cart store mutations partitioned by operation, cart mode and result.",
	}, []string{"op", "mode", "result"})
	reg.MustRegister(ops)
	return &Cart{ops: ops}
}

// Observe records one cart operation.
func (c *Cart) Observe(op, mode string, err error) {
	if c == nil || c.ops == nil {
		return
	}
	c.ops.WithLabelValues(normalizeLabel(op), normalizeLabel(mode), result(err)).Inc()
}

// Checkout tracks order placement outcomes.
type Checkout struct {
	placed    prometheus.Counter
	failures  *prometheus.CounterVec
	amount    prometheus.Histogram
	uncleared prometheus.Counter
}

// NewCheckout registers checkout collectors on reg.
func NewCheckout(reg prometheus.Registerer) *Checkout {
	if reg == nil {
		return &Checkout{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Orders whose placement sequence completed.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_placement_failures_total",
		Help:      "Order placements aborted, by failing step.",
	}, []string{"step"})
	amount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_total_amount",
		Help:      "Grand total of placed orders.",
		Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000},
	})
	uncleared := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_cart_not_cleared_total",
		Help:      "Placed orders whose cart could not be cleared afterwards.",
	})
	reg.MustRegister(placed, failures, amount, uncleared)
	return &Checkout{placed: placed, failures: failures, amount: amount, uncleared: uncleared}
}

// ObservePlaced records a completed placement.
func (c *Checkout) ObservePlaced(total float64, cartCleared bool) {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.Inc()
	c.amount.Observe(total)
	if !cartCleared {
		c.uncleared.Inc()
	}
}

// ObserveFailure records an aborted placement.
func (c *Checkout) ObserveFailure(step string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(step)).Inc()
}

// Reconciler counts repairs applied to incomplete orders.
type Reconciler struct {
	repairs *prometheus.CounterVec
}

// NewReconciler registers reconciler collectors on reg.
func NewReconciler(reg prometheus.Registerer) *Reconciler {
	if reg == nil {
		return &Reconciler{}
	}
	repairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_repairs_total",
		Help:      "Incomplete orders handled by the reconciler, by action and result.",
	}, []string{"action", "result"})
	reg.MustRegister(repairs)
	return &Reconciler{repairs: repairs}
}

// ObserveRepair records one repair attempt.
func (r *Reconciler) ObserveRepair(action string, err error) {
	if r == nil || r.repairs == nil {
		return
	}
	r.repairs.WithLabelValues(normalizeLabel(action), result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
