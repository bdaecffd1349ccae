package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/metrics"
)

// OrderFacade exposes the subset of application functionality required by the worker.
type OrderFacade interface {
	IncompleteOrders(ctx context.Context, createdBefore time.Time, limit int) ([]model.IncompleteOrder, error)
	RepairOrder(ctx context.Context, order model.IncompleteOrder) (string, error)
}

// OrderReconciler periodically looks for orders whose placement stopped
// half way and repairs them on a pool of workers.
type OrderReconciler struct {
	facade    OrderFacade
	interval  time.Duration
	grace     time.Duration
	batchSize int
	workers   int
	metrics   *metrics.Reconciler
	logger    *slog.Logger
	clock     func() time.Time

	jobs   chan model.IncompleteOrder
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// ReconcilerOption customizes an OrderReconciler.
type ReconcilerOption func(*OrderReconciler)

// WithReconcilerMetrics sets the repair recorder.
func WithReconcilerMetrics(m *metrics.Reconciler) ReconcilerOption {
	return func(r *OrderReconciler) { r.metrics = m }
}

// WithReconcilerClock overrides the time source used for the grace cutoff.
func WithReconcilerClock(clock func() time.Time) ReconcilerOption {
	return func(r *OrderReconciler) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewOrderReconciler constructs the reconciler worker pool. Orders younger
// than grace are left alone since their placement may still be running.
func NewOrderReconciler(facade OrderFacade, interval, grace time.Duration, batchSize, workers int, logger *slog.Logger, opts ...ReconcilerOption) *OrderReconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if grace < 0 {
		grace = 0
	}
	r := &OrderReconciler{
		facade:    facade,
		interval:  interval,
		grace:     grace,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		clock:     time.Now,
		jobs:      make(chan model.IncompleteOrder, batchSize*workers),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches background processing.
func (r *OrderReconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *OrderReconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *OrderReconciler) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *OrderReconciler) fetchAndDispatch(ctx context.Context) {
	cutoff := r.clock().Add(-r.grace)
	orders, err := r.facade.IncompleteOrders(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("fetch incomplete orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- order:
		}
	}
}

func (r *OrderReconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handleOrder(ctx, order)
		}
	}
}

func (r *OrderReconciler) handleOrder(ctx context.Context, order model.IncompleteOrder) {
	action, err := r.facade.RepairOrder(ctx, order)
	r.metrics.ObserveRepair(action, err)
	if err != nil {
		r.logger.Error("repair order failed",
			slog.String("order", order.Order.ID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return
	}
	r.logger.Info("order repaired",
		slog.String("order", order.Order.ID),
		slog.String("action", action),
		slog.Int("items", order.ItemCount),
	)
}
