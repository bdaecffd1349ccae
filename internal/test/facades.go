package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/petshop/internal/domain/model"
)

// RepairCall stores information about RepairOrder invocations.
type RepairCall struct {
	OrderID   string
	ItemCount int
}

// ReconcileFacadeStub mimics reconciler interactions with the storefront facade.
type ReconcileFacadeStub struct {
	Batches      [][]model.IncompleteOrder
	IncompleteFn func(context.Context, time.Time, int) ([]model.IncompleteOrder, error)
	RepairFn     func(context.Context, model.IncompleteOrder) (string, error)
	Repairs      []RepairCall
	Cutoffs      []time.Time
	mu           sync.Mutex
	callCount    int32
}

// Lock exposes internal mutex for external synchronization.
func (s *ReconcileFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *ReconcileFacadeStub) Unlock() { s.mu.Unlock() }

// IncompleteOrders returns batches from the configured queue.
func (s *ReconcileFacadeStub) IncompleteOrders(ctx context.Context, createdBefore time.Time, limit int) ([]model.IncompleteOrder, error) {
	s.mu.Lock()
	s.Cutoffs = append(s.Cutoffs, createdBefore)
	s.mu.Unlock()
	if s.IncompleteFn != nil {
		return s.IncompleteFn(ctx, createdBefore, limit)
	}
	call := atomic.AddInt32(&s.callCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// RepairOrder records repair requests.
func (s *ReconcileFacadeStub) RepairOrder(ctx context.Context, order model.IncompleteOrder) (string, error) {
	s.mu.Lock()
	s.Repairs = append(s.Repairs, RepairCall{OrderID: order.Order.ID, ItemCount: order.ItemCount})
	s.mu.Unlock()
	if s.RepairFn != nil {
		return s.RepairFn(ctx, order)
	}
	if order.ItemCount == 0 {
		return "cancel", nil
	}
	return "timeline", nil
}

// RepairCount reports how many repairs were requested.
func (s *ReconcileFacadeStub) RepairCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Repairs)
}
