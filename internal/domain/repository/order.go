package repository

import (
	"context"
	"time"

	"github.com/polkiloo/petshop/internal/domain/model"
)

// OrderWriter covers the writes issued while placing or repairing an order.
type OrderWriter interface {
	CreateHeader(ctx context.Context, order model.Order) (*model.Order, error)
	AddItems(ctx context.Context, orderID string, items []model.OrderItem) error
	AppendTimeline(ctx context.Context, event model.OrderTimelineEvent) error
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
}

// OrderTransactor is implemented by stores able to group order writes atomically.
type OrderTransactor interface {
	InTransaction(ctx context.Context, fn func(OrderWriter) error) error
}

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	OrderWriter
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetForUser(ctx context.Context, userID int64, orderID string) (*model.Order, error)
	Items(ctx context.Context, orderID string) ([]model.OrderItem, error)
	Timeline(ctx context.Context, orderID string) ([]model.OrderTimelineEvent, error)
	ListIncomplete(ctx context.Context, createdBefore time.Time, limit int) ([]model.IncompleteOrder, error)
}
