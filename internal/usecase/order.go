package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/domain/repository"
)

// Repair actions reported by OrderUseCase.Repair.
const (
	RepairCancelled     = "cancel"
	RepairTimelineAdded = "timeline"
)

const (
	repairCancelMessage   = "Order could not be completed and was cancelled."
	repairTimelineMessage = "Your order has been placed successfully and is awaiting processing."
)

// OrderUseCase serves order history and repairs partially written orders.
type OrderUseCase struct {
	orders        repository.OrderRepository
	addresses     repository.AddressRepository
	notifications repository.NotificationRepository
	logger        *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	addresses repository.AddressRepository,
	notifications repository.NotificationRepository,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{orders: orders, addresses: addresses, notifications: notifications, logger: logger}
}

// ListByUser returns orders of a user, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// Detail returns an order of userID with its items, timeline and address.
// Orders of other users are reported as not found.
func (u *OrderUseCase) Detail(ctx context.Context, userID int64, orderID string) (*model.OrderDetail, error) {
	order, err := u.orders.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	items, err := u.orders.Items(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	timeline, err := u.orders.Timeline(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load order timeline: %w", err)
	}

	detail := &model.OrderDetail{Order: *order, Items: items, Timeline: timeline}
	if order.AddressID != 0 && u.addresses != nil {
		address, err := u.addresses.GetForUser(ctx, userID, order.AddressID)
		switch {
		case err == nil:
			detail.Address = address
		case errors.Is(err, domainErrors.ErrNotFound):
		default:
			return nil, fmt.Errorf("load order address: %w", err)
		}
	}
	return detail, nil
}

// Incomplete returns processing orders older than createdBefore that lack
// items or a timeline entry.
func (u *OrderUseCase) Incomplete(ctx context.Context, createdBefore time.Time, limit int) ([]model.IncompleteOrder, error) {
	return u.orders.ListIncomplete(ctx, createdBefore, limit)
}

// Repair finishes or cancels a partially written order. An order without
// items is cancelled; an order with items but no timeline gets its
// initial event. It returns the action taken.
func (u *OrderUseCase) Repair(ctx context.Context, incomplete model.IncompleteOrder) (string, error) {
	order := incomplete.Order
	if incomplete.ItemCount == 0 {
		err := u.write(ctx, func(w repository.OrderWriter) error {
			if err := w.UpdateStatus(ctx, order.ID, model.OrderStatusCancelled); err != nil {
				return err
			}
			return w.AppendTimeline(ctx, model.OrderTimelineEvent{
				OrderID:   order.ID,
				Status:    model.OrderStatusCancelled,
				Message:   repairCancelMessage,
				Timestamp: time.Now(),
			})
		})
		if err != nil {
			return RepairCancelled, fmt.Errorf("cancel order %s: %w", order.ID, err)
		}
		u.notifyCancelled(ctx, order)
		return RepairCancelled, nil
	}

	if incomplete.HasTimeline {
		return "", nil
	}
	err := u.orders.AppendTimeline(ctx, model.OrderTimelineEvent{
		OrderID:   order.ID,
		Status:    model.OrderStatusPlaced,
		Message:   repairTimelineMessage,
		Timestamp: order.CreatedAt,
	})
	if err != nil {
		return RepairTimelineAdded, fmt.Errorf("append timeline for %s: %w", order.ID, err)
	}
	return RepairTimelineAdded, nil
}

func (u *OrderUseCase) write(ctx context.Context, fn func(repository.OrderWriter) error) error {
	if tx, ok := u.orders.(repository.OrderTransactor); ok {
		return tx.InTransaction(ctx, fn)
	}
	return fn(u.orders)
}

func (u *OrderUseCase) notifyCancelled(ctx context.Context, order model.Order) {
	if u.notifications == nil {
		return
	}
	_, err := u.notifications.Create(ctx, model.Notification{
		UserID:  order.UserID,
		Title:   "Order Cancelled",
		Message: fmt.Sprintf("Your order #%s could not be completed and was cancelled.", order.ID),
		Type:    model.NotificationTypeAlert,
	})
	if err != nil {
		u.logger.Warn("notify cancelled order failed", slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}
}
