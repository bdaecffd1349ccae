package usecase

import (
	"context"
	"log/slog"

	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/domain/repository"
)

// NotificationUseCase exposes a user's in-app notifications.
type NotificationUseCase struct {
	notifications repository.NotificationRepository
	logger        *slog.Logger
}

// NewNotificationUseCase constructs NotificationUseCase.
func NewNotificationUseCase(notifications repository.NotificationRepository, logger *slog.Logger) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications, logger: logger}
}

// List returns notifications of userID, newest first.
func (u *NotificationUseCase) List(ctx context.Context, userID int64) ([]model.Notification, error) {
	return u.notifications.ListByUser(ctx, userID)
}

// UnreadCount returns the number of unread notifications. Lookup failures
// are logged and reported as zero.
func (u *NotificationUseCase) UnreadCount(ctx context.Context, userID int64) int {
	count, err := u.notifications.CountUnread(ctx, userID)
	if err != nil {
		u.logger.Warn("count unread notifications failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return 0
	}
	return count
}

// MarkRead flags one notification of userID as read.
func (u *NotificationUseCase) MarkRead(ctx context.Context, userID, id int64) error {
	return u.notifications.MarkRead(ctx, userID, id)
}

// MarkAllRead flags every notification of userID as read.
func (u *NotificationUseCase) MarkAllRead(ctx context.Context, userID int64) error {
	return u.notifications.MarkAllRead(ctx, userID)
}

// Clear deletes every notification of userID.
func (u *NotificationUseCase) Clear(ctx context.Context, userID int64) error {
	return u.notifications.DeleteAll(ctx, userID)
}
