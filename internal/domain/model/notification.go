package model

import "time"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationTypeOrder NotificationType = "order"
	NotificationTypeInfo  NotificationType = "info"
	NotificationTypeAlert NotificationType = "alert"
)

// Notification is an in-app message addressed to a user.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	CreatedAt time.Time
}
