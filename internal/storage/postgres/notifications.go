package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
)

type notificationRepository struct {
	storage *Storage
}

func (r *notificationRepository) Create(ctx context.Context, n model.Notification) (*model.Notification, error) {
	const query = `INSERT INTO notifications (user_id, title, message, type) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err := r.storage.pool.QueryRow(ctx, query, n.UserID, n.Title, n.Message, n.Type).Scan(&n.ID, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64) ([]model.Notification, error) {
	const query = `SELECT id, user_id, title, message, type, is_read, created_at
                   FROM notifications WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row scanner, n *model.Notification) error {
		return row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt)
	})
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND NOT is_read`
	var count int
	if err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND user_id=$2`
	tag, err := r.storage.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND NOT is_read`
	_, err := r.storage.pool.Exec(ctx, query, userID)
	return err
}

func (r *notificationRepository) DeleteAll(ctx context.Context, userID int64) error {
	const query = `DELETE FROM notifications WHERE user_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, userID)
	return err
}
