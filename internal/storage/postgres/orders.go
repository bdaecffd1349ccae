package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/domain/repository"
)

// orderWriter issues order writes through q, which is either the pool or
// an open transaction.
type orderWriter struct {
	q querier
}

type orderRepository struct {
	orderWriter
	storage *Storage
}

const orderColumns = `id, user_id, address_id, status, subtotal, shipping, tax, total, notes, created_at, updated_at`

func scanOrder(row scanner, o *model.Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Subtotal, &o.Shipping, &o.Tax, &o.Total, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
}

func (w orderWriter) CreateHeader(ctx context.Context, order model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (id, user_id, address_id, status, subtotal, shipping, tax, total, notes, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
                   RETURNING created_at, updated_at`
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	err := w.q.QueryRow(ctx, query, order.ID, order.UserID, order.AddressID, order.Status,
		order.Subtotal, order.Shipping, order.Tax, order.Total, order.Notes, order.CreatedAt).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &order, nil
}

// AddItems stores all items with a single statement.
func (w orderWriter) AddItems(ctx context.Context, orderID string, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	const columns = 6
	var sb strings.Builder
	sb.WriteString(`INSERT INTO order_items (order_id, product_id, product_name, image, price, quantity) VALUES `)
	args := make([]any, 0, len(items)*columns)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * columns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, orderID, item.ProductID, item.ProductName, item.Image, item.Price, item.Quantity)
	}
	_, err := w.q.Exec(ctx, sb.String(), args...)
	return err
}

func (w orderWriter) AppendTimeline(ctx context.Context, event model.OrderTimelineEvent) error {
	const query = `INSERT INTO order_timeline (order_id, status, message, timestamp) VALUES ($1, $2, $3, $4)`
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := w.q.Exec(ctx, query, event.OrderID, event.Status, event.Message, event.Timestamp)
	return err
}

func (w orderWriter) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`
	tag, err := w.q.Exec(ctx, query, status, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// InTransaction runs fn with a writer bound to a single transaction.
func (r *orderRepository) InTransaction(ctx context.Context, fn func(repository.OrderWriter) error) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return fn(orderWriter{q: tx})
	})
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrder)
}

func (r *orderRepository) GetForUser(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	var o model.Order
	row := r.storage.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND user_id=$2`, orderID, userID)
	if err := scanOrder(row, &o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *orderRepository) Items(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	const query = `SELECT id, order_id, product_id, product_name, image, price, quantity
                   FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row scanner, i *model.OrderItem) error {
		return row.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.Image, &i.Price, &i.Quantity)
	})
}

func (r *orderRepository) Timeline(ctx context.Context, orderID string) ([]model.OrderTimelineEvent, error) {
	const query = `SELECT id, order_id, status, message, timestamp
                   FROM order_timeline WHERE order_id=$1 ORDER BY timestamp, id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row scanner, e *model.OrderTimelineEvent) error {
		return row.Scan(&e.ID, &e.OrderID, &e.Status, &e.Message, &e.Timestamp)
	})
}

func (r *orderRepository) ListIncomplete(ctx context.Context, createdBefore time.Time, limit int) ([]model.IncompleteOrder, error) {
	const query = `SELECT ` + orderColumns + `, item_count, has_timeline FROM (
                       SELECT o.*,
                              (SELECT COUNT(*) FROM order_items i WHERE i.order_id = o.id) AS item_count,
                              EXISTS (SELECT 1 FROM order_timeline e WHERE e.order_id = o.id) AS has_timeline
                       FROM orders o
                       WHERE o.status = $1 AND o.created_at < $2
                   ) candidates
                   WHERE item_count = 0 OR NOT has_timeline
                   ORDER BY created_at
                   LIMIT $3`
	rows, err := r.storage.pool.Query(ctx, query, model.OrderStatusProcessing, createdBefore, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row scanner, io *model.IncompleteOrder) error {
		o := &io.Order
		return row.Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Subtotal, &o.Shipping, &o.Tax, &o.Total, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
			&io.ItemCount, &io.HasTimeline)
	})
}
