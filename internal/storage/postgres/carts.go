package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
)

type cartRepository struct {
	storage *Storage
}

func (r *cartRepository) ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	const query = `SELECT id, product_id, name, price, quantity, image
                   FROM cart_items WHERE user_id=$1 ORDER BY created_at, id`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row scanner, l *model.CartLine) error {
		return row.Scan(&l.ID, &l.ProductID, &l.Name, &l.Price, &l.Quantity, &l.Image)
	})
}

// Insert adds a row. A row already present for the product has the
// quantity added to it, and the stored quantity is returned.
func (r *cartRepository) Insert(ctx context.Context, userID int64, line model.CartLine) (*model.CartLine, error) {
	const query = `INSERT INTO cart_items (user_id, product_id, name, price, quantity, image)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
                   RETURNING id, quantity`
	err := r.storage.pool.QueryRow(ctx, query, userID, line.ProductID, line.Name, line.Price, line.Quantity, line.Image).
		Scan(&line.ID, &line.Quantity)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	const query = `UPDATE cart_items SET quantity=$1 WHERE user_id=$2 AND product_id=$3`
	tag, err := r.storage.pool.Exec(ctx, query, quantity, userID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, userID, productID int64) error {
	const query = `DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`
	_, err := r.storage.pool.Exec(ctx, query, userID, productID)
	return err
}

func (r *cartRepository) DeleteAll(ctx context.Context, userID int64) error {
	const query = `DELETE FROM cart_items WHERE user_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, userID)
	return err
}
