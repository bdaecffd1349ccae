package repository

import (
	"context"

	"github.com/polkiloo/petshop/internal/domain/model"
)

// CartRepository is the remote copy of a signed-in customer's cart. Rows
// are addressed by (user, product).
type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error)
	Insert(ctx context.Context, userID int64, line model.CartLine) (*model.CartLine, error)
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error
	Delete(ctx context.Context, userID, productID int64) error
	DeleteAll(ctx context.Context, userID int64) error
}
