package repository

import (
	"context"

	"github.com/polkiloo/petshop/internal/domain/model"
)

// ProductRepository reads and seeds the catalog.
type ProductRepository interface {
	List(ctx context.Context, category string) ([]model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, product model.Product) (*model.Product, error)
	CreateBatch(ctx context.Context, products []model.Product) error
}
