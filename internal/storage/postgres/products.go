package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/petshop/internal/domain/model"
)

type productRepository struct {
	storage *Storage
}

const productColumns = `id, name, price, tag, category, description, rating, image, created_at`

func scanProduct(row scanner, p *model.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Price, &p.Tag, &p.Category, &p.Description, &p.Rating, &p.Image, &p.CreatedAt)
}

func (r *productRepository) List(ctx context.Context, category string) ([]model.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if category == "" {
		rows, err = r.storage.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	} else {
		rows, err = r.storage.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE category=$1 ORDER BY id`, category)
	}
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProduct)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	if err := scanProduct(r.storage.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id), &p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

const insertProduct = `INSERT INTO products (name, price, tag, category, description, rating, image)
                       VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`

func (r *productRepository) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	err := r.storage.pool.QueryRow(ctx, insertProduct, p.Name, p.Price, p.Tag, p.Category, p.Description, p.Rating, p.Image).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) CreateBatch(ctx context.Context, products []model.Product) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for _, p := range products {
			if _, err := tx.Exec(ctx, insertProduct, p.Name, p.Price, p.Tag, p.Category, p.Description, p.Rating, p.Image); err != nil {
				return err
			}
		}
		return nil
	})
}
