package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/domain/repository"
)

// ProductInput is a new catalog entry.
type ProductInput struct {
	Name        string  `validate:"required,max=200"`
	Price       float64 `validate:"gt=0"`
	Tag         *string `validate:"omitempty,max=40"`
	Category    string  `validate:"required,oneof=fish birds dogs"`
	Description string  `validate:"max=2000"`
	Rating      float64 `validate:"gte=0,lte=5"`
	Image       string  `validate:"omitempty,max=500"`
}

// CatalogUseCase serves and maintains the product catalog.
type CatalogUseCase struct {
	products repository.ProductRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository, logger *slog.Logger) *CatalogUseCase {
	return &CatalogUseCase{products: products, validate: newValidator(), logger: logger}
}

// List returns products, optionally limited to one category.
func (u *CatalogUseCase) List(ctx context.Context, category string) ([]model.Product, error) {
	return u.products.List(ctx, strings.ToLower(strings.TrimSpace(category)))
}

// Get returns one product.
func (u *CatalogUseCase) Get(ctx context.Context, id int64) (*model.Product, error) {
	return u.products.GetByID(ctx, id)
}

// Add validates and stores a product.
func (u *CatalogUseCase) Add(ctx context.Context, in ProductInput) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if err := u.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	image := in.Image
	if image == "" {
		image = seedImage
	}
	return u.products.Create(ctx, model.Product{
		Name:        in.Name,
		Price:       in.Price,
		Tag:         in.Tag,
		Category:    in.Category,
		Description: in.Description,
		Rating:      in.Rating,
		Image:       image,
	})
}

// SeedIfEmpty inserts the starter catalog when no products exist and
// reports how many were inserted.
func (u *CatalogUseCase) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := u.products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		u.logger.Debug("catalog already seeded", slog.Int64("products", count))
		return 0, nil
	}

	batch := make([]model.Product, len(seedProducts))
	copy(batch, seedProducts)
	for i := range batch {
		batch[i].Image = seedImage
	}
	if err := u.products.CreateBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("seed products: %w", err)
	}
	u.logger.Info("catalog seeded", slog.Int("products", len(batch)))
	return len(batch), nil
}
