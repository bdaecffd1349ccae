package repository

import (
	"context"

	"github.com/polkiloo/petshop/internal/domain/model"
)

// AddressRepository stores delivery addresses. Saving a default address
// clears the default flag on the owner's other addresses.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Address, error)
	GetForUser(ctx context.Context, userID, id int64) (*model.Address, error)
	Create(ctx context.Context, address model.Address) (*model.Address, error)
	Update(ctx context.Context, address model.Address) error
}

// ProfileRepository stores per-user contact details.
type ProfileRepository interface {
	Get(ctx context.Context, userID int64) (*model.Profile, error)
	Upsert(ctx context.Context, profile model.Profile) (*model.Profile, error)
}
