package usecase

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/domain/repository"
)

// AddressInput is a delivery address submitted by a user.
type AddressInput struct {
	Name         string `validate:"required,max=120"`
	Phone        string `validate:"required,max=32"`
	AddressLine1 string `validate:"required,max=200"`
	AddressLine2 string `validate:"max=200"`
	City         string `validate:"required,max=100"`
	State        string `validate:"required,max=100"`
	PostalCode   string `validate:"required,max=20"`
	IsDefault    bool
}

func (in *AddressInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.AddressLine1 = strings.TrimSpace(in.AddressLine1)
	in.AddressLine2 = strings.TrimSpace(in.AddressLine2)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
}

// AddressUseCase manages saved delivery addresses.
type AddressUseCase struct {
	addresses repository.AddressRepository
	validate  *validator.Validate
}

// NewAddressUseCase constructs AddressUseCase.
func NewAddressUseCase(addresses repository.AddressRepository) *AddressUseCase {
	return &AddressUseCase{addresses: addresses, validate: newValidator()}
}

// List returns addresses of userID, default first.
func (u *AddressUseCase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	return u.addresses.ListByUser(ctx, userID)
}

// Create stores a new address. The first address of a user becomes the
// default regardless of the submitted flag.
func (u *AddressUseCase) Create(ctx context.Context, userID int64, in AddressInput) (*model.Address, error) {
	in.trim()
	if err := u.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	existing, err := u.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	address := toAddress(userID, in)
	if len(existing) == 0 {
		address.IsDefault = true
	}
	return u.addresses.Create(ctx, address)
}

// Update replaces an address owned by userID.
func (u *AddressUseCase) Update(ctx context.Context, userID, id int64, in AddressInput) (*model.Address, error) {
	in.trim()
	if err := u.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if _, err := u.addresses.GetForUser(ctx, userID, id); err != nil {
		return nil, err
	}

	address := toAddress(userID, in)
	address.ID = id
	if err := u.addresses.Update(ctx, address); err != nil {
		return nil, err
	}
	return u.addresses.GetForUser(ctx, userID, id)
}

// Get returns one address owned by userID.
func (u *AddressUseCase) Get(ctx context.Context, userID, id int64) (*model.Address, error) {
	return u.addresses.GetForUser(ctx, userID, id)
}

func toAddress(userID int64, in AddressInput) model.Address {
	return model.Address{
		UserID:       userID,
		Name:         in.Name,
		Phone:        in.Phone,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		IsDefault:    in.IsDefault,
	}
}
