package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/domain/repository"
)

// ProfileInput carries editable profile fields.
type ProfileInput struct {
	Name    string `validate:"max=120"`
	Phone   string `validate:"max=32"`
	Address string `validate:"max=500"`
}

// ProfileUseCase reads and updates user contact details.
type ProfileUseCase struct {
	profiles repository.ProfileRepository
	validate *validator.Validate
}

// NewProfileUseCase constructs ProfileUseCase.
func NewProfileUseCase(profiles repository.ProfileRepository) *ProfileUseCase {
	return &ProfileUseCase{profiles: profiles, validate: newValidator()}
}

// Get returns the profile of userID. A user who never saved one gets an
// empty profile.
func (u *ProfileUseCase) Get(ctx context.Context, userID int64) (*model.Profile, error) {
	profile, err := u.profiles.Get(ctx, userID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return &model.Profile{UserID: userID}, nil
	}
	return profile, err
}

// Save validates and stores the profile of userID.
func (u *ProfileUseCase) Save(ctx context.Context, userID int64, in ProfileInput) (*model.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if err := u.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	return u.profiles.Upsert(ctx, model.Profile{
		UserID:  userID,
		Name:    in.Name,
		Phone:   in.Phone,
		Address: in.Address,
	})
}
