package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
)

type addressRepository struct {
	storage *Storage
}

type profileRepository struct {
	storage *Storage
}

const addressColumns = `id, user_id, name, phone, address_line1, address_line2, city, state, postal_code, is_default, created_at`

func scanAddress(row scanner, a *model.Address) error {
	return row.Scan(&a.ID, &a.UserID, &a.Name, &a.Phone, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State, &a.PostalCode, &a.IsDefault, &a.CreatedAt)
}

func (r *addressRepository) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+addressColumns+` FROM user_addresses WHERE user_id=$1 ORDER BY is_default DESC, created_at`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAddress)
}

func (r *addressRepository) GetForUser(ctx context.Context, userID, id int64) (*model.Address, error) {
	var a model.Address
	if err := scanAddress(r.storage.pool.QueryRow(ctx, `SELECT `+addressColumns+` FROM user_addresses WHERE id=$1 AND user_id=$2`, id, userID), &a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

const clearDefaultAddress = `UPDATE user_addresses SET is_default=FALSE WHERE user_id=$1 AND id<>$2 AND is_default`

func (r *addressRepository) Create(ctx context.Context, a model.Address) (*model.Address, error) {
	const query = `INSERT INTO user_addresses (user_id, name, phone, address_line1, address_line2, city, state, postal_code, is_default)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if a.IsDefault {
			if _, err := tx.Exec(ctx, clearDefaultAddress, a.UserID, int64(0)); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, query, a.UserID, a.Name, a.Phone, a.AddressLine1, a.AddressLine2, a.City, a.State, a.PostalCode, a.IsDefault).
			Scan(&a.ID, &a.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) Update(ctx context.Context, a model.Address) error {
	const query = `UPDATE user_addresses
                   SET name=$1, phone=$2, address_line1=$3, address_line2=$4, city=$5, state=$6, postal_code=$7, is_default=$8
                   WHERE id=$9 AND user_id=$10`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if a.IsDefault {
			if _, err := tx.Exec(ctx, clearDefaultAddress, a.UserID, a.ID); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, query, a.Name, a.Phone, a.AddressLine1, a.AddressLine2, a.City, a.State, a.PostalCode, a.IsDefault, a.ID, a.UserID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}
		return nil
	})
}

func (r *profileRepository) Get(ctx context.Context, userID int64) (*model.Profile, error) {
	const query = `SELECT user_id, name, phone, address, updated_at FROM profiles WHERE user_id=$1`
	var p model.Profile
	if err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Name, &p.Phone, &p.Address, &p.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p model.Profile) (*model.Profile, error) {
	const query = `INSERT INTO profiles (user_id, name, phone, address) VALUES ($1, $2, $3, $4)
                   ON CONFLICT (user_id) DO UPDATE
                   SET name=EXCLUDED.name, phone=EXCLUDED.phone, address=EXCLUDED.address, updated_at=NOW()
                   RETURNING updated_at`
	if err := r.storage.pool.QueryRow(ctx, query, p.UserID, p.Name, p.Phone, p.Address).Scan(&p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
