package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository"
)

const profileColumns = `id, display_name, postal_code, phone, email, share_phone, karma, created_at, updated_at`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name, postal_code, phone, email, share_phone, karma)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRowxContext(
		ctx, query,
		profile.ID, profile.DisplayName, profile.PostalCode,
		profile.Phone, profile.Email, profile.SharePhone, profile.Karma,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	err := conn(ctx, r.db).GetContext(ctx, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Profile, error) {
	var profile domain.Profile
	query := `
		UPDATE profiles
		SET display_name = COALESCE($1, display_name),
		    postal_code  = COALESCE($2, postal_code),
		    phone        = COALESCE($3, phone),
		    email        = COALESCE($4, email),
		    share_phone  = COALESCE($5, share_phone),
		    updated_at   = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING ` + profileColumns
	err := conn(ctx, r.db).GetContext(
		ctx, &profile, query,
		update.DisplayName, update.PostalCode, update.Phone, update.Email, update.SharePhone,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// AdjustKarma increments in place so concurrent adjustments never lose updates.
func (r *profileRepository) AdjustKarma(ctx context.Context, id string, delta int) (*domain.Profile, error) {
	var profile domain.Profile
	query := `
		UPDATE profiles
		SET karma = karma + $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING ` + profileColumns
	err := conn(ctx, r.db).GetContext(ctx, &profile, query, delta, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Delete relies on ON DELETE CASCADE for listings and match requests.
func (r *profileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM profiles WHERE id = $1`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
