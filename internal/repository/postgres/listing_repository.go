package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository"
)

const listingColumns = `id, profile_id, title, description, category, subcategory, image_file_name, is_active, reports, created_at`

type listingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

// listingTable maps a kind onto its table and the match_requests column pointing at it.
func listingTable(kind domain.ListingKind) (table, fkColumn string, err error) {
	switch kind {
	case domain.KindOffer:
		return "offers", "offer_id", nil
	case domain.KindRequest:
		return "requests", "request_id", nil
	}
	return "", "", fmt.Errorf("%w: %q", domain.ErrInvalidListingKind, kind)
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	table, _, err := listingTable(listing.Kind)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + table + ` (profile_id, title, description, category, subcategory, image_file_name, is_active, reports)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return conn(ctx, r.db).QueryRowxContext(
		ctx, query,
		listing.ProfileID, listing.Title, listing.Description, listing.Category,
		listing.Subcategory, listing.ImageFileName, listing.IsActive, listing.Reports,
	).Scan(&listing.ID, &listing.CreatedAt)
}

func (r *listingRepository) GetByID(ctx context.Context, kind domain.ListingKind, id int64) (*domain.Listing, error) {
	table, _, err := listingTable(kind)
	if err != nil {
		return nil, err
	}

	var listing domain.Listing
	query := `SELECT ` + listingColumns + ` FROM ` + table + ` WHERE id = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &listing, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	listing.Kind = kind
	return &listing, nil
}

func (r *listingRepository) GetActive(ctx context.Context, kind domain.ListingKind, excludeProfileID string) ([]*domain.Listing, error) {
	table, _, err := listingTable(kind)
	if err != nil {
		return nil, err
	}

	var listings []*domain.Listing
	query := `
		SELECT ` + listingColumns + ` FROM ` + table + `
		WHERE is_active = TRUE AND ($1 = '' OR profile_id <> $1)
		ORDER BY created_at DESC, id DESC
	`
	if err := conn(ctx, r.db).SelectContext(ctx, &listings, query, excludeProfileID); err != nil {
		return nil, err
	}
	return withKind(listings, kind), nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, kind domain.ListingKind, profileID string) ([]*domain.Listing, error) {
	table, _, err := listingTable(kind)
	if err != nil {
		return nil, err
	}

	var listings []*domain.Listing
	query := `
		SELECT ` + listingColumns + ` FROM ` + table + `
		WHERE profile_id = $1
		ORDER BY created_at DESC, id DESC
	`
	if err := conn(ctx, r.db).SelectContext(ctx, &listings, query, profileID); err != nil {
		return nil, err
	}
	return withKind(listings, kind), nil
}

func (r *listingRepository) SetActive(ctx context.Context, kind domain.ListingKind, id int64, active bool) (*domain.Listing, error) {
	table, _, err := listingTable(kind)
	if err != nil {
		return nil, err
	}

	var listing domain.Listing
	query := `UPDATE ` + table + ` SET is_active = $1 WHERE id = $2 RETURNING ` + listingColumns
	if err := conn(ctx, r.db).GetContext(ctx, &listing, query, active, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	listing.Kind = kind
	return &listing, nil
}

func (r *listingRepository) AddReport(ctx context.Context, kind domain.ListingKind, id int64, report domain.Report) (*domain.Listing, error) {
	table, _, err := listingTable(kind)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(domain.Reports{report})
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	var listing domain.Listing
	query := `
		UPDATE ` + table + `
		SET reports = COALESCE(reports, '[]'::jsonb) || $1::jsonb
		WHERE id = $2
		RETURNING ` + listingColumns
	if err := conn(ctx, r.db).GetContext(ctx, &listing, query, string(payload), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	listing.Kind = kind
	return &listing, nil
}

func (r *listingRepository) Delete(ctx context.Context, kind domain.ListingKind, id int64) (*domain.Listing, error) {
	table, fkColumn, err := listingTable(kind)
	if err != nil {
		return nil, err
	}

	var listing domain.Listing
	err = withinTx(ctx, r.db, func(ctx context.Context) error {
		q := conn(ctx, r.db)
		if _, err := q.ExecContext(ctx, `DELETE FROM match_requests WHERE `+fkColumn+` = $1`, id); err != nil {
			return fmt.Errorf("failed to delete match requests: %w", err)
		}
		query := `DELETE FROM ` + table + ` WHERE id = $1 RETURNING ` + listingColumns
		if err := q.GetContext(ctx, &listing, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrListingNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	listing.Kind = kind
	return &listing, nil
}

func withKind(listings []*domain.Listing, kind domain.ListingKind) []*domain.Listing {
	for _, l := range listings {
		l.Kind = kind
	}
	return listings
}
