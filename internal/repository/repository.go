package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/barter-backend/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Update(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Profile, error)
	// AdjustKarma applies delta atomically and returns the updated profile.
	AdjustKarma(ctx context.Context, id string, delta int) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, kind domain.ListingKind, id int64) (*domain.Listing, error)
	// GetActive returns every active listing of kind. A non-empty excludeProfileID
	// drops that owner's listings.
	GetActive(ctx context.Context, kind domain.ListingKind, excludeProfileID string) ([]*domain.Listing, error)
	ListByOwner(ctx context.Context, kind domain.ListingKind, profileID string) ([]*domain.Listing, error)
	SetActive(ctx context.Context, kind domain.ListingKind, id int64, active bool) (*domain.Listing, error)
	AddReport(ctx context.Context, kind domain.ListingKind, id int64, report domain.Report) (*domain.Listing, error)
	// Delete removes the listing together with every match request referencing it
	// and returns the deleted row.
	Delete(ctx context.Context, kind domain.ListingKind, id int64) (*domain.Listing, error)
}

// MatchRequestFilter narrows ListForProfile.
type MatchRequestFilter struct {
	// InitiatedOnly keeps requests created by the profile.
	InitiatedOnly bool
	// ReceivedOnly keeps requests where the profile is the non-initiating party.
	ReceivedOnly bool
	Statuses     []domain.Status
}

type MatchRequestRepository interface {
	// Insert stores a new record. A second record for the same
	// (initiator, offer, request) triple yields domain.ErrDuplicateMatchRequest.
	Insert(ctx context.Context, mr *domain.MatchRequest) error
	GetByID(ctx context.Context, id int64) (*domain.MatchRequest, error)
	// FindByKeys returns the first request by initiatorID matching the supplied
	// listing ids, or nil when none exists.
	FindByKeys(ctx context.Context, initiatorID string, offerID, requestID *int64) (*domain.MatchRequest, error)
	CountCreatedSince(ctx context.Context, initiatorID string, since time.Time) (int, error)
	// ListForProfile returns requests where the profile is requester or offerer.
	ListForProfile(ctx context.Context, profileID string, filter MatchRequestFilter) ([]*domain.MatchRequest, error)
	// ConditionalUpdateStatus moves the record from expected to next and records
	// contact for side when contact is non-zero. It fails with
	// domain.ErrStatusConflict if the stored status is not expected, and with
	// domain.ErrIllegalTransition when next is not a legal successor of expected.
	ConditionalUpdateStatus(ctx context.Context, id int64, expected, next domain.Status, side domain.Side, contact domain.Contact) (*domain.MatchRequest, error)
	// DeletePending removes a pending record created by initiatorID.
	// It reports false when no such record exists.
	DeletePending(ctx context.Context, id int64, initiatorID string) (bool, error)
	MarkNotified(ctx context.Context, id int64) error
}

// Transactor runs fn inside a unit of work. Repositories obtained from the same
// backend join the transaction carried by the context.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
