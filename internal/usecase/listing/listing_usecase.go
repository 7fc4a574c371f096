package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository"
	"github.com/gdugdh24/barter-backend/internal/usecase/candidate"
	"github.com/gdugdh24/barter-backend/internal/usecase/karma"
)

// ImageStore removes uploaded listing images.
type ImageStore interface {
	Remove(ctx context.Context, fileName string) error
}

type ListingUseCase struct {
	profileRepo repository.ProfileRepository
	listingRepo repository.ListingRepository
	ledger      *karma.Ledger
	images      ImageStore
	cache       candidate.Invalidator
	logger      *zap.Logger
	now         func() time.Time
}

func NewListingUseCase(
	profileRepo repository.ProfileRepository,
	listingRepo repository.ListingRepository,
	ledger *karma.Ledger,
	images ImageStore,
	cache candidate.Invalidator,
	logger *zap.Logger,
) *ListingUseCase {
	return &ListingUseCase{
		profileRepo: profileRepo,
		listingRepo: listingRepo,
		ledger:      ledger,
		images:      images,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateListingRequest represents offer or request creation
type CreateListingRequest struct {
	Title         string  `json:"title" binding:"required,min=2,max=200"`
	Description   string  `json:"description" binding:"omitempty,max=2000"`
	Category      string  `json:"category" binding:"required,max=100"`
	Subcategory   string  `json:"subcategory" binding:"omitempty,max=100"`
	ImageFileName *string `json:"image_file_name" binding:"omitempty,max=255"`
}

// ReportRequest represents a moderation report
type ReportRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// FeedItem is an active listing with its owner's public details
type FeedItem struct {
	*domain.Listing
	Owner candidate.Owner `json:"owner"`
}

func createdEvent(kind domain.ListingKind) karma.Event {
	if kind == domain.KindOffer {
		return karma.OfferCreated
	}
	return karma.RequestCreated
}

func deletedEvent(kind domain.ListingKind) karma.Event {
	if kind == domain.KindOffer {
		return karma.OfferDeleted
	}
	return karma.RequestDeleted
}

// Create publishes a new active listing and rewards its owner
func (uc *ListingUseCase) Create(ctx context.Context, kind domain.ListingKind, ownerID string, req *CreateListingRequest) (*domain.Listing, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidListingKind
	}
	if _, err := uc.profileRepo.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		Kind:        kind,
		ProfileID:   ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Subcategory: strings.TrimSpace(req.Subcategory),
		IsActive:    true,
	}
	if req.ImageFileName != nil {
		if name := domain.OwnedImageName(ownerID, *req.ImageFileName); name != "" {
			listing.ImageFileName = &name
		}
	}
	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}

	uc.logger.Info("listing created",
		zap.String("kind", string(kind)),
		zap.Int64("listing_id", listing.ID),
		zap.String("profile_id", ownerID),
	)
	uc.ledger.Award(ctx, ownerID, createdEvent(kind))
	candidate.InvalidateQuietly(ctx, uc.cache, uc.logger)
	return listing, nil
}

// ListMine returns every listing of kind owned by the profile
func (uc *ListingUseCase) ListMine(ctx context.Context, kind domain.ListingKind, ownerID string) ([]*domain.Listing, error) {
	listings, err := uc.listingRepo.ListByOwner(ctx, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	return listings, nil
}

// Feed returns other profiles' active listings of kind, newest first
func (uc *ListingUseCase) Feed(ctx context.Context, kind domain.ListingKind, viewerID string) ([]FeedItem, error) {
	listings, err := uc.listingRepo.GetActive(ctx, kind, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s feed: %w", kind, err)
	}

	owners := make(map[string]*domain.Profile)
	items := make([]FeedItem, 0, len(listings))
	for _, l := range listings {
		owner, seen := owners[l.ProfileID]
		if !seen {
			owner, err = uc.profileRepo.GetByID(ctx, l.ProfileID)
			if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
				return nil, fmt.Errorf("failed to get listing owner: %w", err)
			}
			owners[l.ProfileID] = owner
		}
		if owner == nil {
			continue
		}
		items = append(items, FeedItem{
			Listing: l,
			Owner:   candidate.Owner{ID: owner.ID, DisplayName: owner.DisplayName, Karma: owner.Karma},
		})
	}
	return items, nil
}

// SetActive lets the owner pause or resume a listing
func (uc *ListingUseCase) SetActive(ctx context.Context, kind domain.ListingKind, id int64, ownerID string, active bool) (*domain.Listing, error) {
	if _, err := uc.owned(ctx, kind, id, ownerID); err != nil {
		return nil, err
	}
	listing, err := uc.listingRepo.SetActive(ctx, kind, id, active)
	if err != nil {
		return nil, err
	}
	candidate.InvalidateQuietly(ctx, uc.cache, uc.logger)
	return listing, nil
}

// Delete removes a listing with its match requests, takes back the creation
// karma and removes the stored image
func (uc *ListingUseCase) Delete(ctx context.Context, kind domain.ListingKind, id int64, ownerID string) error {
	if _, err := uc.owned(ctx, kind, id, ownerID); err != nil {
		return err
	}

	deleted, err := uc.listingRepo.Delete(ctx, kind, id)
	if err != nil {
		return err
	}

	uc.logger.Info("listing deleted",
		zap.String("kind", string(kind)),
		zap.Int64("listing_id", id),
		zap.String("profile_id", ownerID),
	)
	uc.ledger.Award(ctx, ownerID, deletedEvent(kind))
	uc.removeImage(ctx, deleted)
	candidate.InvalidateQuietly(ctx, uc.cache, uc.logger)
	return nil
}

// Report flags someone else's listing for moderation
func (uc *ListingUseCase) Report(ctx context.Context, kind domain.ListingKind, id int64, reporterID string, req *ReportRequest) (*domain.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if listing.ProfileID == reporterID {
		return nil, domain.ErrCannotReportOwn
	}

	report := domain.Report{
		ReporterID: reporterID,
		Reason:     strings.TrimSpace(req.Reason),
		CreatedAt:  uc.now().UTC(),
	}
	updated, err := uc.listingRepo.AddReport(ctx, kind, id, report)
	if err != nil {
		return nil, fmt.Errorf("failed to report %s: %w", kind, err)
	}

	uc.logger.Info("listing reported",
		zap.String("kind", string(kind)),
		zap.Int64("listing_id", id),
		zap.String("profile_id", reporterID),
		zap.Int("reports", len(updated.Reports)),
	)
	return updated, nil
}

// RemoveImages deletes stored images of listings that are already gone.
func (uc *ListingUseCase) RemoveImages(ctx context.Context, listings []*domain.Listing) {
	for _, l := range listings {
		uc.removeImage(ctx, l)
	}
}

// removeImage deletes the image of a removed listing. Names outside the
// owner's directory and names still used by another of the owner's listings
// are left alone.
func (uc *ListingUseCase) removeImage(ctx context.Context, l *domain.Listing) {
	if uc.images == nil || l.ImageFileName == nil || *l.ImageFileName == "" {
		return
	}
	name := *l.ImageFileName
	if !domain.ImageOwnedBy(name, l.ProfileID) {
		uc.logger.Warn("refusing to remove image outside owner directory",
			zap.Int64("listing_id", l.ID),
			zap.String("profile_id", l.ProfileID),
			zap.String("file", name),
		)
		return
	}
	inUse, err := uc.imageInUse(ctx, l)
	if err != nil {
		uc.logger.Warn("failed to check image references", zap.String("file", name), zap.Error(err))
		return
	}
	if inUse {
		return
	}
	if err := uc.images.Remove(ctx, name); err != nil {
		uc.logger.Warn("failed to remove listing image",
			zap.String("kind", string(l.Kind)),
			zap.Int64("listing_id", l.ID),
			zap.String("file", *l.ImageFileName),
			zap.Error(err),
		)
	}
}

func (uc *ListingUseCase) imageInUse(ctx context.Context, removed *domain.Listing) (bool, error) {
	for _, kind := range []domain.ListingKind{domain.KindOffer, domain.KindRequest} {
		listings, err := uc.listingRepo.ListByOwner(ctx, kind, removed.ProfileID)
		if err != nil {
			return false, err
		}
		for _, l := range listings {
			if l.Kind == removed.Kind && l.ID == removed.ID {
				continue
			}
			if l.ImageFileName != nil && *l.ImageFileName == *removed.ImageFileName {
				return true, nil
			}
		}
	}
	return false, nil
}

func (uc *ListingUseCase) owned(ctx context.Context, kind domain.ListingKind, id int64, ownerID string) (*domain.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if listing.ProfileID != ownerID {
		return nil, domain.ErrNotAuthorized
	}
	return listing, nil
}
