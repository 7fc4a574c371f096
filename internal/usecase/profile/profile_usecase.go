package profile

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
)

// ImageCleaner removes stored images of listings deleted with a profile.
type ImageCleaner interface {
	RemoveImages(ctx context.Context, listings []*domain.Listing)
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	listingRepo repository.ListingRepository
	images      ImageCleaner
	cache       candidate.Invalidator
	logger      *zap.Logger
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	listingRepo repository.ListingRepository,
	images ImageCleaner,
	cache candidate.Invalidator,
	logger *zap.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		listingRepo: listingRepo,
		images:      images,
		cache:       cache,
		logger:      logger,
	}
}

// CreateProfileRequest represents profile registration request
type CreateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,min=2,max=100"`
	PostalCode  string `json:"postal_code" binding:"required,max=20"`
	Phone       string `json:"phone" binding:"omitempty,max=32"`
	Email       string `json:"email" binding:"required,email"`
	SharePhone  bool   `json:"share_phone"`
}

// UpdateProfileRequest represents profile update request
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=2,max=100"`
	PostalCode  *string `json:"postal_code" binding:"omitempty,max=20"`
	Phone       *string `json:"phone" binding:"omitempty,max=32"`
	Email       *string `json:"email" binding:"omitempty,email"`
	SharePhone  *bool   `json:"share_phone"`
}

// PublicProfile is what other members may see
type PublicProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Karma       int       `json:"karma"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProfile registers the authenticated identity as a member
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, profileID string, req *CreateProfileRequest) (*domain.Profile, error) {
	profile := &domain.Profile{
		ID:          profileID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		SharePhone:  req.SharePhone,
		Karma:       domain.InitialKarma,
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrProfileAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	uc.logger.Info("profile created", zap.String("profile_id", profileID))
	return profile, nil
}

// GetMyProfile returns current user's profile
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	return uc.profileRepo.GetByID(ctx, profileID)
}

// GetPublicProfile returns another member's profile without contact details
func (uc *ProfileUseCase) GetPublicProfile(ctx context.Context, profileID string) (*PublicProfile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Karma:       profile.Karma,
		CreatedAt:   profile.CreatedAt,
	}, nil
}

// UpdateProfile updates user profile
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, profileID string, req *UpdateProfileRequest) (*domain.Profile, error) {
	update := domain.ProfileUpdate{
		DisplayName: trimmed(req.DisplayName),
		PostalCode:  trimmed(req.PostalCode),
		Phone:       trimmed(req.Phone),
		Email:       trimmed(req.Email),
		SharePhone:  req.SharePhone,
	}
	if update.IsEmpty() {
		return uc.profileRepo.GetByID(ctx, profileID)
	}

	profile, err := uc.profileRepo.Update(ctx, profileID, update)
	if err != nil {
		return nil, err
	}

	if update.PostalCode != nil {
		candidate.InvalidateQuietly(ctx, uc.cache, uc.logger)
	}
	return profile, nil
}

// DeleteProfile removes the member together with their listings and match
// requests. Removing the identity itself is left to the auth provider.
func (uc *ProfileUseCase) DeleteProfile(ctx context.Context, profileID string) error {
	var owned []*domain.Listing
	for _, kind := range []domain.ListingKind{domain.KindOffer, domain.KindRequest} {
		listings, err := uc.listingRepo.ListByOwner(ctx, kind, profileID)
		if err != nil {
			return fmt.Errorf("failed to list %ss: %w", kind, err)
		}
		owned = append(owned, listings...)
	}

	if err := uc.profileRepo.Delete(ctx, profileID); err != nil {
		return err
	}

	uc.logger.Info("profile deleted",
		zap.String("profile_id", profileID),
		zap.Int("listings", len(owned)),
	)
	if uc.images != nil {
		uc.images.RemoveImages(ctx, owned)
	}
	candidate.InvalidateQuietly(ctx, uc.cache, uc.logger)
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
