package candidate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository"
)

// Owner is the public part of a listing owner's profile.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Karma       int    `json:"karma"`
}

// Candidate is a scored (offer, request) pair not yet acted upon.
type Candidate struct {
	Offer        *domain.Listing `json:"offer"`
	Request      *domain.Listing `json:"request"`
	OfferOwner   Owner           `json:"offer_owner"`
	RequestOwner Owner           `json:"request_owner"`
	Score        float64         `json:"score"`
}

// Groups splits candidates by which of the caller's listings they serve.
type Groups struct {
	ForMyRequests []Candidate `json:"for_my_requests"`
	ForMyOffers   []Candidate `json:"for_my_offers"`
}

// Cache stores computed candidate lists per profile. Get reports the cache
// version it looked at; Set stores under that version, so a list computed
// while the cache was invalidated is never served.
type Cache interface {
	Get(ctx context.Context, profileID string) (candidates []Candidate, version string, ok bool, err error)
	Set(ctx context.Context, version, profileID string, candidates []Candidate) error
}

type Settings struct {
	ProximityLevel int
	// MaxCandidates truncates the ranked list; zero keeps everything.
	MaxCandidates int
}

type CandidateUseCase struct {
	profileRepo      repository.ProfileRepository
	listingRepo      repository.ListingRepository
	matchRequestRepo repository.MatchRequestRepository
	cache            Cache
	settings         Settings
	logger           *zap.Logger
}

// NewCandidateUseCase wires the matcher. cache may be nil.
func NewCandidateUseCase(
	profileRepo repository.ProfileRepository,
	listingRepo repository.ListingRepository,
	matchRequestRepo repository.MatchRequestRepository,
	cache Cache,
	settings Settings,
	logger *zap.Logger,
) *CandidateUseCase {
	if settings.ProximityLevel <= 0 {
		settings.ProximityLevel = DefaultProximityLevel
	}
	return &CandidateUseCase{
		profileRepo:      profileRepo,
		listingRepo:      listingRepo,
		matchRequestRepo: matchRequestRepo,
		cache:            cache,
		settings:         settings,
		logger:           logger,
	}
}

// FindCandidates returns new (offer, request) pairs for profileID ranked by
// descending score. An unknown profile yields an empty result.
func (uc *CandidateUseCase) FindCandidates(ctx context.Context, profileID string) ([]Candidate, error) {
	var (
		version   string
		cacheable bool
	)
	if uc.cache != nil {
		cached, v, ok, err := uc.cache.Get(ctx, profileID)
		if err != nil {
			uc.logger.Warn("candidate cache read failed", zap.String("profile_id", profileID), zap.Error(err))
		} else if ok {
			return cached, nil
		} else {
			version, cacheable = v, true
		}
	}

	candidates, err := uc.compute(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := uc.cache.Set(ctx, version, profileID, candidates); err != nil {
			uc.logger.Warn("candidate cache write failed", zap.String("profile_id", profileID), zap.Error(err))
		}
	}
	return candidates, nil
}

// FindGrouped is FindCandidates split into the two presentation groups.
// Each group keeps the ranked order.
func (uc *CandidateUseCase) FindGrouped(ctx context.Context, profileID string) (*Groups, error) {
	candidates, err := uc.FindCandidates(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return Group(candidates, profileID), nil
}

// Group partitions candidates by whether profileID owns the request or the offer.
func Group(candidates []Candidate, profileID string) *Groups {
	groups := &Groups{
		ForMyRequests: []Candidate{},
		ForMyOffers:   []Candidate{},
	}
	for _, c := range candidates {
		if c.Request.ProfileID == profileID {
			groups.ForMyRequests = append(groups.ForMyRequests, c)
		} else {
			groups.ForMyOffers = append(groups.ForMyOffers, c)
		}
	}
	return groups
}

func (uc *CandidateUseCase) compute(ctx context.Context, profileID string) ([]Candidate, error) {
	me, err := uc.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return []Candidate{}, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	offers, err := uc.listingRepo.GetActive(ctx, domain.KindOffer, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get active offers: %w", err)
	}
	requests, err := uc.listingRepo.GetActive(ctx, domain.KindRequest, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get active requests: %w", err)
	}

	myOffers, otherOffers := partition(offers, profileID)
	myRequests, otherRequests := partition(requests, profileID)
	if len(myOffers) == 0 && len(myRequests) == 0 {
		return []Candidate{}, nil
	}

	existing, err := uc.existingPairs(ctx, profileID)
	if err != nil {
		return nil, err
	}

	owners := newOwnerLookup(uc.profileRepo, me)
	candidates := make([]Candidate, 0)

	add := func(offer, request *domain.Listing) error {
		if offer.ProfileID == request.ProfileID {
			return nil
		}
		if _, seen := existing[domain.PairKey{OfferID: offer.ID, RequestID: request.ID}]; seen {
			return nil
		}

		offerOwner, err := owners.get(ctx, offer.ProfileID)
		if err != nil {
			return err
		}
		requestOwner, err := owners.get(ctx, request.ProfileID)
		if err != nil {
			return err
		}
		if offerOwner == nil || requestOwner == nil {
			uc.logger.Warn("skipping candidate with missing owner",
				zap.Int64("offer_id", offer.ID),
				zap.Int64("request_id", request.ID),
			)
			return nil
		}

		candidates = append(candidates, Candidate{
			Offer:        offer,
			Request:      request,
			OfferOwner:   ownerOf(offerOwner),
			RequestOwner: ownerOf(requestOwner),
			Score:        ScoreMatch(offer, request, offerOwner.PostalCode, requestOwner.PostalCode, uc.settings.ProximityLevel),
		})
		return nil
	}

	for _, request := range myRequests {
		for _, offer := range otherOffers {
			if err := add(offer, request); err != nil {
				return nil, err
			}
		}
	}
	for _, offer := range myOffers {
		for _, request := range otherRequests {
			if err := add(offer, request); err != nil {
				return nil, err
			}
		}
	}

	Rank(candidates)
	if uc.settings.MaxCandidates > 0 && len(candidates) > uc.settings.MaxCandidates {
		candidates = candidates[:uc.settings.MaxCandidates]
	}
	return candidates, nil
}

// existingPairs collects every (offer, request) pair already referenced by a
// match request the profile is party to.
func (uc *CandidateUseCase) existingPairs(ctx context.Context, profileID string) (map[domain.PairKey]struct{}, error) {
	mrs, err := uc.matchRequestRepo.ListForProfile(ctx, profileID, repository.MatchRequestFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}
	pairs := make(map[domain.PairKey]struct{}, len(mrs))
	for _, mr := range mrs {
		if key, ok := mr.Pair(); ok {
			pairs[key] = struct{}{}
		}
	}
	return pairs, nil
}

// Rank orders by descending score, then by offer and request id.
func Rank(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Offer.ID != b.Offer.ID {
			return a.Offer.ID < b.Offer.ID
		}
		return a.Request.ID < b.Request.ID
	})
}

func partition(listings []*domain.Listing, profileID string) (mine, others []*domain.Listing) {
	for _, l := range listings {
		if l.ProfileID == profileID {
			mine = append(mine, l)
		} else {
			others = append(others, l)
		}
	}
	return mine, others
}

func ownerOf(p *domain.Profile) Owner {
	return Owner{ID: p.ID, DisplayName: p.DisplayName, Karma: p.Karma}
}

// ownerLookup memoises profile reads for the duration of one computation.
type ownerLookup struct {
	repo  repository.ProfileRepository
	cache map[string]*domain.Profile
}

func newOwnerLookup(repo repository.ProfileRepository, seed *domain.Profile) *ownerLookup {
	return &ownerLookup{
		repo:  repo,
		cache: map[string]*domain.Profile{seed.ID: seed},
	}
}

// get returns nil without error for a profile that no longer exists.
func (l *ownerLookup) get(ctx context.Context, id string) (*domain.Profile, error) {
	if p, ok := l.cache[id]; ok {
		return p, nil
	}
	p, err := l.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return nil, fmt.Errorf("failed to get listing owner: %w", err)
		}
		p = nil
	}
	l.cache[id] = p
	return p, nil
}

// Invalidator drops every cached candidate list.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidateQuietly bumps the cache after a write. inv may be nil.
func InvalidateQuietly(ctx context.Context, inv Invalidator, logger *zap.Logger) {
	if inv == nil {
		return
	}
	if err := inv.Invalidate(ctx); err != nil {
		logger.Warn("failed to invalidate candidate cache", zap.Error(err))
	}
}
