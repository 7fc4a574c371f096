package matchrequest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository"
	"github.com/gdugdh24/barter-backend/internal/usecase/candidate"
	"github.com/gdugdh24/barter-backend/internal/usecase/karma"
)

const (
	DefaultDailyCap      = 3
	defaultNotifyTimeout = 30 * time.Second
)

// Notifier delivers lifecycle notices. Delivery is best effort.
type Notifier interface {
	NotifyMatchCreated(ctx context.Context, to, from *domain.Profile) error
	// NotifyMatchAccepted tells a about b and b about a.
	NotifyMatchAccepted(ctx context.Context, a, b *domain.Profile, contactA, contactB []string) error
}

type Settings struct {
	DailyCap      int
	NotifyTimeout time.Duration
}

type Option func(*MatchRequestUseCase)

// WithClock replaces time.Now for rate limiting.
func WithClock(now func() time.Time) Option {
	return func(uc *MatchRequestUseCase) {
		uc.now = now
	}
}

type MatchRequestUseCase struct {
	profileRepo      repository.ProfileRepository
	listingRepo      repository.ListingRepository
	matchRequestRepo repository.MatchRequestRepository
	tx               repository.Transactor
	ledger           *karma.Ledger
	notifier         Notifier
	cache            candidate.Invalidator
	settings         Settings
	logger           *zap.Logger

	now      func() time.Time
	inflight sync.WaitGroup
}

func NewMatchRequestUseCase(
	profileRepo repository.ProfileRepository,
	listingRepo repository.ListingRepository,
	matchRequestRepo repository.MatchRequestRepository,
	tx repository.Transactor,
	ledger *karma.Ledger,
	notifier Notifier,
	cache candidate.Invalidator,
	settings Settings,
	logger *zap.Logger,
	opts ...Option,
) *MatchRequestUseCase {
	if settings.DailyCap <= 0 {
		settings.DailyCap = DefaultDailyCap
	}
	if settings.NotifyTimeout <= 0 {
		settings.NotifyTimeout = defaultNotifyTimeout
	}
	uc := &MatchRequestUseCase{
		profileRepo:      profileRepo,
		listingRepo:      listingRepo,
		matchRequestRepo: matchRequestRepo,
		tx:               tx,
		ledger:           ledger,
		notifier:         notifier,
		cache:            cache,
		settings:         settings,
		logger:           logger,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CreateInput describes a new match request. InitiatorType "request" targets
// OfferID; "offer" targets RequestID. The other id optionally names the
// caller's own listing.
type CreateInput struct {
	CallerID      string
	InitiatorType domain.InitiatorType
	OfferID       *int64
	RequestID     *int64
	Message       string
	Contact       domain.Contact
}

// Create validates and stores a pending match request from the caller.
func (uc *MatchRequestUseCase) Create(ctx context.Context, in CreateInput) (*domain.MatchRequest, error) {
	caller, err := uc.profileRepo.GetByID(ctx, in.CallerID)
	if err != nil {
		return nil, err
	}

	count, err := uc.matchRequestRepo.CountCreatedSince(ctx, in.CallerID, startOfDayUTC(uc.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to count today's match requests: %w", err)
	}
	if count >= uc.settings.DailyCap {
		return nil, domain.ErrRateLimitExceeded
	}

	if !in.InitiatorType.Valid() {
		return nil, domain.ErrInvalidInitiatorType
	}
	targetKind, targetID, ownID := domain.KindOffer, in.OfferID, in.RequestID
	if in.InitiatorType == domain.InitiateFromOffer {
		targetKind, targetID, ownID = domain.KindRequest, in.RequestID, in.OfferID
	}
	if targetID == nil {
		return nil, domain.ErrInvalidTarget
	}

	if !in.Contact.Complete() {
		return nil, domain.ErrMissingContactInfo
	}

	target, err := uc.listingRepo.GetByID(ctx, targetKind, *targetID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, domain.ErrTargetNotFound
		}
		return nil, fmt.Errorf("failed to get target listing: %w", err)
	}
	if !target.IsActive {
		return nil, domain.ErrTargetInactive
	}

	if target.ProfileID == in.CallerID {
		return nil, domain.ErrSelfMatchForbidden
	}

	if ownID != nil {
		own, err := uc.listingRepo.GetByID(ctx, targetKind.Opposite(), *ownID)
		if err != nil {
			if errors.Is(err, domain.ErrListingNotFound) {
				return nil, domain.ErrInvalidTarget
			}
			return nil, fmt.Errorf("failed to get own listing: %w", err)
		}
		if own.ProfileID != in.CallerID {
			return nil, domain.ErrInvalidTarget
		}
		if !own.IsActive {
			return nil, domain.ErrTargetInactive
		}
	}

	existing, err := uc.matchRequestRepo.FindByKeys(ctx, in.CallerID, in.OfferID, in.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicates: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateMatchRequest
	}

	counterpart, err := uc.profileRepo.GetByID(ctx, target.ProfileID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			uc.logger.Error("target listing owner is missing",
				zap.String("profile_id", target.ProfileID),
				zap.Int64("listing_id", target.ID),
			)
			return nil, domain.ErrDataIntegrity
		}
		return nil, fmt.Errorf("failed to get listing owner: %w", err)
	}

	mr := &domain.MatchRequest{
		OfferID:     in.OfferID,
		RequestID:   in.RequestID,
		InitiatorID: in.CallerID,
		Message:     in.Message,
		Status:      domain.StatusPending,
		Contacts:    map[domain.Side]domain.Contact{in.InitiatorType.Side(): in.Contact},
	}
	if in.InitiatorType == domain.InitiateFromRequest {
		mr.RequesterID, mr.OffererID = in.CallerID, target.ProfileID
	} else {
		mr.RequesterID, mr.OffererID = target.ProfileID, in.CallerID
	}

	if err := uc.matchRequestRepo.Insert(ctx, mr); err != nil {
		if errors.Is(err, domain.ErrDuplicateMatchRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create match request: %w", err)
	}

	uc.logger.Info("match request created",
		zap.Int64("match_request_id", mr.ID),
		zap.String("profile_id", in.CallerID),
		zap.Int64p("offer_id", mr.OfferID),
		zap.Int64p("request_id", mr.RequestID),
	)

	uc.ledger.Award(ctx, in.CallerID, karma.MatchRequestCreated)
	candidate.InvalidateQuietly(ctx, uc.cache, uc.logger)

	id := mr.ID
	uc.dispatch("match_created", id, func(ctx context.Context) error {
		return uc.notifier.NotifyMatchCreated(ctx, counterpart, caller)
	}, func(ctx context.Context) {
		if err := uc.matchRequestRepo.MarkNotified(ctx, id); err != nil {
			uc.logger.Warn("failed to mark match request notified", zap.Int64("match_request_id", id), zap.Error(err))
		}
	})

	return mr, nil
}

// Accept moves a pending request to accepted on behalf of the non-initiating
// party, deactivates the referenced listings and awards their owners.
func (uc *MatchRequestUseCase) Accept(ctx context.Context, id int64, accepterID string, contact domain.Contact) (*domain.MatchRequest, error) {
	mr, err := uc.matchRequestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	side, ok := mr.SideOf(accepterID)
	if !ok {
		return nil, domain.ErrNotAuthorized
	}
	if mr.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyResolved
	}
	if accepterID == mr.InitiatorID {
		return nil, domain.ErrNotAuthorized
	}
	if !contact.IsZero() && !contact.Complete() {
		return nil, domain.ErrMissingContactInfo
	}

	requester, offerer, err := uc.parties(ctx, mr)
	if err != nil {
		return nil, err
	}
	if contact.IsZero() {
		accepter := requester
		if side == domain.SideOfferer {
			accepter = offerer
		}
		contact = domain.FallbackContact(accepter)
		if contact.IsZero() {
			return nil, domain.ErrMissingContactInfo
		}
	}

	var (
		accepted *domain.MatchRequest
		listings []*domain.Listing
	)
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err := uc.matchRequestRepo.ConditionalUpdateStatus(ctx, mr.ID, domain.StatusPending, domain.StatusAccepted, side, contact)
		if err != nil {
			if errors.Is(err, domain.ErrStatusConflict) {
				return domain.ErrAlreadyResolved
			}
			return fmt.Errorf("failed to accept match request: %w", err)
		}

		refs, err := uc.referencedListings(ctx, updated)
		if err != nil {
			return err
		}
		for _, l := range refs {
			if !l.IsActive {
				return domain.ErrTargetDeactivated
			}
		}
		for _, l := range refs {
			if _, err := uc.listingRepo.SetActive(ctx, l.Kind, l.ID, false); err != nil {
				if errors.Is(err, domain.ErrListingNotFound) {
					return domain.ErrDataIntegrity
				}
				return fmt.Errorf("failed to deactivate %s %d: %w", l.Kind, l.ID, err)
			}
		}
		accepted, listings = updated, refs
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("match request accepted",
		zap.Int64("match_request_id", accepted.ID),
		zap.String("profile_id", accepterID),
		zap.Int64p("offer_id", accepted.OfferID),
		zap.Int64p("request_id", accepted.RequestID),
	)

	for _, l := range listings {
		uc.ledger.Award(ctx, l.ProfileID, karma.MatchAccepted)
	}
	candidate.InvalidateQuietly(ctx, uc.cache, uc.logger)

	requesterLines := domain.ContactLines(requester, accepted.ContactFor(domain.SideRequester))
	offererLines := domain.ContactLines(offerer, accepted.ContactFor(domain.SideOfferer))
	uc.dispatch("match_accepted", accepted.ID, func(ctx context.Context) error {
		return uc.notifier.NotifyMatchAccepted(ctx, requester, offerer, requesterLines, offererLines)
	}, nil)

	return accepted, nil
}

// Decline closes a pending request. Only the non-initiating party may decline:
// the offerer for request-initiated requests, the requester for offer-initiated
// ones, where the offerer is the initiator and withdraws with Cancel.
func (uc *MatchRequestUseCase) Decline(ctx context.Context, id int64, declinerID string) (*domain.MatchRequest, error) {
	mr, err := uc.matchRequestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mr.IsParty(declinerID) {
		return nil, domain.ErrNotAuthorized
	}
	if mr.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyResolved
	}
	if declinerID != mr.ResponderID() {
		return nil, domain.ErrNotAuthorized
	}

	declined, err := uc.matchRequestRepo.ConditionalUpdateStatus(ctx, id, domain.StatusPending, domain.StatusDeclined, "", domain.Contact{})
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			return nil, domain.ErrAlreadyResolved
		}
		return nil, fmt.Errorf("failed to decline match request: %w", err)
	}

	uc.logger.Info("match request declined",
		zap.Int64("match_request_id", id),
		zap.String("profile_id", declinerID),
	)
	return declined.VisibleTo(declinerID), nil
}

// Cancel deletes a pending request created by callerID. It reports false
// without error when the request is missing, resolved or not the caller's.
func (uc *MatchRequestUseCase) Cancel(ctx context.Context, id int64, callerID string) (bool, error) {
	deleted, err := uc.matchRequestRepo.DeletePending(ctx, id, callerID)
	if err != nil {
		return false, fmt.Errorf("failed to cancel match request: %w", err)
	}
	if !deleted {
		return false, nil
	}

	uc.logger.Info("match request cancelled",
		zap.Int64("match_request_id", id),
		zap.String("profile_id", callerID),
	)
	uc.ledger.Award(ctx, callerID, karma.MatchRequestCancelled)
	candidate.InvalidateQuietly(ctx, uc.cache, uc.logger)
	return true, nil
}

// Complete closes an accepted exchange and awards both parties.
func (uc *MatchRequestUseCase) Complete(ctx context.Context, id int64, callerID string) (*domain.MatchRequest, error) {
	mr, err := uc.matchRequestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mr.IsParty(callerID) {
		return nil, domain.ErrNotAuthorized
	}
	switch mr.Status {
	case domain.StatusAccepted:
	case domain.StatusCompleted:
		return nil, domain.ErrAlreadyResolved
	default:
		return nil, domain.ErrNotAccepted
	}

	completed, err := uc.matchRequestRepo.ConditionalUpdateStatus(ctx, id, domain.StatusAccepted, domain.StatusCompleted, "", domain.Contact{})
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			return nil, domain.ErrAlreadyResolved
		}
		return nil, fmt.Errorf("failed to complete match request: %w", err)
	}

	uc.logger.Info("match request completed",
		zap.Int64("match_request_id", id),
		zap.String("profile_id", callerID),
	)
	uc.ledger.Award(ctx, completed.RequesterID, karma.MatchCompleted)
	uc.ledger.Award(ctx, completed.OffererID, karma.MatchCompleted)
	return completed, nil
}

// Get returns a request the viewer is party to.
func (uc *MatchRequestUseCase) Get(ctx context.Context, id int64, viewerID string) (*domain.MatchRequest, error) {
	mr, err := uc.matchRequestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mr.IsParty(viewerID) {
		return nil, domain.ErrNotAuthorized
	}
	return mr.VisibleTo(viewerID), nil
}

// ListSent returns requests the profile initiated.
func (uc *MatchRequestUseCase) ListSent(ctx context.Context, profileID string) ([]*domain.MatchRequest, error) {
	return uc.list(ctx, profileID, repository.MatchRequestFilter{InitiatedOnly: true})
}

// ListIncoming returns pending requests awaiting the profile's answer.
func (uc *MatchRequestUseCase) ListIncoming(ctx context.Context, profileID string) ([]*domain.MatchRequest, error) {
	return uc.list(ctx, profileID, repository.MatchRequestFilter{
		ReceivedOnly: true,
		Statuses:     []domain.Status{domain.StatusPending},
	})
}

// ListHistory returns resolved requests involving the profile.
func (uc *MatchRequestUseCase) ListHistory(ctx context.Context, profileID string) ([]*domain.MatchRequest, error) {
	return uc.list(ctx, profileID, repository.MatchRequestFilter{
		Statuses: []domain.Status{domain.StatusAccepted, domain.StatusCompleted, domain.StatusDeclined},
	})
}

func (uc *MatchRequestUseCase) list(ctx context.Context, profileID string, filter repository.MatchRequestFilter) ([]*domain.MatchRequest, error) {
	mrs, err := uc.matchRequestRepo.ListForProfile(ctx, profileID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}
	result := make([]*domain.MatchRequest, 0, len(mrs))
	for _, mr := range mrs {
		result = append(result, mr.VisibleTo(profileID))
	}
	return result, nil
}

// Wait blocks until in-flight notifications have finished.
func (uc *MatchRequestUseCase) Wait() {
	uc.inflight.Wait()
}

// referencedListings loads the offer and request the record points at.
func (uc *MatchRequestUseCase) referencedListings(ctx context.Context, mr *domain.MatchRequest) ([]*domain.Listing, error) {
	refs := []struct {
		kind domain.ListingKind
		id   *int64
	}{
		{domain.KindOffer, mr.OfferID},
		{domain.KindRequest, mr.RequestID},
	}

	var listings []*domain.Listing
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		l, err := uc.listingRepo.GetByID(ctx, ref.kind, *ref.id)
		if err != nil {
			if errors.Is(err, domain.ErrListingNotFound) {
				uc.logger.Error("match request references a missing listing",
					zap.Int64("match_request_id", mr.ID),
					zap.String("kind", string(ref.kind)),
					zap.Int64("listing_id", *ref.id),
				)
				return nil, domain.ErrDataIntegrity
			}
			return nil, fmt.Errorf("failed to get %s %d: %w", ref.kind, *ref.id, err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (uc *MatchRequestUseCase) parties(ctx context.Context, mr *domain.MatchRequest) (requester, offerer *domain.Profile, err error) {
	load := func(id string) (*domain.Profile, error) {
		p, err := uc.profileRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				uc.logger.Error("match request party is missing",
					zap.Int64("match_request_id", mr.ID),
					zap.String("profile_id", id),
				)
				return nil, domain.ErrDataIntegrity
			}
			return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
		}
		return p, nil
	}

	if requester, err = load(mr.RequesterID); err != nil {
		return nil, nil, err
	}
	if offerer, err = load(mr.OffererID); err != nil {
		return nil, nil, err
	}
	return requester, offerer, nil
}

// dispatch runs send in the background, detached from the caller's context.
// Failures are logged and never reach the caller.
func (uc *MatchRequestUseCase) dispatch(kind string, id int64, send func(ctx context.Context) error, onSuccess func(ctx context.Context)) {
	if uc.notifier == nil {
		return
	}

	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), uc.settings.NotifyTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			uc.logger.Warn("notification failed",
				zap.String("notification", kind),
				zap.Int64("match_request_id", id),
				zap.Error(err),
			)
			return
		}
		if onSuccess != nil {
			onSuccess(ctx)
		}
	}()
}

func startOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
