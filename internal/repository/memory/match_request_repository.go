package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository"
)

type matchRequestRepository struct {
	s *Store
}

type matchKey struct {
	initiatorID string
	offerID     int64
	requestID   int64
}

func keyOf(mr *domain.MatchRequest) matchKey {
	k := matchKey{initiatorID: mr.InitiatorID}
	if mr.OfferID != nil {
		k.offerID = *mr.OfferID
	}
	if mr.RequestID != nil {
		k.requestID = *mr.RequestID
	}
	return k
}

func (r *matchRequestRepository) Insert(ctx context.Context, mr *domain.MatchRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := keyOf(mr)
	for _, existing := range r.s.matchRequests {
		if keyOf(existing) == key {
			return domain.ErrDuplicateMatchRequest
		}
	}

	r.s.matchSeq++
	now := r.s.now()
	mr.ID = r.s.matchSeq
	mr.CreatedAt = now
	mr.UpdatedAt = now
	if mr.Contacts == nil {
		mr.Contacts = make(map[domain.Side]domain.Contact)
	}
	r.s.matchRequests[mr.ID] = cloneMatchRequest(mr)

	id := mr.ID
	r.s.journal(ctx, func() { delete(r.s.matchRequests, id) })
	return nil
}

func (r *matchRequestRepository) GetByID(_ context.Context, id int64) (*domain.MatchRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	mr, ok := r.s.matchRequests[id]
	if !ok {
		return nil, domain.ErrMatchRequestNotFound
	}
	return cloneMatchRequest(mr), nil
}

func (r *matchRequestRepository) FindByKeys(_ context.Context, initiatorID string, offerID, requestID *int64) (*domain.MatchRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *domain.MatchRequest
	for _, mr := range r.s.matchRequests {
		if mr.InitiatorID != initiatorID {
			continue
		}
		if offerID != nil && (mr.OfferID == nil || *mr.OfferID != *offerID) {
			continue
		}
		if requestID != nil && (mr.RequestID == nil || *mr.RequestID != *requestID) {
			continue
		}
		if found == nil || mr.ID < found.ID {
			found = mr
		}
	}
	if found == nil {
		return nil, nil
	}
	return cloneMatchRequest(found), nil
}

func (r *matchRequestRepository) CountCreatedSince(_ context.Context, initiatorID string, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, mr := range r.s.matchRequests {
		if mr.InitiatorID == initiatorID && !mr.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *matchRequestRepository) ListForProfile(_ context.Context, profileID string, filter repository.MatchRequestFilter) ([]*domain.MatchRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*domain.MatchRequest
	for _, mr := range r.s.matchRequests {
		if !mr.IsParty(profileID) {
			continue
		}
		if filter.InitiatedOnly && mr.InitiatorID != profileID {
			continue
		}
		if filter.ReceivedOnly && mr.InitiatorID == profileID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, mr.Status) {
			continue
		}
		result = append(result, cloneMatchRequest(mr))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func containsStatus(statuses []domain.Status, s domain.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (r *matchRequestRepository) ConditionalUpdateStatus(
	ctx context.Context,
	id int64,
	expected, next domain.Status,
	side domain.Side,
	contact domain.Contact,
) (*domain.MatchRequest, error) {
	if !expected.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, expected, next)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	mr, ok := r.s.matchRequests[id]
	if !ok {
		return nil, domain.ErrMatchRequestNotFound
	}
	if mr.Status != expected {
		return nil, domain.ErrStatusConflict
	}
	prev := cloneMatchRequest(mr)
	r.s.journal(ctx, func() { r.s.matchRequests[id] = prev })

	mr.Status = next
	if !contact.IsZero() {
		mr.Contacts[side] = contact
	}
	mr.UpdatedAt = r.s.now()
	return cloneMatchRequest(mr), nil
}

func (r *matchRequestRepository) DeletePending(ctx context.Context, id int64, initiatorID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	mr, ok := r.s.matchRequests[id]
	if !ok || mr.InitiatorID != initiatorID || mr.Status != domain.StatusPending {
		return false, nil
	}
	delete(r.s.matchRequests, id)
	r.s.journal(ctx, func() { r.s.matchRequests[id] = mr })
	return true, nil
}

func (r *matchRequestRepository) MarkNotified(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	mr, ok := r.s.matchRequests[id]
	if !ok {
		return domain.ErrMatchRequestNotFound
	}
	prev := mr.Notified
	mr.Notified = true
	r.s.journal(ctx, func() { mr.Notified = prev })
	return nil
}
