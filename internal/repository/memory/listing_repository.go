package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/gdugdh24/barter-backend/internal/domain"
)

type listingRepository struct {
	s *Store
}

func (r *listingRepository) table(kind domain.ListingKind) (map[int64]*domain.Listing, error) {
	byID, ok := r.s.listings[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidListingKind, kind)
	}
	return byID, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byID, err := r.table(listing.Kind)
	if err != nil {
		return err
	}
	r.s.listingSeq[listing.Kind]++
	listing.ID = r.s.listingSeq[listing.Kind]
	listing.CreatedAt = r.s.now()
	byID[listing.ID] = cloneListing(listing)

	id := listing.ID
	r.s.journal(ctx, func() { delete(byID, id) })
	return nil
}

func (r *listingRepository) GetByID(_ context.Context, kind domain.ListingKind, id int64) (*domain.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byID, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	l, ok := byID[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return cloneListing(l), nil
}

func (r *listingRepository) GetActive(_ context.Context, kind domain.ListingKind, excludeProfileID string) ([]*domain.Listing, error) {
	return r.collect(kind, func(l *domain.Listing) bool {
		return l.IsActive && (excludeProfileID == "" || l.ProfileID != excludeProfileID)
	})
}

func (r *listingRepository) ListByOwner(_ context.Context, kind domain.ListingKind, profileID string) ([]*domain.Listing, error) {
	return r.collect(kind, func(l *domain.Listing) bool {
		return l.ProfileID == profileID
	})
}

// collect returns matching listings newest first.
func (r *listingRepository) collect(kind domain.ListingKind, keep func(*domain.Listing) bool) ([]*domain.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byID, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	var result []*domain.Listing
	for _, l := range byID {
		if keep(l) {
			result = append(result, cloneListing(l))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *listingRepository) SetActive(ctx context.Context, kind domain.ListingKind, id int64, active bool) (*domain.Listing, error) {
	return r.mutate(ctx, kind, id, func(l *domain.Listing) {
		l.IsActive = active
	})
}

func (r *listingRepository) AddReport(ctx context.Context, kind domain.ListingKind, id int64, report domain.Report) (*domain.Listing, error) {
	return r.mutate(ctx, kind, id, func(l *domain.Listing) {
		l.Reports = append(l.Reports, report)
	})
}

func (r *listingRepository) mutate(ctx context.Context, kind domain.ListingKind, id int64, fn func(*domain.Listing)) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byID, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	l, ok := byID[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	prev := cloneListing(l)
	r.s.journal(ctx, func() { byID[id] = prev })

	fn(l)
	return cloneListing(l), nil
}

func (r *listingRepository) Delete(ctx context.Context, kind domain.ListingKind, id int64) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byID, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	l, ok := byID[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	delete(byID, id)
	removed := r.s.deleteMatchRequestsFor(kind, id)

	r.s.journal(ctx, func() {
		byID[id] = l
		for _, mr := range removed {
			r.s.matchRequests[mr.ID] = mr
		}
	})
	return cloneListing(l), nil
}

// deleteMatchRequestsFor removes requests referencing the listing and returns
// them. It must be called with mu held.
func (s *Store) deleteMatchRequestsFor(kind domain.ListingKind, listingID int64) []*domain.MatchRequest {
	var removed []*domain.MatchRequest
	for id, mr := range s.matchRequests {
		ref := mr.OfferID
		if kind == domain.KindRequest {
			ref = mr.RequestID
		}
		if ref != nil && *ref == listingID {
			delete(s.matchRequests, id)
			removed = append(removed, mr)
		}
	}
	return removed
}
