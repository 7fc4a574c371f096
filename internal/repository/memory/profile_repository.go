package memory

import (
	"context"

	"github.com/gdugdh24/barter-backend/internal/domain"
)

type profileRepository struct {
	s *Store
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[profile.ID]; ok {
		return domain.ErrProfileAlreadyExists
	}
	now := r.s.now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.s.profiles[profile.ID] = cloneProfile(profile)

	id := profile.ID
	r.s.journal(ctx, func() { delete(r.s.profiles, id) })
	return nil
}

func (r *profileRepository) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *profileRepository) Update(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	prev := cloneProfile(p)
	r.s.journal(ctx, func() {
		if cur, ok := r.s.profiles[id]; ok {
			prev.Karma = cur.Karma
			r.s.profiles[id] = prev
		}
	})

	update.Apply(p)
	p.UpdatedAt = r.s.now()
	return cloneProfile(p), nil
}

func (r *profileRepository) AdjustKarma(ctx context.Context, id string, delta int) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p.Karma += delta
	p.UpdatedAt = r.s.now()
	r.s.journal(ctx, func() {
		if cur, ok := r.s.profiles[id]; ok {
			cur.Karma -= delta
		}
	})
	return cloneProfile(p), nil
}

// Delete removes the profile with its listings and every match request it is party to.
func (r *profileRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	delete(r.s.profiles, id)

	removedListings := make(map[domain.ListingKind][]*domain.Listing)
	var removedRequests []*domain.MatchRequest
	for kind, byID := range r.s.listings {
		for listingID, l := range byID {
			if l.ProfileID == id {
				delete(byID, listingID)
				removedListings[kind] = append(removedListings[kind], l)
				removedRequests = append(removedRequests, r.s.deleteMatchRequestsFor(kind, listingID)...)
			}
		}
	}
	for mrID, mr := range r.s.matchRequests {
		if mr.IsParty(id) || mr.InitiatorID == id {
			delete(r.s.matchRequests, mrID)
			removedRequests = append(removedRequests, mr)
		}
	}

	r.s.journal(ctx, func() {
		r.s.profiles[id] = p
		for kind, listings := range removedListings {
			for _, l := range listings {
				r.s.listings[kind][l.ID] = l
			}
		}
		for _, mr := range removedRequests {
			r.s.matchRequests[mr.ID] = mr
		}
	})
	return nil
}
