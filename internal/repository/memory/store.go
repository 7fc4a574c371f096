// Package memory keeps every table in process memory. It backs tests and
// STORAGE_TYPE=memory development runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository"
)

type Option func(*Store)

// WithClock overrides the timestamp source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	profiles      map[string]*domain.Profile
	listings      map[domain.ListingKind]map[int64]*domain.Listing
	listingSeq    map[domain.ListingKind]int64
	matchRequests map[int64]*domain.MatchRequest
	matchSeq      int64

	now func() time.Time
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		profiles: make(map[string]*domain.Profile),
		listings: map[domain.ListingKind]map[int64]*domain.Listing{
			domain.KindOffer:   {},
			domain.KindRequest: {},
		},
		listingSeq:    make(map[domain.ListingKind]int64),
		matchRequests: make(map[int64]*domain.MatchRequest),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Profiles() repository.ProfileRepository {
	return &profileRepository{s: s}
}

func (s *Store) Listings() repository.ListingRepository {
	return &listingRepository{s: s}
}

func (s *Store) MatchRequests() repository.MatchRequestRepository {
	return &matchRequestRepository{s: s}
}

func (s *Store) Transactor() repository.Transactor {
	return &transactor{s: s}
}

type txKey struct{}

// memTx collects undo steps for the writes made inside one unit of work.
type memTx struct {
	undo []func()
}

// journal records how to revert a write. It must be called with mu held.
func (s *Store) journal(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(txKey{}).(*memTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

// transactor serializes units of work and reverts their writes, newest
// first, when fn fails.
type transactor struct {
	s *Store
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*memTx); ok {
		return fn(ctx)
	}

	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	tx := &memTx{}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		t.s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		t.s.mu.Unlock()
		return err
	}
	return nil
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	return &c
}

func cloneListing(l *domain.Listing) *domain.Listing {
	c := *l
	if l.ImageFileName != nil {
		name := *l.ImageFileName
		c.ImageFileName = &name
	}
	if l.Reports != nil {
		c.Reports = append(domain.Reports(nil), l.Reports...)
	}
	return &c
}

func cloneMatchRequest(mr *domain.MatchRequest) *domain.MatchRequest {
	c := *mr
	if mr.OfferID != nil {
		id := *mr.OfferID
		c.OfferID = &id
	}
	if mr.RequestID != nil {
		id := *mr.RequestID
		c.RequestID = &id
	}
	c.Contacts = make(map[domain.Side]domain.Contact, len(mr.Contacts))
	for side, contact := range mr.Contacts {
		c.Contacts[side] = contact
	}
	return &c
}
