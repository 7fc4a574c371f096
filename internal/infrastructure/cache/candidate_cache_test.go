package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository"
	"github.com/gdugdh24/barter-backend/internal/repository/memory"
	"github.com/gdugdh24/barter-backend/internal/usecase/candidate"
)

func newCache(t *testing.T, ttl time.Duration) (*CandidateCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCandidateCache(client, ttl), mr
}

func sample() []candidate.Candidate {
	return []candidate.Candidate{{
		Offer:        &domain.Listing{ID: 5, Kind: domain.KindOffer, Title: "axle", ProfileID: "bob"},
		Request:      &domain.Listing{ID: 9, Kind: domain.KindRequest, Title: "saw", ProfileID: "alice"},
		OfferOwner:   candidate.Owner{ID: "bob", DisplayName: "Bob", Karma: 3},
		RequestOwner: candidate.Owner{ID: "alice", DisplayName: "Alice", Karma: 1},
		Score:        0.75,
	}}
}

func TestCandidateCacheRoundTrip(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()

	_, gen, ok, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "0", gen)

	require.NoError(t, c.Set(ctx, gen, "alice", sample()))

	got, _, ok, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].Offer.ID)
	assert.Equal(t, domain.KindRequest, got[0].Request.Kind)
	assert.Equal(t, "Bob", got[0].OfferOwner.DisplayName)
	assert.InDelta(t, 0.75, got[0].Score, 1e-9)
}

func TestCandidateCacheInvalidate(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "0", "alice", sample()))
	require.NoError(t, c.Invalidate(ctx))

	_, _, ok, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err := mr.Get(generationKey)
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}

func TestCandidateCacheExpires(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "0", "alice", sample()))
	mr.FastForward(2 * time.Minute)

	_, _, ok, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCandidateCacheUnavailable(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	mr.Close()

	_, _, _, err := c.Get(context.Background(), "alice")
	assert.Error(t, err)
	assert.Error(t, c.Invalidate(context.Background()))
}

func TestCandidateCacheSetAfterInvalidateIsUnreachable(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()

	_, gen, ok, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, gen, "alice", sample()))

	_, current, ok, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "1", current)
}

// racingMatchRequests runs onList right after the existing pairs are read,
// in the middle of a candidate computation.
type racingMatchRequests struct {
	repository.MatchRequestRepository
	onList func()
}

func (r *racingMatchRequests) ListForProfile(ctx context.Context, profileID string, filter repository.MatchRequestFilter) ([]*domain.MatchRequest, error) {
	mrs, err := r.MatchRequestRepository.ListForProfile(ctx, profileID, filter)
	if r.onList != nil {
		hook := r.onList
		r.onList = nil
		hook()
	}
	return mrs, err
}

func TestFindCandidatesDropsListComputedDuringInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, time.Minute)
	store := memory.NewStore()

	for _, id := range []string{"alice", "bob"} {
		require.NoError(t, store.Profiles().Create(ctx, &domain.Profile{
			ID: id, DisplayName: id, PostalCode: "12345", Karma: domain.InitialKarma,
		}))
	}
	saw := &domain.Listing{Kind: domain.KindRequest, ProfileID: "alice", Title: "saw", Subcategory: "tools", IsActive: true}
	axle := &domain.Listing{Kind: domain.KindOffer, ProfileID: "bob", Title: "axle", Subcategory: "tools", IsActive: true}
	require.NoError(t, store.Listings().Create(ctx, saw))
	require.NoError(t, store.Listings().Create(ctx, axle))

	repo := &racingMatchRequests{MatchRequestRepository: store.MatchRequests()}
	repo.onList = func() {
		require.NoError(t, store.MatchRequests().Insert(ctx, &domain.MatchRequest{
			OfferID:     &axle.ID,
			RequestID:   &saw.ID,
			RequesterID: "alice",
			OffererID:   "bob",
			InitiatorID: "alice",
			Status:      domain.StatusPending,
			Contacts:    map[domain.Side]domain.Contact{},
		}))
		require.NoError(t, c.Invalidate(ctx))
	}

	uc := candidate.NewCandidateUseCase(store.Profiles(), store.Listings(), repo, c, candidate.Settings{}, zap.NewNop())

	first, err := uc.FindCandidates(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := uc.FindCandidates(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, second)
}
