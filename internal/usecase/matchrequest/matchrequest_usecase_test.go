package matchrequest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository/memory"
	"github.com/gdugdh24/barter-backend/internal/usecase/karma"
)

type createdNotice struct {
	to, from string
}

type acceptedNotice struct {
	a, b               string
	contactA, contactB []string
}

type fakeNotifier struct {
	mu       sync.Mutex
	err      error
	created  []createdNotice
	accepted []acceptedNotice
}

func (n *fakeNotifier) NotifyMatchCreated(_ context.Context, to, from *domain.Profile) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.created = append(n.created, createdNotice{to: to.ID, from: from.ID})
	return nil
}

func (n *fakeNotifier) NotifyMatchAccepted(_ context.Context, a, b *domain.Profile, contactA, contactB []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.accepted = append(n.accepted, acceptedNotice{a: a.ID, b: b.ID, contactA: contactA, contactB: contactB})
	return nil
}

type countingCache struct {
	mu    sync.Mutex
	count int
}

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return nil
}

type testEnv struct {
	store    *memory.Store
	uc       *MatchRequestUseCase
	notifier *fakeNotifier
	cache    *countingCache
	now      time.Time

	aliceRequest *domain.Listing
	bobOffer     *domain.Listing
}

var aliceContact = domain.Contact{Mode: "telegram", Value: "@alice"}
var bobContact = domain.Contact{Mode: "phone", Value: "555-0100"}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	env := &testEnv{
		notifier: &fakeNotifier{},
		cache:    &countingCache{},
		now:      time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }
	env.store = memory.NewStore(memory.WithClock(clock))

	profiles := env.store.Profiles()
	ledger := karma.NewLedger(profiles, zap.NewNop())
	env.uc = NewMatchRequestUseCase(
		profiles,
		env.store.Listings(),
		env.store.MatchRequests(),
		env.store.Transactor(),
		ledger,
		env.notifier,
		env.cache,
		Settings{DailyCap: 3},
		zap.NewNop(),
		WithClock(clock),
	)

	for _, p := range []*domain.Profile{
		{ID: "alice", DisplayName: "Alice", Email: "alice@example.com", Karma: domain.InitialKarma},
		{ID: "bob", DisplayName: "Bob", Email: "bob@example.com", Phone: "555-0199", SharePhone: true, Karma: domain.InitialKarma},
		{ID: "carol", DisplayName: "Carol", Email: "carol@example.com", Karma: domain.InitialKarma},
	} {
		require.NoError(t, profiles.Create(ctx, p))
	}

	env.aliceRequest = env.listing(t, domain.KindRequest, "alice", "ladder")
	env.bobOffer = env.listing(t, domain.KindOffer, "bob", "ladder")
	return env
}

func (e *testEnv) listing(t *testing.T, kind domain.ListingKind, owner, title string) *domain.Listing {
	t.Helper()
	l := &domain.Listing{Kind: kind, ProfileID: owner, Title: title, IsActive: true}
	require.NoError(t, e.store.Listings().Create(context.Background(), l))
	return l
}

func (e *testEnv) karma(t *testing.T, id string) int {
	t.Helper()
	p, err := e.store.Profiles().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Karma
}

// aliceAsks creates a requester-initiated match request for bob's offer.
func (e *testEnv) aliceAsks(t *testing.T) *domain.MatchRequest {
	t.Helper()
	mr, err := e.uc.Create(context.Background(), CreateInput{
		CallerID:      "alice",
		InitiatorType: domain.InitiateFromRequest,
		OfferID:       &e.bobOffer.ID,
		RequestID:     &e.aliceRequest.ID,
		Message:       "could I borrow it?",
		Contact:       aliceContact,
	})
	require.NoError(t, err)
	return mr
}

func TestCreate(t *testing.T) {
	env := newEnv(t)
	mr := env.aliceAsks(t)

	assert.Equal(t, domain.StatusPending, mr.Status)
	assert.Equal(t, "alice", mr.RequesterID)
	assert.Equal(t, "bob", mr.OffererID)
	assert.Equal(t, "alice", mr.InitiatorID)
	assert.Equal(t, aliceContact, mr.ContactFor(domain.SideRequester))
	assert.True(t, mr.ContactFor(domain.SideOfferer).IsZero())
	assert.Equal(t, 2, env.karma(t, "alice"))
	assert.Equal(t, 1, env.cache.count)

	env.uc.Wait()
	require.Len(t, env.notifier.created, 1)
	assert.Equal(t, createdNotice{to: "bob", from: "alice"}, env.notifier.created[0])

	stored, err := env.store.MatchRequests().GetByID(context.Background(), mr.ID)
	require.NoError(t, err)
	assert.True(t, stored.Notified)
}

func TestCreateFromOffer(t *testing.T) {
	env := newEnv(t)
	mr, err := env.uc.Create(context.Background(), CreateInput{
		CallerID:      "bob",
		InitiatorType: domain.InitiateFromOffer,
		RequestID:     &env.aliceRequest.ID,
		Contact:       bobContact,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", mr.RequesterID)
	assert.Equal(t, "bob", mr.OffererID)
	assert.Equal(t, bobContact, mr.ContactFor(domain.SideOfferer))
	assert.True(t, mr.ContactFor(domain.SideRequester).IsZero())
	assert.Nil(t, mr.OfferID)
}

func TestCreateDuplicate(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.aliceAsks(t)

	_, err := env.uc.Create(ctx, CreateInput{
		CallerID:      "alice",
		InitiatorType: domain.InitiateFromRequest,
		OfferID:       &env.bobOffer.ID,
		RequestID:     &env.aliceRequest.ID,
		Contact:       aliceContact,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateMatchRequest)

	sent, err := env.uc.ListSent(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, sent, 1)
	assert.Equal(t, 2, env.karma(t, "alice"))
}

func TestCreateInversePairIsIndependent(t *testing.T) {
	env := newEnv(t)
	env.aliceAsks(t)

	_, err := env.uc.Create(context.Background(), CreateInput{
		CallerID:      "bob",
		InitiatorType: domain.InitiateFromOffer,
		OfferID:       &env.bobOffer.ID,
		RequestID:     &env.aliceRequest.ID,
		Contact:       bobContact,
	})
	assert.NoError(t, err)
}

func TestCreateSelfMatch(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, err := env.uc.Create(ctx, CreateInput{
		CallerID:      "alice",
		InitiatorType: domain.InitiateFromOffer,
		RequestID:     &env.aliceRequest.ID,
		Contact:       aliceContact,
	})
	assert.ErrorIs(t, err, domain.ErrSelfMatchForbidden)

	sent, err := env.uc.ListSent(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, sent)
	assert.Equal(t, 1, env.karma(t, "alice"))
}

func TestCreatePreconditions(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	inactive := env.listing(t, domain.KindOffer, "bob", "tent")
	_, err := env.store.Listings().SetActive(ctx, domain.KindOffer, inactive.ID, false)
	require.NoError(t, err)
	carolRequest := env.listing(t, domain.KindRequest, "carol", "saw")
	missing := int64(404)

	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{
			name: "unknown initiator type",
			in:   CreateInput{CallerID: "alice", InitiatorType: "gift", OfferID: &env.bobOffer.ID, Contact: aliceContact},
			want: domain.ErrInvalidInitiatorType,
		},
		{
			name: "request initiator without offer",
			in:   CreateInput{CallerID: "alice", InitiatorType: domain.InitiateFromRequest, RequestID: &env.aliceRequest.ID, Contact: aliceContact},
			want: domain.ErrInvalidTarget,
		},
		{
			name: "offer initiator without request",
			in:   CreateInput{CallerID: "bob", InitiatorType: domain.InitiateFromOffer, OfferID: &env.bobOffer.ID, Contact: bobContact},
			want: domain.ErrInvalidTarget,
		},
		{
			name: "missing contact value",
			in:   CreateInput{CallerID: "alice", InitiatorType: domain.InitiateFromRequest, OfferID: &env.bobOffer.ID, Contact: domain.Contact{Mode: "email"}},
			want: domain.ErrMissingContactInfo,
		},
		{
			name: "target not found",
			in:   CreateInput{CallerID: "alice", InitiatorType: domain.InitiateFromRequest, OfferID: &missing, Contact: aliceContact},
			want: domain.ErrTargetNotFound,
		},
		{
			name: "target inactive",
			in:   CreateInput{CallerID: "alice", InitiatorType: domain.InitiateFromRequest, OfferID: &inactive.ID, Contact: aliceContact},
			want: domain.ErrTargetInactive,
		},
		{
			name: "own listing belongs to someone else",
			in:   CreateInput{CallerID: "alice", InitiatorType: domain.InitiateFromRequest, OfferID: &env.bobOffer.ID, RequestID: &carolRequest.ID, Contact: aliceContact},
			want: domain.ErrInvalidTarget,
		},
		{
			name: "unknown caller",
			in:   CreateInput{CallerID: "ghost", InitiatorType: domain.InitiateFromRequest, OfferID: &env.bobOffer.ID, Contact: aliceContact},
			want: domain.ErrProfileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.uc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateRateLimit(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	offers := make([]*domain.Listing, 5)
	for i := range offers {
		offers[i] = env.listing(t, domain.KindOffer, "bob", "thing")
	}
	create := func(offer *domain.Listing) error {
		_, err := env.uc.Create(ctx, CreateInput{
			CallerID:      "alice",
			InitiatorType: domain.InitiateFromRequest,
			OfferID:       &offer.ID,
			Contact:       aliceContact,
		})
		return err
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, create(offers[i]))
	}

	// The cap is checked before anything else.
	assert.ErrorIs(t, create(offers[3]), domain.ErrRateLimitExceeded)
	_, err := env.uc.Create(ctx, CreateInput{CallerID: "alice", InitiatorType: "bogus"})
	assert.ErrorIs(t, err, domain.ErrRateLimitExceeded)

	env.now = time.Date(2024, 5, 10, 23, 59, 59, 0, time.UTC)
	assert.ErrorIs(t, create(offers[3]), domain.ErrRateLimitExceeded)

	env.now = time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, create(offers[3]))
}

func TestCancel(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	baseline := env.karma(t, "alice")

	mr := env.aliceAsks(t)

	ok, err := env.uc.Cancel(ctx, mr.ID, "bob")
	require.NoError(t, err)
	assert.False(t, ok, "only the initiator may cancel")

	ok, err = env.uc.Cancel(ctx, mr.ID, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, baseline, env.karma(t, "alice"))

	found, err := env.store.MatchRequests().FindByKeys(ctx, "alice", mr.OfferID, mr.RequestID)
	require.NoError(t, err)
	assert.Nil(t, found)

	ok, err = env.uc.Cancel(ctx, mr.ID, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, baseline, env.karma(t, "alice"))
}

func TestCancelResolvedRequest(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)

	_, err := env.uc.Decline(ctx, mr.ID, "bob")
	require.NoError(t, err)

	ok, err := env.uc.Cancel(ctx, mr.ID, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAcceptCascade(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)
	env.uc.Wait()

	accepted, err := env.uc.Accept(ctx, mr.ID, "bob", bobContact)
	require.NoError(t, err)
	env.uc.Wait()

	assert.Equal(t, domain.StatusAccepted, accepted.Status)
	assert.Equal(t, aliceContact, accepted.ContactFor(domain.SideRequester))
	assert.Equal(t, bobContact, accepted.ContactFor(domain.SideOfferer))
	assert.True(t, accepted.ContactFor(domain.SideRequester).Complete())
	assert.True(t, accepted.ContactFor(domain.SideOfferer).Complete())

	offer, err := env.store.Listings().GetByID(ctx, domain.KindOffer, env.bobOffer.ID)
	require.NoError(t, err)
	assert.False(t, offer.IsActive)
	request, err := env.store.Listings().GetByID(ctx, domain.KindRequest, env.aliceRequest.ID)
	require.NoError(t, err)
	assert.False(t, request.IsActive)

	assert.Equal(t, 6, env.karma(t, "bob"))
	assert.Equal(t, 7, env.karma(t, "alice"))

	require.Len(t, env.notifier.accepted, 1)
	notice := env.notifier.accepted[0]
	assert.Equal(t, "alice", notice.a)
	assert.Equal(t, "bob", notice.b)
	assert.Equal(t, []string{"telegram: @alice (preferred)"}, notice.contactA)
	assert.Equal(t, []string{"phone: 555-0100 (preferred)", "Phone (from profile): 555-0199"}, notice.contactB)
}

func TestAcceptWithoutContactFallsBackToProfile(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	mr, err := env.uc.Create(ctx, CreateInput{
		CallerID:      "bob",
		InitiatorType: domain.InitiateFromOffer,
		RequestID:     &env.aliceRequest.ID,
		OfferID:       &env.bobOffer.ID,
		Contact:       bobContact,
	})
	require.NoError(t, err)

	accepted, err := env.uc.Accept(ctx, mr.ID, "alice", domain.Contact{})
	require.NoError(t, err)
	env.uc.Wait()

	assert.Equal(t, bobContact, accepted.ContactFor(domain.SideOfferer))
	assert.Equal(t, domain.Contact{Mode: "Email", Value: "alice@example.com"}, accepted.ContactFor(domain.SideRequester))

	stored, err := env.store.MatchRequests().GetByID(ctx, mr.ID)
	require.NoError(t, err)
	assert.True(t, stored.ContactFor(domain.SideRequester).Complete())
	assert.True(t, stored.ContactFor(domain.SideOfferer).Complete())

	require.Len(t, env.notifier.accepted, 1)
	assert.Equal(t, []string{"Email: alice@example.com (preferred)"}, env.notifier.accepted[0].contactA)
}

func TestAcceptWithoutContactUsesSharedPhone(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)

	accepted, err := env.uc.Accept(ctx, mr.ID, "bob", domain.Contact{})
	require.NoError(t, err)
	env.uc.Wait()

	assert.Equal(t, aliceContact, accepted.ContactFor(domain.SideRequester))
	assert.Equal(t, domain.Contact{Mode: "Phone", Value: "555-0199"}, accepted.ContactFor(domain.SideOfferer))

	require.Len(t, env.notifier.accepted, 1)
	assert.Equal(t, []string{"Phone: 555-0199 (preferred)"}, env.notifier.accepted[0].contactB)
}

func TestAcceptAuthorization(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)

	_, err := env.uc.Accept(ctx, mr.ID, "alice", aliceContact)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized, "initiator cannot accept own request")

	_, err = env.uc.Accept(ctx, mr.ID, "carol", aliceContact)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = env.uc.Accept(ctx, 404, "bob", bobContact)
	assert.ErrorIs(t, err, domain.ErrMatchRequestNotFound)

	_, err = env.uc.Accept(ctx, mr.ID, "bob", domain.Contact{Mode: "phone"})
	assert.ErrorIs(t, err, domain.ErrMissingContactInfo)

	stored, err := env.store.MatchRequests().GetByID(ctx, mr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestAcceptDeactivatedTarget(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)

	_, err := env.store.Listings().SetActive(ctx, domain.KindOffer, env.bobOffer.ID, false)
	require.NoError(t, err)

	_, err = env.uc.Accept(ctx, mr.ID, "bob", bobContact)
	assert.ErrorIs(t, err, domain.ErrTargetDeactivated)

	stored, err := env.store.MatchRequests().GetByID(ctx, mr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status, "failed accept must roll back")
	assert.True(t, stored.ContactFor(domain.SideOfferer).IsZero())

	request, err := env.store.Listings().GetByID(ctx, domain.KindRequest, env.aliceRequest.ID)
	require.NoError(t, err)
	assert.True(t, request.IsActive)
}

func TestAcceptMissingParty(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	orphan := &domain.MatchRequest{
		OfferID:     &env.bobOffer.ID,
		RequesterID: "ghost",
		OffererID:   "bob",
		InitiatorID: "ghost",
		Status:      domain.StatusPending,
		Contacts:    map[domain.Side]domain.Contact{domain.SideRequester: aliceContact},
	}
	require.NoError(t, env.store.MatchRequests().Insert(ctx, orphan))

	_, err := env.uc.Accept(ctx, orphan.ID, "bob", bobContact)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)

	stored, err := env.store.MatchRequests().GetByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, 1, env.karma(t, "bob"))
}

func TestConcurrentAccept(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)

	const callers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		resolved int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.uc.Accept(ctx, mr.ID, "bob", bobContact)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrAlreadyResolved):
				resolved++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	env.uc.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, resolved)
	assert.Equal(t, 6, env.karma(t, "bob"))
	assert.Equal(t, 7, env.karma(t, "alice"))
	assert.Len(t, env.notifier.accepted, 1)
}

func TestDecline(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)

	_, err := env.uc.Decline(ctx, mr.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	_, err = env.uc.Decline(ctx, mr.ID, "carol")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	declined, err := env.uc.Decline(ctx, mr.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeclined, declined.Status)
	assert.Empty(t, declined.Contacts, "declined requests never disclose the initiator's contact")

	_, err = env.uc.Decline(ctx, mr.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	_, err = env.uc.Accept(ctx, mr.ID, "bob", bobContact)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	assert.Equal(t, 1, env.karma(t, "bob"))
	assert.Equal(t, 2, env.karma(t, "alice"))
}

func TestComplete(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)

	_, err := env.uc.Complete(ctx, mr.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrNotAccepted)

	_, err = env.uc.Accept(ctx, mr.ID, "bob", bobContact)
	require.NoError(t, err)

	_, err = env.uc.Complete(ctx, mr.ID, "carol")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	completed, err := env.uc.Complete(ctx, mr.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.Equal(t, 11, env.karma(t, "bob"))
	assert.Equal(t, 12, env.karma(t, "alice"))

	_, err = env.uc.Complete(ctx, mr.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	assert.Equal(t, 11, env.karma(t, "bob"))
}

func TestStatusNeverReturnsToPending(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)

	_, err := env.uc.Accept(ctx, mr.ID, "bob", bobContact)
	require.NoError(t, err)

	_, err = env.uc.Decline(ctx, mr.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	ok, err := env.uc.Cancel(ctx, mr.ID, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := env.store.MatchRequests().GetByID(ctx, mr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Status)
}

func TestNotificationFailureDoesNotFailCreate(t *testing.T) {
	env := newEnv(t)
	env.notifier.err = errors.New("smtp down")

	mr := env.aliceAsks(t)
	env.uc.Wait()

	stored, err := env.store.MatchRequests().GetByID(context.Background(), mr.ID)
	require.NoError(t, err)
	assert.False(t, stored.Notified)
}

func TestListings(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mr := env.aliceAsks(t)

	incoming, err := env.uc.ListIncoming(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, mr.ID, incoming[0].ID)
	assert.Empty(t, incoming[0].Contacts, "contact stays hidden until accepted")

	none, err := env.uc.ListIncoming(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, none)

	sent, err := env.uc.ListSent(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, aliceContact, sent[0].ContactFor(domain.SideRequester))

	history, err := env.uc.ListHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = env.uc.Accept(ctx, mr.ID, "bob", bobContact)
	require.NoError(t, err)

	history, err = env.uc.ListHistory(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Len(t, history[0].Contacts, 2)

	got, err := env.uc.Get(ctx, mr.ID, "carol")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Nil(t, got)
}
