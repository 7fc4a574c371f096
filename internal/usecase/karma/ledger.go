// Package karma holds the point table applied to profiles on lifecycle events.
package karma

import (
	"context"

	"go.uber.org/zap"

	"github.com/gdugdh24/barter-backend/internal/repository"
)

// Event is something that moves a profile's karma.
type Event string

const (
	OfferCreated          Event = "offer_created"
	OfferDeleted          Event = "offer_deleted"
	RequestCreated        Event = "request_created"
	RequestDeleted        Event = "request_deleted"
	MatchRequestCreated   Event = "match_request_created"
	MatchRequestCancelled Event = "match_request_cancelled"
	MatchAccepted         Event = "match_accepted"
	MatchCompleted        Event = "match_completed"
)

var deltas = map[Event]int{
	OfferCreated:          3,
	OfferDeleted:          -3,
	RequestCreated:        1,
	RequestDeleted:        -1,
	MatchRequestCreated:   1,
	MatchRequestCancelled: -1,
	MatchAccepted:         5,
	MatchCompleted:        5,
}

// Delta returns the points awarded for e. Unknown events are worth nothing.
func Delta(e Event) int {
	return deltas[e]
}

// Ledger applies the point table against the profile store. Karma has no floor.
type Ledger struct {
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

func NewLedger(profiles repository.ProfileRepository, logger *zap.Logger) *Ledger {
	return &Ledger{profiles: profiles, logger: logger}
}

// Apply adjusts profileID's karma for e and returns the new balance.
func (l *Ledger) Apply(ctx context.Context, profileID string, e Event) (int, error) {
	profile, err := l.profiles.AdjustKarma(ctx, profileID, Delta(e))
	if err != nil {
		return 0, err
	}
	l.logger.Debug("karma adjusted",
		zap.String("profile_id", profileID),
		zap.String("event", string(e)),
		zap.Int("karma", profile.Karma),
	)
	return profile.Karma, nil
}

// Award applies e and logs failures instead of returning them. Lifecycle
// transitions use it once their own state change has been committed.
func (l *Ledger) Award(ctx context.Context, profileID string, e Event) {
	if _, err := l.Apply(ctx, profileID, e); err != nil {
		l.logger.Warn("failed to adjust karma",
			zap.String("profile_id", profileID),
			zap.String("event", string(e)),
			zap.Error(err),
		)
	}
}
