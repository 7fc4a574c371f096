package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gdugdh24/barter-backend/internal/usecase/candidate"
)

const (
	generationKey = "candidates:generation"
	DefaultTTL    = 5 * time.Minute
)

// CandidateCache keeps computed candidate lists in Redis. Every entry is keyed
// by a global generation counter, so a single INCR invalidates all of them;
// stale generations simply expire.
type CandidateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCandidateCache(client *redis.Client, ttl time.Duration) *CandidateCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CandidateCache{client: client, ttl: ttl}
}

func (c *CandidateCache) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

func entryKey(gen, profileID string) string {
	return fmt.Sprintf("candidates:%s:%s", gen, profileID)
}

// Get looks up profileID under the current generation and returns that
// generation for a later Set.
func (c *CandidateCache) Get(ctx context.Context, profileID string) ([]candidate.Candidate, string, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, "", false, err
	}

	data, err := c.client.Get(ctx, entryKey(gen, profileID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to read candidates: %w", err)
	}

	var candidates []candidate.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, "", false, fmt.Errorf("failed to decode candidates: %w", err)
	}
	return candidates, gen, true, nil
}

// Set stores candidates under gen. If the generation has moved on since gen
// was read, the entry is unreachable and just expires.
func (c *CandidateCache) Set(ctx context.Context, gen, profileID string, candidates []candidate.Candidate) error {
	data, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}
	if err := c.client.Set(ctx, entryKey(gen, profileID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store candidates: %w", err)
	}
	return nil
}

// Invalidate drops every cached list by moving to a new generation.
func (c *CandidateCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}
