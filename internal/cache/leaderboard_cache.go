package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Leaderboards change on every purchase, so entries are short-lived and the
// whole namespace is dropped whenever the ledger grows or the battle resets.
const leaderboardTTL = 30 * time.Second

// KV is the key/value surface the leaderboard cache needs. *RedisClient
// satisfies it; tests substitute an in-memory implementation.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// LeaderboardCache provides a read cache for computed leaderboards, keyed by
// round filter ("overall" or the round number).
type LeaderboardCache struct {
	kv KV
}

// NewLeaderboardCache creates a new LeaderboardCache. A nil backend yields a
// disabled cache: Get always misses and Set/Invalidate are no-ops.
func NewLeaderboardCache(kv KV) *LeaderboardCache {
	return &LeaderboardCache{kv: kv}
}

func (c *LeaderboardCache) key(round *int) string {
	if round == nil {
		return "leaderboard:overall"
	}
	return fmt.Sprintf("leaderboard:round:%d", *round)
}

// Get retrieves a cached leaderboard into dest. Returns false on miss or when
// the cache is disabled.
func (c *LeaderboardCache) Get(ctx context.Context, round *int, dest interface{}) bool {
	if c == nil || c.kv == nil {
		return false
	}
	raw, err := c.kv.Get(ctx, c.key(round))
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

// Set stores a computed leaderboard. Errors are swallowed: the cache is an
// optimization, never a source of truth.
func (c *LeaderboardCache) Set(ctx context.Context, round *int, value interface{}) {
	if c == nil || c.kv == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.kv.Set(ctx, c.key(round), string(raw), leaderboardTTL)
}

// Invalidate drops every cached leaderboard. Called after each purchase and
// on battle reset.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	if c == nil || c.kv == nil {
		return
	}
	_ = c.kv.DeleteByPattern(ctx, "leaderboard:*")
}
