// Package cache holds derived account stats in Redis so dashboard reads do
// not recompute them on every request. The cache is best-effort: a miss or a
// Redis failure falls back to recomputation, never to an error.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/prop-journal/internal/stats"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

// StatsCache caches computed account stats
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatsCache creates a stats cache. A nil client yields a cache where
// every read is a miss and writes are dropped.
func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func statsKey(accountID uint) string {
	return fmt.Sprintf("account:%d:stats", accountID)
}

// Get returns the cached stats for an account, if present
func (c *StatsCache) Get(ctx context.Context, accountID uint) (*stats.Stats, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, statsKey(accountID)).Bytes()
	if err != nil {
		return nil, false
	}

	var s stats.Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// Set stores stats for an account
func (c *StatsCache) Set(ctx context.Context, accountID uint, s *stats.Stats) {
	if c == nil || c.rdb == nil || s == nil {
		return
	}

	data, err := json.Marshal(s)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, statsKey(accountID), data, c.ttl).Err(); err != nil {
		log.Printf("[StatsCache] failed to set stats for account %d: %v", accountID, err)
	}
}

// Invalidate drops cached stats for the given accounts
func (c *StatsCache) Invalidate(ctx context.Context, accountIDs ...uint) {
	if c == nil || c.rdb == nil || len(accountIDs) == 0 {
		return
	}

	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = statsKey(id)
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[StatsCache] failed to invalidate %d keys: %v", len(keys), err)
	}
}
