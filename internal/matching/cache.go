// internal/matching/cache.go

package matching

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	likeCountKeyFmt = "matching:likes:%d"
	scoreKeyFmt     = "matching:score:%d:%d"
)

// Cache keeps hot matching reads (incoming like counts, pair scores)
// out of Postgres. A nil client disables caching: every method becomes
// a no-op miss, so the service never branches on Redis availability.
type Cache struct {
	client       *redis.Client
	likeCountTTL time.Duration
	scoreTTL     time.Duration
}

// NewCache creates a matching cache. client may be nil.
func NewCache(client *redis.Client, likeCountTTL, scoreTTL time.Duration) *Cache {
	return &Cache{
		client:       client,
		likeCountTTL: likeCountTTL,
		scoreTTL:     scoreTTL,
	}
}

// GetLikeCount returns the cached incoming like count for userID.
// The bool reports whether the key was present.
func (c *Cache) GetLikeCount(ctx context.Context, userID int64) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}

	val, err := c.client.Get(ctx, fmt.Sprintf(likeCountKeyFmt, userID)).Result()
	if err != nil {
		// redis.Nil and transport errors are both treated as misses
		return 0, false
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}

	return count, true
}

func (c *Cache) SetLikeCount(ctx context.Context, userID, count int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, fmt.Sprintf(likeCountKeyFmt, userID), count, c.likeCountTTL)
}

// InvalidateLikeCount drops the cached count after a swipe lands on userID.
func (c *Cache) InvalidateLikeCount(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, fmt.Sprintf(likeCountKeyFmt, userID))
}

// GetScore returns the cached compatibility score for a pair. The key
// uses canonical ordering so both lookup directions hit the same entry.
func (c *Cache) GetScore(ctx context.Context, u1, u2 int64) (float64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}

	lo, hi := canonicalPair(u1, u2)
	val, err := c.client.Get(ctx, fmt.Sprintf(scoreKeyFmt, lo, hi)).Result()
	if err != nil {
		return 0, false
	}

	score, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}

	return score, true
}

func (c *Cache) SetScore(ctx context.Context, u1, u2 int64, score float64) {
	if c == nil || c.client == nil {
		return
	}
	lo, hi := canonicalPair(u1, u2)
	c.client.Set(ctx, fmt.Sprintf(scoreKeyFmt, lo, hi), strconv.FormatFloat(score, 'f', -1, 64), c.scoreTTL)
}
