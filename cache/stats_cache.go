package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StatsCache keeps computed tutor statistics in redis for a short TTL.
// Entries are scoped to a per-tutor generation that Invalidate bumps, so a
// write computed before an invalidation lands under a key nobody reads.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func generationKey(tutorID uuid.UUID) string {
	return fmt.Sprintf("tutor_stats_gen:%s", tutorID)
}

func statsKey(tutorID uuid.UUID, generation int64) string {
	return fmt.Sprintf("tutor_stats:%s:%d", tutorID, generation)
}

func (c *StatsCache) generation(ctx context.Context, tutorID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(tutorID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns nil stats on a miss. The generation it read is returned either
// way and must be handed back to Set.
func (c *StatsCache) Get(ctx context.Context, tutorID uuid.UUID) (*models.TutorStats, int64, error) {
	const op = "cache.StatsCache.Get"

	gen, err := c.generation(ctx, tutorID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: generation: %w", op, err)
	}

	raw, err := c.client.Get(ctx, statsKey(tutorID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var stats models.TutorStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, 0, fmt.Errorf("%s: decode: %w", op, err)
	}
	return &stats, gen, nil
}

func (c *StatsCache) Set(ctx context.Context, generation int64, stats models.TutorStats) error {
	const op = "cache.StatsCache.Set"

	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}
	if err := c.client.Set(ctx, statsKey(stats.TutorID, generation), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate moves the tutor to a new generation. Entries of older
// generations are left to expire.
func (c *StatsCache) Invalidate(ctx context.Context, tutorID uuid.UUID) error {
	const op = "cache.StatsCache.Invalidate"

	if err := c.client.Incr(ctx, generationKey(tutorID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
