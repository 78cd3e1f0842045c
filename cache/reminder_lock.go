package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReminderLock lets only one API instance send a given reminder.
type ReminderLock struct {
	client *redis.Client
}

func NewReminderLock(client *redis.Client) *ReminderLock {
	return &ReminderLock{client: client}
}

// Claim reports whether this caller won key for ttl.
func (l *ReminderLock) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	const op = "cache.ReminderLock.Claim"

	ok, err := l.client.SetNX(ctx, fmt.Sprintf("reminder:%s", key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}
