package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// PresenceKeyPrefix is the key prefix for per-user activity throttle markers
	PresenceKeyPrefix = "presence:user:"
)

// PresenceCache throttles last_active_at writes. The database column only
// needs ~10 minute granularity, so a marker key with that TTL absorbs the
// per-request write traffic.
// Using an interface enables testing with mocks and potential future backends.
type PresenceCache interface {
	// MarkActive sets the throttle marker for the user if it isn't set yet.
	// Returns true when this call won the marker, meaning the caller should
	// emit an activity event; false while the marker is still live.
	MarkActive(ctx context.Context, userID int64, ttl time.Duration) (bool, error)

	// ClearActive drops the throttle marker so the next request re-emits.
	ClearActive(ctx context.Context, userID int64) error
}

// RedisPresenceCache implements PresenceCache on a plain Redis key per user.
type RedisPresenceCache struct {
	client *redis.Client
}

// NewPresenceCache creates a PresenceCache backed by Redis.
func NewPresenceCache(client *redis.Client) PresenceCache {
	return &RedisPresenceCache{client: client}
}

// presenceKey returns the Redis key for a user's throttle marker.
func presenceKey(userID int64) string {
	return fmt.Sprintf("%s%d", PresenceKeyPrefix, userID)
}

// MarkActive uses SET NX EX: the first request in each window sets the marker
// and gets true; everyone else gets false until the TTL expires.
func (c *RedisPresenceCache) MarkActive(ctx context.Context, userID int64, ttl time.Duration) (bool, error) {
	won, err := c.client.SetNX(ctx, presenceKey(userID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark active: %w", err)
	}
	return won, nil
}

// ClearActive removes the throttle marker.
func (c *RedisPresenceCache) ClearActive(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, presenceKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear active: %w", err)
	}
	return nil
}
