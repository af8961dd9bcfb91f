package service

import (
	"context"
	"fmt"
	"time"

	"forum_backend/internal/cache"
	"forum_backend/internal/model"
	"forum_backend/internal/queue"
)

// PresenceService records user activity. The user core only ever reads
// last_active_at; this service is the surrounding machinery that keeps the
// column fresh without a database write per request.
type PresenceService struct {
	presenceCache cache.PresenceCache
	publisher     queue.Publisher
	throttle      time.Duration
}

func NewPresenceService(presenceCache cache.PresenceCache, publisher queue.Publisher) *PresenceService {
	return &PresenceService{
		presenceCache: presenceCache,
		publisher:     publisher,
		throttle:      model.ActivityThrottle,
	}
}

// MarkSeen notes that userID made an authenticated request. At most once per
// throttle window this publishes a user_seen event for the activity workers;
// the rest of the time it is a single Redis round trip.
func (s *PresenceService) MarkSeen(ctx context.Context, userID int64) error {
	won, err := s.presenceCache.MarkActive(ctx, userID, s.throttle)
	if err != nil {
		return fmt.Errorf("presence throttle: %w", err)
	}
	if !won {
		return nil
	}

	if _, err := s.publisher.Publish(ctx, queue.StreamActivity, queue.NewUserSeenEvent(userID, time.Now())); err != nil {
		// Give the marker back so the next request retries the publish
		_ = s.presenceCache.ClearActive(ctx, userID)
		return fmt.Errorf("publish activity: %w", err)
	}
	return nil
}
