package worker

import (
	"context"
	"fmt"
	"time"

	"forum_backend/internal/queue"
	"forum_backend/internal/repository"
)

// Handler applies activity events to storage. Each user_seen event becomes a
// last_active_at write; the HTTP layer already throttled them to roughly one
// per user per throttle window, so the write volume here is low.
type Handler struct {
	userRepo repository.UserRepository
}

// NewHandler creates a handler with its storage dependency.
func NewHandler(userRepo repository.UserRepository) *Handler {
	return &Handler{userRepo: userRepo}
}

// HandleEvent dispatches a single event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ActivityEvent) error {
	switch event.Type {
	case queue.EventUserSeen:
		return h.handleUserSeen(ctx, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// handleUserSeen records the observation. The repository ignores writes that
// would move last_active_at backwards, so redelivered or reordered messages
// are harmless.
func (h *Handler) handleUserSeen(ctx context.Context, event queue.ActivityEvent) error {
	if event.UserID == 0 {
		return fmt.Errorf("user_seen event without user_id")
	}

	seenAt := time.Unix(event.SeenAt, 0).UTC()
	if err := h.userRepo.TouchLastActive(ctx, event.UserID, seenAt); err != nil {
		return fmt.Errorf("touch last active for user %d: %w", event.UserID, err)
	}
	return nil
}
