package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventUserSeen = "user_seen"
)

// Stream names
const (
	StreamActivity = "stream:activity"
)

// Consumer group name for activity workers
const (
	ConsumerGroupActivity = "activity_workers"
)

// ActivityEvent represents a user-activity observation published by the HTTP
// layer. The worker collapses these into throttled last_active_at updates.
type ActivityEvent struct {
	Type   string `json:"type"`    // EventUserSeen
	UserID int64  `json:"user_id"` // Who was seen
	SeenAt int64  `json:"seen_at"` // Unix timestamp of the request
}

// NewUserSeenEvent creates an event recording that a user made an
// authenticated request at seenAt.
func NewUserSeenEvent(userID int64, seenAt time.Time) ActivityEvent {
	return ActivityEvent{
		Type:   EventUserSeen,
		UserID: userID,
		SeenAt: seenAt.Unix(),
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an ActivityEvent from Redis stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
