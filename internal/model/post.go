package model

import "time"

// Post links a user to the discussion they posted in. Many posts may share a
// discussion; participation queries must deduplicate on discussion_id.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	DiscussionID int64     `db:"discussion_id" json:"discussion_id"`
	Body         string    `db:"body" json:"body"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
