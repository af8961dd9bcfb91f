package model

import (
	"errors"
	"time"
)

// Discussion represents a forum thread with its metadata.
type Discussion struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	PosterID     int64     `db:"poster_id" json:"poster_id"`
	LastPosterID *int64    `db:"last_poster_id" json:"last_poster_id"`
	CategoryID   int64     `db:"category_id" json:"category_id"`
	Sticky       bool      `db:"sticky" json:"sticky"`
	Closed       bool      `db:"closed" json:"closed"`
	PostsCount   int       `db:"posts_count" json:"posts_count"`
	LastPostAt   time.Time `db:"last_post_at" json:"last_post_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// Joined fields (not in discussions table)
	Poster     *UserSummary     `json:"poster,omitempty"`
	LastPoster *UserSummary     `json:"last_poster,omitempty"`
	Category   *CategorySummary `json:"category,omitempty"`
}

// CategorySummary is the category representation joined into discussion lists.
type CategorySummary struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// DiscussionPage is one page of a user's participated discussions, with the
// metadata callers need to render navigation controls.
type DiscussionPage struct {
	Discussions []Discussion `json:"discussions"`
	TotalCount  int          `json:"total_count"`
	Page        int          `json:"page"`
	PerPage     int          `json:"per_page"`
	TotalPages  int          `json:"total_pages"`
}

// DefaultPerPage is the page size used when the caller supplies none (or a
// non-positive one).
const DefaultPerPage = 30

// ErrDiscussionNotFound is returned when a discussion cannot be found
var ErrDiscussionNotFound = errors.New("discussion not found")
