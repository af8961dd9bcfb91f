package repository

import (
	"context"
	"time"

	"forum_backend/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Update persists the caller-editable columns plus hashed_password.
	Update(ctx context.Context, user *model.User) error
	// FindOnline returns activated users with activity after since, ordered by
	// username ascending.
	FindOnline(ctx context.Context, since time.Time) ([]model.User, error)
	// TouchLastActive records activity for the user at seenAt.
	TouchLastActive(ctx context.Context, userID int64, seenAt time.Time) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// CountDistinctDiscussions returns the number of distinct discussions the
	// user has at least one post in. A user with no posts yields 0.
	CountDistinctDiscussions(ctx context.Context, userID int64) (int, error)
}

type DiscussionRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Discussion, error)
	// GetParticipated returns the discussions the user has posted in, each one
	// once, ordered sticky first then by recency, bounded by limit/offset, and
	// enriched with poster, last poster, and category summaries.
	GetParticipated(ctx context.Context, userID int64, limit, offset int) ([]model.Discussion, error)
}
