package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"forum_backend/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post and bumps the discussion's recency columns in a
// transaction.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO posts (user_id, discussion_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, query, post.UserID, post.DiscussionID, post.Body).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE discussions
		SET last_poster_id = $1, last_post_at = $2, posts_count = posts_count + 1
		WHERE id = $3
	`, post.UserID, post.CreatedAt, post.DiscussionID)
	if err != nil {
		return fmt.Errorf("bump discussion: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE users SET posts_count = posts_count + 1 WHERE id = $1`, post.UserID)
	if err != nil {
		return fmt.Errorf("increment posts count: %w", err)
	}

	return tx.Commit()
}

// CountDistinctDiscussions counts the discussions the user participated in.
// This must be COUNT(DISTINCT ...), not a row count: a user with many posts in
// one discussion still participated in it once. The cached counters on the
// users row are never consulted here.
func (r *postRepository) CountDistinctDiscussions(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(DISTINCT discussion_id) FROM posts WHERE user_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count participated discussions: %w", err)
	}

	return count, nil
}
