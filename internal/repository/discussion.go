package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"forum_backend/internal/model"
)

type discussionRepository struct {
	db *sqlx.DB
}

func NewDiscussionRepository(db *sqlx.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

// GetByID retrieves a single discussion without joined summaries.
func (r *discussionRepository) GetByID(ctx context.Context, id int64) (*model.Discussion, error) {
	query := `
		SELECT id, title, poster_id, last_poster_id, category_id, sticky, closed,
		       posts_count, last_post_at, created_at, updated_at
		FROM discussions
		WHERE id = $1
	`

	var d model.Discussion
	err := r.db.GetContext(ctx, &d, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrDiscussionNotFound
		}
		return nil, fmt.Errorf("failed to get discussion: %w", err)
	}

	return &d, nil
}

// participatedRow is the flat scan target for the joined participation query.
type participatedRow struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	PosterID     int64     `db:"poster_id"`
	LastPosterID *int64    `db:"last_poster_id"`
	CategoryID   int64     `db:"category_id"`
	Sticky       bool      `db:"sticky"`
	Closed       bool      `db:"closed"`
	PostsCount   int       `db:"posts_count"`
	LastPostAt   time.Time `db:"last_post_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	PosterUsername  string  `db:"poster_username"`
	PosterAvatarURL *string `db:"poster_avatar_url"`

	LastPosterUsername  *string `db:"last_poster_username"`
	LastPosterAvatarURL *string `db:"last_poster_avatar_url"`

	CategoryName string `db:"category_name"`
}

// GetParticipated returns one row per discussion the user has posted in.
// The INNER JOIN on posts produces a row per post, so the query groups by
// discussion id (plus the joined primary keys, which pins the summary columns)
// to collapse repeat participation. Ordering is sticky first, then recency;
// the bound and offset come from the pagination engine, which derives them
// from the same distinct count CountDistinctDiscussions produces.
func (r *discussionRepository) GetParticipated(ctx context.Context, userID int64, limit, offset int) ([]model.Discussion, error) {
	query := `
		SELECT d.id, d.title, d.poster_id, d.last_poster_id, d.category_id, d.sticky, d.closed,
		       d.posts_count, d.last_post_at, d.created_at, d.updated_at,
		       pu.username AS poster_username, pu.avatar_url AS poster_avatar_url,
		       lu.username AS last_poster_username, lu.avatar_url AS last_poster_avatar_url,
		       c.name AS category_name
		FROM discussions d
		INNER JOIN posts p ON d.id = p.discussion_id
		INNER JOIN users pu ON pu.id = d.poster_id
		LEFT JOIN users lu ON lu.id = d.last_poster_id
		INNER JOIN categories c ON c.id = d.category_id
		WHERE p.user_id = $1
		GROUP BY d.id, pu.id, lu.id, c.id
		ORDER BY d.sticky DESC, d.last_post_at DESC
		LIMIT $2 OFFSET $3
	`

	var rows []participatedRow
	err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get participated discussions: %w", err)
	}

	discussions := make([]model.Discussion, 0, len(rows))
	for _, row := range rows {
		d := model.Discussion{
			ID:           row.ID,
			Title:        row.Title,
			PosterID:     row.PosterID,
			LastPosterID: row.LastPosterID,
			CategoryID:   row.CategoryID,
			Sticky:       row.Sticky,
			Closed:       row.Closed,
			PostsCount:   row.PostsCount,
			LastPostAt:   row.LastPostAt,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
			Poster: &model.UserSummary{
				ID:        row.PosterID,
				Username:  row.PosterUsername,
				AvatarURL: row.PosterAvatarURL,
			},
			Category: &model.CategorySummary{
				ID:   row.CategoryID,
				Name: row.CategoryName,
			},
		}
		if row.LastPosterID != nil && row.LastPosterUsername != nil {
			d.LastPoster = &model.UserSummary{
				ID:        *row.LastPosterID,
				Username:  *row.LastPosterUsername,
				AvatarURL: row.LastPosterAvatarURL,
			}
		}
		discussions = append(discussions, d)
	}

	return discussions, nil
}
