package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"forum_backend/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, hashed_password, realname, description, avatar_url,
	       admin, activated, banned, last_active_at, posts_count, discussions_count, inviter_id,
	       created_at, updated_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, hashed_password, realname, description, avatar_url, activated, inviter_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, admin, activated, banned, posts_count, discussions_count, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.HashedPassword,
		u.RealName,
		u.Description,
		u.AvatarURL,
		u.Activated,
		u.InviterID,
	)

	err := row.Scan(
		&u.ID,
		&u.Admin,
		&u.Activated,
		&u.Banned,
		&u.PostsCount,
		&u.DiscussionsCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE username = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// Update persists the self-editable columns and the credential digest.
// Privileged flags and counters are deliberately absent from the SET list;
// they are owned by admin tooling and the activity pipeline.
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET email = $1, realname = $2, description = $3, avatar_url = $4, hashed_password = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		u.Email,
		u.RealName,
		u.Description,
		u.AvatarURL,
		u.HashedPassword,
		u.ID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// FindOnline returns activated users active after since, username ascending.
func (r *userRepository) FindOnline(ctx context.Context, since time.Time) ([]model.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE activated = TRUE AND last_active_at > $1
		ORDER BY username ASC
	`

	var users []model.User
	err := r.db.SelectContext(ctx, &users, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to find online users: %w", err)
	}

	return users, nil
}

// TouchLastActive moves the user's activity timestamp forward. Stale events
// never move it backwards.
func (r *userRepository) TouchLastActive(ctx context.Context, userID int64, seenAt time.Time) error {
	query := `
		UPDATE users
		SET last_active_at = $1
		WHERE id = $2 AND (last_active_at IS NULL OR last_active_at < $1)
	`

	_, err := r.db.ExecContext(ctx, query, seenAt, userID)
	if err != nil {
		return fmt.Errorf("failed to touch last active: %w", err)
	}

	return nil
}
