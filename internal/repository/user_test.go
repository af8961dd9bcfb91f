package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"forum_backend/internal/model"
)

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (?s:.+) FROM users").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 404)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_FindOnline(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	since := time.Date(2024, 6, 1, 11, 45, 0, 0, time.UTC)
	active := since.Add(5 * time.Minute)
	now := since.Add(15 * time.Minute)

	pattern := regexp.QuoteMeta("WHERE activated = TRUE AND last_active_at > $1") +
		"(?s:.*)" + regexp.QuoteMeta("ORDER BY username ASC")

	cols := []string{
		"id", "username", "email", "hashed_password", "realname", "description", "avatar_url",
		"admin", "activated", "banned", "last_active_at", "posts_count", "discussions_count",
		"inviter_id", "created_at", "updated_at",
	}
	rows := sqlmock.NewRows(cols).
		AddRow(1, "alice", "alice@example.com", "digest", nil, nil, nil,
			false, true, false, active, 10, 3, nil, now, now).
		AddRow(2, "bob", "bob@example.com", "digest", nil, nil, nil,
			false, true, false, active, 5, 1, nil, now, now)

	mock.ExpectQuery(pattern).WithArgs(since).WillReturnRows(rows)

	users, err := repo.FindOnline(context.Background(), since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Username != "alice" || users[1].Username != "bob" {
		t.Errorf("users out of order: %q, %q", users[0].Username, users[1].Username)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserRepository_TouchLastActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	seenAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// The guard keeps stale events from rolling the timestamp back
	pattern := regexp.QuoteMeta("SET last_active_at = $1") +
		"(?s:.*)" + regexp.QuoteMeta("WHERE id = $2 AND (last_active_at IS NULL OR last_active_at < $1)")

	mock.ExpectExec(pattern).
		WithArgs(seenAt, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.TouchLastActive(context.Background(), 42, seenAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
