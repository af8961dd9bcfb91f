package model

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// User represents a forum account.
type User struct {
	ID               int64      `db:"id" json:"id"`
	Username         string     `db:"username" json:"username"`
	Email            string     `db:"email" json:"email"`
	HashedPassword   string     `db:"hashed_password" json:"-"` // "-" hides from JSON output
	RealName         *string    `db:"realname" json:"realname"`
	Description      *string    `db:"description" json:"description"`
	AvatarURL        *string    `db:"avatar_url" json:"avatar_url"`
	Admin            bool       `db:"admin" json:"admin"`
	Activated        bool       `db:"activated" json:"activated"`
	Banned           bool       `db:"banned" json:"banned"`
	LastActiveAt     *time.Time `db:"last_active_at" json:"last_active_at"`
	PostsCount       int        `db:"posts_count" json:"posts_count"`
	DiscussionsCount int        `db:"discussions_count" json:"discussions_count"`
	InviterID        *int64     `db:"inviter_id" json:"inviter_id"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// UserSummary is the lightweight representation joined into discussion lists.
type UserSummary struct {
	ID        int64   `db:"id" json:"id"`
	Username  string  `db:"username" json:"username"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
}

// OnlineWindow is how recent last_active_at must be for a user to count as
// online. The column is only refreshed every ~10 minutes (ActivityThrottle),
// so windows smaller than that won't work.
const OnlineWindow = 15 * time.Minute

// ActivityThrottle is the minimum interval between last_active_at writes for
// a single user.
const ActivityThrottle = 10 * time.Minute

var usernamePattern = regexp.MustCompile(`^[\w\d\-\s_#!]+$`)

// ValidUsername reports whether username is non-empty and matches the allowed
// character set.
func ValidUsername(username string) bool {
	return username != "" && usernamePattern.MatchString(username)
}

// IsOnline reports whether the user was active within OnlineWindow of now.
func (u *User) IsOnline(now time.Time) bool {
	return u.IsOnlineWithin(now, OnlineWindow)
}

// IsOnlineWithin reports whether the user was active within window of now.
// A user with no recorded activity is never online.
func (u *User) IsOnlineWithin(now time.Time, window time.Duration) bool {
	return u.LastActiveAt != nil && now.Sub(*u.LastActiveAt) < window
}

// GravatarURL builds the gravatar URL for the user's email. size is in pixels;
// values < 1 fall back to 24.
func (u *User) GravatarURL(size int) string {
	if size < 1 {
		size = 24
	}
	sum := md5.Sum([]byte(u.Email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&r=x", hex.EncodeToString(sum[:]), size)
}

// Avatar returns the uploaded avatar URL when present, falling back to gravatar.
func (u *User) Avatar(size int) string {
	if u.AvatarURL != nil && *u.AvatarURL != "" {
		return *u.AvatarURL
	}
	return u.GravatarURL(size)
}

// Summary converts the user to its joined list representation.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
