package model

import (
	"strings"
	"testing"
	"time"
)

func TestSafeAttributes_RemovesUnsafeKeys(t *testing.T) {
	attrs := map[string]any{
		"realname":          "Jane Doe",
		"email":             "jane@example.com",
		"description":       "hello",
		"id":                99,
		"username":          "hijacked",
		"hashed_password":   "deadbeef",
		"admin":             true,
		"activated":         false,
		"banned":            false,
		"last_active_at":    "2020-01-01T00:00:00Z",
		"created_at":        "2020-01-01T00:00:00Z",
		"updated_at":        "2020-01-01T00:00:00Z",
		"posts_count":       1000,
		"discussions_count": 1000,
		"inviter_id":        1,
	}

	safe := SafeAttributes(attrs)

	want := map[string]any{
		"realname":    "Jane Doe",
		"email":       "jane@example.com",
		"description": "hello",
	}
	if len(safe) != len(want) {
		t.Fatalf("safe has %d keys, want %d: %v", len(safe), len(want), safe)
	}
	for k, v := range want {
		if safe[k] != v {
			t.Errorf("safe[%q] = %v, want %v", k, safe[k], v)
		}
	}

	// Input must not be mutated
	if len(attrs) != 15 {
		t.Errorf("input map was mutated, has %d keys", len(attrs))
	}
	if attrs["admin"] != true {
		t.Error("input map value was changed")
	}
}

func TestSafeAttributes_AllUnsafeYieldsEmpty(t *testing.T) {
	attrs := map[string]any{
		"id":              1,
		"admin":           true,
		"banned":          true,
		"hashed_password": "x",
	}

	safe := SafeAttributes(attrs)
	if len(safe) != 0 {
		t.Errorf("expected empty map, got %v", safe)
	}
}

func TestSafeAttributes_EmptyInput(t *testing.T) {
	safe := SafeAttributes(map[string]any{})
	if len(safe) != 0 {
		t.Errorf("expected empty map, got %v", safe)
	}
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		username string
		want     bool
	}{
		{"alice", true},
		{"Alice Smith", true},
		{"user-42", true},
		{"mr_forum#1!", true},
		{"", false},
		{"nils@domain", false},
		{"semi;colon", false},
		{"<script>", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			if got := ValidUsername(tt.username); got != tt.want {
				t.Errorf("ValidUsername(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestUser_IsOnline(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name       string
		lastActive *time.Time
		want       bool
	}{
		{"never active", nil, false},
		{"just now", ago(0), true},
		{"five minutes ago", ago(5 * time.Minute), true},
		{"just inside window", ago(15*time.Minute - time.Second), true},
		{"exactly at window", ago(15 * time.Minute), false},
		{"an hour ago", ago(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{LastActiveAt: tt.lastActive}
			if got := u.IsOnline(now); got != tt.want {
				t.Errorf("IsOnline = %v, want %v", got, tt.want)
			}
		})
	}
}

// More recent activity must never flip the result from online to offline.
func TestUser_IsOnline_Monotonic(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	prevOnline := false
	for minutes := 30; minutes >= 0; minutes-- {
		ts := now.Add(-time.Duration(minutes) * time.Minute)
		u := &User{LastActiveAt: &ts}
		online := u.IsOnline(now)
		if prevOnline && !online {
			t.Fatalf("online flipped true -> false at %d minutes ago", minutes)
		}
		prevOnline = online
	}
	if !prevOnline {
		t.Error("user active right now should be online")
	}
}

func TestUser_GravatarURL(t *testing.T) {
	u := &User{Email: "someone@example.com"}

	got := u.GravatarURL(24)
	// md5("someone@example.com")
	want := "https://www.gravatar.com/avatar/16d113840f999444259f73bac9ab8b10?s=24&r=x"
	if got != want {
		t.Errorf("GravatarURL = %q, want %q", got, want)
	}

	if !strings.Contains(u.GravatarURL(64), "s=64") {
		t.Error("size parameter not honored")
	}
	if !strings.Contains(u.GravatarURL(0), "s=24") {
		t.Error("non-positive size should fall back to 24")
	}
}

func TestUser_Avatar(t *testing.T) {
	uploaded := "https://cdn.example.com/avatars/abc.jpg"

	withUpload := &User{Email: "a@b.c", AvatarURL: &uploaded}
	if got := withUpload.Avatar(24); got != uploaded {
		t.Errorf("Avatar = %q, want uploaded URL", got)
	}

	withoutUpload := &User{Email: "a@b.c"}
	if got := withoutUpload.Avatar(24); !strings.HasPrefix(got, "https://www.gravatar.com/avatar/") {
		t.Errorf("Avatar = %q, want gravatar fallback", got)
	}
}
