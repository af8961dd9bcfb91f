package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// unsafeAttributes are the columns an untrusted bulk update must never set.
// They are either immutable identity, privileged flags, or counters maintained
// elsewhere.
var unsafeAttributes = map[string]struct{}{
	"id":                {},
	"username":          {},
	"hashed_password":   {},
	"admin":             {},
	"activated":         {},
	"banned":            {},
	"last_active_at":    {},
	"created_at":        {},
	"updated_at":        {},
	"posts_count":       {},
	"discussions_count": {},
	"inviter_id":        {},
}

// SafeAttributes returns a copy of attrs with every unsafe key removed. The
// input map is left untouched.
func SafeAttributes(attrs map[string]any) map[string]any {
	safe := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if _, unsafe := unsafeAttributes[k]; unsafe {
			continue
		}
		safe[k] = v
	}
	return safe
}

// UpdateUserRequest holds the fields a user may change on their own account.
// Privileged columns have no representation here, so they cannot be smuggled
// past SafeAttributes by a handler that forgets to call it.
type UpdateUserRequest struct {
	Email           *string `json:"email"`
	RealName        *string `json:"realname"`
	Description     *string `json:"description"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
}

// DecodeUpdateUserRequest filters an untrusted attribute map through
// SafeAttributes and binds the remainder onto a typed update request.
func DecodeUpdateUserRequest(attrs map[string]any) (*UpdateUserRequest, error) {
	data, err := json.Marshal(SafeAttributes(attrs))
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	var req UpdateUserRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	return &req, nil
}

// ValidationErrors collects field-attached validation messages. It is returned
// instead of persisting the record; callers inspect it and re-render.
type ValidationErrors struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationErrors returns an empty collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Fields: make(map[string][]string)}
}

// Add appends a message for the given field.
func (v *ValidationErrors) Add(field, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

// HasErrors reports whether any field has a message.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Fields) > 0
}

// Error renders the messages as "field message" pairs in field order.
func (v *ValidationErrors) Error() string {
	fields := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []string
	for _, f := range fields {
		for _, msg := range v.Fields[f] {
			parts = append(parts, f+" "+msg)
		}
	}
	return strings.Join(parts, "; ")
}
