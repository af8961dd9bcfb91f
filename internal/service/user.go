package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"forum_backend/internal/model"
	"forum_backend/internal/repository"
)

// HashPassword derives the stored credential digest from a clear-text
// password. bcrypt salts every digest, so hashing the same password twice
// yields different strings; comparison goes through CheckPassword.
func HashPassword(clear string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(clear), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// CheckPassword reports whether clear matches the stored digest.
func CheckPassword(clear, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(clear)) == nil
}

// UserService handles business logic for user operations
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new user account. Validation failures come back as
// *model.ValidationErrors with messages attached to the offending fields;
// nothing is persisted in that case.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	verrs := model.NewValidationErrors()

	username := strings.TrimSpace(req.Username)
	if username == "" {
		verrs.Add("username", "is required")
	} else if !model.ValidUsername(username) {
		verrs.Add("username", "contains invalid characters")
	}

	if strings.TrimSpace(req.Email) == "" {
		verrs.Add("email", "is required")
	}

	if req.Password == "" {
		verrs.Add("password", "is required")
	} else if req.Password != req.ConfirmPassword {
		verrs.Add("password", "must be confirmed")
		verrs.Add("confirm_password", "must be confirmed")
	}

	if verrs.HasErrors() {
		return nil, verrs
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		verrs.Add("username", "is already taken")
		return nil, verrs
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Activated:      true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a username and clear-text password pair.
func (s *UserService) Authenticate(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	if !CheckPassword(req.Password, user.HashedPassword) {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a typed, already-guarded update to the user's own record.
// A password change is accepted only when password and confirm_password are
// present and equal; on mismatch both fields get an error and the record is
// left untouched.
func (s *UserService) Update(ctx context.Context, userID int64, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	verrs := model.NewValidationErrors()

	if req.Password != "" {
		if req.Password == req.ConfirmPassword {
			hashedPassword, err := HashPassword(req.Password)
			if err != nil {
				return nil, err
			}
			user.HashedPassword = hashedPassword
		} else {
			verrs.Add("password", "must be confirmed")
			verrs.Add("confirm_password", "must be confirmed")
		}
	}

	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			verrs.Add("email", "is required")
		} else {
			user.Email = *req.Email
		}
	}
	if req.RealName != nil {
		user.RealName = req.RealName
	}
	if req.Description != nil {
		user.Description = req.Description
	}

	if verrs.HasErrors() {
		return nil, verrs
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// SetAvatar stores the uploaded avatar URL on the user's record.
func (s *UserService) SetAvatar(ctx context.Context, userID int64, avatarURL string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.AvatarURL = &avatarURL
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to set avatar: %w", err)
	}

	return user, nil
}

// FindOnline returns the activated users seen within model.OnlineWindow,
// ordered by username.
func (s *UserService) FindOnline(ctx context.Context) ([]model.User, error) {
	return s.FindOnlineWithin(ctx, model.OnlineWindow)
}

// FindOnlineWithin is FindOnline with a caller-supplied window. last_active_at
// is refreshed at model.ActivityThrottle granularity; windows below that
// return garbage, so don't pass one.
func (s *UserService) FindOnlineWithin(ctx context.Context, window time.Duration) ([]model.User, error) {
	users, err := s.repo.FindOnline(ctx, time.Now().Add(-window))
	if err != nil {
		return nil, err
	}
	return users, nil
}
