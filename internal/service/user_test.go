package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"forum_backend/internal/model"
)

// mockUserRepository implements repository.UserRepository with per-test
// function fields, so each test controls exactly what storage does.
type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	updateFn           func(ctx context.Context, user *model.User) error
	findOnlineFn       func(ctx context.Context, since time.Time) ([]model.User, error)

	// Track calls for assertions
	createCalls []*model.User
	updateCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	m.updateCalls = append(m.updateCalls, user)
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindOnline(ctx context.Context, since time.Time) ([]model.User, error) {
	if m.findOnlineFn != nil {
		return m.findOnlineFn(ctx, since)
	}
	return nil, nil
}

func (m *mockUserRepository) TouchLastActive(ctx context.Context, userID int64, seenAt time.Time) error {
	return nil
}

func TestHashPassword_RoundTrip(t *testing.T) {
	passwords := []string{"hunter2", "correct horse battery staple", ""}

	for _, p := range passwords {
		digest, err := HashPassword(p)
		if err != nil {
			t.Fatalf("HashPassword(%q): %v", p, err)
		}
		if digest == p {
			t.Errorf("digest equals clear text for %q", p)
		}
		if !CheckPassword(p, digest) {
			t.Errorf("CheckPassword failed for its own digest of %q", p)
		}
		if CheckPassword(p+"x", digest) {
			t.Errorf("CheckPassword accepted wrong password for %q", p)
		}
	}
}

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := NewUserService(mockRepo)

	req := &model.RegisterRequest{
		Username:        "new user#1",
		Email:           "new@example.com",
		Password:        "securepassword123",
		ConfirmPassword: "securepassword123",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if user.Username != req.Username {
		t.Errorf("username = %q, want %q", user.Username, req.Username)
	}
	if !user.Activated {
		t.Error("new users should start activated")
	}

	// Verify password was hashed (not stored in plain text!)
	if user.HashedPassword == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		t.Error("stored digest should verify against the clear password")
	}

	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name       string
		req        *model.RegisterRequest
		wantFields []string
	}{
		{
			name:       "missing username",
			req:        &model.RegisterRequest{Email: "a@b.c", Password: "pw", ConfirmPassword: "pw"},
			wantFields: []string{"username"},
		},
		{
			name:       "malformed username",
			req:        &model.RegisterRequest{Username: "bad@name", Email: "a@b.c", Password: "pw", ConfirmPassword: "pw"},
			wantFields: []string{"username"},
		},
		{
			name:       "missing email",
			req:        &model.RegisterRequest{Username: "ok", Password: "pw", ConfirmPassword: "pw"},
			wantFields: []string{"email"},
		},
		{
			name:       "password mismatch",
			req:        &model.RegisterRequest{Username: "ok", Email: "a@b.c", Password: "abc", ConfirmPassword: "xyz"},
			wantFields: []string{"password", "confirm_password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{}
			svc := NewUserService(mockRepo)

			user, err := svc.Register(context.Background(), tt.req)
			if user != nil {
				t.Error("user should be nil on validation failure")
			}

			var verrs *model.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error = %v, want *model.ValidationErrors", err)
			}
			for _, field := range tt.wantFields {
				if len(verrs.Fields[field]) == 0 {
					t.Errorf("expected an error on field %q, got %v", field, verrs.Fields)
				}
			}

			if len(mockRepo.createCalls) != 0 {
				t.Error("Create should not be called on validation failure")
			}
		})
	}
}

func TestUserService_Register_UsernameTaken(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(mockRepo)

	req := &model.RegisterRequest{
		Username:        "existinguser",
		Email:           "a@b.c",
		Password:        "password123",
		ConfirmPassword: "password123",
	}

	_, err := svc.Register(context.Background(), req)

	var verrs *model.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want *model.ValidationErrors", err)
	}
	if len(verrs.Fields["username"]) == 0 {
		t.Errorf("expected username field error, got %v", verrs.Fields)
	}
	if len(mockRepo.createCalls) != 0 {
		t.Error("Create should not be called when username exists")
	}
}

func TestUserService_Register_ExistsCheckError(t *testing.T) {
	dbError := errors.New("database connection failed")
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, dbError
		},
	}
	svc := NewUserService(mockRepo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username:        "testuser",
		Email:           "a@b.c",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	if !errors.Is(err, dbError) {
		t.Errorf("error should wrap the database error, got %v", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)

	testUser := &model.User{
		ID:             1,
		Username:       "testuser",
		HashedPassword: string(validHash),
	}

	tests := []struct {
		name          string
		username      string
		password      string
		mockGetByUser func(ctx context.Context, username string) (*model.User, error)
		wantErr       error
		wantUser      bool
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr:  nil,
			wantUser: true,
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "anypassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, model.ErrUserNotFound
			},
			wantErr:  model.ErrInvalidCredentials, // Don't reveal user doesn't exist
			wantUser: false,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr:  model.ErrInvalidCredentials,
			wantUser: false,
		},
		{
			name:     "database error",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, errors.New("database error")
			},
			wantErr:  model.ErrInvalidCredentials, // Don't reveal internal errors
			wantUser: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{
				getByUsernameFn: tt.mockGetByUser,
			}
			svc := NewUserService(mockRepo)

			user, err := svc.Authenticate(context.Background(), &model.LoginRequest{
				Username: tt.username,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantUser && user == nil {
				t.Error("expected user, got nil")
			}
			if !tt.wantUser && user != nil {
				t.Error("expected nil user")
			}
		})
	}
}

func TestUserService_Update_PasswordMismatch(t *testing.T) {
	originalHash := "original-digest"
	mockRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "testuser", Email: "a@b.c", HashedPassword: originalHash}, nil
		},
	}
	svc := NewUserService(mockRepo)

	req := &model.UpdateUserRequest{
		Password:        "abc",
		ConfirmPassword: "xyz",
	}

	user, err := svc.Update(context.Background(), 1, req)
	if user != nil {
		t.Error("user should be nil on validation failure")
	}

	var verrs *model.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want *model.ValidationErrors", err)
	}
	if len(verrs.Fields["password"]) == 0 || len(verrs.Fields["confirm_password"]) == 0 {
		t.Errorf("expected errors on both password fields, got %v", verrs.Fields)
	}

	// The record must be left exactly as it was
	if len(mockRepo.updateCalls) != 0 {
		t.Error("Update should not be called when password confirmation fails")
	}
}

func TestUserService_Update_PasswordChanged(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.MinCost)
	mockRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "testuser", Email: "a@b.c", HashedPassword: string(oldHash)}, nil
		},
	}
	svc := NewUserService(mockRepo)

	req := &model.UpdateUserRequest{
		Password:        "newpassword",
		ConfirmPassword: "newpassword",
	}

	user, err := svc.Update(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !CheckPassword("newpassword", user.HashedPassword) {
		t.Error("digest should verify against the new password")
	}
	if CheckPassword("oldpassword", user.HashedPassword) {
		t.Error("digest should no longer verify against the old password")
	}
	if len(mockRepo.updateCalls) != 1 {
		t.Errorf("Update called %d times, want 1", len(mockRepo.updateCalls))
	}
}

func TestUserService_Update_ProfileFieldsOnly(t *testing.T) {
	originalHash := "original-digest"
	mockRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "testuser", Email: "old@b.c", HashedPassword: originalHash}, nil
		},
	}
	svc := NewUserService(mockRepo)

	newEmail := "new@b.c"
	realname := "Test User"
	user, err := svc.Update(context.Background(), 1, &model.UpdateUserRequest{
		Email:    &newEmail,
		RealName: &realname,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Email != newEmail {
		t.Errorf("email = %q, want %q", user.Email, newEmail)
	}
	if user.RealName == nil || *user.RealName != realname {
		t.Errorf("realname = %v, want %q", user.RealName, realname)
	}
	// No password in the request means the credential stays put
	if user.HashedPassword != originalHash {
		t.Error("hashed password should be untouched without a password change")
	}
}

func TestUserService_FindOnlineWithin(t *testing.T) {
	var gotSince time.Time
	mockRepo := &mockUserRepository{
		findOnlineFn: func(ctx context.Context, since time.Time) ([]model.User, error) {
			gotSince = since
			return []model.User{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}, nil
		},
	}
	svc := NewUserService(mockRepo)

	before := time.Now()
	users, err := svc.FindOnlineWithin(context.Background(), 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(users) != 2 {
		t.Errorf("got %d users, want 2", len(users))
	}

	wantSince := before.Add(-15 * time.Minute)
	if gotSince.Before(wantSince.Add(-time.Second)) || gotSince.After(wantSince.Add(2*time.Second)) {
		t.Errorf("since = %v, want about %v", gotSince, wantSince)
	}
}
