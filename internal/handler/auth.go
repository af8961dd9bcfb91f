package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"forum_backend/internal/httputil"
	"forum_backend/internal/model"
	"forum_backend/internal/service"
	"forum_backend/internal/transport/http/middleware"
)

// AuthHandler groups account endpoints and their dependencies.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

// Register handles sign-up with field-level validation feedback.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid JSON body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		var verrs *model.ValidationErrors
		if errors.As(err, &verrs) {
			httputil.WriteValidationError(w, verrs.Fields)
			return
		}
		log.Printf("[ERROR] Register handler: %v", err)
		httputil.WriteInternalError(w, "Failed to register")
		return
	}

	token, err := h.authService.GenerateAccessToken(user.ID)
	if err != nil {
		log.Printf("[ERROR] Register token: %v", err)
		httputil.WriteInternalError(w, "Failed to issue token")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   h.authService.AccessTokenMaxAge(),
		User:        user,
	})
}

// Login verifies credentials and issues an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid JSON body")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), &req)
	if err != nil {
		httputil.WriteUnauthorized(w, "Invalid username or password")
		return
	}

	token, err := h.authService.GenerateAccessToken(user.ID)
	if err != nil {
		log.Printf("[ERROR] Login token: %v", err)
		httputil.WriteInternalError(w, "Failed to issue token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   h.authService.AccessTokenMaxAge(),
		User:        user,
	})
}

// Me returns the authenticated user's own record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Me handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}
