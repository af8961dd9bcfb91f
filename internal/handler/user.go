package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"forum_backend/internal/httputil"
	"forum_backend/internal/model"
	"forum_backend/internal/service"
	"forum_backend/internal/transport/http/middleware"
)

type UserHandler struct {
	userService  *service.UserService
	mediaService *service.MediaService
}

func NewUserHandler(userService *service.UserService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		mediaService: mediaService,
	}
}

// profileResponse adds derived presentation fields to the raw user record.
type profileResponse struct {
	*model.User
	Avatar string `json:"avatar"`
	Online bool   `json:"online"`
}

// GetProfile returns a user's public profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] GetProfile handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profileResponse{
		User:   user,
		Avatar: user.Avatar(24),
		Online: user.IsOnline(time.Now()),
	})
}

// UpdateMe applies a guarded attribute update to the caller's own account.
// The raw body is filtered through the safe-attribute set before it is bound
// to the typed update, so privileged fields are dropped no matter what the
// client sends.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var attrs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		httputil.WriteBadRequest(w, "Invalid JSON body")
		return
	}

	req, err := model.DecodeUpdateUserRequest(attrs)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid attributes")
		return
	}

	user, err := h.userService.Update(r.Context(), userID, req)
	if err != nil {
		var verrs *model.ValidationErrors
		if errors.As(err, &verrs) {
			httputil.WriteValidationError(w, verrs.Fields)
			return
		}
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] UpdateMe handler: %v", err)
		httputil.WriteInternalError(w, "Failed to update user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// UploadAvatar stores a new avatar for the caller.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "Avatar file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			log.Printf("[ERROR] UploadAvatar handler: %v", err)
			httputil.WriteInternalError(w, "Failed to upload avatar")
		}
		return
	}

	user, err := h.userService.SetAvatar(r.Context(), userID, upload.URL)
	if err != nil {
		log.Printf("[ERROR] UploadAvatar save: %v", err)
		httputil.WriteInternalError(w, "Failed to save avatar")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// Online returns the roster of users active within the presence window,
// ordered by username.
func (h *UserHandler) Online(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.FindOnline(r.Context())
	if err != nil {
		log.Printf("[ERROR] Online handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list online users")
		return
	}

	summaries := make([]model.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": summaries,
	})
}
