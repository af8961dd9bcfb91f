package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"forum_backend/internal/httputil"
	"forum_backend/internal/service"
)

type DiscussionHandler struct {
	discussionService *service.DiscussionService
}

func NewDiscussionHandler(discussionService *service.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{
		discussionService: discussionService,
	}
}

// GetUserDiscussions returns one page of the discussions a user has posted
// in. Out-of-range page values are clamped by the service, so any integer is
// accepted here; only non-numeric input is rejected.
func (h *DiscussionHandler) GetUserDiscussions(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil {
			httputil.WriteBadRequest(w, "Page must be an integer")
			return
		}
	}

	perPage := 0 // service default
	if perPageStr := r.URL.Query().Get("per_page"); perPageStr != "" {
		perPage, err = strconv.Atoi(perPageStr)
		if err != nil || perPage > 100 {
			httputil.WriteBadRequest(w, "per_page must be an integer no greater than 100")
			return
		}
	}

	result, err := h.discussionService.ParticipatedDiscussions(r.Context(), userID, page, perPage)
	if err != nil {
		log.Printf("[ERROR] GetUserDiscussions handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list discussions")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
