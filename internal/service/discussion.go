package service

import (
	"context"
	"fmt"

	"forum_backend/internal/model"
	"forum_backend/internal/repository"
)

// DiscussionService computes paginated views of a user's forum participation.
type DiscussionService struct {
	postRepo       repository.PostRepository
	discussionRepo repository.DiscussionRepository
}

func NewDiscussionService(postRepo repository.PostRepository, discussionRepo repository.DiscussionRepository) *DiscussionService {
	return &DiscussionService{
		postRepo:       postRepo,
		discussionRepo: discussionRepo,
	}
}

// ParticipatedDiscussions returns one page of the discussions the user has
// posted in, sticky first then most recently active, together with the counts
// callers need for navigation.
//
// The page bound and the total both derive from the same distinct-discussion
// count; counting posts here instead would disagree with the grouped fetch and
// shift page boundaries. The count and the fetch run as two independent reads,
// so a post landing between them can skew the metadata by one — an accepted
// window, matching how the rest of the counters in this system behave.
//
// A requested page outside [1, totalPages] is clamped, not rejected. A
// non-positive perPage falls back to model.DefaultPerPage. An unknown userID
// yields an empty first page with a zero total.
func (s *DiscussionService) ParticipatedDiscussions(ctx context.Context, userID int64, page, perPage int) (*model.DiscussionPage, error) {
	if perPage <= 0 {
		perPage = model.DefaultPerPage
	}

	total, err := s.postRepo.CountDistinctDiscussions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participation: %w", err)
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	offset := perPage * (page - 1)

	discussions, err := s.discussionRepo.GetParticipated(ctx, userID, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participated discussions: %w", err)
	}
	if discussions == nil {
		discussions = []model.Discussion{}
	}

	return &model.DiscussionPage{
		Discussions: discussions,
		TotalCount:  total,
		Page:        page,
		PerPage:     perPage,
		TotalPages:  totalPages,
	}, nil
}
