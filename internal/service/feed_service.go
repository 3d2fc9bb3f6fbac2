package service

import (
	"context"
	"strconv"

	"socialnova/internal/models"
	"socialnova/internal/observability"
	"socialnova/internal/repository"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// pageSizeOrDefault keeps n within what a repository page query can return.
func pageSizeOrDefault(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > repository.MaxPageSize:
		return repository.MaxPageSize
	}
	return n
}

// FeedService serves the signed-in user's home feed.
type FeedService struct {
	posts    repository.PostRepository
	pageSize int
}

func NewFeedService(posts repository.PostRepository, pageSize int) *FeedService {
	pageSize = pageSizeOrDefault(pageSize)
	return &FeedService{posts: posts, pageSize: pageSize}
}

func (s *FeedService) PageSize() int { return s.pageSize }

// Page returns page k (zero based) of the user's feed: their own posts,
// posts by users they follow and posts in realms they joined, newest first.
func (s *FeedService) Page(ctx context.Context, userID uint, k int) (models.Page[*models.Post], error) {
	span, ctx := observability.StartService(ctx, "FeedService", "Page")
	defer span.End()

	if k < 0 {
		return models.Page[*models.Post]{}, models.NewValidationError("page must be zero or greater")
	}
	posts, err := s.posts.Feed(ctx, userID, s.pageSize, k*s.pageSize)
	if err != nil {
		span.SetError(err)
		return models.Page[*models.Post]{}, err
	}
	page := models.NewPage(posts, k, s.pageSize)
	observability.FeedPagesServed.WithLabelValues(strconv.FormatBool(page.HasMore)).Inc()
	return page, nil
}
