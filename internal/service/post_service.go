package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"socialnova/internal/debounce"
	"socialnova/internal/middleware"
	"socialnova/internal/models"
	"socialnova/internal/observability"
	"socialnova/internal/repository"
)

// MaxCaptionLength is counted in runes.
const MaxCaptionLength = 2200

type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	realms   repository.RealmRepository
	guard    debounce.Guard
	pageSize int
}

type CreatePostInput struct {
	UserID       uint             `json:"-"`
	MediaURL     string           `json:"media_url"`
	MediaType    models.MediaType `json:"media_type"`
	ThumbnailURL string           `json:"thumbnail_url"`
	Caption      *string          `json:"caption"`
	RealmID      *uint            `json:"realm_id"`
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	realms repository.RealmRepository,
	guard debounce.Guard,
	pageSize int,
) *PostService {
	pageSize = pageSizeOrDefault(pageSize)
	return &PostService{
		posts:    posts,
		comments: comments,
		realms:   realms,
		guard:    guard,
		pageSize: pageSize,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.StartService(ctx, "PostService", "CreatePost")
	defer span.End()

	if strings.TrimSpace(in.MediaURL) == "" {
		return nil, models.NewValidationError("media_url is required")
	}
	if !in.MediaType.Valid() {
		return nil, models.NewValidationError("media_type must be image or video")
	}
	if in.Caption != nil {
		caption := strings.TrimSpace(*in.Caption)
		if utf8.RuneCountInString(caption) > MaxCaptionLength {
			return nil, models.NewValidationError(fmt.Sprintf("Caption too long (max %d characters)", MaxCaptionLength))
		}
		if caption == "" {
			in.Caption = nil
		} else {
			in.Caption = &caption
		}
	}

	if in.RealmID != nil {
		if _, err := s.realms.GetByID(ctx, *in.RealmID, 0); err != nil {
			return nil, err
		}
		if _, err := s.realms.GetMembership(ctx, *in.RealmID, in.UserID); err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return nil, models.NewForbiddenError("Join the realm before posting in it")
			}
			return nil, err
		}
	}

	post := &models.Post{
		UserID:       in.UserID,
		RealmID:      in.RealmID,
		MediaURL:     in.MediaURL,
		MediaType:    in.MediaType,
		ThumbnailURL: in.ThumbnailURL,
		Caption:      in.Caption,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		span.SetError(err)
		return nil, err
	}
	observability.PostsCreated.WithLabelValues(string(in.MediaType)).Inc()
	return s.posts.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id, viewerID)
}

// ListRecent pages every post, newest first.
func (s *PostService) ListRecent(ctx context.Context, viewerID uint, page int) (models.Page[*models.Post], error) {
	if page < 0 {
		return models.Page[*models.Post]{}, models.NewValidationError("page must be zero or greater")
	}
	posts, err := s.posts.ListRecent(ctx, s.pageSize, page*s.pageSize, viewerID)
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return models.NewPage(posts, page, s.pageSize), nil
}

func (s *PostService) ListByUser(ctx context.Context, userID, viewerID uint, page int) (models.Page[*models.Post], error) {
	if page < 0 {
		return models.Page[*models.Post]{}, models.NewValidationError("page must be zero or greater")
	}
	posts, err := s.posts.ListByUser(ctx, userID, s.pageSize, page*s.pageSize, viewerID)
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return models.NewPage(posts, page, s.pageSize), nil
}

// DeletePost removes a post. Only its author may delete it.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.posts.Delete(ctx, postID)
}

// ToggleLike flips the caller's like. A repeat within the debounce window is
// suppressed and reports the current state with Debounced set.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error) {
	span, ctx := observability.StartService(ctx, "PostService", "ToggleLike")
	defer span.End()

	if _, err := s.posts.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	allowed := true
	if s.guard != nil {
		ok, err := s.guard.Allow(ctx, fmt.Sprintf("like:%d:%d", userID, postID))
		if err != nil {
			middleware.Logger.WarnContext(ctx, "like debounce unavailable", slog.String("error", err.Error()))
		} else {
			allowed = ok
		}
	}

	if !allowed {
		liked, count, err := s.posts.LikeState(ctx, userID, postID)
		if err != nil {
			return nil, err
		}
		observability.LikeToggles.WithLabelValues("debounced").Inc()
		return &models.LikeResult{PostID: postID, Liked: liked, LikesCount: count, Debounced: true}, nil
	}

	liked, count, err := s.posts.ToggleLike(ctx, userID, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	outcome := "unliked"
	if liked {
		outcome = "liked"
	}
	observability.LikeToggles.WithLabelValues(outcome).Inc()
	return &models.LikeResult{PostID: postID, Liked: liked, LikesCount: count}, nil
}

// ToggleSave bookmarks or un-bookmarks a post and returns the new state.
func (s *PostService) ToggleSave(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.posts.GetByID(ctx, postID, 0); err != nil {
		return false, err
	}
	return s.posts.ToggleSave(ctx, userID, postID)
}

func (s *PostService) ListSaved(ctx context.Context, userID uint, page int) (models.Page[*models.Post], error) {
	if page < 0 {
		return models.Page[*models.Post]{}, models.NewValidationError("page must be zero or greater")
	}
	posts, err := s.posts.ListSaved(ctx, userID, s.pageSize, page*s.pageSize)
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return models.NewPage(posts, page, s.pageSize), nil
}
