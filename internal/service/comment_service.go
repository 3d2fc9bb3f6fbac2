package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"socialnova/internal/models"
)

const maxCommentLen = 1000

type CreateCommentInput struct {
	UserID  uint   `json:"-"`
	PostID  uint   `json:"-"`
	Content string `json:"content"`
}

func (s *PostService) AddComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}
	if _, err := s.posts.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, comment.ID)
}

func (s *PostService) ListComments(ctx context.Context, postID uint, page int) (models.Page[*models.Comment], error) {
	if page < 0 {
		return models.Page[*models.Comment]{}, models.NewValidationError("page must be zero or greater")
	}
	if _, err := s.posts.GetByID(ctx, postID, 0); err != nil {
		return models.Page[*models.Comment]{}, err
	}
	comments, err := s.comments.ListByPost(ctx, postID, s.pageSize, page*s.pageSize)
	if err != nil {
		return models.Page[*models.Comment]{}, err
	}
	return models.NewPage(comments, page, s.pageSize), nil
}

// DeleteComment removes a comment. Its author or the post's author may delete it.
func (s *PostService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		post, err := s.posts.GetByID(ctx, comment.PostID, 0)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return models.NewForbiddenError("You can only delete your own comments")
		}
	}
	return s.comments.Delete(ctx, commentID)
}
