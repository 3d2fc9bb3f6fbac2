package server

import (
	"context"

	"socialnova/internal/middleware"
	"socialnova/internal/models"
	"socialnova/internal/notifications"
)

// publishBroadcastEvent fans a post event out to every connected client.
// With Redis the hub receives it back through its subscription on every
// instance, so it is only delivered locally when Redis is absent.
func (s *Server) publishBroadcastEvent(ctx context.Context, eventType string, payload map[string]interface{}) {
	data, err := notifications.Encode(eventType, payload)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal event", "event", eventType, "error", err)
		return
	}
	message := string(data)

	if s.notifier.Enabled() {
		err := s.notifier.PublishBroadcast(context.WithoutCancel(ctx), message)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "failed to publish broadcast event", "event", eventType, "error", err)
	}
	s.hub.BroadcastAll(message)
}

func userSummary(user *models.User) map[string]interface{} {
	if user == nil {
		return nil
	}
	return map[string]interface{}{
		"id":         user.ID,
		"username":   user.Username,
		"avatar_url": user.AvatarURL,
	}
}

func (s *Server) publishPostCreated(ctx context.Context, post *models.Post) {
	s.publishBroadcastEvent(ctx, notifications.EventPostCreated, map[string]interface{}{
		"post_id":    post.ID,
		"media_type": post.MediaType,
		"realm_id":   post.RealmID,
		"user":       userSummary(post.User),
		"created_at": post.CreatedAt,
	})
}

func (s *Server) publishPostDeleted(ctx context.Context, postID uint) {
	s.publishBroadcastEvent(ctx, notifications.EventPostDeleted, map[string]interface{}{
		"post_id": postID,
	})
}

func (s *Server) publishPostLiked(ctx context.Context, res *models.LikeResult) {
	s.publishBroadcastEvent(ctx, notifications.EventPostLiked, map[string]interface{}{
		"post_id":     res.PostID,
		"likes_count": res.LikesCount,
	})
}

func (s *Server) publishCommentAdded(ctx context.Context, comment *models.Comment) {
	s.publishBroadcastEvent(ctx, notifications.EventCommentAdded, map[string]interface{}{
		"post_id":    comment.PostID,
		"comment_id": comment.ID,
		"user":       userSummary(comment.User),
	})
}
