package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"socialnova/internal/models"
	"socialnova/internal/notifications"
	"socialnova/internal/observability"
	"socialnova/internal/repository"
	"socialnova/internal/validation"

	"golang.org/x/sync/errgroup"
)

const (
	maxBioLen      = 500
	maxFullNameLen = 120
)

type UserService struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	follows repository.FollowRepository
	events  *notifications.AuthEvents
}

// UpdateProfileInput carries optional profile changes; nil fields are left as is.
type UpdateProfileInput struct {
	UserID    uint    `json:"-"`
	Username  *string `json:"username"`
	FullName  *string `json:"full_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

func NewUserService(
	users repository.UserRepository,
	posts repository.PostRepository,
	follows repository.FollowRepository,
	events *notifications.AuthEvents,
) *UserService {
	return &UserService{users: users, posts: posts, follows: follows, events: events}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Profile loads a user with their counts. viewerID 0 is anonymous.
func (s *UserService) Profile(ctx context.Context, userID, viewerID uint) (*models.Profile, error) {
	span, ctx := observability.StartService(ctx, "UserService", "Profile")
	defer span.End()

	p := &models.Profile{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p.User, err = s.users.GetByID(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		p.PostsCount, err = s.posts.CountByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		p.FollowersCount, err = s.follows.CountFollowers(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		p.FollowingCount, err = s.follows.CountFollowing(gctx, userID)
		return err
	})
	if viewerID != 0 && viewerID != userID {
		g.Go(func() (err error) {
			p.IsFollowing, err = s.follows.IsFollowing(gctx, viewerID, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, err
	}
	return p, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if username != user.Username {
			existing, err := s.users.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, models.NewConflictError("Username already taken")
			}
		}
		user.Username = username
	}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if utf8.RuneCountInString(name) > maxFullNameLen {
			return nil, models.NewValidationError(fmt.Sprintf("Full name too long (max %d characters)", maxFullNameLen))
		}
		user.FullName = name
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > maxBioLen {
			return nil, models.NewValidationError(fmt.Sprintf("Bio too long (max %d characters)", maxBioLen))
		}
		user.Bio = optional(bio)
	}
	if in.AvatarURL != nil {
		user.AvatarURL = optional(strings.TrimSpace(*in.AvatarURL))
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.Publish(ctx, notifications.AuthEvent{Type: notifications.UserUpdated, UserID: user.ID, User: user})
	}
	return user, nil
}

func (s *UserService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return err
	}
	return s.follows.Follow(ctx, followerID, followeeID)
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot unfollow yourself")
	}
	return s.follows.Unfollow(ctx, followerID, followeeID)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
