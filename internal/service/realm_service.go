package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"socialnova/internal/cache"
	"socialnova/internal/models"
	"socialnova/internal/observability"
	"socialnova/internal/repository"
	"socialnova/internal/validation"
)

const (
	maxRealmNameLen        = 120
	maxRealmDescriptionLen = 2000
)

type RealmService struct {
	realms   repository.RealmRepository
	posts    repository.PostRepository
	pageSize int
}

type CreateRealmInput struct {
	CreatorID   uint    `json:"-"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	CoverImage  *string `json:"cover_image"`
}

func NewRealmService(realms repository.RealmRepository, posts repository.PostRepository, pageSize int) *RealmService {
	pageSize = pageSizeOrDefault(pageSize)
	return &RealmService{realms: realms, posts: posts, pageSize: pageSize}
}

// CreateRealm creates a realm owned by its creator. The slug defaults to the
// slugified name.
func (s *RealmService) CreateRealm(ctx context.Context, in CreateRealmInput) (*models.Realm, error) {
	span, ctx := observability.StartService(ctx, "RealmService", "CreateRealm")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if utf8.RuneCountInString(name) > maxRealmNameLen {
		return nil, models.NewValidationError(fmt.Sprintf("Name too long (max %d characters)", maxRealmNameLen))
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > maxRealmDescriptionLen {
		return nil, models.NewValidationError(fmt.Sprintf("Description too long (max %d characters)", maxRealmDescriptionLen))
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = validation.Slugify(name)
	}
	if err := validation.ValidateRealmSlug(slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	realm := &models.Realm{
		Name:        name,
		Slug:        slug,
		Description: description,
		CoverImage:  in.CoverImage,
		CreatorID:   in.CreatorID,
	}
	if err := s.realms.Create(ctx, realm); err != nil {
		span.SetError(err)
		return nil, err
	}
	return s.realms.GetByID(ctx, realm.ID, in.CreatorID)
}

// GetRealm resolves a realm by numeric id or slug.
func (s *RealmService) GetRealm(ctx context.Context, idOrSlug string, viewerID uint) (*models.Realm, error) {
	if id, err := strconv.ParseUint(idOrSlug, 10, 32); err == nil {
		return s.realms.GetByID(ctx, uint(id), viewerID)
	}
	return s.realms.GetBySlug(ctx, strings.ToLower(idOrSlug), viewerID)
}

func (s *RealmService) ListRealms(ctx context.Context, viewerID uint, page int) (models.Page[*models.Realm], error) {
	if page < 0 {
		return models.Page[*models.Realm]{}, models.NewValidationError("page must be zero or greater")
	}
	realms, err := s.realms.List(ctx, repository.OrderBy{Column: "members_count", Desc: true}, s.pageSize, page*s.pageSize, viewerID)
	if err != nil {
		return models.Page[*models.Realm]{}, err
	}
	return models.NewPage(realms, page, s.pageSize), nil
}

// Join is idempotent.
func (s *RealmService) Join(ctx context.Context, realmID, userID uint) (*models.Realm, error) {
	realm, err := s.realms.GetByID(ctx, realmID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.realms.AddMember(ctx, realmID, userID, models.RealmRoleMember); err != nil {
		return nil, err
	}
	cache.InvalidateRealm(ctx, realm.Slug)
	return s.realms.GetByID(ctx, realmID, userID)
}

// Leave removes the caller from a realm. Owners cannot leave.
func (s *RealmService) Leave(ctx context.Context, realmID, userID uint) error {
	realm, err := s.realms.GetByID(ctx, realmID, userID)
	if err != nil {
		return err
	}
	m, err := s.realms.GetMembership(ctx, realmID, userID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.NewValidationError("You are not a member of this realm")
		}
		return err
	}
	if m.Role == models.RealmRoleOwner {
		return models.NewForbiddenError("Realm owners cannot leave their realm")
	}
	if err := s.realms.RemoveMember(ctx, realmID, userID); err != nil {
		return err
	}
	cache.InvalidateRealm(ctx, realm.Slug)
	return nil
}

func (s *RealmService) Members(ctx context.Context, realmID uint, page int) (models.Page[*models.RealmMembership], error) {
	if page < 0 {
		return models.Page[*models.RealmMembership]{}, models.NewValidationError("page must be zero or greater")
	}
	if _, err := s.realms.GetByID(ctx, realmID, 0); err != nil {
		return models.Page[*models.RealmMembership]{}, err
	}
	members, err := s.realms.Members(ctx, realmID, s.pageSize, page*s.pageSize)
	if err != nil {
		return models.Page[*models.RealmMembership]{}, err
	}
	return models.NewPage(members, page, s.pageSize), nil
}

func (s *RealmService) Posts(ctx context.Context, realmID, viewerID uint, page int) (models.Page[*models.Post], error) {
	if page < 0 {
		return models.Page[*models.Post]{}, models.NewValidationError("page must be zero or greater")
	}
	if _, err := s.realms.GetByID(ctx, realmID, 0); err != nil {
		return models.Page[*models.Post]{}, err
	}
	posts, err := s.posts.ListByRealm(ctx, realmID, s.pageSize, page*s.pageSize, viewerID)
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return models.NewPage(posts, page, s.pageSize), nil
}
