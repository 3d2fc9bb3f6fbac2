package server

import (
	"strconv"
	"strings"

	"socialnova/internal/models"
	"socialnova/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
// @Summary Home feed
// @Description Posts by the caller, the users they follow and the realms they joined, newest first
// @Tags feed
// @Security BearerAuth
// @Produce json
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.Post]
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	result, err := s.feedService.Page(c.UserContext(), mustUserID(c), page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description All posts, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.Post]
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	result, err := s.postService.ListRecent(c.UserContext(), viewerID(c), page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), id, viewerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Description Upload one image or video with an optional caption and realm
// @Tags posts
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file"
// @Param caption formData string false "Caption"
// @Param realm_id formData int false "Realm to post in"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := mustUserID(c)
	ctx := c.UserContext()

	in := service.CreatePostInput{UserID: userID}
	if caption := c.FormValue("caption"); caption != "" {
		in.Caption = &caption
	}
	if raw := strings.TrimSpace(c.FormValue("realm_id")); raw != "" {
		realmID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || realmID == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid realm ID"))
		}
		id := uint(realmID)
		in.RealmID = &id
	}

	filename, content, err := readUpload(c, "file", s.mediaService.MaxBytes())
	if err != nil {
		return respondErr(c, err)
	}
	upload, err := s.mediaService.UploadPostMedia(ctx, userID, filename, content)
	if err != nil {
		return respondErr(c, err)
	}
	in.MediaURL = upload.MediaURL
	in.MediaType = upload.MediaType
	in.ThumbnailURL = upload.ThumbnailURL

	post, err := s.postService.CreatePost(ctx, in)
	if err != nil {
		return respondErr(c, err)
	}
	s.publishPostCreated(ctx, post)
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), mustUserID(c), id); err != nil {
		return respondErr(c, err)
	}
	s.publishPostDeleted(c.UserContext(), id)
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
// @Summary Toggle like
// @Description Likes or unlikes a post. Repeats within a short window are ignored and report debounced=true.
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.LikeResult
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.postService.ToggleLike(c.UserContext(), mustUserID(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	if !res.Debounced {
		s.publishPostLiked(c.UserContext(), res)
	}
	return c.JSON(res)
}

// SavePost handles POST /api/posts/:id/save
// @Summary Toggle bookmark
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{post_id=int,saved=bool}
// @Router /posts/{id}/save [post]
func (s *Server) SavePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	saved, err := s.postService.ToggleSave(c.UserContext(), mustUserID(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"post_id": id, "saved": saved})
}

// SuggestCaption handles POST /api/captions/suggest
// @Summary Suggest a caption
// @Description Returns a canned caption idea. Only available when the caption_suggestions flag is on.
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{caption=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /captions/suggest [post]
func (s *Server) SuggestCaption(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled("caption_suggestions", mustUserID(c)) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Feature", "caption_suggestions"))
	}
	return c.JSON(fiber.Map{"caption": s.captions.Suggest()})
}
