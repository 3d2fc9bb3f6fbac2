package server

import (
	"socialnova/internal/models"
	"socialnova/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Own profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Profile
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	uid := mustUserID(c)
	profile, err := s.userService.Profile(c.UserContext(), uid, uid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Changes; omitted fields are kept"
// @Success 200 {object} models.Account
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.UserID = mustUserID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewAccount(user))
}

// GetMySavedPosts handles GET /api/users/me/saved
// @Summary Saved posts
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.Post]
// @Router /users/me/saved [get]
func (s *Server) GetMySavedPosts(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	result, err := s.postService.ListSaved(c.UserContext(), mustUserID(c), page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

// GetUserProfile handles GET /api/users/:id
// @Summary User profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.userService.Profile(c.UserContext(), id, viewerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(profile)
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary Posts by a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.Post]
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	result, err := s.postService.ListByUser(c.UserContext(), id, viewerID(c), page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.Follow(c.UserContext(), mustUserID(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowUser handles DELETE /api/users/:id/follow
// @Summary Unfollow user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Router /users/{id}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.Unfollow(c.UserContext(), mustUserID(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
