package server

import (
	"socialnova/internal/models"
	"socialnova/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetRealms handles GET /api/realms
// @Summary List realms
// @Description Realms by member count
// @Tags realms
// @Produce json
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.Realm]
// @Router /realms [get]
func (s *Server) GetRealms(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	result, err := s.realmService.ListRealms(c.UserContext(), viewerID(c), page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

// CreateRealm handles POST /api/realms
// @Summary Create realm
// @Description The caller becomes the realm's owner
// @Tags realms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.CreateRealmInput true "Realm"
// @Success 201 {object} models.Realm
// @Failure 409 {object} models.ErrorResponse
// @Router /realms [post]
func (s *Server) CreateRealm(c *fiber.Ctx) error {
	var req service.CreateRealmInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.CreatorID = mustUserID(c)

	realm, err := s.realmService.CreateRealm(c.UserContext(), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(realm)
}

// GetRealm handles GET /api/realms/:id
// @Summary Get realm
// @Tags realms
// @Produce json
// @Param id path string true "Realm ID or slug"
// @Success 200 {object} models.Realm
// @Router /realms/{id} [get]
func (s *Server) GetRealm(c *fiber.Ctx) error {
	realm, err := s.realmService.GetRealm(c.UserContext(), c.Params("id"), viewerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(realm)
}

// GetRealmPosts handles GET /api/realms/:id/posts
// @Summary Posts in a realm
// @Tags realms
// @Produce json
// @Param id path int true "Realm ID"
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.Post]
// @Router /realms/{id}/posts [get]
func (s *Server) GetRealmPosts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	result, err := s.realmService.Posts(c.UserContext(), id, viewerID(c), page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

// GetRealmMembers handles GET /api/realms/:id/members
// @Summary Realm members
// @Tags realms
// @Produce json
// @Param id path int true "Realm ID"
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.RealmMembership]
// @Router /realms/{id}/members [get]
func (s *Server) GetRealmMembers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	result, err := s.realmService.Members(c.UserContext(), id, page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

// JoinRealm handles POST /api/realms/:id/join
// @Summary Join realm
// @Tags realms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Realm ID"
// @Success 200 {object} models.Realm
// @Router /realms/{id}/join [post]
func (s *Server) JoinRealm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	realm, err := s.realmService.Join(c.UserContext(), id, mustUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(realm)
}

// LeaveRealm handles DELETE /api/realms/:id/join
// @Summary Leave realm
// @Tags realms
// @Security BearerAuth
// @Param id path int true "Realm ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /realms/{id}/join [delete]
func (s *Server) LeaveRealm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.realmService.Leave(c.UserContext(), id, mustUserID(c)); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
