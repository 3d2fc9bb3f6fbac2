package server

import (
	"socialnova/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Search handles GET /api/search
// @Summary Search users or realms
// @Description Case-insensitive substring match. An empty query lists everything up to the result cap.
// @Tags search
// @Produce json
// @Param q query string false "Query"
// @Param type query string false "users (default) or realms"
// @Success 200 {object} object{type=string,query=string,results=[]object}
// @Router /search [get]
func (s *Server) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	kind := c.Query("type", "users")

	var (
		results interface{}
		err     error
	)
	switch kind {
	case "users":
		results, err = s.searchService.Users(c.UserContext(), q)
	case "realms":
		results, err = s.searchService.Realms(c.UserContext(), q)
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("type must be users or realms"))
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"type":    kind,
		"query":   q,
		"results": results,
	})
}

// GetTopics handles GET /api/search/topics
// @Summary Trending topics
// @Tags search
// @Produce json
// @Success 200 {array} service.Topic
// @Router /search/topics [get]
func (s *Server) GetTopics(c *fiber.Ctx) error {
	topics, err := s.searchService.Topics(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(topics)
}
