package server

import (
	"encoding/json"

	"socialnova/internal/models"
	"socialnova/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QueryCollection handles GET /api/collections/:name
// @Summary Query a collection
// @Description Rows [from, to] of posts, users or realms in the requested order
// @Tags collections
// @Produce json
// @Param name path string true "posts, users or realms"
// @Param order query string false "column[.asc|.desc]"
// @Param from query int false "First row (inclusive)"
// @Param to query int false "Last row (inclusive)"
// @Success 200 {array} object
// @Router /collections/{name} [get]
func (s *Server) QueryCollection(c *fiber.Ctx) error {
	from := c.QueryInt("from", 0)
	q := service.CollectionQuery{
		Name:  c.Params("name"),
		Order: c.Query("order"),
		From:  from,
		To:    c.QueryInt("to", from+s.feedService.PageSize()-1),
	}
	rows, err := s.collectionService.Query(c.UserContext(), q, viewerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(rows)
}

// InsertIntoCollection handles POST /api/collections/:name
// @Summary Insert a record
// @Description Only the posts collection accepts inserts; the author is the caller
// @Tags collections
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "Collection"
// @Param record body service.CreatePostInput true "Record"
// @Success 201 {object} models.Post
// @Router /collections/{name} [post]
func (s *Server) InsertIntoCollection(c *fiber.Ctx) error {
	body := c.Body()
	if !json.Valid(body) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	record, err := s.collectionService.Insert(c.UserContext(), c.Params("name"), mustUserID(c), json.RawMessage(body))
	if err != nil {
		return respondErr(c, err)
	}
	if post, ok := record.(*models.Post); ok {
		s.publishPostCreated(c.UserContext(), post)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}
