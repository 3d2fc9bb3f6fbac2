package server

import (
	"socialnova/internal/models"
	"socialnova/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
// @Summary List comments
// @Description Comments on a post, oldest first
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.Comment]
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}
	result, err := s.postService.ListComments(c.UserContext(), postID, page)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Add comment
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.Comment
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.CreateCommentInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.UserID = mustUserID(c)
	req.PostID = postID

	comment, err := s.postService.AddComment(c.UserContext(), req)
	if err != nil {
		return respondErr(c, err)
	}
	s.publishCommentAdded(c.UserContext(), comment)
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
// @Summary Delete comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if _, err := parseID(c, "id"); err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}
	if err := s.postService.DeleteComment(c.UserContext(), mustUserID(c), commentID); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
