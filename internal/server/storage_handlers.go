package server

import (
	"strings"

	"socialnova/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadObject handles POST /api/storage/:bucket
// @Summary Upload object
// @Description Stores one file at <caller id>/<path> in the bucket and returns its public URL
// @Tags storage
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param bucket path string true "Bucket name"
// @Param file formData file true "File"
// @Param path formData string false "Object path inside the caller's folder (defaults to the file name)"
// @Success 201 {object} service.StoredObject
// @Failure 409 {object} models.ErrorResponse
// @Router /storage/{bucket} [post]
func (s *Server) UploadObject(c *fiber.Ctx) error {
	bucket := c.Params("bucket")
	filename, content, err := readUpload(c, "file", s.mediaService.MaxBytes())
	if err != nil {
		return respondErr(c, err)
	}
	objectPath := strings.TrimSpace(c.FormValue("path"))
	if objectPath == "" {
		objectPath = filename
	}

	obj, err := s.mediaService.UploadObject(c.UserContext(), mustUserID(c), bucket, objectPath, content)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(obj)
}

// GetPublicURL handles GET /api/storage/:bucket/public-url?path=
// @Summary Public URL of an object
// @Tags storage
// @Produce json
// @Param bucket path string true "Bucket name"
// @Param path query string true "Object path"
// @Success 200 {object} object{url=string}
// @Router /storage/{bucket}/public-url [get]
func (s *Server) GetPublicURL(c *fiber.Ctx) error {
	bucket := c.Params("bucket")
	if err := storage.ValidateBucket(bucket); err != nil {
		return respondErr(c, err)
	}
	objectPath, err := storage.CleanObjectPath(c.Query("path"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"url": s.mediaService.PublicURL(bucket, objectPath)})
}
