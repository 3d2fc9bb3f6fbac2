package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode"

	"socialnova/internal/middleware"
	"socialnova/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// respondErr writes err with the status its code implies.
func respondErr(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			"path", c.Path(), "error", err)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return models.CodeNotFound
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusMethodNotAllowed:
		return models.CodeValidation
	case http.StatusUnauthorized:
		return models.CodeUnauthorized
	case http.StatusForbidden:
		return models.CodeForbidden
	case http.StatusConflict:
		return models.CodeConflict
	case http.StatusTooManyRequests:
		return models.CodeRateLimited
	default:
		return models.CodeInternal
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePage reads the zero-based ?page= parameter.
func parsePage(c *fiber.Ctx) (int, error) {
	page := c.QueryInt("page", 0)
	if page < 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("page must be zero or greater"))
		return 0, errResponseWritten
	}
	return page, nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// viewerID is the authenticated caller or 0 for anonymous requests.
func viewerID(c *fiber.Ctx) uint {
	uid, _ := middleware.UserID(c)
	return uid
}

// mustUserID returns the caller on routes guarded by AuthRequired.
func mustUserID(c *fiber.Ctx) uint {
	uid, _ := middleware.UserID(c)
	return uid
}

// readUpload reads the single multipart file stored under field.
func readUpload(c *fiber.Ctx, field string, maxBytes int64) (string, []byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return "", nil, models.NewValidationError("Expected a multipart form upload")
	}
	files := form.File[field]
	switch {
	case len(files) == 0:
		return "", nil, models.NewValidationError("No file uploaded")
	case len(files) > 1:
		return "", nil, models.NewValidationError("Upload exactly one file")
	}
	header := files[0]
	if header.Size > maxBytes {
		return "", nil, models.NewValidationError("File too large")
	}

	src, err := header.Open()
	if err != nil {
		return "", nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return "", nil, models.NewValidationError("Unable to read uploaded file")
	}
	return header.Filename, content, nil
}
