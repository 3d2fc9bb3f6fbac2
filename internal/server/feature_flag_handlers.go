package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns configured feature flags and their state for the caller.
// @Summary Feature flags
// @Tags meta
// @Produce json
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	uid := viewerID(c)
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(uid),
	})
}
