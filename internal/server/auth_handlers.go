package server

import (
	"time"

	"socialnova/internal/auth"
	"socialnova/internal/middleware"
	"socialnova/internal/models"
	"socialnova/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new user account and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignUpInput true "Signup request"
// @Success 201 {object} models.Session
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignUpInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.authService.SignUp(c.UserContext(), req)
	if err != nil {
		return respondErr(c, err)
	}
	s.setSessionCookie(c, session)
	return c.Status(fiber.StatusCreated).JSON(session)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate with email or username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignInInput true "Login credentials"
// @Success 200 {object} models.Session
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.SignInInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.authService.SignIn(c.UserContext(), req)
	if err != nil {
		return respondErr(c, err)
	}
	s.setSessionCookie(c, session)
	return c.JSON(session)
}

// Logout handles POST /api/auth/logout
// @Summary Sign out
// @Description Revoke the current token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals(middleware.LocalClaims).(*auth.Claims)
	if err := s.authService.SignOut(c.UserContext(), claims); err != nil {
		return respondErr(c, err)
	}
	c.ClearCookie(middleware.SessionCookie)
	return c.SendStatus(fiber.StatusNoContent)
}

// Refresh handles POST /api/auth/refresh
// @Summary Refresh token
// @Description Revoke the current token and issue a new one
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Session
// @Router /auth/refresh [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	claims, _ := c.Locals(middleware.LocalClaims).(*auth.Claims)
	session, err := s.authService.Refresh(c.UserContext(), claims)
	if err != nil {
		return respondErr(c, err)
	}
	s.setSessionCookie(c, session)
	return c.JSON(session)
}

// GetMe handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Account
// @Router /auth/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.authService.CurrentUser(c.UserContext(), mustUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(models.NewAccount(user))
}

// GetSession handles GET /api/auth/session
// @Summary Current session
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Session
// @Router /auth/session [get]
func (s *Server) GetSession(c *fiber.Ctx) error {
	claims, _ := c.Locals(middleware.LocalClaims).(*auth.Claims)
	raw, _ := c.Locals(middleware.LocalToken).(string)
	session, err := s.authService.Session(c.UserContext(), claims, raw)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(session)
}

func (s *Server) setSessionCookie(c *fiber.Ctx, session *models.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.AccessToken,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
