package server

import (
	"strings"

	"socialnova/internal/middleware"
	"socialnova/internal/models"
	"socialnova/internal/service"

	"github.com/gofiber/fiber/v2"
)

// signInPath is where protected screens send visitors without a session.
const signInPath = "/auth"

// Screen is the envelope every screen view model is served in.
type Screen struct {
	Screen   string          `json:"screen"`
	SignedIn bool            `json:"signed_in"`
	Viewer   *models.Account `json:"viewer,omitempty"`
	Data     interface{}     `json:"data"`
}

// setupScreens registers the JSON view models backing the app's screens.
// Feed, profile and create need a session cookie; the rest are public.
func (s *Server) setupScreens(app *fiber.App) {
	optionalAuth := middleware.OptionalAuth(s.tokens)
	session := middleware.SessionRequired(s.tokens, signInPath)

	app.Get("/", optionalAuth, s.HomeScreen)
	app.Get("/about", s.AboutScreen)
	app.Get(signInPath, optionalAuth, s.AuthScreen)
	app.Get("/search", optionalAuth, s.SearchScreen)
	app.Get("/realms/:id", optionalAuth, s.RealmScreen)

	app.Get("/feed", session, s.FeedScreen)
	app.Get("/profile", session, s.ProfileScreen)
	app.Get("/create", session, s.CreateScreen)
}

func (s *Server) screen(c *fiber.Ctx, name string, data interface{}) error {
	out := Screen{Screen: name, Data: data}
	if uid := viewerID(c); uid != 0 {
		if user, err := s.userRepo.GetByID(c.UserContext(), uid); err == nil {
			out.SignedIn = true
			out.Viewer = models.NewAccount(user)
		}
	}
	return c.JSON(out)
}

// HomeScreen shows the newest posts and trending topics.
func (s *Server) HomeScreen(c *fiber.Ctx) error {
	recent, err := s.postService.ListRecent(c.UserContext(), viewerID(c), 0)
	if err != nil {
		return respondErr(c, err)
	}
	topics, err := s.searchService.Topics(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return s.screen(c, "home", fiber.Map{
		"recent": recent,
		"topics": topics,
	})
}

func (s *Server) AboutScreen(c *fiber.Ctx) error {
	return s.screen(c, "about", fiber.Map{
		"name":    "SocialNova",
		"tagline": "Share photos and videos with the people and realms you care about.",
		"features": []string{
			"Follow creators and get a personal feed",
			"Join realms built around shared interests",
			"Post images and short videos",
		},
	})
}

// AuthScreen is the sign-in/sign-up screen. next is only honoured for local
// paths so the screen cannot be used as an open redirect.
func (s *Server) AuthScreen(c *fiber.Ctx) error {
	return s.screen(c, "auth", fiber.Map{
		"next": safeNext(c.Query("next")),
	})
}

func (s *Server) SearchScreen(c *fiber.Ctx) error {
	ctx := c.UserContext()
	q := c.Query("q")

	users, err := s.searchService.Users(ctx, q)
	if err != nil {
		return respondErr(c, err)
	}
	realms, err := s.searchService.Realms(ctx, q)
	if err != nil {
		return respondErr(c, err)
	}
	topics, err := s.searchService.Topics(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return s.screen(c, "search", fiber.Map{
		"query":  q,
		"users":  users,
		"realms": realms,
		"topics": topics,
	})
}

func (s *Server) RealmScreen(c *fiber.Ctx) error {
	ctx := c.UserContext()
	realm, err := s.realmService.GetRealm(ctx, c.Params("id"), viewerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	posts, err := s.realmService.Posts(ctx, realm.ID, viewerID(c), 0)
	if err != nil {
		return respondErr(c, err)
	}
	return s.screen(c, "realm", fiber.Map{
		"realm": realm,
		"posts": posts,
	})
}

func (s *Server) FeedScreen(c *fiber.Ctx) error {
	feed, err := s.feedService.Page(c.UserContext(), mustUserID(c), 0)
	if err != nil {
		return respondErr(c, err)
	}
	return s.screen(c, "feed", fiber.Map{"feed": feed})
}

func (s *Server) ProfileScreen(c *fiber.Ctx) error {
	ctx := c.UserContext()
	uid := mustUserID(c)

	profile, err := s.userService.Profile(ctx, uid, uid)
	if err != nil {
		return respondErr(c, err)
	}
	posts, err := s.postService.ListByUser(ctx, uid, uid, 0)
	if err != nil {
		return respondErr(c, err)
	}
	saved, err := s.postService.ListSaved(ctx, uid, 0)
	if err != nil {
		return respondErr(c, err)
	}
	return s.screen(c, "profile", fiber.Map{
		"profile": profile,
		"posts":   posts,
		"saved":   saved,
	})
}

func (s *Server) CreateScreen(c *fiber.Ctx) error {
	uid := mustUserID(c)
	return s.screen(c, "create", fiber.Map{
		"accepted_extensions": service.AcceptedExtensions(),
		"max_upload_bytes":    s.mediaService.MaxBytes(),
		"max_caption_length":  service.MaxCaptionLength,
		"caption_suggestions": s.featureFlags.Enabled("caption_suggestions", uid),
	})
}

func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/feed"
	}
	return next
}
