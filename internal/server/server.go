// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log"
	"time"

	_ "socialnova/docs" // swagger docs
	"socialnova/internal/auth"
	"socialnova/internal/captions"
	"socialnova/internal/config"
	"socialnova/internal/debounce"
	"socialnova/internal/featureflags"
	"socialnova/internal/middleware"
	"socialnova/internal/models"
	"socialnova/internal/notifications"
	"socialnova/internal/repository"
	"socialnova/internal/service"
	"socialnova/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
	realmRepo   repository.RealmRepository

	tokens       *auth.TokenManager
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	authEvents   *notifications.AuthEvents
	featureFlags *featureflags.Manager
	captions     *captions.Suggester
	store        *storage.LocalStore

	authService       *service.AuthService
	feedService       *service.FeedService
	postService       *service.PostService
	userService       *service.UserService
	realmService      *service.RealmService
	searchService     *service.SearchService
	collectionService *service.CollectionService
	mediaService      *service.MediaService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; Redis-backed features then fall back to in-process
// implementations.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and database are required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("socialnova-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		realmRepo:      repository.NewRealmRepository(db),
		tokens:         auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL(), redisClient),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		captions:       captions.NewSuggester(nil),
		store:          storage.NewLocalStore(cfg.MediaRoot, cfg.PublicBaseURL),
	}
	s.authEvents = notifications.NewAuthEvents(s.notifier)

	guard := debounce.New(redisClient, cfg.LikeToggleWindow())
	s.authService = service.NewAuthService(s.userRepo, s.tokens, s.authEvents)
	s.feedService = service.NewFeedService(s.postRepo, cfg.FeedPageSize)
	s.postService = service.NewPostService(s.postRepo, s.commentRepo, s.realmRepo, guard, cfg.FeedPageSize)
	s.userService = service.NewUserService(s.userRepo, s.postRepo, s.followRepo, s.authEvents)
	s.realmService = service.NewRealmService(s.realmRepo, s.postRepo, cfg.FeedPageSize)
	s.searchService = service.NewSearchService(s.userRepo, s.realmRepo)
	s.collectionService = service.NewCollectionService(s.postRepo, s.userRepo, s.realmRepo, s.postService)
	s.mediaService = service.NewMediaService(s.store, cfg.MaxUploadBytes())

	return s, nil
}

// App builds the Fiber application on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "SocialNova API",
		BodyLimit: int(s.mediaService.MaxBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, &models.AppError{Code: codeForStatus(fe.Code), Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(middleware.TracingMiddleware())

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled responses still carry CORS headers
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitedError("Too many requests, please try again later."))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Static("/media", s.store.Root(), fiber.Static{Browse: false, MaxAge: 3600})

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "SocialNova Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	requireAuth := middleware.AuthRequired(s.tokens)
	optionalAuth := middleware.OptionalAuth(s.tokens)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", requireAuth, s.Logout)
	authGroup.Post("/refresh", requireAuth, s.Refresh)
	authGroup.Get("/me", requireAuth, s.GetMe)
	authGroup.Get("/session", requireAuth, s.GetSession)

	api.Get("/feed", requireAuth, s.GetFeed)

	posts := api.Group("/posts")
	posts.Get("/", optionalAuth, s.GetPosts)
	posts.Post("/", requireAuth, middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	// specific /:id/<resource> routes before the generic /:id
	posts.Post("/:id/like", requireAuth, s.LikePost)
	posts.Post("/:id/save", requireAuth, s.SavePost)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", requireAuth, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Delete("/:id/comments/:commentId", requireAuth, s.DeleteComment)
	posts.Get("/:id", optionalAuth, s.GetPost)
	posts.Delete("/:id", requireAuth, s.DeletePost)

	api.Post("/captions/suggest", requireAuth, s.SuggestCaption)

	api.Post("/storage/:bucket", requireAuth, s.UploadObject)
	api.Get("/storage/:bucket/public-url", s.GetPublicURL)

	collections := api.Group("/collections")
	collections.Get("/:name", optionalAuth, s.QueryCollection)
	collections.Post("/:name", requireAuth, s.InsertIntoCollection)

	users := api.Group("/users")
	users.Get("/me", requireAuth, s.GetMyProfile)
	users.Put("/me", requireAuth, s.UpdateMyProfile)
	users.Get("/me/saved", requireAuth, s.GetMySavedPosts)
	users.Get("/:id/posts", optionalAuth, s.GetUserPosts)
	users.Post("/:id/follow", requireAuth, s.FollowUser)
	users.Delete("/:id/follow", requireAuth, s.UnfollowUser)
	users.Get("/:id", optionalAuth, s.GetUserProfile)

	realms := api.Group("/realms")
	realms.Get("/", optionalAuth, s.GetRealms)
	realms.Post("/", requireAuth, s.CreateRealm)
	realms.Get("/:id/posts", optionalAuth, s.GetRealmPosts)
	realms.Get("/:id/members", s.GetRealmMembers)
	realms.Post("/:id/join", requireAuth, s.JoinRealm)
	realms.Delete("/:id/join", requireAuth, s.LeaveRealm)
	realms.Get("/:id", optionalAuth, s.GetRealm)

	search := api.Group("/search")
	search.Get("/topics", s.GetTopics)
	search.Get("/", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.Search)

	api.Get("/feature-flags", optionalAuth, s.GetFeatureFlags)

	api.Get("/ws", middleware.WebSocketAuthRequired(s.tokens), s.WebsocketHandler())

	s.setupScreens(app)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional; when
// it is configured but unreachable the service reports degraded.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	case redisStatus == "unhealthy":
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the realtime relays and blocks serving HTTP.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.notifier.Enabled() {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
		}
		if err := s.authEvents.StartRelay(s.shutdownCtx); err != nil {
			log.Printf("failed to start auth event relay: %v", err)
		}
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		log.Printf("error shutting down %s: %v", s.hub.Name(), err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
