// Package server contains the HTTP handlers and routing for the application.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/media"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
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
	pageCache      *cache.PageCache
	media          *media.Store
	userRepo       repository.UserRepository
	groupRepo      repository.GroupRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	followRepo     repository.FollowRepository
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	store, err := media.NewStore(cfg.MediaRoot)
	if err != nil {
		return nil, fmt.Errorf("media store setup failed: %w", err)
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkwell"),
		pageCache:      cache.NewPageCache(redisClient),
		media:          store,
		userRepo:       repository.NewUserRepository(db),
		groupRepo:      repository.NewGroupRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		followRepo:     repository.NewFollowRepository(db),
	}

	return server, nil
}

// PageCache exposes the page cache for bootstrap and test flushing.
func (s *Server) PageCache() *cache.PageCache {
	return s.pageCache
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Prometheus metrics and scrape endpoint
	middleware.RegisterMetrics(app, s.promMiddleware)

	// Security headers
	app.Use(helmet.New())

	// Session resolution: identifies the viewer without gating anything
	app.Use(middleware.ResolveIdentity())

	// Structured logging middleware (after requestid)
	app.Use(middleware.StructuredLogger())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173,http://localhost:3000",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/healthz", s.HealthCheck)

	// Uploaded post images
	app.Static("/media", s.config.MediaRoot)

	// Auth
	auth := app.Group("/auth")
	auth.Get("/signup", s.SignupForm)
	auth.Post("/signup", s.Signup)
	auth.Get("/login", s.LoginForm)
	auth.Post("/login", s.Login)
	auth.Post("/logout", s.Logout)

	// Static pages
	about := app.Group("/about")
	about.Get("/author", s.AboutAuthor)
	about.Get("/tech", s.AboutTech)

	// Feeds
	app.Get("/", s.pageCache.Middleware("index"), s.Index)
	app.Get("/group/:slug", s.GroupFeed)
	app.Get("/follow", middleware.LoginRequired(), s.FollowIndex)

	// Posts
	app.Get("/create", middleware.LoginRequired(), s.CreatePostForm)
	app.Post("/create", middleware.LoginRequired(), s.CreatePost)
	app.Get("/posts/:id", s.PostDetail)
	app.Get("/posts/:id/edit", middleware.LoginRequired(), s.EditPostForm)
	app.Post("/posts/:id/edit", middleware.LoginRequired(), s.EditPost)
	app.Post("/posts/:id/comment", middleware.LoginRequired(), s.AddComment)

	// Profiles and follow edges. Follow actions accept GET too so plain
	// anchor links work without a form.
	app.Get("/profile/:username/follow", middleware.LoginRequired(), s.FollowAuthor)
	app.Post("/profile/:username/follow", middleware.LoginRequired(), s.FollowAuthor)
	app.Get("/profile/:username/unfollow", middleware.LoginRequired(), s.UnfollowAuthor)
	app.Post("/profile/:username/unfollow", middleware.LoginRequired(), s.UnfollowAuthor)
	app.Get("/profile/:username", s.Profile)

	// Generic not-found page for everything unmatched
	app.Use(s.NotFound)
}

// HealthCheck reports database and Redis health.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The app serves fine without Redis, pages just go uncached.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AboutAuthor renders the static author page.
func (s *Server) AboutAuthor(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title": "About the author",
		"body":  "Inkwell is written and maintained by its author as an exercise in small, well-kept software.",
	})
}

// AboutTech renders the static technology page.
func (s *Server) AboutTech(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title": "Technology",
		"body":  "Inkwell runs on Go, Fiber, GORM, PostgreSQL and Redis.",
	})
}

// NotFound renders the generic not-found page for unmatched routes.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusNotFound,
		models.NewNotFoundError("Page", c.Path()))
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Inkwell",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
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
