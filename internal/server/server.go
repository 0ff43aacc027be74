// Package server is the fiber REST adapter over the discussion services.
package server

import (
	"context"
	"fmt"
	"time"

	"campusbridge/internal/config"
	"campusbridge/internal/events"
	"campusbridge/internal/featureflags"
	"campusbridge/internal/middleware"
	"campusbridge/internal/models"
	"campusbridge/internal/repository"
	"campusbridge/internal/service"
	"campusbridge/internal/tasks"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	serviceName              = "campusbridge-api"
	defaultReconcileSchedule = "@every 1h"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config       *config.Config
	db           *gorm.DB
	redis        *redis.Client
	auth         *middleware.Authenticator
	featureFlags *featureflags.Manager
	events       events.Publisher
	reconciler   *tasks.ReconcileTask

	gate         *service.WriteGate
	posts        *service.PostService
	replies      *service.ReplyService
	likes        *service.LikeService
	schools      *service.ReviewWorkflow[models.School, *models.School]
	majors       *service.ReviewWorkflow[models.Major, *models.Major]
	reports      *service.ReportService
	testimonials *service.TestimonialService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching and Redis rate limiting then degrade open.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, publisher events.Publisher) (*Server, error) {
	if publisher == nil {
		publisher = events.Noop{}
	}

	users := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	majorRepo := repository.NewMajorRepository(db)

	schedule := cfg.ReconcileSchedule
	if schedule == "" {
		schedule = defaultReconcileSchedule
	}
	reconciler, err := tasks.NewReconcileTask(repository.NewCounterRepository(db), schedule)
	if err != nil {
		return nil, fmt.Errorf("reconcile task: %w", err)
	}

	flags := featureflags.NewManager(cfg.FeatureFlags)
	gate := service.NewWriteGate(users)

	return &Server{
		config:       cfg,
		db:           db,
		redis:        redisClient,
		auth:         middleware.NewAuthenticator(cfg.JWTSecret),
		featureFlags: flags,
		events:       publisher,
		reconciler:   reconciler,
		gate:         gate,
		posts:        service.NewPostService(gate, postRepo, likeRepo, schoolRepo, majorRepo),
		replies:      service.NewReplyService(gate, postRepo, replyRepo, likeRepo, flags),
		likes:        service.NewLikeService(gate, likeRepo),
		schools:      service.NewSchoolWorkflow(gate, schoolRepo, publisher),
		majors:       service.NewMajorWorkflow(gate, majorRepo, publisher),
		reports:      service.NewReportService(gate, repository.NewReportRepository(db), publisher),
		testimonials: service.NewTestimonialService(gate, repository.NewTestimonialRepository(db), likeRepo),
	}, nil
}

// Reconciler exposes the counter reconciliation task so the process can
// schedule it.
func (s *Server) Reconciler() *tasks.ReconcileTask {
	return s.reconciler
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagates request and user IDs into the request context for logging.
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.MetricsMiddleware(app, serviceName))
	app.Use(middleware.TracingMiddleware())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

func (s *Server) writeLimit(name string) fiber.Handler {
	return middleware.RateLimit(s.redis, middleware.RateLimitConfig{
		Name:   name,
		Limit:  s.config.WriteRateLimit,
		Window: time.Minute,
		Policy: middleware.FailOpen,
		Env:    s.config.Env,
	})
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	api := app.Group("/api")

	// Reads identify the caller when a token is present so liked flags and
	// catalog visibility are viewer-specific.
	public := api.Group("", s.auth.Optional())
	public.Get("/posts", s.GetPosts)
	public.Get("/posts/:id/thread", s.GetThread)
	public.Get("/posts/:id", s.GetPost)
	public.Get("/testimonials", s.GetTestimonials)
	registerCatalogReads(public.Group("/schools"), s.schools)
	registerCatalogReads(public.Group("/majors"), s.majors)

	protected := api.Group("", s.auth.Required())

	posts := protected.Group("/posts")
	posts.Post("/", s.writeLimit("create_post"), s.CreatePost)
	// Specific /:id/:resource routes before the generic /:id route.
	posts.Post("/:id/like", s.writeLimit("like"), s.TogglePostLike)
	posts.Post("/:id/replies", s.writeLimit("create_reply"), s.CreateReply)
	posts.Post("/:id/replies/:replyId/like", s.writeLimit("like"), s.ToggleReplyLike)
	posts.Delete("/:id/replies/:replyId", s.DeleteReply)
	posts.Delete("/:id", s.DeletePost)

	testimonials := protected.Group("/testimonials")
	testimonials.Post("/", s.writeLimit("create_testimonial"), s.CreateTestimonial)
	testimonials.Post("/:id/like", s.writeLimit("like"), s.ToggleTestimonialLike)
	testimonials.Delete("/:id", s.DeleteTestimonial)

	protected.Post("/schools", s.writeLimit("submit_school"), submitCatalog(s.schools, schoolFromRequest))
	protected.Post("/majors", s.writeLimit("submit_major"), submitCatalog(s.majors, majorFromRequest))
	protected.Post("/reports", s.writeLimit("create_report"), s.CreateReport)

	admin := protected.Group("/admin", middleware.AdminRequired())
	registerCatalogAdmin(admin.Group("/schools"), s.schools)
	registerCatalogAdmin(admin.Group("/majors"), s.majors)
	admin.Get("/reports", s.GetReports)
	admin.Get("/reports/:id", s.GetReport)
	admin.Post("/reports/:id/resolve", s.ResolveReport)
	admin.Delete("/posts/:id", s.AdminDeletePost)
	admin.Delete("/posts/:id/replies/:replyId", s.AdminDeleteReply)
	admin.Delete("/testimonials/:id", s.AdminDeleteTestimonial)
	admin.Post("/users/:id/mute", s.MuteUser)
	admin.Post("/users/:id/unmute", s.UnmuteUser)
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Post("/reconcile", s.RunReconcile)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: the
// service degrades to uncached reads without it.
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

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "degraded"
		}
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
			"events":   s.events.Name(),
		},
		"time": time.Now(),
	})
}
