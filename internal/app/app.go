package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/internal/database"
	"github.com/temcen/giftengine/internal/handlers"
	"github.com/temcen/giftengine/internal/middleware"
	"github.com/temcen/giftengine/internal/services"
	"github.com/temcen/giftengine/internal/validation"
)

type App struct {
	config     *config.Config
	logger     *logrus.Logger
	db         *database.Database
	services   *services.Services
	handlers   *handlers.Handlers
	validation *middleware.ValidationMiddleware
	router     *gin.Engine
	stop       context.CancelFunc
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	// Initialize database connections
	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	// Initialize services
	services, err := services.New(ctx, cfg, app.logger, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = services

	validator, err := validation.NewEmbeddedSchemaValidator()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load request schemas: %w", err)
	}
	app.validation = middleware.NewValidationMiddleware(validator)

	// Initialize handlers
	app.handlers = handlers.New(app.logger, services)

	// Background metrics collection
	bgCtx, stop := context.WithCancel(context.Background())
	app.stop = stop
	services.Health.Start(bgCtx)

	// Setup router
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")
	a.stop()

	if err := a.services.Close(); err != nil {
		a.logger.WithError(err).Warn("Error flushing pipeline events")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware; CORS answers preflight before anything else runs
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))
	router.Use(middleware.Session())

	// Health check endpoint (no auth required)
	router.GET("/health", a.handlers.Health.Check)

	// Prometheus metrics endpoint (no auth required)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		// The gift engine is public; callers are throttled by ip
		api.POST("/gift-engine",
			middleware.RateLimit(a.services.RateLimit, a.logger),
			a.validation.ValidateGiftEngineRequest(),
			a.handlers.GiftEngine.Handle,
		)

		people := api.Group("/people")
		{
			people.Use(middleware.Auth(a.services.Auth, a.logger))
			people.Use(middleware.RateLimit(a.services.RateLimit, a.logger))

			people.POST("/:personId/gift-ideas", a.handlers.People.GenerateGiftIdeas)
			people.GET("/:personId/gift-engine-input", a.handlers.People.PreviewInput)
		}
	}

	a.router = router
}
