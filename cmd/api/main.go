package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/javajolt/kava/kava-backend/internal/config"
	"github.com/javajolt/kava/kava-backend/internal/domain"
	"github.com/javajolt/kava/kava-backend/internal/handler"
	"github.com/javajolt/kava/kava-backend/internal/middleware"
	"github.com/javajolt/kava/kava-backend/internal/repository/local"
	"github.com/javajolt/kava/kava-backend/internal/repository/postgres"
	"github.com/javajolt/kava/kava-backend/internal/repository/storage"
	"github.com/javajolt/kava/kava-backend/internal/service"
	"github.com/javajolt/kava/kava-backend/internal/websocket"
)

// @title Kava Coffee Tracker API
// @version 1.0
// @description Office coffee consumption tracker with a live leaderboard.
// @BasePath /api/v1
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Pick the store. The remote store is preferred; when it is not
	// configured or not reachable the service runs on the local snapshot
	// store for the whole session, without retrying.
	store, localStore, pool := openStore(ctx, cfg)
	if pool != nil {
		defer pool.Close()
	}
	if localStore != nil {
		defer localStore.Close()
	}

	// Fallback is only meaningful when the primary store is remote
	var fallback domain.Store
	if store.Realtime() && localStore != nil {
		fallback = localStore
	}

	tracker := service.NewTracker(store, fallback)
	if err := tracker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start tracker")
	}
	defer tracker.Close()

	// Optional S3 avatar storage
	var avatarRepo storage.AvatarRepository
	if cfg.AvatarsEnabled() {
		repo, err := storage.NewS3AvatarRepository(ctx, cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("Avatar storage unavailable, continuing without it")
		} else {
			avatarRepo = repo
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("Avatar storage enabled")
		}
	}
	avatarService := service.NewAvatarService(avatarRepo)

	exportService := service.NewExportService(tracker)

	// Google sign-in verification
	verifier, err := middleware.NewGoogleVerifier(cfg.GoogleClientID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Google verifier")
	}
	if !verifier.Enabled() {
		log.Warn().Msg("Google verification disabled, sign-in runs in demo mode")
	}

	// WebSocket hub pushing leaderboard snapshots
	hub := websocket.NewHub()
	publisher := websocket.NewHubPublisher(hub)
	unsubscribe := tracker.Subscribe(func() {
		publisher.PublishUsersUpdated(tracker.Users())
		publisher.PublishActivityUpdated(tracker.Activity())
	})
	defer unsubscribe()

	// Rate limiter for coffee scans
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	trackerHandler := handler.NewTrackerHandler(tracker)
	coffeeHandler := handler.NewCoffeeHandler(tracker)
	authHandler := handler.NewAuthHandler(tracker, verifier, avatarService)
	exportHandler := handler.NewExportHandler(exportService)
	wsHandler := handler.NewWebSocketHandler(hub, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"realtime": store.Realtime(),
		})
	})

	// Register API routes
	handler.RegisterRoutes(e, rateLimiter, trackerHandler, coffeeHandler, authHandler, exportHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore connects to the configured backends. The local store is always
// opened so it can serve as the durable fallback; it becomes the primary
// when the database is missing or unreachable.
func openStore(ctx context.Context, cfg *config.Config) (domain.Store, *local.Store, *pgxpool.Pool) {
	localStore, err := local.New(cfg.LocalStorePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LocalStorePath).Msg("Failed to open local store")
	}

	if cfg.DatabaseURL == "" {
		log.Warn().Msg("No database configured, using local store")
		return localStore, localStore, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err == nil {
		err = pool.Ping(ctx)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Database unreachable, falling back to local store")
		if pool != nil {
			pool.Close()
		}
		return localStore, localStore, nil
	}

	store, err := postgres.New(ctx, pool)
	if err != nil {
		log.Warn().Err(err).Msg("Database setup failed, falling back to local store")
		pool.Close()
		return localStore, localStore, nil
	}

	log.Info().Msg("Connected to database")
	return store, localStore, pool
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
