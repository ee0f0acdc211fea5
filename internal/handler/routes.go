package handler

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/javajolt/kava/kava-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rateLimiter *middleware.RateLimiter, trackerHandler *TrackerHandler, coffeeHandler *CoffeeHandler, authHandler *AuthHandler, exportHandler *ExportHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Leaderboard reads
	api.GET("/users", trackerHandler.GetUsers)
	api.GET("/activity", trackerHandler.GetActivity)
	api.GET("/stats", trackerHandler.GetStats)

	// Coffee scans, rate limited per kiosk
	api.POST("/coffees", coffeeHandler.AddCoffee, middleware.RateLimitMiddleware(rateLimiter))

	// Sign-in
	api.POST("/auth/signin", authHandler.SignIn)

	// CSV export
	api.GET("/export", exportHandler.Export)

	// Live updates
	api.GET("/ws", wsHandler.HandleWS)

	// API documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec)
}
