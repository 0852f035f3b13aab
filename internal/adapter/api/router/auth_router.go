package router

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/handler"
	"mangareader/internal/adapter/api/middleware"
	"mangareader/internal/infrastructure/ratelimit"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	// Public routes, throttled per IP
	public := e.Group("/v1/auth", middleware.RateLimit(limiter, ratelimit.ActionAuth))
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)
	public.POST("/password-reset", authHandler.ForgotPassword)

	// Protected routes
	protected := e.Group("/v1/auth")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("/logout", authHandler.Logout)
	protected.GET("/me", authHandler.Me)
}
