package router

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/handler"
	"mangareader/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	users := e.Group("/v1/users/me")
	users.Use(authMiddleware.Authenticate)

	users.GET("", userHandler.GetProfile)
	users.PUT("", userHandler.UpdateProfile)
	users.PUT("/avatar", userHandler.UploadAvatar)
}
