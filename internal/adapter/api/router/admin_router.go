package router

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/handler"
	"mangareader/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, catalogHandler *handler.CatalogHandler, adminHandler *handler.AdminHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.POST("/manga", catalogHandler.CreateManga)
	admin.PUT("/manga/:id/chapters/:chapter", catalogHandler.PutChapter)
	admin.POST("/manga/:id/pages", catalogHandler.UploadPage)

	admin.PUT("/users/:id/role", adminHandler.SetUserRole)
}
