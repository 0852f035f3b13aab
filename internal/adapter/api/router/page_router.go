package router

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/handler"
	"mangareader/internal/adapter/api/middleware"
)

// SetupPageRouter mounts the page-URL entry points that shared links use.
func SetupPageRouter(e *echo.Echo, pageHandler *handler.PageHandler, authMiddleware *middleware.AuthMiddleware) {
	pages := e.Group("/v1/pages")
	pages.Use(authMiddleware.Optional)

	pages.GET("/manga", pageHandler.MangaPage)
	pages.GET("/chapter", pageHandler.ChapterPage)
}
