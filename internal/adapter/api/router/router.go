package router

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/handler"
	"mangareader/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, h *handler.Handlers, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, authLimiter middleware.Limiter) {
	SetupAuthRouter(e, h.Auth, authMiddleware, authLimiter)
	SetupUserRouter(e, h.User, authMiddleware)
	SetupCatalogRouter(e, h.Catalog, h.Rating, authMiddleware)
	SetupCommentRouter(e, h.Comment, authMiddleware)
	SetupNotificationRouter(e, h.Notification, authMiddleware)
	SetupPageRouter(e, h.Page, authMiddleware)
	SetupAdminRouter(e, h.Catalog, h.Admin, authMiddleware, adminMiddleware)
	SetupHealthRouter(e, h.Health)
}
