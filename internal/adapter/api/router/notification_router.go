package router

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/handler"
	"mangareader/internal/adapter/api/middleware"
)

func SetupNotificationRouter(e *echo.Echo, notificationHandler *handler.NotificationHandler, authMiddleware *middleware.AuthMiddleware) {
	notifications := e.Group("/v1/notifications")
	notifications.Use(authMiddleware.Authenticate)

	notifications.GET("", notificationHandler.ListNotifications)
	notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
	notifications.POST("/:id/read", notificationHandler.MarkAsRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)
}
