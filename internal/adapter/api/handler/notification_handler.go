package handler

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/middleware"
	"mangareader/internal/usecase"
	"mangareader/pkg/response"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	inbox, err := h.notificationUseCase.ListNotifications(c.Request().Context(), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, inbox)
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	if err := h.notificationUseCase.MarkAsRead(c.Request().Context(), middleware.UID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	count, err := h.notificationUseCase.MarkAllAsRead(c.Request().Context(), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"updated": count})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	if err := h.notificationUseCase.DeleteNotification(c.Request().Context(), middleware.UID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Notification deleted"})
}
