package handler

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/usecase"
	"mangareader/pkg/errors"
	"mangareader/pkg/response"
)

// Handlers groups every HTTP handler so the routers can mount them.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Catalog      *CatalogHandler
	Page         *PageHandler
	Comment      *CommentHandler
	Notification *NotificationHandler
	Rating       *RatingHandler
	Health       *HealthHandler
	Admin        *AdminHandler
}

type UseCases struct {
	Auth         *usecase.AuthUseCase
	User         *usecase.UserUseCase
	Catalog      *usecase.CatalogUseCase
	Comment      *usecase.CommentUseCase
	Notification *usecase.NotificationUseCase
	Rating       *usecase.RatingUseCase
}

func Setup(uc UseCases, health *HealthHandler) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(uc.Auth),
		User:         NewUserHandler(uc.User),
		Catalog:      NewCatalogHandler(uc.Catalog),
		Page:         NewPageHandler(uc.Catalog, uc.Comment),
		Comment:      NewCommentHandler(uc.Comment),
		Notification: NewNotificationHandler(uc.Notification),
		Rating:       NewRatingHandler(uc.Rating),
		Health:       health,
		Admin:        NewAdminHandler(uc.User),
	}
}

// ErrorHandler renders every error returned by a handler or middleware in
// the response envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	_ = response.Error(c, err)
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
