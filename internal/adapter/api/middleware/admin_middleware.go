package middleware

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/pkg/errors"
)

type AdminMiddleware struct {
	userRepo repository.UserRepository
}

func NewAdminMiddleware(userRepo repository.UserRepository) *AdminMiddleware {
	return &AdminMiddleware{
		userRepo: userRepo,
	}
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid := UID(c)
		if uid == "" {
			return errors.Unauthorized("Authentication required", nil)
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				return errors.Forbidden("Admin privileges required", nil)
			}
			return err
		}

		if user.Role != entity.RoleAdmin {
			return errors.Forbidden("Admin privileges required", nil)
		}

		return next(c)
	}
}
