package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"mangareader/internal/domain/repository"
	"mangareader/pkg/response"
)

type DevTokenIssuer interface {
	IssueDevToken(ctx context.Context, uid string) (string, error)
}

// DevTokenHandler mints tokens for existing users. Only mounted in development.
type DevTokenHandler struct {
	issuer   DevTokenIssuer
	userRepo repository.UserRepository
}

func NewDevTokenHandler(issuer DevTokenIssuer, userRepo repository.UserRepository) *DevTokenHandler {
	return &DevTokenHandler{
		issuer:   issuer,
		userRepo: userRepo,
	}
}

func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	user, err := h.userRepo.GetByID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.issuer.IssueDevToken(c.Request().Context(), user.ID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
