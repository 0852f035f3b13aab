package handler

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/usecase"
	"mangareader/pkg/response"
)

type AdminHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewAdminHandler(userUseCase *usecase.UserUseCase) *AdminHandler {
	return &AdminHandler{userUseCase: userUseCase}
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// SetUserRole grants or revokes admin rights. The change applies to the
// next request of the target user since roles are read per request.
func (h *AdminHandler) SetUserRole(c echo.Context) error {
	var req setRoleRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.SetRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}
