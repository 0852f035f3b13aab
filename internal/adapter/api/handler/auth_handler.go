package handler

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/middleware"
	"mangareader/internal/usecase"
	"mangareader/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type registerRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	DisplayName     string `json:"display_name" validate:"omitempty,max=50"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		DisplayName:     req.DisplayName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req passwordResetRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := h.authUseCase.SendPasswordReset(c.Request().Context(), req.Email); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Password reset email sent",
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authUseCase.Logout(c.Request().Context(), middleware.UID(c)); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Signed out",
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authUseCase.CurrentUser(c.Request().Context(), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
