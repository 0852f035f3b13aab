package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/middleware"
	"mangareader/internal/usecase"
	"mangareader/pkg/errors"
	"mangareader/pkg/response"
)

// maxUploadSize bounds multipart image uploads.
const maxUploadSize = 5 << 20

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=50"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userUseCase.GetProfile(c.Request().Context(), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), middleware.UID(c), req.DisplayName)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UploadAvatar(c echo.Context) error {
	file, contentType, err := imageFormFile(c, "avatar")
	if err != nil {
		return response.Error(c, err)
	}
	defer file.Close()

	user, err := h.userUseCase.UploadAvatar(c.Request().Context(), middleware.UID(c), file, contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// imageFormFile opens the named multipart field after checking it holds an
// image no larger than maxUploadSize.
func imageFormFile(c echo.Context, field string) (multipart.File, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, "", errors.BadRequest(field+" file is required", err)
	}
	if header.Size > maxUploadSize {
		return nil, "", errors.BadRequest("image must be at most 5MB", nil)
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", errors.BadRequest("Failed to read "+field+" file", err)
	}

	sniff := make([]byte, 512)
	n, _ := file.Read(sniff)
	contentType := http.DetectContentType(sniff[:n])
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, "", errors.Internal("Failed to read "+field+" file", err)
	}

	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		file.Close()
		return nil, "", errors.BadRequest("only jpeg, png, gif and webp images are accepted", nil)
	}

	return file, contentType, nil
}
